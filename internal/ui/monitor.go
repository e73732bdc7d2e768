package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"relay/internal/domain"
	"relay/internal/logging"
	"relay/internal/services"
	"relay/internal/theme"
)

const refreshInterval = 2 * time.Second

type pane int

const (
	paneClaims pane = iota
	paneSessions
)

// KeyMap holds the monitor's keyboard shortcuts
type KeyMap struct {
	Quit    key.Binding
	Refresh key.Binding
	Release key.Binding
	Switch  key.Binding
}

// DefaultKeyMap returns the default shortcuts
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Refresh: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
		Release: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "release claim")),
		Switch:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	}
}

type refreshMsg struct{}

type dataMsg struct {
	claims   []domain.ContainerClaim
	err      error
	sessions []domain.Session
}

type releasedMsg struct {
	err   error
	group string
}

// Monitor is the live claims/sessions dashboard served over SSH
type Monitor struct {
	claims       *services.Claims
	claimTable   table.Model
	err          error
	focus        pane
	height       int
	keys         KeyMap
	registry     *services.Registry
	releaseForm  *huh.Form
	releaseGroup domain.AffinityGroup
	releaseOK    bool
	sessions     []domain.Session
	sessionTable table.Model
	width        int
}

// NewMonitor creates the dashboard model
func NewMonitor(claims *services.Claims, registry *services.Registry) *Monitor {
	claimCols := []table.Column{
		{Title: "Group", Width: 24},
		{Title: "Container", Width: 20},
		{Title: "Status", Width: 12},
		{Title: "Last activity", Width: 20},
	}
	sessionCols := []table.Column{
		{Title: "Session", Width: 32},
		{Title: "Branch", Width: 20},
		{Title: "Source", Width: 8},
		{Title: "Last activity", Width: 20},
	}

	claimTable := table.New(table.WithColumns(claimCols), table.WithFocused(true))
	sessionTable := table.New(table.WithColumns(sessionCols))

	return &Monitor{
		claims:       claims,
		claimTable:   claimTable,
		keys:         DefaultKeyMap(),
		registry:     registry,
		sessionTable: sessionTable,
	}
}

// Init implements tea.Model
func (m *Monitor) Init() tea.Cmd {
	return tea.Batch(m.load(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m *Monitor) load() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		claims, err := m.claims.List(ctx)
		if err != nil {
			return dataMsg{err: err}
		}
		sessions, err := m.registry.ListSessions(ctx)
		if err != nil {
			return dataMsg{err: err}
		}
		return dataMsg{claims: claims, sessions: sessions}
	}
}

func (m *Monitor) release(group domain.AffinityGroup) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return releasedMsg{group: group.Key(), err: m.claims.Release(ctx, group)}
	}
}

// Update implements tea.Model
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// An open confirm form swallows all input first
	if m.releaseForm != nil {
		form, cmd := m.releaseForm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.releaseForm = f
		}
		if m.releaseForm.State == huh.StateCompleted {
			group := m.releaseGroup
			accepted := m.releaseOK
			m.releaseForm = nil
			if accepted {
				return m, m.release(group)
			}
			return m, nil
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.claimTable.SetHeight(msg.Height/2 - 4)
		m.sessionTable.SetHeight(msg.Height/2 - 4)
		return m, nil

	case refreshMsg:
		return m, tea.Batch(m.load(), tick())

	case dataMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.sessions = msg.sessions
		m.setClaimRows(msg.claims)
		m.setSessionRows(msg.sessions)
		return m, nil

	case releasedMsg:
		if msg.err != nil {
			m.err = msg.err
			logging.Logger.Error("Release from monitor failed",
				"group", msg.group,
				"error", msg.err)
		}
		return m, m.load()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.Switch):
			if m.focus == paneClaims {
				m.focus = paneSessions
				m.claimTable.Blur()
				m.sessionTable.Focus()
			} else {
				m.focus = paneClaims
				m.sessionTable.Blur()
				m.claimTable.Focus()
			}
			return m, nil
		case key.Matches(msg, m.keys.Release):
			if m.focus != paneClaims {
				return m, nil
			}
			row := m.claimTable.SelectedRow()
			if row == nil {
				return m, nil
			}
			group, ok := domain.ParseAffinityGroup(row[0])
			if !ok {
				return m, nil
			}
			m.releaseGroup = group
			m.releaseOK = false
			m.releaseForm = huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Release claim for %s?", group.Key())).
						Description("The container returns to the warm pool.").
						Value(&m.releaseOK),
				),
			)
			return m, m.releaseForm.Init()
		}
	}

	var cmd tea.Cmd
	if m.focus == paneClaims {
		m.claimTable, cmd = m.claimTable.Update(msg)
	} else {
		m.sessionTable, cmd = m.sessionTable.Update(msg)
	}
	return m, cmd
}

func (m *Monitor) setClaimRows(claims []domain.ContainerClaim) {
	rows := make([]table.Row, len(claims))
	for i, c := range claims {
		rows[i] = table.Row{
			c.Group.Key(),
			c.ContainerID,
			string(c.Status),
			c.LastActivity.Local().Format("2006-01-02 15:04:05"),
		}
	}
	m.claimTable.SetRows(rows)
}

func (m *Monitor) setSessionRows(sessions []domain.Session) {
	rows := make([]table.Row, len(sessions))
	for i, s := range sessions {
		rows[i] = table.Row{
			s.SessionID,
			s.BranchName,
			string(s.Source),
			s.LastActivity.Local().Format("2006-01-02 15:04:05"),
		}
	}
	m.sessionTable.SetRows(rows)
}

// View implements tea.Model
func (m *Monitor) View() string {
	if m.releaseForm != nil {
		return m.releaseForm.View()
	}

	title := theme.TitleStyle.Render("relay") + " " + theme.SubtitleStyle.Render("container claims & sessions")

	var errLine string
	if m.err != nil {
		errLine = theme.ErrorStyle.Render(m.err.Error())
	}

	claims := theme.NormalStyle.Render("Claims") + "\n" + m.claimTable.View()
	sessions := theme.NormalStyle.Render("Sessions") + "\n" + m.sessionTable.View()
	help := theme.HelpStyle.Render("tab: switch pane • r: release claim • R: refresh • q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, errLine, claims, sessions, help)
}
