package server

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"

	"relay/internal/adapters/storage"
	"relay/internal/logging"
	"relay/internal/services"
	"relay/internal/ui"
)

// monitorModel wraps ui.Monitor to close the per-session store on quit
type monitorModel struct {
	tea.Model
	sessionID string
	startTime time.Time
	store     *storage.SQLiteStore
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.QuitMsg); ok {
		duration := time.Since(m.startTime)

		if err := m.store.Close(); err != nil {
			logging.Logger.Error("Failed to close store for SSH session",
				"error", err,
				"session_id", m.sessionID,
				"duration", duration.String())
		}

		logging.Logger.Info("SSH session ended",
			"session_id", m.sessionID,
			"duration", duration.String())
	}

	model, cmd := m.Model.Update(msg)
	m.Model = model
	return m, cmd
}

// errorModel renders a startup failure and exits
type errorModel struct {
	err error
}

func (e errorModel) Init() tea.Cmd                       { return tea.Quit }
func (e errorModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return e, tea.Quit }
func (e errorModel) View() string                        { return "relay: " + e.err.Error() + "\n" }

// teaHandler creates a monitor model for each SSH session
func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()
	sessionID := fmt.Sprintf("%s@%s", sess.User(), sess.RemoteAddr().String())

	logging.Logger.Info("New SSH session",
		"session_id", sessionID,
		"user", sess.User(),
		"remote_addr", sess.RemoteAddr().String(),
		"term", pty.Term,
		"window", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

	// Each session gets its own connection; WAL keeps them concurrent
	store, err := storage.NewSQLiteStore(s.dbPath)
	if err != nil {
		logging.Logger.Error("Failed to open database for SSH session",
			"error", err,
			"session_id", sessionID)
		return errorModel{err}, nil
	}

	monitor := ui.NewMonitor(services.NewClaims(store), services.NewRegistry(store))

	model := &monitorModel{
		Model:     monitor,
		sessionID: sessionID,
		startTime: time.Now(),
		store:     store,
	}

	return model, []tea.ProgramOption{tea.WithAltScreen()}
}
