package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"relay/internal/domain"
)

// SessionsCmd manages sessions
type SessionsCmd struct {
	List SessionsListCmd `cmd:"list" help:"List all sessions" default:"1"`
	View SessionsViewCmd `cmd:"view" help:"View a specific session"`
}

// SessionsListCmd lists all sessions
type SessionsListCmd struct {
	Project string `help:"Only sessions of this project"`
	User    string `help:"Only sessions of this user (requires --project)"`
}

// Run executes the sessions list command
func (l *SessionsListCmd) Run(cli *CLI) error {
	ctx := context.Background()

	var sessions []domain.Session
	var err error
	if l.Project != "" && l.User != "" {
		group := domain.AffinityGroup{ProjectID: l.Project, UserID: l.User}
		sessions, err = cli.Container.Registry.ListByGroup(ctx, group)
	} else {
		sessions, err = cli.Container.Registry.ListSessions(ctx)
	}
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tBRANCH\tSOURCE\tLAST ACTIVITY")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			s.SessionID,
			s.BranchName,
			s.Source,
			s.LastActivity.Local().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

// SessionsViewCmd shows one session
type SessionsViewCmd struct {
	SessionID string `arg:"" help:"Session identifier"`
}

// Run executes the sessions view command
func (v *SessionsViewCmd) Run(cli *CLI) error {
	session, err := cli.Container.Registry.Get(context.Background(), v.SessionID)
	if err != nil {
		return err
	}

	fmt.Printf("Session:       %s\n", session.SessionID)
	fmt.Printf("Client:        %s\n", session.ClientID)
	fmt.Printf("Project:       %s\n", session.ProjectID)
	fmt.Printf("User:          %s\n", session.UserID)
	fmt.Printf("Thread:        %s\n", session.ThreadID)
	fmt.Printf("Branch:        %s\n", session.BranchName)
	fmt.Printf("Source:        %s\n", session.Source)
	fmt.Printf("Created:       %s\n", session.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Last activity: %s\n", session.LastActivity.Local().Format("2006-01-02 15:04:05"))
	return nil
}
