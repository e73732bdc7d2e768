package cmd

import (
	"context"
	"errors"
	"fmt"

	"relay/internal/domain"
)

// ResponsesCmd manages worker responses
type ResponsesCmd struct {
	Collect ResponsesCollectCmd `cmd:"collect" help:"Drain a group's output queue into the response store"`
	Get     ResponsesGetCmd     `cmd:"get" help:"Look up the response for a command id"`
}

// ResponsesCollectCmd drains one output queue
type ResponsesCollectCmd struct {
	Group string `arg:"" help:"Affinity group key (project/user)"`
	Max   int    `help:"Maximum responses to collect in one pass" default:"10"`
}

// Run executes the responses collect command
func (c *ResponsesCollectCmd) Run(cli *CLI) error {
	group, ok := domain.ParseAffinityGroup(c.Group)
	if !ok {
		return fmt.Errorf("invalid affinity group %q, expected project/user", c.Group)
	}

	collected, err := cli.Container.Router.CollectResponses(context.Background(), group, c.Max)
	if err != nil {
		return err
	}
	fmt.Printf("Collected %d response(s) for %s\n", collected, group.Key())
	return nil
}

// ResponsesGetCmd looks up one stored response
type ResponsesGetCmd struct {
	CommandID string `arg:"" help:"Command identifier returned by ingest"`
}

// Run executes the responses get command
func (g *ResponsesGetCmd) Run(cli *CLI) error {
	resp, err := cli.Container.Router.Correlate(context.Background(), g.CommandID)
	if err != nil {
		if errors.Is(err, domain.ErrResponseNotFound) {
			fmt.Println("No response yet")
			return nil
		}
		return err
	}

	fmt.Printf("Command:   %s\n", resp.CommandID)
	fmt.Printf("Session:   %s\n", resp.SessionID)
	fmt.Printf("Success:   %t\n", resp.Success)
	if resp.Error != "" {
		fmt.Printf("Error:     %s\n", resp.Error)
	}
	if resp.Result != "" {
		fmt.Printf("Result:    %s\n", resp.Result)
	}
	if !resp.CompletedAt.IsZero() {
		fmt.Printf("Completed: %s\n", resp.CompletedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
