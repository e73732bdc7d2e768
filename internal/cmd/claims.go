package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"relay/internal/domain"
)

// ClaimsCmd manages container claims
type ClaimsCmd struct {
	List    ClaimsListCmd    `cmd:"list" help:"List all claims" default:"1"`
	Release ClaimsReleaseCmd `cmd:"release" help:"Force-release the claim of an affinity group"`
}

// ClaimsListCmd lists all claims
type ClaimsListCmd struct{}

// Run executes the claims list command
func (l *ClaimsListCmd) Run(cli *CLI) error {
	claims, err := cli.Container.Claims.List(context.Background())
	if err != nil {
		return err
	}

	if len(claims) == 0 {
		fmt.Println("No claims")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tCONTAINER\tSTATUS\tCLAIMED\tLAST ACTIVITY")
	for _, c := range claims {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.Group.Key(),
			c.ContainerID,
			c.Status,
			c.ClaimedAt.Local().Format("2006-01-02 15:04:05"),
			c.LastActivity.Local().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

// ClaimsReleaseCmd force-releases one claim
type ClaimsReleaseCmd struct {
	Group string `arg:"" help:"Affinity group key (project/user)"`
}

// Run executes the claims release command
func (r *ClaimsReleaseCmd) Run(cli *CLI) error {
	group, ok := domain.ParseAffinityGroup(r.Group)
	if !ok {
		return fmt.Errorf("invalid affinity group %q, expected project/user", r.Group)
	}

	if err := cli.Container.Claims.Release(context.Background(), group); err != nil {
		return err
	}
	fmt.Printf("Released claim for %s\n", group.Key())
	return nil
}
