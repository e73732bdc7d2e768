package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"relay/internal/domain"
)

// QueuesCmd manages affinity queue pairs
type QueuesCmd struct {
	Delete QueuesDeleteCmd `cmd:"delete" help:"Delete the queue pair of an affinity group"`
	List   QueuesListCmd   `cmd:"list" help:"List provisioned queue pairs" default:"1"`
}

// QueuesListCmd lists queue pairs
type QueuesListCmd struct{}

// Run executes the queues list command
func (l *QueuesListCmd) Run(cli *CLI) error {
	pairs, err := cli.Container.Topology.ListQueues(context.Background())
	if err != nil {
		return err
	}

	if len(pairs) == 0 {
		fmt.Println("No queue pairs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tINPUT\tOUTPUT\tCREATED")
	for _, p := range pairs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			p.Group.Key(),
			p.InputQueue,
			p.OutputQueue,
			p.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

// QueuesDeleteCmd deletes one queue pair
type QueuesDeleteCmd struct {
	Group string `arg:"" help:"Affinity group key (project/user)"`
}

// Run executes the queues delete command
func (d *QueuesDeleteCmd) Run(cli *CLI) error {
	group, ok := domain.ParseAffinityGroup(d.Group)
	if !ok {
		return fmt.Errorf("invalid affinity group %q, expected project/user", d.Group)
	}

	if err := cli.Container.Topology.DeleteQueues(context.Background(), group); err != nil {
		return err
	}
	fmt.Printf("Deleted queue pair for %s\n", group.Key())
	return nil
}
