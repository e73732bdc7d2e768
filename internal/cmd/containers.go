package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
)

// ContainersCmd manages the warm container pool
type ContainersCmd struct {
	List     ContainersListCmd     `cmd:"list" help:"List registered containers" default:"1"`
	Register ContainersRegisterCmd `cmd:"register" help:"Register a warm container with the pool"`
}

// ContainersListCmd lists registered containers
type ContainersListCmd struct{}

// Run executes the containers list command
func (l *ContainersListCmd) Run(cli *CLI) error {
	containers, err := cli.Container.Claims.ListContainers(context.Background())
	if err != nil {
		return err
	}

	if len(containers) == 0 {
		fmt.Println("No containers")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CONTAINER\tSTATUS\tREGISTERED")
	for _, c := range containers {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			c.ContainerID,
			c.Status,
			c.RegisteredAt.Local().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

// ContainersRegisterCmd adds a warm container
type ContainersRegisterCmd struct {
	ID string `help:"Container identifier (generated when omitted)"`
}

// Run executes the containers register command
func (r *ContainersRegisterCmd) Run(cli *CLI) error {
	id := r.ID
	if id == "" {
		id = "ctr-" + uuid.New().String()[:8]
	}

	if err := cli.Container.Claims.RegisterContainer(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("Registered container %s\n", id)
	return nil
}
