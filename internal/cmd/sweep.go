package cmd

import (
	"context"
	"fmt"
)

// SweepCmd runs one idle/reclaim pass over all claims
type SweepCmd struct{}

// Run executes the sweep command
func (s *SweepCmd) Run(cli *CLI) error {
	if err := cli.Container.Sweeper.SweepOnce(context.Background()); err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	fmt.Println("Sweep complete")
	return nil
}
