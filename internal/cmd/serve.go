package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"relay/internal/config"
	"relay/internal/logging"
	"relay/internal/runlock"
	"relay/internal/server"
)

// ServeCmd runs the SSH monitor and the background sweeper
type ServeCmd struct {
	Host string `help:"Host to bind the SSH monitor to" default:""`
	Port string `help:"Port to bind the SSH monitor to" default:""`
}

// Run executes the serve command
func (s *ServeCmd) Run(cli *CLI) error {
	settings := cli.Settings()

	host := s.Host
	if host == "" {
		host = settings.ResolvedSSHHost()
	}
	port := s.Port
	if port == "" {
		port = settings.ResolvedSSHPort()
	}

	// One serving process per relay home
	lock, err := runlock.Acquire(config.GetRunLockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	srv, err := server.NewServer(host, port, settings.ResolvedDBPath())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start(ctx)
	})

	g.Go(func() error {
		err := cli.Container.Sweeper.Run(ctx, settings.SweepInterval())
		if err == context.Canceled {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}

	logging.Logger.Info("Serve stopped")
	return nil
}
