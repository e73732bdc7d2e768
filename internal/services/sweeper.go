package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"relay/internal/domain"
	"relay/internal/logging"
)

// Sweeper is the periodic scan-and-transition pass over claim records.
// Every transition it makes is a version-guarded conditional write, so
// running several sweepers concurrently is safe: the losers of any race
// simply re-read and find nothing left to do.
type Sweeper struct {
	claims       *Claims
	idleAfter    time.Duration
	releaseAfter time.Duration
}

// NewSweeper creates a new Sweeper
func NewSweeper(claims *Claims, idleAfter, releaseAfter time.Duration) *Sweeper {
	return &Sweeper{
		claims:       claims,
		idleAfter:    idleAfter,
		releaseAfter: releaseAfter,
	}
}

// SweepOnce runs one pass: processing claims quiet past the idle threshold
// go idle, idle claims quiet past the release threshold return to warm.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	claims, err := s.claims.List(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	idleCutoff := now.Add(-s.idleAfter)
	releaseCutoff := now.Add(-s.releaseAfter)

	// Groups are independent; fan the transitions out
	g, ctx := errgroup.WithContext(ctx)
	for _, claim := range claims {
		g.Go(func() error {
			switch claim.Status {
			case domain.ClaimProcessing:
				return s.claims.MarkIdleIfQuietSince(ctx, claim.Group, idleCutoff)
			case domain.ClaimIdle:
				return s.claims.ReleaseIfIdleSince(ctx, claim.Group, releaseCutoff)
			default:
				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logging.Logger.Debug("Sweep pass complete", "claims", len(claims))
	return nil
}

// Run sweeps on the given interval until the context is cancelled
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.Logger.Info("Sweeper started",
		"interval", interval.String(),
		"idle_after", s.idleAfter.String(),
		"release_after", s.releaseAfter.String())

	for {
		select {
		case <-ctx.Done():
			logging.Logger.Info("Sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				logging.Logger.Error("Sweep pass failed", "error", err)
			}
		}
	}
}
