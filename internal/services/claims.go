package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"relay/internal/domain"
	"relay/internal/logging"
	"relay/internal/ports"
)

// staleRetries bounds how often a version-guarded transition is replayed
// after losing to a concurrent writer
const staleRetries = 3

// Claims coordinates exclusive container ownership per affinity group
type Claims struct {
	claims ports.ClaimRepository
}

// NewClaims creates a new Claims coordinator
func NewClaims(claims ports.ClaimRepository) *Claims {
	return &Claims{claims: claims}
}

// EnsureClaim guarantees the group owns a container and returns the claim.
// Losing the claim race is a normal outcome: the winner's claim is returned
// and the caller proceeds with its containerId.
func (c *Claims) EnsureClaim(ctx context.Context, group domain.AffinityGroup) (*domain.ContainerClaim, error) {
	claim, created, err := c.claims.TryClaim(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to claim container for %s: %w", group.Key(), err)
	}

	if created {
		logging.Logger.Info("Container claimed",
			"group", group.Key(),
			"container_id", claim.ContainerID)
	} else {
		logging.Logger.Debug("Claim already held",
			"group", group.Key(),
			"container_id", claim.ContainerID)
	}
	return claim, nil
}

// MarkActive transitions the group's claim to processing and refreshes its
// activity stamp. Called on every command dispatch.
func (c *Claims) MarkActive(ctx context.Context, group domain.AffinityGroup) error {
	return c.transition(ctx, group, domain.ClaimProcessing, true, func(status domain.ClaimStatus) bool {
		return status == domain.ClaimClaimed || status == domain.ClaimProcessing || status == domain.ClaimIdle
	})
}

// MarkIdle transitions processing to idle. Driven by the sweeper, never by
// the claim holder.
func (c *Claims) MarkIdle(ctx context.Context, group domain.AffinityGroup) error {
	return c.transition(ctx, group, domain.ClaimIdle, false, func(status domain.ClaimStatus) bool {
		return status == domain.ClaimProcessing
	})
}

// MarkIdleIfQuietSince moves processing to idle only while the claim's last
// activity predates cutoff. Re-reading on a stale write re-evaluates the
// predicate, so a markActive landing first cancels the idling.
func (c *Claims) MarkIdleIfQuietSince(ctx context.Context, group domain.AffinityGroup, cutoff time.Time) error {
	for attempt := 0; attempt < staleRetries; attempt++ {
		claim, err := c.claims.GetClaim(ctx, group)
		if err != nil {
			if errors.Is(err, domain.ErrClaimNotFound) {
				return nil
			}
			return err
		}
		if claim.Status != domain.ClaimProcessing || !claim.LastActivity.Before(cutoff) {
			return nil
		}

		err = c.claims.TransitionClaim(ctx, group, claim.Version, domain.ClaimIdle, false)
		if err == nil {
			logging.Logger.Info("Claim idled",
				"group", group.Key(),
				"container_id", claim.ContainerID)
			return nil
		}
		if errors.Is(err, domain.ErrStaleWrite) {
			continue
		}
		if errors.Is(err, domain.ErrClaimNotFound) {
			return nil
		}
		return err
	}
	return domain.ErrStaleWrite
}

// ReleaseIfIdleSince reclaims an idle claim whose last activity predates
// cutoff. Same re-read discipline as MarkIdleIfQuietSince: an in-flight
// markActive that wins the version race keeps the claim alive.
func (c *Claims) ReleaseIfIdleSince(ctx context.Context, group domain.AffinityGroup, cutoff time.Time) error {
	for attempt := 0; attempt < staleRetries; attempt++ {
		claim, err := c.claims.GetClaim(ctx, group)
		if err != nil {
			if errors.Is(err, domain.ErrClaimNotFound) {
				return nil
			}
			return err
		}
		if claim.Status != domain.ClaimIdle || !claim.LastActivity.Before(cutoff) {
			return nil
		}

		err = c.claims.ReleaseClaim(ctx, group, claim.Version)
		if err == nil {
			logging.Logger.Info("Claim reclaimed",
				"group", group.Key(),
				"container_id", claim.ContainerID)
			return nil
		}
		if errors.Is(err, domain.ErrStaleWrite) {
			continue
		}
		if errors.Is(err, domain.ErrClaimNotFound) {
			return nil
		}
		return err
	}
	return domain.ErrStaleWrite
}

// transition re-reads and replays a version-guarded status update until it
// wins or the precondition no longer holds
func (c *Claims) transition(ctx context.Context, group domain.AffinityGroup, to domain.ClaimStatus, touch bool, allowed func(domain.ClaimStatus) bool) error {
	for attempt := 0; attempt < staleRetries; attempt++ {
		claim, err := c.claims.GetClaim(ctx, group)
		if err != nil {
			return err
		}
		if !allowed(claim.Status) {
			logging.Logger.Debug("Claim transition skipped",
				"group", group.Key(),
				"from", string(claim.Status),
				"to", string(to))
			return nil
		}

		err = c.claims.TransitionClaim(ctx, group, claim.Version, to, touch)
		if err == nil {
			logging.Logger.Debug("Claim transitioned",
				"group", group.Key(),
				"from", string(claim.Status),
				"to", string(to))
			return nil
		}
		if errors.Is(err, domain.ErrStaleWrite) {
			continue
		}
		return err
	}
	return domain.ErrStaleWrite
}

// Release returns the group's container to the warm pool and clears the
// claim record. The version guard makes a release racing an in-flight
// MarkActive lose cleanly: whichever write lands first wins and the loser
// re-reads.
func (c *Claims) Release(ctx context.Context, group domain.AffinityGroup) error {
	for attempt := 0; attempt < staleRetries; attempt++ {
		claim, err := c.claims.GetClaim(ctx, group)
		if err != nil {
			if errors.Is(err, domain.ErrClaimNotFound) {
				return nil
			}
			return err
		}

		err = c.claims.ReleaseClaim(ctx, group, claim.Version)
		if err == nil {
			logging.Logger.Info("Claim released",
				"group", group.Key(),
				"container_id", claim.ContainerID)
			return nil
		}
		if errors.Is(err, domain.ErrStaleWrite) {
			// The claim moved under us (e.g. a markActive landed first);
			// re-read and decide again
			continue
		}
		if errors.Is(err, domain.ErrClaimNotFound) {
			return nil
		}
		return err
	}
	return domain.ErrStaleWrite
}

// Get returns the current claim for a group
func (c *Claims) Get(ctx context.Context, group domain.AffinityGroup) (*domain.ContainerClaim, error) {
	return c.claims.GetClaim(ctx, group)
}

// List returns every live claim
func (c *Claims) List(ctx context.Context) ([]domain.ContainerClaim, error) {
	return c.claims.ListClaims(ctx)
}

// RegisterContainer adds a warm container to the pool
func (c *Claims) RegisterContainer(ctx context.Context, containerID string) error {
	if err := c.claims.RegisterContainer(ctx, containerID); err != nil {
		return err
	}
	logging.Logger.Info("Container registered", "container_id", containerID)
	return nil
}

// ListContainers returns the container pool
func (c *Claims) ListContainers(ctx context.Context) ([]domain.Container, error) {
	return c.claims.ListContainers(ctx)
}
