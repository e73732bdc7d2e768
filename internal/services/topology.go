package services

import (
	"context"
	"errors"
	"fmt"

	"relay/internal/domain"
	"relay/internal/logging"
	"relay/internal/ports"
)

// Topology provisions and tears down the queue pair of an affinity group
type Topology struct {
	pairs ports.QueuePairRepository
}

// NewTopology creates a new Topology
func NewTopology(pairs ports.QueuePairRepository) *Topology {
	return &Topology{pairs: pairs}
}

// EnsureQueues provisions the input/output pair for the group. Idempotent.
func (t *Topology) EnsureQueues(ctx context.Context, group domain.AffinityGroup) (*domain.QueuePair, error) {
	pair, err := t.pairs.EnsureQueuePair(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure queues for %s: %w", group.Key(), err)
	}

	logging.Logger.Debug("Queue pair ready",
		"group", group.Key(),
		"input", pair.InputQueue,
		"output", pair.OutputQueue)
	return pair, nil
}

// DeleteQueues tears down the pair. Refused while the group holds an active
// claim; a missing pair is not an error.
func (t *Topology) DeleteQueues(ctx context.Context, group domain.AffinityGroup) error {
	err := t.pairs.DeleteQueuePair(ctx, group)
	if err != nil {
		if errors.Is(err, domain.ErrQueueNotFound) {
			return nil
		}
		if errors.Is(err, domain.ErrQueueBusy) {
			logging.Logger.Warn("Refusing to delete queues under active claim",
				"group", group.Key())
		}
		return err
	}

	logging.Logger.Info("Queue pair deleted", "group", group.Key())
	return nil
}

// ListQueues returns every provisioned pair
func (t *Topology) ListQueues(ctx context.Context) ([]domain.QueuePair, error) {
	return t.pairs.ListQueuePairs(ctx)
}
