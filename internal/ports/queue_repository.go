package ports

import (
	"context"

	"relay/internal/domain"
)

// QueuePairRepository tracks which affinity groups have provisioned queues
type QueuePairRepository interface {
	// EnsureQueuePair records the pair for the group, creating the backing
	// queues when absent. Idempotent: an existing pair is returned as-is.
	EnsureQueuePair(ctx context.Context, group domain.AffinityGroup) (*domain.QueuePair, error)

	GetQueuePair(ctx context.Context, group domain.AffinityGroup) (*domain.QueuePair, error)
	ListQueuePairs(ctx context.Context) ([]domain.QueuePair, error)

	// DeleteQueuePair removes the pair and its backing queues. It must fail
	// with ErrQueueBusy while a non-warm claim exists for the group.
	DeleteQueuePair(ctx context.Context, group domain.AffinityGroup) error
}
