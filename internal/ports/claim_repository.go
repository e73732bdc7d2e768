package ports

import (
	"context"

	"relay/internal/domain"
)

// ClaimReader reads claim records
type ClaimReader interface {
	GetClaim(ctx context.Context, group domain.AffinityGroup) (*domain.ContainerClaim, error)
	ListClaims(ctx context.Context) ([]domain.ContainerClaim, error)
}

// ClaimWriter mutates claim records through conditional writes only
type ClaimWriter interface {
	// TryClaim atomically assigns a warm container to the group. It is a
	// create-if-absent on the group key: when a claim already exists the
	// existing record is returned and created is false. ErrNoWarmContainer
	// is returned when the pool is empty and no claim exists.
	TryClaim(ctx context.Context, group domain.AffinityGroup) (claim *domain.ContainerClaim, created bool, err error)

	// TransitionClaim moves the claim from its current version to the given
	// status, refreshing lastActivity when touch is set. The write succeeds
	// only if the stored version still matches fromVersion; otherwise
	// ErrStaleWrite is returned and the caller re-reads.
	TransitionClaim(ctx context.Context, group domain.AffinityGroup, fromVersion int64, status domain.ClaimStatus, touch bool) error

	// ReleaseClaim deletes the claim record and returns its container to the
	// warm pool, guarded by the record version like TransitionClaim.
	ReleaseClaim(ctx context.Context, group domain.AffinityGroup, fromVersion int64) error
}

// ContainerPool manages the registry of worker containers
type ContainerPool interface {
	RegisterContainer(ctx context.Context, containerID string) error
	ListContainers(ctx context.Context) ([]domain.Container, error)
}

// ClaimRepository is the composite interface
type ClaimRepository interface {
	ClaimReader
	ClaimWriter
	ContainerPool
}
