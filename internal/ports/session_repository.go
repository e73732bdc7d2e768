package ports

import (
	"context"

	"relay/internal/domain"
)

// SessionReader reads session records
type SessionReader interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	List(ctx context.Context) ([]domain.Session, error)
	ListByGroup(ctx context.Context, group domain.AffinityGroup) ([]domain.Session, error)
}

// SessionWriter creates and touches session records
type SessionWriter interface {
	// CreateIfAbsent inserts the session keyed by its identity key. It
	// returns the stored record and true when this call created it; when a
	// concurrent writer won the race it returns the winner's record and
	// false.
	CreateIfAbsent(ctx context.Context, session domain.Session) (*domain.Session, bool, error)

	// Touch updates source and lastActivity of an existing session
	Touch(ctx context.Context, sessionID string, source domain.Channel) error
}

// SessionRepository is the composite interface
type SessionRepository interface {
	SessionReader
	SessionWriter
}
