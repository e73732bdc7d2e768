package services

import (
	"context"
	"fmt"
	"time"

	"relay/internal/domain"
	"relay/internal/logging"
	"relay/internal/ports"
)

// Registry resolves or creates editing sessions from their identity key
type Registry struct {
	sessions ports.SessionRepository
}

// NewRegistry creates a new Registry
func NewRegistry(sessions ports.SessionRepository) *Registry {
	return &Registry{sessions: sessions}
}

// GetOrCreate looks up the session for (client, project, user, thread),
// creating it on first contact. The derived sessionID and branch name never
// change; repeat calls only refresh source and lastActivity.
func (r *Registry) GetOrCreate(ctx context.Context, clientID, projectID, userID, threadID string, source domain.Channel) (*domain.Session, error) {
	candidate := domain.NewSession(clientID, projectID, userID, threadID, source, time.Now().UTC())

	session, created, err := r.sessions.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	if created {
		logging.Logger.Info("Session created",
			"session_id", session.SessionID,
			"branch", session.BranchName,
			"source", string(source))
		return session, nil
	}

	if err := r.sessions.Touch(ctx, session.SessionID, source); err != nil {
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}

	logging.Logger.Debug("Session reused",
		"session_id", session.SessionID,
		"source", string(source))

	// Reflect the touch in the returned record
	session.Source = source
	session.LastActivity = time.Now().UTC()
	return session, nil
}

// Get returns one session by id
func (r *Registry) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return r.sessions.Get(ctx, sessionID)
}

// ListSessions returns every session, most recently active first
func (r *Registry) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return r.sessions.List(ctx)
}

// ListByGroup returns the sessions of one affinity group
func (r *Registry) ListByGroup(ctx context.Context, group domain.AffinityGroup) ([]domain.Session, error) {
	return r.sessions.ListByGroup(ctx, group)
}
