package domain

import (
	"fmt"
	"time"
)

// Session is an editing session bound to one conversation thread of one user
// on one project (domain entity). SessionID and BranchName are pure functions
// of the identity key and never change once created.
type Session struct {
	BranchName   string
	ClientID     string
	CreatedAt    time.Time
	LastActivity time.Time
	ProjectID    string
	SessionID    string
	Source       Channel
	ThreadID     string
	UserID       string
}

// DeriveSessionID builds the deterministic session identifier
func DeriveSessionID(clientID, projectID, threadID string) string {
	return fmt.Sprintf("%s-%s-%s", clientID, projectID, threadID)
}

// DeriveBranchName builds the deterministic git branch for a thread
func DeriveBranchName(threadID string) string {
	return "thread-" + threadID
}

// NewSession creates a session for a thread seen for the first time
func NewSession(clientID, projectID, userID, threadID string, source Channel, now time.Time) Session {
	return Session{
		BranchName:   DeriveBranchName(threadID),
		ClientID:     clientID,
		CreatedAt:    now,
		LastActivity: now,
		ProjectID:    projectID,
		SessionID:    DeriveSessionID(clientID, projectID, threadID),
		Source:       source,
		ThreadID:     threadID,
		UserID:       userID,
	}
}

// Group returns the affinity group the session belongs to
func (s Session) Group() AffinityGroup {
	return AffinityGroup{ProjectID: s.ProjectID, UserID: s.UserID}
}
