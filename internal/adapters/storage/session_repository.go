package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"relay/internal/domain"
)

// Get implements ports.SessionReader.Get
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	var model SessionModel

	err := withRetry(func() error {
		return s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	session := sessionModelToDomain(model)
	return &session, nil
}

// List implements ports.SessionReader.List
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Session, error) {
	var models []SessionModel

	err := withRetry(func() error {
		return s.db.WithContext(ctx).Order("last_activity DESC").Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	sessions := make([]domain.Session, len(models))
	for i, m := range models {
		sessions[i] = sessionModelToDomain(m)
	}
	return sessions, nil
}

// ListByGroup implements ports.SessionReader.ListByGroup
func (s *SQLiteStore) ListByGroup(ctx context.Context, group domain.AffinityGroup) ([]domain.Session, error) {
	var models []SessionModel

	err := withRetry(func() error {
		return s.db.WithContext(ctx).
			Where("project_id = ? AND user_id = ?", group.ProjectID, group.UserID).
			Order("last_activity DESC").
			Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	sessions := make([]domain.Session, len(models))
	for i, m := range models {
		sessions[i] = sessionModelToDomain(m)
	}
	return sessions, nil
}

// CreateIfAbsent implements ports.SessionWriter.CreateIfAbsent. The insert
// does nothing on a conflicting identity key, so the first writer wins and
// every other caller observes the winner's record.
func (s *SQLiteStore) CreateIfAbsent(ctx context.Context, session domain.Session) (*domain.Session, bool, error) {
	model := domainToSessionModel(session)

	var created bool
	err := withRetry(func() error {
		result := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model)
		if result.Error != nil {
			return fmt.Errorf("failed to create session: %w", result.Error)
		}
		created = result.RowsAffected > 0
		return nil
	}, 3)
	if err != nil {
		return nil, false, err
	}

	if created {
		stored := sessionModelToDomain(model)
		return &stored, true, nil
	}

	// Lost the race: return the winner's record
	existing, err := s.Get(ctx, session.SessionID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Touch implements ports.SessionWriter.Touch
func (s *SQLiteStore) Touch(ctx context.Context, sessionID string, source domain.Channel) error {
	return withRetry(func() error {
		result := s.db.WithContext(ctx).
			Model(&SessionModel{}).
			Where("session_id = ?", sessionID).
			Updates(map[string]any{
				"source":        string(source),
				"last_activity": time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to touch session: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrSessionNotFound
		}
		return nil
	}, 3)
}
