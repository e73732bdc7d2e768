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

// errClaimRaced signals that a concurrent caller created the claim first;
// the transaction rolls back and the winner's record is returned instead.
var errClaimRaced = errors.New("claim raced")

// GetClaim implements ports.ClaimReader.GetClaim
func (s *SQLiteStore) GetClaim(ctx context.Context, group domain.AffinityGroup) (*domain.ContainerClaim, error) {
	var model ClaimModel

	err := withRetry(func() error {
		return s.db.WithContext(ctx).Where("group_key = ?", group.Key()).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClaimNotFound
		}
		return nil, err
	}

	claim := claimModelToDomain(model)
	return &claim, nil
}

// ListClaims implements ports.ClaimReader.ListClaims
func (s *SQLiteStore) ListClaims(ctx context.Context) ([]domain.ContainerClaim, error) {
	var models []ClaimModel

	err := withRetry(func() error {
		return s.db.WithContext(ctx).Order("last_activity DESC").Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	claims := make([]domain.ContainerClaim, len(models))
	for i, m := range models {
		claims[i] = claimModelToDomain(m)
	}
	return claims, nil
}

// TryClaim implements ports.ClaimWriter.TryClaim. The claim row is keyed by
// the group, so the insert-or-nothing on that key is the single conditional
// write that makes claiming mutually exclusive. Container assignment happens
// in the same transaction and rolls back when the insert loses.
func (s *SQLiteStore) TryClaim(ctx context.Context, group domain.AffinityGroup) (*domain.ContainerClaim, bool, error) {
	var model ClaimModel
	var created bool

	err := withRetry(func() error {
		created = false
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// Fast path: group already owned
			err := tx.Where("group_key = ?", group.Key()).First(&model).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			// Pick the longest-warm container
			var container ContainerModel
			err = tx.Where("status = ?", string(domain.ClaimWarm)).
				Order("registered_at ASC").
				First(&container).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNoWarmContainer
				}
				return err
			}

			// Take the container out of the pool, guarded on it still
			// being warm
			res := tx.Model(&ContainerModel{}).
				Where("container_id = ? AND status = ?", container.ContainerID, string(domain.ClaimWarm)).
				Update("status", string(domain.ClaimClaimed))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errClaimRaced
			}

			now := time.Now().UTC()
			model = ClaimModel{
				ClaimedAt:    now,
				ContainerID:  container.ContainerID,
				GroupKey:     group.Key(),
				LastActivity: now,
				Status:       string(domain.ClaimClaimed),
				Version:      1,
			}
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
			if res.Error != nil {
				return fmt.Errorf("failed to create claim: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				// Concurrent claim won; roll back the container update
				return errClaimRaced
			}

			created = true
			return nil
		})
	}, 3)

	if errors.Is(err, errClaimRaced) {
		// Normal outcome: someone else owns the group now
		existing, getErr := s.GetClaim(ctx, group)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	claim := claimModelToDomain(model)
	return &claim, created, nil
}

// TransitionClaim implements ports.ClaimWriter.TransitionClaim. The update
// is conditional on the version observed by the caller; a lost race returns
// ErrStaleWrite so the caller re-reads instead of clobbering newer state.
func (s *SQLiteStore) TransitionClaim(ctx context.Context, group domain.AffinityGroup, fromVersion int64, status domain.ClaimStatus, touch bool) error {
	return withRetry(func() error {
		updates := map[string]any{
			"status":  string(status),
			"version": fromVersion + 1,
		}
		if touch {
			updates["last_activity"] = time.Now().UTC()
		}

		result := s.db.WithContext(ctx).
			Model(&ClaimModel{}).
			Where("group_key = ? AND version = ?", group.Key(), fromVersion).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to transition claim: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			s.db.WithContext(ctx).Model(&ClaimModel{}).
				Where("group_key = ?", group.Key()).
				Count(&count)
			if count == 0 {
				return domain.ErrClaimNotFound
			}
			return domain.ErrStaleWrite
		}
		return nil
	}, 3)
}

// ReleaseClaim implements ports.ClaimWriter.ReleaseClaim. Deleting the claim
// row and returning the container to the warm pool happen in one
// transaction, both guarded by the caller's observed version.
func (s *SQLiteStore) ReleaseClaim(ctx context.Context, group domain.AffinityGroup, fromVersion int64) error {
	return withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var model ClaimModel
			if err := tx.Where("group_key = ?", group.Key()).First(&model).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrClaimNotFound
				}
				return err
			}

			res := tx.Where("group_key = ? AND version = ?", group.Key(), fromVersion).
				Delete(&ClaimModel{})
			if res.Error != nil {
				return fmt.Errorf("failed to release claim: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return domain.ErrStaleWrite
			}

			return tx.Model(&ContainerModel{}).
				Where("container_id = ?", model.ContainerID).
				Update("status", string(domain.ClaimWarm)).Error
		})
	}, 3)
}

// RegisterContainer implements ports.ContainerPool.RegisterContainer
func (s *SQLiteStore) RegisterContainer(ctx context.Context, containerID string) error {
	return withRetry(func() error {
		model := ContainerModel{
			ContainerID:  containerID,
			RegisteredAt: time.Now().UTC(),
			Status:       string(domain.ClaimWarm),
		}
		result := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model)
		if result.Error != nil {
			return fmt.Errorf("failed to register container: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrContainerExists
		}
		return nil
	}, 3)
}

// ListContainers implements ports.ContainerPool.ListContainers
func (s *SQLiteStore) ListContainers(ctx context.Context) ([]domain.Container, error) {
	var models []ContainerModel

	err := withRetry(func() error {
		return s.db.WithContext(ctx).Order("registered_at ASC").Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	containers := make([]domain.Container, len(models))
	for i, m := range models {
		containers[i] = containerModelToDomain(m)
	}
	return containers, nil
}
