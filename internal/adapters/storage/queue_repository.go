package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"relay/internal/domain"
)

// EnsureQueuePair implements ports.QueuePairRepository.EnsureQueuePair.
// Queue names are derived from the group key, so re-provisioning an existing
// group is a no-op returning the stored pair.
func (s *SQLiteStore) EnsureQueuePair(ctx context.Context, group domain.AffinityGroup) (*domain.QueuePair, error) {
	model := QueuePairModel{
		GroupKey:    group.Key(),
		InputQueue:  domain.InputQueueName(group),
		OutputQueue: domain.OutputQueueName(group),
	}

	err := withRetry(func() error {
		result := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model)
		if result.Error != nil {
			return fmt.Errorf("failed to provision queue pair: %w", result.Error)
		}
		return nil
	}, 3)
	if err != nil {
		return nil, err
	}

	return s.GetQueuePair(ctx, group)
}

// GetQueuePair implements ports.QueuePairRepository.GetQueuePair
func (s *SQLiteStore) GetQueuePair(ctx context.Context, group domain.AffinityGroup) (*domain.QueuePair, error) {
	var model QueuePairModel

	err := withRetry(func() error {
		return s.db.WithContext(ctx).Where("group_key = ?", group.Key()).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQueueNotFound
		}
		return nil, err
	}

	pair := queuePairModelToDomain(model)
	return &pair, nil
}

// ListQueuePairs implements ports.QueuePairRepository.ListQueuePairs
func (s *SQLiteStore) ListQueuePairs(ctx context.Context) ([]domain.QueuePair, error) {
	var models []QueuePairModel

	err := withRetry(func() error {
		return s.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error
	}, 3)
	if err != nil {
		return nil, err
	}

	pairs := make([]domain.QueuePair, len(models))
	for i, m := range models {
		pairs[i] = queuePairModelToDomain(m)
	}
	return pairs, nil
}

// DeleteQueuePair implements ports.QueuePairRepository.DeleteQueuePair.
// Queues backing an in-flight claim are never torn down: the delete and the
// claim check run in one transaction so a claim created concurrently keeps
// its queues.
func (s *SQLiteStore) DeleteQueuePair(ctx context.Context, group domain.AffinityGroup) error {
	return withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var claims int64
			if err := tx.Model(&ClaimModel{}).
				Where("group_key = ?", group.Key()).
				Count(&claims).Error; err != nil {
				return err
			}
			if claims > 0 {
				return domain.ErrQueueBusy
			}

			var model QueuePairModel
			if err := tx.Where("group_key = ?", group.Key()).First(&model).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrQueueNotFound
				}
				return err
			}

			// Drop pending messages along with the pair
			if err := tx.Where("queue IN ?", []string{model.InputQueue, model.OutputQueue}).
				Delete(&QueueMessageModel{}).Error; err != nil {
				return err
			}

			return tx.Delete(&model).Error
		})
	}, 3)
}
