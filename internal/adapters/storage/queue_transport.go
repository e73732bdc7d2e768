package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"relay/internal/domain"
	"relay/internal/ports"
)

// Send implements ports.QueueTransport.Send. A single insert, atomic from
// the queue's perspective: an abandoned caller leaves no partial state.
func (s *SQLiteStore) Send(ctx context.Context, queue string, payload []byte) error {
	return withRetry(func() error {
		model := QueueMessageModel{
			Payload: payload,
			Queue:   queue,
			Receipt: uuid.New().String(),
		}
		if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
			return fmt.Errorf("failed to enqueue message: %w", err)
		}
		return nil
	}, 3)
}

// Receive implements ports.QueueTransport.Receive. Picked messages are
// stamped in flight inside the selecting transaction; an unacked message is
// redelivered once the stamp expires, which is where at-least-once comes
// from.
func (s *SQLiteStore) Receive(ctx context.Context, queue string, max int) ([]ports.QueueMessage, error) {
	if max <= 0 {
		max = 1
	}

	var picked []QueueMessageModel
	err := withRetry(func() error {
		picked = picked[:0]
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			now := time.Now().UTC()
			if err := tx.Where("queue = ? AND (in_flight_until IS NULL OR in_flight_until < ?)", queue, now).
				Order("id ASC").
				Limit(max).
				Find(&picked).Error; err != nil {
				return err
			}
			if len(picked) == 0 {
				return nil
			}

			until := now.Add(redeliveryTimeout)
			ids := make([]uint, len(picked))
			for i, m := range picked {
				ids[i] = m.ID
			}
			return tx.Model(&QueueMessageModel{}).
				Where("id IN ?", ids).
				Update("in_flight_until", until).Error
		})
	}, 3)
	if err != nil {
		return nil, err
	}

	messages := make([]ports.QueueMessage, len(picked))
	for i, m := range picked {
		messages[i] = ports.QueueMessage{
			Payload: m.Payload,
			Receipt: m.Receipt,
		}
	}
	return messages, nil
}

// Ack implements ports.QueueTransport.Ack
func (s *SQLiteStore) Ack(ctx context.Context, receipt string) error {
	return withRetry(func() error {
		result := s.db.WithContext(ctx).
			Where("receipt = ?", receipt).
			Delete(&QueueMessageModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to ack message: %w", result.Error)
		}
		return nil
	}, 3)
}

// PutResponse implements ports.ResponseStore.PutResponse. Duplicate
// deliveries of the same command id overwrite idempotently.
func (s *SQLiteStore) PutResponse(ctx context.Context, commandID string, payload []byte) error {
	return withRetry(func() error {
		model := ResponseModel{
			CommandID: commandID,
			Payload:   payload,
		}
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "command_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
			}).
			Create(&model).Error
		if err != nil {
			return fmt.Errorf("failed to store response: %w", err)
		}
		return nil
	}, 3)
}

// GetResponse implements ports.ResponseStore.GetResponse
func (s *SQLiteStore) GetResponse(ctx context.Context, commandID string) ([]byte, error) {
	var model ResponseModel

	err := withRetry(func() error {
		return s.db.WithContext(ctx).Where("command_id = ?", commandID).First(&model).Error
	}, 3)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrResponseNotFound
		}
		return nil, err
	}

	return model.Payload, nil
}
