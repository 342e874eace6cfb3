package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"cashbook/internal/amqp"
	"cashbook/internal/core"
	"cashbook/internal/ports"
)

// EventPublisher ships record events to the sync queue.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, ev *amqp.RecordEvent) error
	Close() error
}

// RecordService orchestrates record writes across the store and AMQP.
type RecordService struct {
	store     ports.RecordStore
	publisher EventPublisher
}

// NewRecordService wires a store with an optional publisher (nil disables sync).
func NewRecordService(store ports.RecordStore, publisher EventPublisher) *RecordService {
	return &RecordService{
		store:     store,
		publisher: publisher,
	}
}

// Create validates and saves a record, then announces it.
func (s *RecordService) Create(ctx context.Context, r core.Record) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, fmt.Errorf("validate record: %w", err)
	}

	// Save locally first; the mirror is best effort.
	id, err := s.store.Insert(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("save record: %w", err)
	}

	if err := s.publish(ctx, amqp.NewCreatedEvent(id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"type", amqp.RecordCreated, "id", id, "error", err)
	}

	return id, nil
}

// Delete removes a record and returns how many were removed (0 or 1).
func (s *RecordService) Delete(ctx context.Context, id int64) (int64, error) {
	existing, err := s.store.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load record: %w", err)
	}

	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete record: %w", err)
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.publish(ctx, amqp.NewDeletedEvent(existing)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"type", amqp.RecordDeleted, "id", id, "error", err)
	}

	return removed, nil
}

// Snapshot returns every stored record.
func (s *RecordService) Snapshot(ctx context.Context) ([]core.Record, error) {
	records, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	return records, nil
}

func (s *RecordService) publish(ctx context.Context, ev *amqp.RecordEvent) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping record event", "type", ev.Type)
		return nil
	}
	return s.publisher.PublishRecordEvent(ctx, ev)
}

// Close closes both storage and AMQP connections
func (s *RecordService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %w", errors.Join(errs...))
	}

	return nil
}
