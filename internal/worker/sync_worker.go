package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cashbook/internal/amqp"
	"cashbook/internal/core"
	"cashbook/internal/ports"
)

// SyncWorker mirrors record events from AMQP into the spreadsheet.
type SyncWorker struct {
	store     ports.RecordGetter
	tracker   ports.SyncTracker
	mirror    ports.RecordMirror
	batchSize int
}

// NewSyncWorker builds a worker. tracker may be nil when the store does not
// keep sync state.
func NewSyncWorker(store ports.RecordGetter, tracker ports.SyncTracker, mirror ports.RecordMirror, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		store:     store,
		tracker:   tracker,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleEvent processes a single record event. Returning an error requeues it.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.RecordEvent) error {
	switch ev.Type {
	case amqp.RecordCreated:
		return w.handleCreated(ctx, ev.ID)
	case amqp.RecordDeleted:
		return w.handleDeleted(ctx, ev.ID)
	}
	return fmt.Errorf("%w: type %q", amqp.ErrInvalidEvent, ev.Type)
}

func (w *SyncWorker) handleCreated(ctx context.Context, id int64) error {
	rec, err := w.store.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before we got to it; the delete event cleans up.
		slog.InfoContext(ctx, "Record no longer exists, skipping sync", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	return w.syncRecord(ctx, rec)
}

func (w *SyncWorker) handleDeleted(ctx context.Context, id int64) error {
	if err := w.mirror.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("delete record from sheets: %w", err)
	}
	slog.InfoContext(ctx, "Successfully deleted record from mirror", "id", id)
	return nil
}

func (w *SyncWorker) syncRecord(ctx context.Context, rec core.Record) error {
	if err := w.mirror.AppendRecord(ctx, rec); err != nil {
		if w.tracker != nil {
			if markErr := w.tracker.MarkSyncError(ctx, rec.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", rec.ID, "error", markErr)
			}
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if w.tracker != nil {
		if err := w.tracker.MarkSynced(ctx, rec.ID); err != nil {
			// The row is written; only the bookkeeping failed.
			slog.ErrorContext(ctx, "Failed to mark as synced", "id", rec.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Successfully synced record",
		"id", rec.ID,
		"kind", rec.Kind,
		"amount", rec.Amount.String())
	return nil
}

// StartupSyncCheck mirrors records that never reached the sheet, e.g. when
// messages were lost while the worker was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	if w.tracker == nil {
		return nil
	}

	pending, err := w.tracker.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending records for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending records on startup, processing...", "count", len(pending))

	successCount, errorCount := 0, 0
	for _, id := range pending {
		if err := w.handleCreated(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record during startup", "id", id, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}
