package ports

import (
	"context"

	"cashbook/internal/core"
)

// Ports for the record store and its outbound mirrors.
type (
	// RecordWriter stores a record. A zero ID allocates a new one; an existing
	// ID replaces the stored record.
	RecordWriter interface {
		Insert(ctx context.Context, r core.Record) (id int64, err error)
	}

	// RecordLister returns every stored record, most recent first.
	RecordLister interface {
		FetchAll(ctx context.Context) ([]core.Record, error)
	}

	// RecordDeleter removes a record and reports how many rows went away.
	// Deleting a missing id is not an error.
	RecordDeleter interface {
		Delete(ctx context.Context, id int64) (removed int64, err error)
	}

	// RecordGetter loads a single record, returning core.ErrNotFound when absent.
	RecordGetter interface {
		Get(ctx context.Context, id int64) (core.Record, error)
	}

	RecordStore interface {
		RecordWriter
		RecordLister
		RecordDeleter
		RecordGetter
	}

	// SyncTracker records whether a record reached the external mirror.
	SyncTracker interface {
		MarkSynced(ctx context.Context, id int64) error
		MarkSyncError(ctx context.Context, id int64) error
		// PendingSync lists up to limit ids not yet mirrored, oldest first.
		PendingSync(ctx context.Context, limit int) ([]int64, error)
	}

	// RecordMirror keeps an external copy of the ledger, e.g. a spreadsheet.
	RecordMirror interface {
		AppendRecord(ctx context.Context, r core.Record) error
		DeleteRecord(ctx context.Context, id int64) error
	}
)
