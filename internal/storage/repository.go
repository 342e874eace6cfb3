package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"cashbook/internal/core"
	"cashbook/internal/ports"

	_ "modernc.org/sqlite"
)

const recordColumns = `id, amount, title, kind, category, occurred_at_ms, utc_offset_s`

var (
	_ ports.RecordStore = (*SQLiteRepository)(nil)
	_ ports.SyncTracker = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert implements ports.RecordWriter. A record with an ID replaces the
// stored row with that ID.
func (r *SQLiteRepository) Insert(ctx context.Context, rec core.Record) (int64, error) {
	_, offset := rec.OccurredAt.Zone()
	args := []any{
		rec.Amount.String(),
		rec.Title,
		string(rec.Kind),
		rec.Category,
		rec.OccurredAt.UnixMilli(),
		offset,
	}

	var (
		res sql.Result
		err error
	)
	if rec.ID == 0 {
		res, err = r.db.ExecContext(ctx,
			`INSERT INTO records (amount, title, kind, category, occurred_at_ms, utc_offset_s)
			 VALUES (?, ?, ?, ?, ?, ?)`, args...)
	} else {
		res, err = r.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO records (`+recordColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`, append([]any{rec.ID}, args...)...)
	}
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}

	id := rec.ID
	if id == 0 {
		if id, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("read record id: %w", err)
		}
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", id,
		"kind", rec.Kind,
		"category", rec.Category,
		"amount", rec.Amount.String())

	return id, nil
}

// FetchAll implements ports.RecordLister.
func (r *SQLiteRepository) FetchAll(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records ORDER BY occurred_at_ms DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Get implements ports.RecordGetter.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, core.ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record by id: %w", err)
	}
	return rec, nil
}

// Delete implements ports.RecordDeleter.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete record: %w", err)
	}
	slog.InfoContext(ctx, "Record deleted from SQLite", "id", id, "removed", n)
	return n, nil
}

// MarkSynced marks a record as mirrored to the spreadsheet.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE records SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}

	slog.InfoContext(ctx, "Record marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a record as having failed to sync.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE records SET sync_status = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark record sync error: %w", err)
	}

	slog.WarnContext(ctx, "Record marked with sync error", "id", id)
	return nil
}

// PendingSync lists ids still waiting for the mirror, including failed ones.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM records WHERE sync_status != 'synced' ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync records: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SyncStatus returns the sync state of a record.
func (r *SQLiteRepository) SyncStatus(ctx context.Context, id int64) (string, error) {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT sync_status FROM records WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get sync status: %w", err)
	}
	return status, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (core.Record, error) {
	var (
		rec    core.Record
		amount string
		kind   string
		millis int64
		offset int
	)
	if err := s.Scan(&rec.ID, &amount, &rec.Title, &kind, &rec.Category, &millis, &offset); err != nil {
		return core.Record{}, fmt.Errorf("scan record: %w", err)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Record{}, fmt.Errorf("parse amount of record %d: %w", rec.ID, err)
	}
	rec.Amount = core.NewMoney(d)
	rec.Kind = core.Kind(kind)
	rec.OccurredAt = time.UnixMilli(millis).In(zoneFor(offset))
	return rec, nil
}

func zoneFor(offset int) *time.Location {
	if offset == 0 {
		return time.UTC
	}
	return time.FixedZone("", offset)
}
