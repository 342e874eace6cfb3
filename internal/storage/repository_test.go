package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cashbook/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "cashbook.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecord(title string, at time.Time) core.Record {
	return core.Record{
		Amount:     core.MustMoney("12.345"),
		Title:      title,
		Kind:       core.Expense,
		Category:   "🍔 อาหาร",
		OccurredAt: at,
	}
}

func TestInsertAndFetchAllOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	first, err := repo.Insert(ctx, testRecord("older", base))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, err := repo.Insert(ctx, testRecord("newer", base.Add(time.Hour)))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	third, err := repo.Insert(ctx, testRecord("same time", base.Add(time.Hour)))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first == 0 || second <= first || third <= second {
		t.Fatalf("ids not increasing: %d %d %d", first, second, third)
	}

	got, err := repo.FetchAll(ctx)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	want := []int64{third, second, first}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: id %d, want %d", i, got[i].ID, id)
		}
	}
}

func TestRoundTripKeepsAmountAndZone(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	bangkok := time.FixedZone("ICT", 7*3600)
	at := time.Date(2024, 2, 1, 0, 30, 0, 0, bangkok)

	id, err := repo.Insert(ctx, testRecord("late snack", at))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if !got.Amount.Equal(core.MustMoney("12.345")) {
		t.Errorf("amount = %s, want 12.345", got.Amount)
	}
	if !got.OccurredAt.Equal(at) {
		t.Errorf("occurred at = %v, want %v", got.OccurredAt, at)
	}
	if d := got.Date().String(); d != "2024-02-01" {
		t.Errorf("date = %s, want local date 2024-02-01", d)
	}
	if got.Category != "🍔 อาหาร" || got.Kind != core.Expense || got.Title != "late snack" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestInsertWithIDReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	id, err := repo.Insert(ctx, testRecord("before", at))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	updated := testRecord("after", at)
	updated.ID = id
	if got, err := repo.Insert(ctx, updated); err != nil || got != id {
		t.Fatalf("replace: id=%d err=%v", got, err)
	}

	all, _ := repo.FetchAll(ctx)
	if len(all) != 1 || all[0].Title != "after" {
		t.Fatalf("records after replace = %+v", all)
	}
}

func TestGetMissing(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.Get(context.Background(), 42); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, testRecord("gone soon", time.Now()))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n, err := repo.Delete(ctx, id); err != nil || n != 1 {
		t.Fatalf("delete: n=%d err=%v", n, err)
	}
	if n, err := repo.Delete(ctx, id); err != nil || n != 0 {
		t.Fatalf("second delete: n=%d err=%v", n, err)
	}
}

func TestSyncStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, testRecord("mirror me", time.Now()))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if s, _ := repo.SyncStatus(ctx, id); s != "pending" {
		t.Fatalf("status = %q, want pending", s)
	}
	if err := repo.MarkSyncError(ctx, id); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	if s, _ := repo.SyncStatus(ctx, id); s != "error" {
		t.Fatalf("status = %q, want error", s)
	}
	if err := repo.MarkSynced(ctx, id); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if s, _ := repo.SyncStatus(ctx, id); s != "synced" {
		t.Fatalf("status = %q, want synced", s)
	}
}

func TestPendingSync(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var ids []int64
	for _, title := range []string{"a", "b", "c"} {
		id, err := repo.Insert(ctx, testRecord(title, time.Now()))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, id)
	}
	_ = repo.MarkSynced(ctx, ids[1])
	_ = repo.MarkSyncError(ctx, ids[2])

	got, err := repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(got) != 2 || got[0] != ids[0] || got[1] != ids[2] {
		t.Fatalf("pending = %v, want [%d %d]", got, ids[0], ids[2])
	}
	if got, _ := repo.PendingSync(ctx, 1); len(got) != 1 {
		t.Fatalf("limit ignored: %v", got)
	}
	if got, _ := repo.PendingSync(ctx, -1); len(got) != 2 {
		t.Fatalf("negative limit: pending = %v, want 2", got)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cashbook.db")
	for i := 0; i < 2; i++ {
		if err := RunMigrations(path); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	version, dirty, err := SchemaVersion(path)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != 2 || dirty {
		t.Fatalf("version = %d dirty = %v, want 2 clean", version, dirty)
	}
}
