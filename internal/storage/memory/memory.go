package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"cashbook/internal/core"
	"cashbook/internal/ports"
)

var (
	_ ports.RecordStore = (*Store)(nil)
	_ ports.SyncTracker = (*Store)(nil)
)

// Store keeps records in process memory. Data is lost on restart.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]core.Record
	synced map[int64]string
}

// New returns a store pre-filled with seed records. Seeds without an ID get one.
func New(seed ...core.Record) *Store {
	s := &Store{items: map[int64]core.Record{}, synced: map[int64]string{}}
	for _, r := range seed {
		s.put(r)
	}
	return s
}

// Insert stores the record. An existing ID is replaced.
func (s *Store) Insert(_ context.Context, r core.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(r), nil
}

func (s *Store) put(r core.Record) int64 {
	if r.ID == 0 {
		s.nextID++
		r.ID = s.nextID
	} else if r.ID > s.nextID {
		s.nextID = r.ID
	}
	s.items[r.ID] = r
	s.synced[r.ID] = "pending"
	return r.ID
}

// FetchAll returns a copy of all records, newest first.
func (s *Store) FetchAll(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	out := make([]core.Record, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r)
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b core.Record) int {
		if c := b.OccurredAt.Compare(a.OccurredAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return core.Record{}, core.ErrNotFound
	}
	return r, nil
}

func (s *Store) Delete(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return 0, nil
	}
	delete(s.items, id)
	delete(s.synced, id)
	return 1, nil
}

func (s *Store) MarkSynced(_ context.Context, id int64) error {
	return s.mark(id, "synced")
}

func (s *Store) MarkSyncError(_ context.Context, id int64) error {
	return s.mark(id, "error")
}

func (s *Store) mark(id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; ok {
		s.synced[id] = status
	}
	return nil
}

// PendingSync lists unsynced ids in ascending order. A negative limit means
// no limit, as with SQLite's LIMIT -1.
func (s *Store) PendingSync(_ context.Context, limit int) ([]int64, error) {
	s.mu.Lock()
	var ids []int64
	for id, status := range s.synced {
		if status != "synced" {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	slices.Sort(ids)
	if limit >= 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// SyncStatus mirrors the SQLite repository for tests and the worker.
func (s *Store) SyncStatus(_ context.Context, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.synced[id]
	if !ok {
		return "", core.ErrNotFound
	}
	return status, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }
