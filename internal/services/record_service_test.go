package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashbook/internal/amqp"
	"cashbook/internal/core"
	"cashbook/internal/storage/memory"
)

type fakePublisher struct {
	events []*amqp.RecordEvent
	err    error
	closed bool
}

func (f *fakePublisher) PublishRecordEvent(_ context.Context, ev *amqp.RecordEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func validRecord() core.Record {
	return core.Record{
		Amount:     core.MustMoney("120"),
		Title:      "Taxi",
		Kind:       core.Expense,
		Category:   "🚗 เดินทาง",
		OccurredAt: time.Date(2024, 1, 3, 18, 45, 0, 0, time.UTC),
	}
}

func TestRecordService_Create(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	svc := NewRecordService(store, pub)

	id, err := svc.Create(context.Background(), validRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}
	if len(pub.events) != 1 || pub.events[0].Type != amqp.RecordCreated || pub.events[0].ID != id {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestRecordService_CreateRejectsInvalid(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	svc := NewRecordService(store, pub)

	r := validRecord()
	r.Title = "   "
	_, err := svc.Create(context.Background(), r)
	if !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("err = %v, want ErrEmptyTitle", err)
	}

	all, _ := store.FetchAll(context.Background())
	if len(all) != 0 || len(pub.events) != 0 {
		t.Fatalf("invalid record leaked: records=%d events=%d", len(all), len(pub.events))
	}
}

func TestRecordService_PublishFailureDoesNotFailCreate(t *testing.T) {
	svc := NewRecordService(memory.New(), &fakePublisher{err: errors.New("broker down")})

	if _, err := svc.Create(context.Background(), validRecord()); err != nil {
		t.Fatalf("Create should succeed when publishing fails: %v", err)
	}
}

func TestRecordService_NilPublisher(t *testing.T) {
	svc := NewRecordService(memory.New(), nil)

	id, err := svc.Create(context.Background(), validRecord())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n, err := svc.Delete(context.Background(), id); err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
}

func TestRecordService_Delete(t *testing.T) {
	store := memory.New()
	pub := &fakePublisher{}
	svc := NewRecordService(store, pub)
	ctx := context.Background()

	id, _ := svc.Create(ctx, validRecord())

	n, err := svc.Delete(ctx, id)
	if err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	last := pub.events[len(pub.events)-1]
	if last.Type != amqp.RecordDeleted || last.Record == nil || last.Record.Title != "Taxi" {
		t.Fatalf("delete event = %+v", last)
	}

	n, err = svc.Delete(ctx, id)
	if err != nil || n != 0 {
		t.Fatalf("second Delete: n=%d err=%v", n, err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("events = %d, want 2", len(pub.events))
	}
}

func TestRecordService_Snapshot(t *testing.T) {
	svc := NewRecordService(memory.New(), nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, validRecord()); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	records, err := svc.Snapshot(ctx)
	if err != nil || len(records) != 3 {
		t.Fatalf("Snapshot: %d records, err=%v", len(records), err)
	}
}

func TestRecordService_Close(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewRecordService(memory.New(), pub)

	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pub.closed {
		t.Error("publisher not closed")
	}

	if err := NewRecordService(memory.New(), nil).Close(); err != nil {
		t.Fatalf("Close with nil publisher: %v", err)
	}
}
