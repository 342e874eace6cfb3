package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cashbook/internal/core"
)

type EventType string

const (
	RecordCreated EventType = "record.created"
	RecordDeleted EventType = "record.deleted"
)

var ErrInvalidEvent = errors.New("invalid record event")

// RecordEvent announces a change to the ledger. Created events carry only the
// id; the worker loads the current record from the store. Deleted events carry
// the removed record since it can no longer be loaded.
type RecordEvent struct {
	Type      EventType    `json:"type"`
	ID        int64        `json:"id"`
	Record    *core.Record `json:"record,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewCreatedEvent(id int64) *RecordEvent {
	return &RecordEvent{
		Type:      RecordCreated,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func NewDeletedEvent(r core.Record) *RecordEvent {
	return &RecordEvent{
		Type:      RecordDeleted,
		ID:        r.ID,
		Record:    &r,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes and checks an event body.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var ev RecordEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.ID <= 0 {
		return nil, fmt.Errorf("%w: id %d", ErrInvalidEvent, ev.ID)
	}
	switch ev.Type {
	case RecordCreated, RecordDeleted:
	default:
		return nil, fmt.Errorf("%w: type %q", ErrInvalidEvent, ev.Type)
	}
	return &ev, nil
}
