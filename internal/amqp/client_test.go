package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"cashbook/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"closed connection", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("some other error"), false},
		{"validation error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	t.Run("initial state is closed", func(t *testing.T) {
		if client.isCircuitOpen() {
			t.Error("Circuit breaker should be closed initially")
		}
	})

	t.Run("record success resets state", func(t *testing.T) {
		atomic.StoreInt64(&client.failureCount, 3)
		atomic.StoreInt32(&client.state, StateOpen)

		client.recordSuccess()

		if atomic.LoadInt64(&client.failureCount) != 0 {
			t.Error("Failure count should be reset to 0 after success")
		}
		if atomic.LoadInt32(&client.state) != StateClosed {
			t.Error("State should be StateClosed after success")
		}
	})

	t.Run("multiple failures open circuit", func(t *testing.T) {
		for i := 0; i < maxFailures; i++ {
			client.recordFailure()
		}
		if !client.isCircuitOpen() {
			t.Error("Circuit breaker should be open after max failures")
		}
	})

	t.Run("circuit transitions to half-open after timeout", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now().Add(-openTimeout - time.Second)

		if client.isCircuitOpen() {
			t.Error("Circuit should transition to half-open after timeout")
		}
		if atomic.LoadInt32(&client.state) != StateHalfOpen {
			t.Error("State should be StateHalfOpen after timeout")
		}
	})

	t.Run("failure while half-open reopens", func(t *testing.T) {
		atomic.StoreInt64(&client.failureCount, 0)
		atomic.StoreInt32(&client.state, StateHalfOpen)

		client.recordFailure()

		if atomic.LoadInt32(&client.state) != StateOpen {
			t.Error("State should be StateOpen after a half-open failure")
		}
	})
}

func TestClient_PublishRecordEvent(t *testing.T) {
	client := &Client{exchangeName: "test_exchange", queueName: "test_queue"}

	t.Run("publish fails when circuit is open", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now()

		err := client.PublishRecordEvent(context.Background(), NewCreatedEvent(123))
		if !errors.Is(err, ErrCircuitOpen) {
			t.Errorf("err = %v, want ErrCircuitOpen", err)
		}
	})

	t.Run("publish respects context cancellation", func(t *testing.T) {
		client.recordSuccess()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := client.PublishRecordEvent(ctx, NewCreatedEvent(123)); err != context.Canceled {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestRecordEventJSON(t *testing.T) {
	rec := core.Record{
		ID:         9,
		Amount:     core.MustMoney("45.50"),
		Title:      "ข้าวมันไก่",
		Kind:       core.Expense,
		Category:   "🍔 อาหาร",
		OccurredAt: time.Date(2024, 1, 5, 12, 15, 0, 0, time.UTC),
	}
	ev := NewDeletedEvent(rec)

	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := RecordEventFromJSON(data)
	if err != nil {
		t.Fatalf("RecordEventFromJSON: %v", err)
	}

	if got.Type != RecordDeleted || got.ID != 9 || got.Record == nil {
		t.Fatalf("decoded = %+v", got)
	}
	if !got.Record.Amount.Equal(rec.Amount) || got.Record.Category != rec.Category {
		t.Errorf("record = %+v, want %+v", *got.Record, rec)
	}
	if !got.Timestamp.Equal(ev.Timestamp) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, ev.Timestamp)
	}
}

func TestRecordEventFromJSONRejects(t *testing.T) {
	tests := map[string]string{
		"bad json":     `{"id": "not_a_number"}`,
		"missing id":   `{"type": "record.created"}`,
		"unknown type": `{"type": "record.updated", "id": 1}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := RecordEventFromJSON([]byte(body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}

func TestSettle(t *testing.T) {
	valid, _ := NewCreatedEvent(5).ToJSON()
	ok := func(context.Context, *RecordEvent) error { return nil }
	fail := func(context.Context, *RecordEvent) error { return errors.New("sheets down") }

	tests := []struct {
		name     string
		body     []byte
		handler  func(context.Context, *RecordEvent) error
		acked    bool
		requeued bool
	}{
		{"handled", valid, ok, true, false},
		{"handler error requeues", valid, fail, false, true},
		{"garbage dropped", []byte("nope"), ok, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			settle(context.Background(), tt.body, ack, tt.handler)
			if ack.acked != tt.acked || ack.requeued != tt.requeued {
				t.Errorf("acked=%v requeued=%v, want %v/%v", ack.acked, ack.requeued, tt.acked, tt.requeued)
			}
			if !tt.acked && !ack.nacked {
				t.Error("expected a nack")
			}
		})
	}
}
