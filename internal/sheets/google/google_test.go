package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cashbook/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets is a minimal Sheets API backend holding one sheet.
type fakeSheets struct {
	mu      sync.Mutex
	rows    [][]any
	updates []string
	deletes int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		col := make([][]any, len(f.rows))
		for i, row := range f.rows {
			if len(row) > 0 {
				col[i] = []any{row[0]}
			} else {
				col[i] = []any{}
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"values": col})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr gsheet.ValueRange
		json.NewDecoder(r.Body).Decode(&vr)
		f.rows = append(f.rows, vr.Values...)
		w.Write([]byte(`{}`))

	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		f.updates = append(f.updates, path[strings.Index(path, "/values/")+len("/values/"):])
		w.Write([]byte(`{}`))

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if d := rq.DeleteDimension; d != nil {
				f.rows = append(f.rows[:d.Range.StartIndex], f.rows[d.Range.EndIndex:]...)
				f.deletes++
			}
		}
		w.Write([]byte(`{}`))

	case r.Method == http.MethodGet:
		w.Write([]byte(`{"sheets":[{"properties":{"sheetId":0,"title":"Records"}}]}`))

	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return NewWithService(svc, "sheet-1", "")
}

func testRecord(id int64) core.Record {
	return core.Record{
		ID:         id,
		Amount:     core.MustMoney("89.50"),
		Title:      "ก๋วยเตี๋ยว",
		Kind:       core.Expense,
		Category:   "🍔 อาหาร",
		OccurredAt: time.Date(2024, 1, 5, 12, 7, 0, 0, time.UTC),
	}
}

func TestRecordRow(t *testing.T) {
	got := recordRow(testRecord(12))
	want := []any{"12", "2024-01-05", "12:07", "expense", "🍔 อาหาร", "ก๋วยเตี๋ยว", "89.5"}
	if len(got) != len(want) {
		t.Fatalf("row = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFindRowByID(t *testing.T) {
	values := [][]any{{"ID"}, {}, {"3"}, {" 7 "}, {float64(9)}}

	tests := []struct {
		id   int64
		want int
	}{
		{3, 2},
		{7, 3},
		{9, 4},
		{4, -1},
	}
	for _, tt := range tests {
		if got := findRowByID(values, tt.id); got != tt.want {
			t.Errorf("findRowByID(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestAppendRecordWritesHeaderOnce(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)
	ctx := context.Background()

	if err := c.AppendRecord(ctx, testRecord(1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := c.AppendRecord(ctx, testRecord(2)); err != nil {
		t.Fatalf("append: %v", err)
	}

	if len(fake.rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(fake.rows))
	}
	if fake.rows[0][0] != "ID" || fake.rows[1][0] != "1" || fake.rows[2][0] != "2" {
		t.Fatalf("unexpected rows: %v", fake.rows)
	}
}

func TestAppendRecordUpdatesExistingRow(t *testing.T) {
	fake := &fakeSheets{rows: [][]any{Header, {"1"}, {"5"}}}
	c := newTestClient(t, fake)

	if err := c.AppendRecord(context.Background(), testRecord(5)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(fake.rows) != 3 {
		t.Fatalf("duplicate row appended: %v", fake.rows)
	}
	if len(fake.updates) != 1 || !strings.HasSuffix(fake.updates[0], "A3:G3") {
		t.Fatalf("updates = %v", fake.updates)
	}
}

func TestDeleteRecord(t *testing.T) {
	fake := &fakeSheets{rows: [][]any{Header, {"1"}, {"2"}, {"3"}}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	if err := c.DeleteRecord(ctx, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(fake.rows) != 3 || fake.rows[2][0] != "3" {
		t.Fatalf("rows after delete = %v", fake.rows)
	}

	if err := c.DeleteRecord(ctx, 42); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if fake.deletes != 1 {
		t.Fatalf("deletes = %d, want 1", fake.deletes)
	}
}

func TestNewRequiresSpreadsheetAndCredentials(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, Options{}); err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("err = %v", err)
	}
	if _, err := New(ctx, Options{SpreadsheetID: "x"}); err == nil {
		t.Fatal("expected missing credentials error")
	}
	if _, err := New(ctx, Options{SpreadsheetID: "x", CredentialsFile: "/does/not/exist.json"}); err == nil {
		t.Fatal("expected file read error")
	}
}
