package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// wantsJSON reports whether the caller should get JSON instead of a page.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case core.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// summaryQuery is the parsed start/end/scope of a dashboard or summary request.
type summaryQuery struct {
	Range core.DateRange
	Scope ledger.Scope
	// Raw values are echoed back into the range picker.
	StartRaw, EndRaw string
}

// parseSummaryQuery reads start, end and scope. A blank date leaves that end
// open; a range with only one end does not filter.
func parseSummaryQuery(r *http.Request) (summaryQuery, error) {
	q := r.URL.Query()
	out := summaryQuery{
		StartRaw: strings.TrimSpace(q.Get("start")),
		EndRaw:   strings.TrimSpace(q.Get("end")),
	}

	var start, end core.Date
	var err error
	if out.StartRaw != "" {
		if start, err = core.ParseDate(out.StartRaw); err != nil {
			return out, err
		}
	}
	if out.EndRaw != "" {
		if end, err = core.ParseDate(out.EndRaw); err != nil {
			return out, err
		}
	}
	out.Range = core.NewDateRange(start, end)

	if out.Scope, err = ledger.ParseScope(q.Get("scope")); err != nil {
		return out, err
	}
	return out, nil
}
