package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cashbook/internal/core"
	"cashbook/internal/ledger"
	"cashbook/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks templates and store connectivity.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{"templates": "ok", "store": "ok"}

	if s.templates == nil {
		checks["templates"] = "not loaded"
		status = http.StatusServiceUnavailable
	}
	if s.ready == nil {
		checks["store"] = "not configured"
		status = http.StatusServiceUnavailable
	} else if err := s.ready.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]any{
		"status":    state,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// summarize loads the snapshot and runs the aggregator for q.
func (s *Server) summarize(ctx context.Context, q summaryQuery) (ledger.Summary, error) {
	records, err := s.snapshot(ctx)
	if err != nil {
		return ledger.Summary{}, err
	}
	summary := ledger.Summarize(records, q.Range, q.Scope)

	fields := log.NewFields().
		WithRange(summary.Start, summary.End).
		WithScope(string(q.Scope)).
		WithCount(len(summary.Records)).
		WithOperation(log.OpSummarize)
	log.FromContext(ctx).Fields(ctx, slog.LevelDebug, "Summary computed", fields)
	return summary, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderSummaryPage(w, r, "dashboard.html", func(sum ledger.Summary, q summaryQuery, errMsg string) any {
		v := newDashboardView(sum, q)
		v.Error = errMsg
		return v
	})
}

func (s *Server) handleRecordsPage(w http.ResponseWriter, r *http.Request) {
	s.renderSummaryPage(w, r, "records.html", func(sum ledger.Summary, q summaryQuery, errMsg string) any {
		return recordsView{Summary: sum, Query: q, Error: errMsg}
	})
}

// renderSummaryPage serves a page built from a summary. A bad query still
// renders, unfiltered, with the error shown and a 400 status.
func (s *Server) renderSummaryPage(w http.ResponseWriter, r *http.Request, name string, view func(ledger.Summary, summaryQuery, string) any) {
	ctx := r.Context()
	status := http.StatusOK
	errMsg := ""

	q, err := parseSummaryQuery(r)
	if err != nil {
		status = http.StatusBadRequest
		errMsg = queryErrorMessage(err)
		q = summaryQuery{Scope: ledger.ScopeExpense, StartRaw: q.StartRaw, EndRaw: q.EndRaw}
	}

	sum, err := s.summarize(ctx, q)
	if err != nil {
		s.serverError(w, r, "Failed to load records", err, false)
		return
	}
	s.render(w, r, status, name, view(sum, q, errMsg))
}

func (s *Server) handleNewRecord(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "record_form.html", newFormView(RecordForm{}, ""))
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	q, err := parseSummaryQuery(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, queryErrorMessage(err))
		return
	}
	sum, err := s.summarize(r.Context(), q)
	if err != nil {
		s.serverError(w, r, "Failed to load records", err, true)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleAPIRecords(w http.ResponseWriter, r *http.Request) {
	q, err := parseSummaryQuery(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, queryErrorMessage(err))
		return
	}
	records, err := s.snapshot(r.Context())
	if err != nil {
		s.serverError(w, r, "Failed to load records", err, true)
		return
	}
	out := ledger.SortRecent(ledger.FilterByRange(records, q.Range))
	if out == nil {
		out = []core.Record{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asJSON := wantsJSON(r)

	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		ErrorResponse(http.StatusBadRequest, "Invalid request body", asJSON).Write(w)
		return
	}
	asJSON = asJSON || p.IsJSON()

	form := ReadRecordForm(p)
	rec, err := form.Record(s.now(), s.loc)
	if err == nil {
		var id int64
		id, err = s.records.Create(ctx, rec)
		rec.ID = id
	}

	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.serverError(w, r, "Failed to save record", err, asJSON)
			return
		}
		msg := validationMessage(err)
		if asJSON {
			ErrorResponse(status, msg, true).Write(w)
			return
		}
		s.render(w, r, status, "record_form.html", newFormView(form, msg))
		return
	}

	s.invalidateSnapshot()
	log.NewStructuredLogger(log.FromContext(ctx)).
		LogRecordCreated(ctx, rec.ID, string(rec.Kind), rec.Category, rec.Amount.String())

	b := NewResponse().TriggerRecordCreated(rec.ID)
	if asJSON {
		b.Status(http.StatusCreated).
			Header("Location", "/api/records/"+strconv.FormatInt(rec.ID, 10)).
			JSON(rec).
			Write(w)
		return
	}
	b.Redirect("/").Write(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asJSON := wantsJSON(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(http.StatusBadRequest, "Invalid record id", asJSON).Write(w)
		return
	}

	removed, err := s.records.Delete(ctx, id)
	if err != nil {
		s.serverError(w, r, "Failed to delete record", err, asJSON)
		return
	}
	if removed == 0 {
		ErrorResponse(http.StatusNotFound, core.ErrNotFound.Error(), asJSON).Write(w)
		return
	}

	s.invalidateSnapshot()
	log.FromContext(ctx).InfoContext(ctx, "Record deleted", log.FieldRecordID, id)

	b := NewResponse().TriggerRecordDeleted(id)
	if asJSON {
		b.Status(http.StatusNoContent).Write(w)
		return
	}
	b.Redirect("/records").Write(w)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
			"Template execution failed", err, log.OpRender, log.NewFields())
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error, asJSON bool) {
	log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), msg, err, r.Method+" "+r.URL.Path, nil)
	ErrorResponse(http.StatusInternalServerError, msg, asJSON).Write(w)
}

func queryErrorMessage(err error) string {
	if errors.Is(err, ledger.ErrInvalidScope) {
		return "scope must be expense, income or all"
	}
	return "dates must be YYYY-MM-DD"
}

// validationMessage is the reason shown next to a rejected form.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be a positive number"
	case errors.Is(err, core.ErrEmptyTitle):
		return "Title is required"
	case errors.Is(err, core.ErrTitleTooLong):
		return "Title is too long (max 200 characters)"
	case errors.Is(err, core.ErrInvalidKind):
		return "Kind must be income or expense"
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category is required"
	case errors.Is(err, core.ErrInvalidDate), errors.Is(err, core.ErrZeroTime):
		return "Date must be YYYY-MM-DD and time HH:MM"
	}
	return err.Error()
}
