package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cashbook/internal/core"
)

const maxBodyBytes = 64 << 10

// RequestBodyParser reads a JSON or form-encoded body once and serves
// field lookups from either.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the request body, capped at maxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := bytes.TrimSpace(p.body)
	if len(body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if body[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		p.err = dec.Decode(&p.jsonData)
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(body))
	return p.err
}

// Get returns a trimmed, sanitized value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RecordForm holds the raw entry form values so a rejected form can be
// shown again as typed.
type RecordForm struct {
	Amount   string
	Title    string
	Kind     string
	Category string
	Date     string
	Time     string
}

// ReadRecordForm collects the record fields from a parsed body.
func ReadRecordForm(p *RequestBodyParser) RecordForm {
	return RecordForm{
		Amount:   p.Get("amount"),
		Title:    p.Get("title"),
		Kind:     p.Get("kind"),
		Category: p.Get("category"),
		Date:     p.Get("date"),
		Time:     p.Get("time"),
	}
}

// Record converts the form to a record in loc. A blank date means today and
// a blank time means midnight, or the current time when the date is blank
// too.
func (f RecordForm) Record(now time.Time, loc *time.Location) (core.Record, error) {
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.Record{}, err
	}

	kind, err := core.ParseKind(f.Kind)
	if err != nil {
		return core.Record{}, err
	}

	occurred, err := parseOccurredAt(f.Date, f.Time, now.In(loc), loc)
	if err != nil {
		return core.Record{}, err
	}

	return core.Record{
		Amount:     amount,
		Title:      f.Title,
		Kind:       kind,
		Category:   f.Category,
		OccurredAt: occurred,
	}, nil
}

func parseOccurredAt(date, clock string, now time.Time, loc *time.Location) (time.Time, error) {
	if date == "" && clock == "" {
		return now.Truncate(time.Minute), nil
	}
	if date == "" {
		date = now.Format(time.DateOnly)
	}
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", core.ErrInvalidDate, date, clock)
	}
	return t, nil
}
