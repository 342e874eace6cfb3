package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// ResponseBuilder provides a fluent API for building responses. Triggers are
// sent in an HX-Trigger header so htmx pages can refresh their partials.
type ResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *ResponseBuilder) Trigger(name string, data any) *ResponseBuilder {
	b.triggers[name] = data
	return b
}

func (b *ResponseBuilder) TriggerRecordCreated(id int64) *ResponseBuilder {
	return b.Trigger("record:created", map[string]int64{"id": id})
}

func (b *ResponseBuilder) TriggerRecordDeleted(id int64) *ResponseBuilder {
	return b.Trigger("record:deleted", map[string]int64{"id": id})
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *ResponseBuilder) BodyHTML(html string) *ResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// JSON sets v as the response body. Encoding errors turn the response into a 500.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.statusCode = http.StatusInternalServerError
		data = []byte(`{"error":"encoding failed"}`)
	}
	b.headers["Content-Type"] = "application/json"
	b.body = append(data, '\n')
	return b
}

// Redirect answers with 303 See Other to location.
func (b *ResponseBuilder) Redirect(location string) *ResponseBuilder {
	b.headers["Location"] = location
	b.statusCode = http.StatusSeeOther
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates an error response. JSON callers get {"error": msg};
// everyone else gets an escaped HTML fragment.
func ErrorResponse(statusCode int, message string, asJSON bool) *ResponseBuilder {
	b := NewResponse().Status(statusCode)
	if asJSON {
		return b.JSON(map[string]string{"error": message})
	}
	return b.BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}
