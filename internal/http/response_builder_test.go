package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResponseBuilderTriggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		TriggerRecordCreated(7).
		JSON(map[string]int{"id": 7}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	trigger := w.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"record:created":{"id":7}`) {
		t.Fatalf("HX-Trigger = %s", trigger)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("Content-Type = %s", w.Header().Get("Content-Type"))
	}
	var got map[string]int
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil || got["id"] != 7 {
		t.Fatalf("body = %v, %v", got, err)
	}
}

func TestResponseBuilderNoTriggerHeader(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().BodyHTML("<p>ok</p>").Write(w)
	if _, ok := w.Header()["Hx-Trigger"]; ok {
		t.Fatalf("unexpected HX-Trigger header")
	}
	if w.Body.String() != "<p>ok</p>" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestResponseBuilderRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Redirect("/").TriggerRecordDeleted(3).Write(w)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name    string
		asJSON  bool
		wantSub string
	}{
		{"html escapes", false, `<div class="error">bad &lt;input&gt;</div>`},
		{"json", true, `{"error":"bad <input>"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorResponse(http.StatusUnprocessableEntity, "bad <input>", tt.asJSON).Write(w)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d", w.Code)
			}
			body := w.Body.String()
			if tt.asJSON {
				var got map[string]string
				if err := json.Unmarshal([]byte(body), &got); err != nil || got["error"] != "bad <input>" {
					t.Fatalf("body = %s", body)
				}
				return
			}
			if !strings.Contains(body, tt.wantSub) {
				t.Fatalf("body = %s", body)
			}
		})
	}
}
