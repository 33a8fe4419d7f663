package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponse_NoEvents(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().Status(http.StatusCreated).Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("HX-Trigger set without events")
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
}

func TestHTMXResponse_EntrySaved(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		EntryCreated("abc").
		ResetForm().
		RefreshStats().
		Notify(NotificationSuccess, "Entry saved").
		Fragment(`<p>Tip: freeze bread</p>`).
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	for _, part := range []string{
		`"entry:created":{"id":"abc"}`,
		`"form:reset"`,
		`"stats:refresh"`,
		`"type":"success"`,
		`"message":"Entry saved"`,
		`"duration":3000`,
	} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != `<p>Tip: freeze bread</p>` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestHTMXResponse_EntryDeleted(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().EntryDeleted("xyz").RefreshStats().Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"entry:deleted":{"id":"xyz"}`) {
		t.Errorf("Missing entry:deleted event: %s", trigger)
	}
}

func TestErrorFragment(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		body    string
	}{
		{"bad request", http.StatusBadRequest, "Invalid input", `<div class="error">Invalid input</div>`},
		{"unprocessable entity", http.StatusUnprocessableEntity, "Validation failed", `<div class="error">Validation failed</div>`},
		{"escapes html", http.StatusBadRequest, "<script>x</script>", `<div class="error">&lt;script&gt;x&lt;/script&gt;</div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFragment(tt.status, tt.message).Write(w)

			if w.Code != tt.status {
				t.Errorf("Status code = %d, want %d", w.Code, tt.status)
			}
			if w.Body.String() != tt.body {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.body)
			}
			trigger := w.Header().Get("HX-Trigger")
			if !strings.Contains(trigger, `"type":"error"`) || !strings.Contains(trigger, `"duration":5000`) {
				t.Errorf("error toast missing: %s", trigger)
			}
		})
	}
}
