package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// Client-side events raised through HX-Trigger. The dashboard script and the
// hx-trigger attributes in the templates listen for these names.
const (
	EventEntryCreated = "entry:created"
	EventEntryDeleted = "entry:deleted"
	EventStatsRefresh = "stats:refresh"
	EventFormReset    = "form:reset"
	EventNotification = "show-notification"
)

// NotificationType selects the toast style in the dashboard.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// notificationDuration is how long each toast stays on screen, in ms.
var notificationDuration = map[NotificationType]int{
	NotificationSuccess: 3000,
	NotificationError:   5000,
}

// HTMXResponse collects the events and HTML fragment of one htmx reply.
type HTMXResponse struct {
	status   int
	events   map[string]any
	fragment string
}

func NewHTMXResponse() *HTMXResponse {
	return &HTMXResponse{status: http.StatusOK, events: make(map[string]any)}
}

func (b *HTMXResponse) Status(code int) *HTMXResponse {
	b.status = code
	return b
}

func (b *HTMXResponse) event(name string, data any) *HTMXResponse {
	b.events[name] = data
	return b
}

// EntryCreated tells the entries table that id was added.
func (b *HTMXResponse) EntryCreated(id string) *HTMXResponse {
	return b.event(EventEntryCreated, map[string]string{"id": id})
}

// EntryDeleted tells the entries table to drop the row of id.
func (b *HTMXResponse) EntryDeleted(id string) *HTMXResponse {
	return b.event(EventEntryDeleted, map[string]string{"id": id})
}

// RefreshStats reloads the stats panel and the charts.
func (b *HTMXResponse) RefreshStats() *HTMXResponse {
	return b.event(EventStatsRefresh, struct{}{})
}

// ResetForm clears the submitting form, keeping its date field.
func (b *HTMXResponse) ResetForm() *HTMXResponse {
	return b.event(EventFormReset, struct{}{})
}

func (b *HTMXResponse) Notify(kind NotificationType, message string) *HTMXResponse {
	return b.event(EventNotification, map[string]any{
		"type":     string(kind),
		"message":  message,
		"duration": notificationDuration[kind],
	})
}

// Fragment sets the HTML swapped into the target element.
func (b *HTMXResponse) Fragment(html string) *HTMXResponse {
	b.fragment = html
	return b
}

func (b *HTMXResponse) Write(w http.ResponseWriter) {
	if len(b.events) > 0 {
		if events, err := json.Marshal(b.events); err == nil {
			w.Header().Set("HX-Trigger", string(events))
		}
	}
	if b.fragment != "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(b.status)
	if b.fragment != "" {
		_, _ = w.Write([]byte(b.fragment))
	}
}

// ErrorFragment renders message as an escaped error box and raises an error
// toast with the same text.
func ErrorFragment(status int, message string) *HTMXResponse {
	return NewHTMXResponse().
		Status(status).
		Notify(NotificationError, message).
		Fragment(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}
