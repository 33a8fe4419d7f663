package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"foodwaste/internal/core"
)

// Event types carried in EntryEvent.Type and the AMQP type property.
const (
	EventEntryCreated = "entry.created"
	EventEntryDeleted = "entry.deleted"
)

// EntryEvent announces a change to the waste log. Created events carry the
// full entry so consumers never read back from the store.
type EntryEvent struct {
	Type      string           `json:"type"`
	ID        string           `json:"id"`
	Entry     *core.WasteEntry `json:"entry,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

func NewEntryCreatedEvent(e core.WasteEntry) *EntryEvent {
	return &EntryEvent{
		Type:      EventEntryCreated,
		ID:        e.ID,
		Entry:     &e,
		Timestamp: time.Now().UTC(),
	}
}

func NewEntryDeletedEvent(id string) *EntryEvent {
	return &EntryEvent{
		Type:      EventEntryDeleted,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryEventFromJSON decodes and checks an event body.
func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var msg EntryEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("event without id")
	}
	switch msg.Type {
	case EventEntryCreated:
		if msg.Entry == nil {
			return nil, fmt.Errorf("%s event %s without entry", msg.Type, msg.ID)
		}
	case EventEntryDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	return &msg, nil
}
