package service

import (
	"slices"
	"sync"
)

// EventType defines the type of event
type EventType string

const (
	EventMindmapCreated  EventType = "mindmap_created"
	EventMindmapUpdated  EventType = "mindmap_updated"
	EventMindmapDeleted  EventType = "mindmap_deleted"
	EventMindmapSaved    EventType = "mindmap_saved"
	EventMindmapImported EventType = "mindmap_imported"
	EventSessionOpened   EventType = "session_opened"
	EventSessionChanged  EventType = "session_changed"
	EventSessionClosed   EventType = "session_closed"
	EventOverlayToggled  EventType = "overlay_toggled"
	EventConfigReloaded  EventType = "config_reloaded"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Name is the SSE event name of e
func (e Event) Name() string {
	return string(e.Type)
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber. The channel is not closed.
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = slices.DeleteFunc(eb.subscribers, func(c chan<- Event) bool {
		return c == ch
	})
}

// Publish delivers an event to every subscriber with room in its buffer.
// Slow subscribers miss the event.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
