// Package event decodes the messages the embedded web content sends to the
// host and routes them to handlers.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Kind names an event. It is carried in the "event" field.
type Kind string

const (
	// Load is sent once the web application has loaded.
	Load Kind = "load"
)

var (
	// ErrMalformed is returned for payloads that are not a JSON event object.
	ErrMalformed = errors.New("malformed event")

	// ErrUnknownEvent is returned for events no handler is registered for.
	ErrUnknownEvent = errors.New("unknown event")
)

// Event is a single tagged message from the web layer.
type Event struct {
	Kind Kind `json:"event"`
}

// Decode parses a raw invocation payload such as {"event":"load"}.
func Decode(raw string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if e.Kind == "" {
		return Event{}, fmt.Errorf("%w: missing event field", ErrMalformed)
	}

	return e, nil
}

// Handler reacts to a decoded event.
type Handler func(e Event) error

// Router dispatches decoded events to the handler registered for their kind.
type Router struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[Kind]Handler)}
}

// On registers h for kind, replacing any previous handler.
func (r *Router) On(kind Kind, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = h
}

// Handle decodes raw and runs the matching handler.
func (r *Router) Handle(raw string) error {
	e, err := Decode(raw)
	if err != nil {
		return err
	}

	r.mu.RLock()
	h, ok := r.handlers[e.Kind]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Kind)
	}

	slog.Debug("handling event", "event", e.Kind)

	return h(e)
}
