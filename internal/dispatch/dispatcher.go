// Package dispatch decouples ledger state transitions from their side
// effects. The ledger emits tagged events after its writes commit; the
// dispatcher fans each event out to the handlers registered for its kind.
// Handler failures are logged and never reach the caller, so a broken mail
// server or webhook cannot roll back a payment.
package dispatch

import (
	"context"
	"log/slog"
)

// HandlerFunc reacts to a single event.
type HandlerFunc func(ctx context.Context, event Event) error

// Dispatcher routes events to registered handlers. Registration happens
// during wiring, before any request is served; Dispatch may be called
// concurrently afterwards.
type Dispatcher struct {
	handlers map[Kind][]HandlerFunc
}

// New creates an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{handlers: make(map[Kind][]HandlerFunc)}
}

// Register appends a handler for the given event kind.
func (d *Dispatcher) Register(kind Kind, handler HandlerFunc) {
	d.handlers[kind] = append(d.handlers[kind], handler)
}

// Dispatch runs every handler registered for the event's kind. Each handler
// failure is logged and swallowed; remaining handlers still run.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	for _, handler := range d.handlers[event.Kind()] {
		if err := handler(ctx, event); err != nil {
			slog.Error("event handler failed",
				"event", string(event.Kind()),
				"error", err,
			)
		}
	}
}
