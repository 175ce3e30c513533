package mocks

import (
	"context"
	"sync"

	"github.com/spinvault/spinvault/internal/audit"
)

// CapturingRecorder collects audit events for assertions.
type CapturingRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

// NewCapturingRecorder creates an empty capturing recorder.
func NewCapturingRecorder() *CapturingRecorder {
	return &CapturingRecorder{}
}

// Record stores the event.
func (r *CapturingRecorder) Record(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the captured events.
func (r *CapturingRecorder) Events() []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Event(nil), r.events...)
}

// ByOp returns the captured events for one operation.
func (r *CapturingRecorder) ByOp(op string) []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Event
	for _, event := range r.events {
		if event.Op == op {
			out = append(out, event)
		}
	}
	return out
}
