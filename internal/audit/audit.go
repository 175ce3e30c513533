// Package audit records wallet store operations as structured events. Events
// carry only public metadata (operation, address, outcome); secret material
// never enters an audit event.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spinvault/spinvault/internal/logger"
)

// Outcomes
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Event is one audited wallet store operation.
type Event struct {
	ID      uuid.UUID `json:"id"`
	Time    time.Time `json:"time"`
	Op      string    `json:"op"`
	Address string    `json:"address,omitempty"`
	Outcome string    `json:"outcome"`
	Detail  string    `json:"detail,omitempty"`
}

// Recorder receives audit events.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// LogRecorder writes audit events to the structured log.
type LogRecorder struct{}

// NewLogRecorder creates a log-backed audit recorder.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

// Record logs the event at INFO level.
func (r *LogRecorder) Record(ctx context.Context, event Event) {
	logger.Info(ctx, "wallet store audit",
		"audit_id", event.ID.String(),
		"op", event.Op,
		"address", event.Address,
		"outcome", event.Outcome,
		"detail", event.Detail,
	)
}

// NewEvent builds an event with a fresh ID and timestamp.
func NewEvent(op, address, outcome, detail string) Event {
	return Event{
		ID:      uuid.New(),
		Time:    time.Now().UTC(),
		Op:      op,
		Address: address,
		Outcome: outcome,
		Detail:  detail,
	}
}
