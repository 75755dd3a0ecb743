// Package events provides the generic event infrastructure: the Envelope
// wrapping domain events with routing metadata and the EventSink
// implementations events are appended to.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Envelope wraps a domain event with metadata for routing and deduplication.
type Envelope struct {
	ID string `json:"id"`

	// Type identifies the event, e.g. "FeatureApportioned".
	Type string `json:"type"`

	// Source identifies the emitting component, e.g. "activity.apportion_feature".
	Source string `json:"source"`

	// Version is the payload schema version in semver form.
	Version string `json:"version"`

	Timestamp time.Time `json:"timestamp"`

	// IdempotencyKey makes retries of the same logical event no-ops.
	IdempotencyKey string `json:"idempotency_key"`

	TenantID   string `json:"tenant_id"`
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`

	Payload json.RawMessage `json:"payload"`
}

// EventSink receives emitted events.
type EventSink interface {
	// Append adds an event with best-effort delivery. Appending an envelope
	// whose IdempotencyKey was already seen must be a no-op.
	Append(ctx context.Context, envelope Envelope) error
}

// NoOpEventSink discards every event.
type NoOpEventSink struct{}

// Append implements EventSink.
func (n *NoOpEventSink) Append(_ context.Context, _ Envelope) error {
	return nil
}

// NewNoOpEventSink creates a new no-op event sink.
func NewNoOpEventSink() EventSink {
	return &NoOpEventSink{}
}
