package aggregation

import (
	"context"
	"errors"
	"sync"

	"github.com/ahrav/go-breakdown/internal/domain"
	"github.com/ahrav/go-breakdown/pkg/events"
)

// testTenantID is a valid UUID for testing.
const testTenantID = "550e8400-e29b-41d4-a716-446655440000"

// CapturingEventSink records appended events and drops duplicate idempotency keys.
type CapturingEventSink struct {
	mu           sync.Mutex
	events       []events.Envelope
	seenKeys     map[string]bool
	failuresLeft int
}

// NewCapturingEventSink creates a new capturing event sink for testing.
func NewCapturingEventSink() *CapturingEventSink {
	return &CapturingEventSink{seenKeys: make(map[string]bool)}
}

// NewFailingEventSink creates a sink that fails n times before succeeding.
func NewFailingEventSink(n int) *CapturingEventSink {
	sink := NewCapturingEventSink()
	sink.failuresLeft = n
	return sink
}

// Append implements events.EventSink.
func (c *CapturingEventSink) Append(_ context.Context, envelope events.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failuresLeft > 0 {
		c.failuresLeft--
		return errors.New("simulated event sink failure")
	}
	if c.seenKeys[envelope.IdempotencyKey] {
		return nil
	}
	c.seenKeys[envelope.IdempotencyKey] = true
	c.events = append(c.events, envelope)
	return nil
}

// Events returns a copy of the captured events.
func (c *CapturingEventSink) Events() []events.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Envelope, len(c.events))
	copy(out, c.events)
	return out
}

func sampleRows() []domain.Row {
	return []domain.Row{
		{"Id": "1", "Feature_A": "a1", "N": "1"},
		{"Id": "2", "Feature_A": "a1", "N": "1"},
		{"Id": "3", "Feature_A": "a2", "N": "1"},
		{"Id": "4", "Feature_A": "a2", "N": "2"},
		{"Id": "5", "Feature_A": "a3", "N": "2"},
		{"Id": "6", "Feature_A": "a3", "N": "2"},
	}
}
