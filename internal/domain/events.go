package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event emitted by the system.
type EventType string

const (
	// EventTypeFeatureApportioned is emitted once per feature after its
	// percentages have been apportioned.
	EventTypeFeatureApportioned EventType = "FeatureApportioned"
)

// EventEnvelope wraps all events with consistent metadata for projection processing.
type EventEnvelope struct {
	// IdempotencyKey ensures events are processed exactly once during retries.
	// Generated deterministically from workflow context and event content.
	IdempotencyKey string `json:"idempotency_key" validate:"required"`

	EventType EventType `json:"event_type" validate:"required"`

	// Version enables event schema evolution. Starts at 1.
	Version int `json:"version" validate:"required,min=1"`

	OccurredAt time.Time `json:"occurred_at" validate:"required"`
	TenantID   uuid.UUID `json:"tenant_id" validate:"required"`
	WorkflowID string    `json:"workflow_id" validate:"required"`
	RunID      string    `json:"run_id" validate:"required"`

	// Payload contains the event-specific data as JSON.
	Payload json.RawMessage `json:"payload" validate:"required"`

	// Producer identifies the component that emitted this event.
	Producer string `json:"producer" validate:"required"`
}

// Validate checks if the event envelope meets all requirements.
func (e *EventEnvelope) Validate() error {
	return validate.Struct(e)
}

// FeatureApportionedPayload contains the data for FeatureApportioned events.
type FeatureApportionedPayload struct {
	Feature string `json:"feature" validate:"required"`
	ApportionmentSummary
}

// Validate checks if the payload meets all requirements.
func (p *FeatureApportionedPayload) Validate() error {
	return validate.Struct(p)
}

// GenerateIdempotencyKey creates a deterministic key for event deduplication.
// Retries and replays of the same logical event produce the same key.
func GenerateIdempotencyKey(workflowID, eventSuffix string) string {
	sum := sha256.Sum256([]byte(workflowID + eventSuffix))
	return hex.EncodeToString(sum[:])
}

// FeatureApportionedIdempotencyKey returns H(workflow_id || ":apportioned:" || feature).
func FeatureApportionedIdempotencyKey(workflowID, feature string) string {
	return GenerateIdempotencyKey(workflowID, ":apportioned:"+feature)
}

// NewFeatureApportionedEvent creates a FeatureApportioned event envelope.
func NewFeatureApportionedEvent(
	tenantID uuid.UUID,
	workflowID, runID string,
	feature string,
	summary ApportionmentSummary,
) (EventEnvelope, error) {
	payload := FeatureApportionedPayload{Feature: feature, ApportionmentSummary: summary}
	if err := payload.Validate(); err != nil {
		return EventEnvelope{}, fmt.Errorf("invalid feature apportioned payload: %w", err)
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	envelope := EventEnvelope{
		IdempotencyKey: FeatureApportionedIdempotencyKey(workflowID, feature),
		EventType:      EventTypeFeatureApportioned,
		Version:        1,
		OccurredAt:     time.Now(),
		TenantID:       tenantID,
		WorkflowID:     workflowID,
		RunID:          runID,
		Payload:        payloadJSON,
		Producer:       "activity.apportion_feature",
	}

	if err := envelope.Validate(); err != nil {
		return EventEnvelope{}, fmt.Errorf("invalid event envelope: %w", err)
	}

	return envelope, nil
}
