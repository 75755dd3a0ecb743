package aggregation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ahrav/go-breakdown/internal/domain"
	"github.com/ahrav/go-breakdown/pkg/activity"
	"github.com/ahrav/go-breakdown/pkg/events"
)

// EventEmitter emits breakdown events through the base activity sink.
type EventEmitter struct {
	base activity.BaseActivities
}

// NewEventEmitter creates a new EventEmitter with the provided base activities.
func NewEventEmitter(base activity.BaseActivities) *EventEmitter {
	return &EventEmitter{base: base}
}

// EmitFeatureApportioned emits a FeatureApportioned event for feature.
// Emission is best-effort; failures are logged only.
func (e *EventEmitter) EmitFeatureApportioned(
	ctx context.Context,
	feature string,
	summary domain.ApportionmentSummary,
	wfCtx activity.WorkflowContext,
) {
	tenantID, err := uuid.Parse(wfCtx.TenantID)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to parse tenant ID for FeatureApportioned event",
			"tenant_id", wfCtx.TenantID,
			"error", err)
		return
	}

	domainEvent, err := domain.NewFeatureApportionedEvent(
		tenantID,
		wfCtx.WorkflowID,
		wfCtx.RunID,
		feature,
		summary,
	)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to create FeatureApportioned event",
			"feature", feature,
			"error", err)
		return
	}

	e.base.EmitEventSafe(ctx, convertDomainEventToEnvelope(domainEvent),
		fmt.Sprintf("FeatureApportioned[%s]", feature))
}

// convertDomainEventToEnvelope maps a domain event onto the generic envelope.
func convertDomainEventToEnvelope(domainEvent domain.EventEnvelope) events.Envelope {
	return events.Envelope{
		ID:             domainEvent.IdempotencyKey,
		Type:           string(domainEvent.EventType),
		Source:         domainEvent.Producer,
		Version:        fmt.Sprintf("%d.0.0", domainEvent.Version),
		Timestamp:      domainEvent.OccurredAt,
		IdempotencyKey: domainEvent.IdempotencyKey,
		TenantID:       domainEvent.TenantID.String(),
		WorkflowID:     domainEvent.WorkflowID,
		RunID:          domainEvent.RunID,
		Payload:        domainEvent.Payload,
	}
}

// errInvalid marks a struct validation failure as an invalid request.
func errInvalid(err error) error {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
}
