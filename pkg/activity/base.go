// Package activity provides shared infrastructure for Temporal activity
// implementations: workflow context extraction, context-safe logging,
// heartbeats and best-effort event emission.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"github.com/ahrav/go-breakdown/pkg/events"
)

// DefaultTenantID is used when no tenant has been configured.
const DefaultTenantID = "550e8400-e29b-41d4-a716-446655440000"

// WorkflowContext identifies the workflow execution an activity runs for.
type WorkflowContext struct {
	WorkflowID string
	RunID      string
	TenantID   string
	ActivityID string
}

// BaseActivities is embedded by every activity type.
type BaseActivities struct {
	eventSink events.EventSink
	tenantID  string
}

// NewBaseActivities creates BaseActivities emitting to sink on behalf of
// tenantID. A nil sink disables event emission; an empty tenant falls back to
// DefaultTenantID.
func NewBaseActivities(sink events.EventSink, tenantID string) BaseActivities {
	if tenantID == "" {
		tenantID = DefaultTenantID
	}
	return BaseActivities{eventSink: sink, tenantID: tenantID}
}

// TenantID returns the tenant events are attributed to.
func (b *BaseActivities) TenantID() string {
	if b.tenantID == "" {
		return DefaultTenantID
	}
	return b.tenantID
}

// GetWorkflowContext extracts the workflow execution from ctx. Outside an
// activity (plain unit tests, the HTTP API) activity.GetInfo panics; a
// synthetic local context is returned instead.
func (b *BaseActivities) GetWorkflowContext(ctx context.Context) WorkflowContext {
	wfCtx := WorkflowContext{TenantID: b.TenantID()}

	func() {
		defer func() {
			if r := recover(); r != nil {
				wfCtx.WorkflowID = "local-" + uuid.NewString()
				wfCtx.RunID = "local-run"
				wfCtx.ActivityID = "local-activity"
			}
		}()

		info := activity.GetInfo(ctx)
		wfCtx.WorkflowID = info.WorkflowExecution.ID
		wfCtx.RunID = info.WorkflowExecution.RunID
		wfCtx.ActivityID = info.ActivityID
	}()

	return wfCtx
}

// EmitEventSafe appends envelope to the event sink, retrying once after a
// short delay. Failures are logged and never returned: events feed
// projections, they do not decide the outcome of a breakdown.
func (b *BaseActivities) EmitEventSafe(
	ctx context.Context,
	envelope events.Envelope,
	description string,
) {
	if b.eventSink == nil {
		return
	}

	const maxAttempts = 2
	const retryDelay = 200 * time.Millisecond

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				SafeLogError(ctx, fmt.Sprintf("Event emission cancelled: %s", description),
					"event_type", envelope.Type)
				return
			}
		}

		if err := b.eventSink.Append(ctx, envelope); err != nil {
			lastErr = err
			continue
		}

		SafeLog(ctx, fmt.Sprintf("Event emitted: %s", description),
			"event_type", envelope.Type,
			"idempotency_key", envelope.IdempotencyKey)
		return
	}

	SafeLogError(ctx, fmt.Sprintf("Failed to emit %s after %d attempts", description, maxAttempts),
		"event_type", envelope.Type,
		"error", lastErr)
}

// RecordHeartbeat records a heartbeat when running inside an activity.
func (b *BaseActivities) RecordHeartbeat(ctx context.Context, details ...any) {
	RecordHeartbeat(ctx, details...)
}

// SafeLog logs at INFO through the activity logger. Outside an activity
// context the call is dropped.
func SafeLog(ctx context.Context, msg string, keyvals ...any) {
	defer func() { _ = recover() }()
	activity.GetLogger(ctx).Info(msg, keyvals...)
}

// SafeLogError logs at ERROR through the activity logger. Outside an
// activity context the call is dropped.
func SafeLogError(ctx context.Context, msg string, keyvals ...any) {
	defer func() { _ = recover() }()
	activity.GetLogger(ctx).Error(msg, keyvals...)
}

// RecordHeartbeat records activity heartbeat with details, ignoring
// non-activity contexts.
func RecordHeartbeat(ctx context.Context, details ...any) {
	defer func() { _ = recover() }()
	activity.RecordHeartbeat(ctx, details...)
}
