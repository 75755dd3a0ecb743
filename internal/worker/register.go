// Package worker exposes helpers to register workflows/activities with a Temporal worker.
package worker

import (
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-breakdown/internal/aggregation"
	"github.com/ahrav/go-breakdown/internal/workflow"
	"github.com/ahrav/go-breakdown/pkg/activity"
	"github.com/ahrav/go-breakdown/pkg/events"
)

// Registry is the subset of a Temporal worker used for registration.
// Both sdkworker.Worker and the workflow test environment satisfy it.
type Registry interface {
	RegisterWorkflow(w any)
	RegisterActivity(a any)
}

var _ Registry = (sdkworker.Worker)(nil)

// RegisterAll registers the breakdown workflow and its activities.
// Call it once during worker startup, before the worker starts polling.
func RegisterAll(w Registry, sink events.EventSink, tenantID string) {
	if sink == nil {
		sink = events.NewNoOpEventSink()
	}
	base := activity.NewBaseActivities(sink, tenantID)
	activities := aggregation.NewActivities(base)

	w.RegisterWorkflow(workflow.BreakdownWorkflow)
	w.RegisterActivity(activities)
}
