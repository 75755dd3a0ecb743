// Package aggregation implements the Temporal activities of a feature
// breakdown: grouping rows into per-value totals and apportioning those
// totals into exact-sum percentages.
package aggregation

import (
	"context"
	"fmt"

	"github.com/ahrav/go-breakdown/internal/domain"
	bderrors "github.com/ahrav/go-breakdown/internal/errors"
	"github.com/ahrav/go-breakdown/pkg/activity"
)

// Activities handles breakdown-specific Temporal activities.
type Activities struct {
	activity.BaseActivities
	events *EventEmitter
}

// NewActivities creates breakdown activities on top of base.
func NewActivities(base activity.BaseActivities) *Activities {
	return &Activities{
		BaseActivities: base,
		events:         NewEventEmitter(base),
	}
}

// AggregateFeature groups the input rows by feature value and reduces each
// group with the configured rule. When the input carries the table schema,
// a rule that does not fit it fails as a configuration error.
//
// Every failure is non-retryable: the activity is a pure function of its
// input and a retry would fail the same way.
func (a *Activities) AggregateFeature(
	ctx context.Context,
	input domain.AggregateFeatureInput,
) (*domain.AggregateFeatureOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, bderrors.ToApplicationError("AggregateFeature", errInvalid(err))
	}

	wfCtx := a.GetWorkflowContext(ctx)
	activity.SafeLog(ctx, "Starting AggregateFeature activity",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"feature", input.Feature,
		"rule", input.Rule.Kind,
		"rows", len(input.Rows))

	rule, err := input.Rule.Rule()
	if err != nil {
		return nil, bderrors.ToApplicationError("AggregateFeature", err)
	}
	if len(input.Columns) > 0 {
		if err := rule.Check(&domain.Table{Columns: input.Columns}); err != nil {
			return nil, bderrors.ToApplicationError("AggregateFeature",
				fmt.Errorf("feature %q: %w", input.Feature, err))
		}
	}

	shares, err := domain.Aggregate(input.Rows, input.Feature, rule)
	if err != nil {
		activity.SafeLogError(ctx, "AggregateFeature failed",
			"feature", input.Feature,
			"error", err)
		return nil, bderrors.ToApplicationError("AggregateFeature", err)
	}

	output := &domain.AggregateFeatureOutput{Feature: input.Feature, Shares: shares}
	if err := output.Validate(); err != nil {
		return nil, bderrors.ToApplicationError("AggregateFeature", errInvalid(err))
	}

	activity.SafeLog(ctx, "AggregateFeature completed",
		"feature", input.Feature,
		"distinct_values", len(shares))

	return output, nil
}

// ApportionFeature turns the totals of one feature into result rows whose
// percentages sum to exactly one, then emits a FeatureApportioned event.
func (a *Activities) ApportionFeature(
	ctx context.Context,
	input domain.ApportionFeatureInput,
) (*domain.ApportionFeatureOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, bderrors.ToApplicationError("ApportionFeature", errInvalid(err))
	}

	wfCtx := a.GetWorkflowContext(ctx)
	activity.SafeLog(ctx, "Starting ApportionFeature activity",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"feature", input.Feature,
		"shares", len(input.Shares),
		"scale", input.Scale)

	apportioned, err := domain.Apportion(input.Shares, input.Scale)
	if err != nil {
		activity.SafeLogError(ctx, "ApportionFeature failed",
			"feature", input.Feature,
			"error", err)
		return nil, bderrors.ToApplicationError("ApportionFeature", err)
	}

	output := &domain.ApportionFeatureOutput{
		Feature: input.Feature,
		Rows:    domain.FeatureRows(input.Feature, apportioned),
		Summary: domain.Summarize(apportioned, input.Scale),
	}
	if err := output.Validate(); err != nil {
		return nil, bderrors.ToApplicationError("ApportionFeature", errInvalid(err))
	}

	a.events.EmitFeatureApportioned(ctx, input.Feature, output.Summary, wfCtx)

	activity.SafeLog(ctx, "ApportionFeature completed",
		"feature", input.Feature,
		"grand_total", output.Summary.GrandTotal,
		"distributed", output.Summary.Distributed)

	return output, nil
}
