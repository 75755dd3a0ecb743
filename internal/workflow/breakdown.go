package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-breakdown/internal/aggregation"
	"github.com/ahrav/go-breakdown/internal/domain"
	bderrors "github.com/ahrav/go-breakdown/internal/errors"
)

// DefaultActivityTimeout bounds a single aggregate or apportion activity.
const DefaultActivityTimeout = 5 * time.Minute

// nonRetryableTypes are never retried by the activity retry policy.
var nonRetryableTypes = []string{
	string(bderrors.ErrorTypeConfiguration),
	string(bderrors.ErrorTypeInsufficientCardinality),
	string(bderrors.ErrorTypeScaleTooSmall),
	string(bderrors.ErrorTypeNumericOverflow),
	string(bderrors.ErrorTypeValidation),
	string(bderrors.ErrorTypeInvariant),
}

// BreakdownWorkflow computes the breakdown of every requested feature.
//
// Features run concurrently, each as AggregateFeature followed by
// ApportionFeature. Result rows are concatenated in the requested feature
// order. The first failing feature cancels the others and fails the whole
// workflow; no partial result is returned.
func BreakdownWorkflow(
	ctx workflow.Context,
	req domain.BreakdownRequest,
) (*domain.BreakdownResult, error) {
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "breakdown.v", workflow.DefaultVersion, currentVersion)

	if err := req.Validate(); err != nil {
		return nil, bderrors.ToApplicationError("BreakdownWorkflow", err)
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: DefaultActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        time.Minute,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: nonRetryableTypes,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	ctx, cancel := workflow.WithCancel(ctx)
	defer cancel()

	logger := workflow.GetLogger(ctx)
	logger.Info("Starting breakdown", "features", len(req.Features), "rows", len(req.Table.Rows), "scale", req.Scale)

	perFeature := make([][]domain.ResultRow, len(req.Features))
	summaries := make(map[string]domain.ApportionmentSummary, len(req.Features))
	var firstErr error

	wg := workflow.NewWaitGroup(ctx)
	for i, feature := range req.Features {
		wg.Add(1)
		workflow.Go(ctx, func(gctx workflow.Context) {
			defer wg.Done()

			out, err := runFeature(gctx, req, feature)
			if err != nil {
				if firstErr == nil {
					firstErr = bderrors.ToApplicationError("feature "+feature, err)
					cancel()
				}
				return
			}
			perFeature[i] = out.Rows
			summaries[feature] = out.Summary
		})
	}
	wg.Wait(ctx)

	if firstErr != nil {
		logger.Error("Breakdown failed", "error", firstErr)
		return nil, firstErr
	}

	result := &domain.BreakdownResult{Rows: domain.Concat(perFeature), Summaries: summaries}
	logger.Info("Breakdown completed", "rows", len(result.Rows))
	return result, nil
}

// runFeature aggregates and apportions a single feature.
func runFeature(
	ctx workflow.Context,
	req domain.BreakdownRequest,
	feature string,
) (*domain.ApportionFeatureOutput, error) {
	var a *aggregation.Activities

	var aggregated domain.AggregateFeatureOutput
	err := workflow.ExecuteActivity(ctx, a.AggregateFeature, domain.AggregateFeatureInput{
		Feature: feature,
		Rule:    req.Rules[feature],
		Columns: req.Table.Columns,
		Rows:    req.Table.Rows,
	}).Get(ctx, &aggregated)
	if err != nil {
		return nil, err
	}

	var apportioned domain.ApportionFeatureOutput
	err = workflow.ExecuteActivity(ctx, a.ApportionFeature, domain.ApportionFeatureInput{
		Feature: feature,
		Shares:  aggregated.Shares,
		Scale:   req.Scale,
	}).Get(ctx, &apportioned)
	if err != nil {
		return nil, err
	}
	return &apportioned, nil
}
