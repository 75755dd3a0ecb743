// Package breakdown assembles feature breakdowns in-process: it drives the
// aggregate, apportion and reshape steps for every feature of a request and
// concatenates their rows in feature order.
package breakdown

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-breakdown/internal/domain"
)

// DefaultConcurrency bounds how many features are computed at once.
const DefaultConcurrency = 4

// Assembler computes breakdowns without a Temporal cluster.
type Assembler struct {
	logger      *slog.Logger
	concurrency int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used for per-feature progress.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// WithConcurrency bounds the number of features computed in parallel.
// Values below one mean sequential processing.
func WithConcurrency(n int) Option {
	return func(a *Assembler) {
		if n < 1 {
			n = 1
		}
		a.concurrency = n
	}
}

// NewAssembler creates an Assembler.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{logger: slog.Default(), concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble computes the breakdown of every feature in req.
//
// Features are independent and run concurrently; their rows are concatenated
// in the order of req.Features. The first failure cancels the remaining
// features and Assemble returns that error with no rows.
func (a *Assembler) Assemble(ctx context.Context, req domain.BreakdownRequest) (*domain.BreakdownResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	perFeature := make([][]domain.ResultRow, len(req.Features))
	summaries := make([]domain.ApportionmentSummary, len(req.Features))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, feature := range req.Features {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rule, err := req.Rules.Lookup(feature)
			if err != nil {
				return err
			}
			rows, summary, err := domain.BreakdownFeature(req.Table.Rows, feature, rule, req.Scale)
			if err != nil {
				return fmt.Errorf("feature %q: %w", feature, err)
			}
			a.logger.Debug("feature apportioned",
				"feature", feature,
				"cardinality", summary.Cardinality,
				"grand_total", summary.GrandTotal,
				"distributed", summary.Distributed)
			perFeature[i] = rows
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &domain.BreakdownResult{
		Rows:      domain.Concat(perFeature),
		Summaries: make(map[string]domain.ApportionmentSummary, len(req.Features)),
	}
	for i, feature := range req.Features {
		result.Summaries[feature] = summaries[i]
	}
	a.logger.Info("breakdown assembled", "features", len(req.Features), "rows", len(result.Rows))
	return result, nil
}
