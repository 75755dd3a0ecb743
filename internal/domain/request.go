package domain

import (
	"errors"
	"fmt"
)

// BreakdownRequest asks for the breakdown of every listed feature of a table.
// Features are processed, and their rows reported, in the listed order.
type BreakdownRequest struct {
	Table    Table     `json:"table" validate:"required"`
	Features []string  `json:"features" validate:"required,min=1,unique,dive,required"`
	Rules    RuleTable `json:"rules" validate:"required,dive"`
	Scale    int64     `json:"scale" validate:"min=1"`
}

// Validate checks the request shape and that every feature is a column of
// the table with a rule that fits the schema.
func (r *BreakdownRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	var errs []error
	for _, feature := range r.Features {
		if _, ok := r.Table.Column(feature); !ok {
			errs = append(errs, fmt.Errorf("%w: feature %q not in table", ErrConfiguration, feature))
			continue
		}
		rule, err := r.Rules.Lookup(feature)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := rule.Check(&r.Table); err != nil {
			errs = append(errs, fmt.Errorf("feature %q: %w", feature, err))
		}
	}
	return errors.Join(errs...)
}

// BreakdownResult is the concatenated breakdown of all requested features.
type BreakdownResult struct {
	Rows      []ResultRow                     `json:"rows"`
	Summaries map[string]ApportionmentSummary `json:"summaries,omitempty"`
}

// AggregateFeatureInput is the input of the AggregateFeature operation.
type AggregateFeatureInput struct {
	Feature string   `json:"feature" validate:"required"`
	Rule    RuleSpec `json:"rule" validate:"required"`
	// Columns is the table schema. When set, the rule is checked against it
	// before any row is read.
	Columns []Column `json:"columns,omitempty" validate:"dive"`
	Rows    []Row    `json:"rows"`
}

// Validate checks the input shape.
func (i *AggregateFeatureInput) Validate() error { return validate.Struct(i) }

// AggregateFeatureOutput carries the totals of one feature.
type AggregateFeatureOutput struct {
	Feature string  `json:"feature" validate:"required"`
	Shares  []Share `json:"shares" validate:"dive"`
}

// Validate checks the output shape.
func (o *AggregateFeatureOutput) Validate() error { return validate.Struct(o) }

// ApportionFeatureInput is the input of the ApportionFeature operation.
type ApportionFeatureInput struct {
	Feature string  `json:"feature" validate:"required"`
	Shares  []Share `json:"shares" validate:"dive"`
	Scale   int64   `json:"scale" validate:"min=1"`
}

// Validate checks the input shape.
func (i *ApportionFeatureInput) Validate() error { return validate.Struct(i) }

// ApportionFeatureOutput carries the result rows of one feature.
type ApportionFeatureOutput struct {
	Feature string               `json:"feature" validate:"required"`
	Rows    []ResultRow          `json:"rows" validate:"dive"`
	Summary ApportionmentSummary `json:"summary"`
}

// Validate checks the output shape.
func (o *ApportionFeatureOutput) Validate() error { return validate.Struct(o) }
