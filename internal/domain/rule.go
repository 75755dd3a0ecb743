package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RuleKind identifies an aggregation rule variant.
type RuleKind string

const (
	// RuleSumNumeric sums an integer column per feature value.
	RuleSumNumeric RuleKind = "sum"

	// RuleCountIdentifier counts non-null identifiers per feature value.
	RuleCountIdentifier RuleKind = "count"
)

// String returns the string representation of the rule kind.
func (k RuleKind) String() string { return string(k) }

// AggregationRule computes what a single row contributes to the total of its
// feature value. Totals are the sum of contributions, so every rule is an
// associative reduction and can be evaluated in any grouping.
type AggregationRule interface {
	Kind() RuleKind
	// Column is the column the rule reads.
	Column() string
	Contribution(row Row) (int64, error)
	// Check reports whether the rule can run against the table schema.
	Check(t *Table) error
}

// SumNumeric sums the integer column it names. Null fields contribute zero.
type SumNumeric struct{ Col string }

// Kind implements AggregationRule.
func (SumNumeric) Kind() RuleKind { return RuleSumNumeric }

// Column implements AggregationRule.
func (r SumNumeric) Column() string { return r.Col }

// Contribution implements AggregationRule.
func (r SumNumeric) Contribution(row Row) (int64, error) {
	raw := strings.TrimSpace(row[r.Col])
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: column %s: %q is not an integer", ErrInvalidRow, r.Col, raw)
	}
	return n, nil
}

// Check implements AggregationRule.
func (r SumNumeric) Check(t *Table) error {
	col, ok := t.Column(r.Col)
	if !ok {
		return fmt.Errorf("%w: sum column %q not in table", ErrConfiguration, r.Col)
	}
	if col.Type != ColumnInteger {
		return fmt.Errorf("%w: sum column %q is %s, want %s", ErrConfiguration, r.Col, col.Type, ColumnInteger)
	}
	return nil
}

// CountIdentifier counts rows whose identifier column is not null.
type CountIdentifier struct{ Col string }

// Kind implements AggregationRule.
func (CountIdentifier) Kind() RuleKind { return RuleCountIdentifier }

// Column implements AggregationRule.
func (r CountIdentifier) Column() string { return r.Col }

// Contribution implements AggregationRule.
func (r CountIdentifier) Contribution(row Row) (int64, error) {
	if row[r.Col] == "" {
		return 0, nil
	}
	return 1, nil
}

// Check implements AggregationRule.
func (r CountIdentifier) Check(t *Table) error {
	if _, ok := t.Column(r.Col); !ok {
		return fmt.Errorf("%w: count column %q not in table", ErrConfiguration, r.Col)
	}
	return nil
}

// RuleSpec is the serializable form of an AggregationRule.
type RuleSpec struct {
	Kind   RuleKind `json:"kind" validate:"required,oneof=sum count"`
	Column string   `json:"column" validate:"required"`
}

// Rule resolves s into its rule variant.
func (s RuleSpec) Rule() (AggregationRule, error) {
	switch s.Kind {
	case RuleSumNumeric:
		return SumNumeric{Col: s.Column}, nil
	case RuleCountIdentifier:
		return CountIdentifier{Col: s.Column}, nil
	default:
		return nil, fmt.Errorf("%w: unknown rule kind %q", ErrConfiguration, s.Kind)
	}
}

// SpecOf returns the serializable form of r.
func SpecOf(r AggregationRule) RuleSpec {
	return RuleSpec{Kind: r.Kind(), Column: r.Column()}
}

// RuleTable maps feature names to the rule computing their totals.
type RuleTable map[string]RuleSpec

// Lookup resolves the rule registered for feature.
func (rt RuleTable) Lookup(feature string) (AggregationRule, error) {
	spec, ok := rt[feature]
	if !ok {
		return nil, fmt.Errorf("%w: no aggregation rule for feature %q", ErrConfiguration, feature)
	}
	rule, err := spec.Rule()
	if err != nil {
		return nil, fmt.Errorf("feature %q: %w", feature, err)
	}
	return rule, nil
}

// Aggregate groups rows by the value of feature and reduces each group with
// rule. Groups appear in the order their value is first seen; only values
// present in rows are reported, and null forms its own group.
func Aggregate(rows []Row, feature string, rule AggregationRule) ([]Share, error) {
	if rule == nil {
		return nil, fmt.Errorf("%w: no aggregation rule for feature %q", ErrConfiguration, feature)
	}

	index := make(map[string]int)
	var shares []Share
	for i, row := range rows {
		contribution, err := rule.Contribution(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		value := row[feature]
		pos, ok := index[value]
		if !ok {
			pos = len(shares)
			index[value] = pos
			shares = append(shares, Share{Value: value})
		}

		total, err := addChecked(shares[pos].Total, contribution)
		if err != nil {
			return nil, fmt.Errorf("feature %q value %q: %w", feature, value, err)
		}
		shares[pos].Total = total
	}
	return shares, nil
}

func addChecked(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, fmt.Errorf("%w: %d + %d", ErrNumericOverflow, a, b)
	}
	return a + b, nil
}
