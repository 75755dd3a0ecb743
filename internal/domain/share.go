// Package domain defines the pure data model and algorithms behind feature
// breakdowns: grouping table rows into per-value totals, apportioning those
// totals into fixed-precision percentages that sum to exactly one, and
// reshaping the result into uniform result rows.
//
// Everything in this package is deterministic and free of I/O so it can run
// unchanged inside Temporal activities, the HTTP API, and the CLI.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultScale is the rounding granularity used when none is configured.
// A scale of 1000 yields percentages with three decimal places.
const DefaultScale int64 = 1000

// Share is the aggregated magnitude of one distinct value of a feature.
type Share struct {
	// Value is the category label, kept as text even when the source column
	// held numbers. The empty string stands for the null value.
	Value string `json:"value"`

	// Total is the aggregated magnitude for Value. Never negative.
	Total int64 `json:"total" validate:"min=0"`
}

// Percentage is a rational number with denominator Scale.
// It is the fixed-point form in which apportioned shares are reported.
type Percentage struct {
	Units int64 `json:"units" validate:"min=0"`
	Scale int64 `json:"scale" validate:"min=1"`
}

// NewPercentage returns units/scale.
func NewPercentage(units, scale int64) Percentage {
	return Percentage{Units: units, Scale: scale}
}

// Float64 returns the percentage as a float. Use it for display only; sums of
// the float form are not guaranteed to be exact.
func (p Percentage) Float64() float64 {
	if p.Scale == 0 {
		return 0
	}
	return float64(p.Units) / float64(p.Scale)
}

// String renders the percentage in decimal notation when the scale is a
// power of ten (e.g. "0.334" for 334/1000), and as a fraction otherwise.
func (p Percentage) String() string {
	digits, ok := decimalDigits(p.Scale)
	if !ok {
		return fmt.Sprintf("%d/%d", p.Units, p.Scale)
	}
	if digits == 0 {
		return strconv.FormatInt(p.Units, 10)
	}

	whole := p.Units / p.Scale
	frac := p.Units % p.Scale
	fracStr := strconv.FormatInt(frac, 10)
	return strconv.FormatInt(whole, 10) + "." + strings.Repeat("0", digits-len(fracStr)) + fracStr
}

// decimalDigits reports n such that scale == 10^n.
func decimalDigits(scale int64) (int, bool) {
	if scale <= 0 {
		return 0, false
	}
	n := 0
	for scale%10 == 0 {
		scale /= 10
		n++
	}
	return n, scale == 1
}

// Apportioned is a share together with its apportioned percentage.
type Apportioned struct {
	Share

	// Scaled is floor(Total/GrandTotal * scale), the truncated unit count.
	Scaled int64 `json:"scaled"`

	// Units is Scaled, plus one when the share received a leftover unit.
	Units int64 `json:"units"`

	// Remainder is the relative loss caused by truncation. It is reported for
	// observability; ranking uses exact integer arithmetic instead.
	Remainder float64 `json:"remainder"`

	// Percentage is Units/scale.
	Percentage Percentage `json:"percentage"`
}

// Incremented reports whether the share received one of the leftover units.
func (a Apportioned) Incremented() bool { return a.Units > a.Scaled }
