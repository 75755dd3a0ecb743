package domain

import "errors"

// ErrConfiguration indicates that a feature has no usable aggregation rule:
// the rule is missing, names an unknown kind, or refers to a column the
// table does not have.
var ErrConfiguration = errors.New("invalid breakdown configuration")

// ErrInvalidScale indicates a scale that is not a positive integer.
var ErrInvalidScale = errors.New("scale must be a positive integer")

// ErrInvalidShare indicates a negative total or a duplicated value among the
// shares of one feature.
var ErrInvalidShare = errors.New("invalid share")

// ErrInvalidRow indicates a row whose numeric column cannot be parsed.
var ErrInvalidRow = errors.New("invalid row")

// ErrInsufficientCardinality indicates that every total is zero and there are
// fewer shares than units to hand out.
var ErrInsufficientCardinality = errors.New("insufficient cardinality for apportionment")

// ErrScaleTooSmall indicates that more leftover units remain than there are
// shares to receive them.
var ErrScaleTooSmall = errors.New("scale too small for apportionment")

// ErrNumericOverflow indicates that an aggregated total exceeds the int64 range.
var ErrNumericOverflow = errors.New("numeric overflow")

// ErrInvariantViolated indicates that apportioned units do not sum to the scale.
var ErrInvariantViolated = errors.New("apportionment invariant violated")

// ErrInvalidRequest indicates that a breakdown request contains invalid data.
var ErrInvalidRequest = errors.New("invalid breakdown request")
