package domain

import (
	"cmp"
	"fmt"
	"math"
	"math/bits"
	"slices"
)

// GrandTotal sums the totals of shares. It fails on a negative total and when
// the sum does not fit in an int64.
func GrandTotal(shares []Share) (int64, error) {
	var sum int64
	for _, s := range shares {
		if s.Total < 0 {
			return 0, fmt.Errorf("%w: value %q has negative total %d", ErrInvalidShare, s.Value, s.Total)
		}
		if s.Total > math.MaxInt64-sum {
			return 0, fmt.Errorf("%w: grand total exceeds %d", ErrNumericOverflow, int64(math.MaxInt64))
		}
		sum += s.Total
	}
	return sum, nil
}

// candidate carries the exact truncation state of one share.
// The relative remainder of a share is lost/(total*scale); zero for a zero total.
type candidate struct {
	index  int
	value  string
	total  uint64
	scaled uint64
	lost   uint64 // (total*scale) mod grand
}

func (c candidate) denominator() uint64 {
	if c.total == 0 {
		return 1
	}
	return c.total
}

// compareCandidates orders by relative remainder, largest first, then by value.
// Remainders are compared by cross multiplication so that the ordering never
// depends on floating-point rounding. The common factor of scale cancels out.
func compareCandidates(a, b candidate) int {
	aHi, aLo := bits.Mul64(a.lost, b.denominator())
	bHi, bLo := bits.Mul64(b.lost, a.denominator())
	if c := compare128(bHi, bLo, aHi, aLo); c != 0 {
		return c
	}
	return cmp.Compare(a.value, b.value)
}

func compare128(xHi, xLo, yHi, yLo uint64) int {
	if c := cmp.Compare(xHi, yHi); c != 0 {
		return c
	}
	return cmp.Compare(xLo, yLo)
}

// Apportion converts shares into percentages with denominator scale that sum
// to exactly one, using the largest-remainder method.
//
// Each share first receives floor(total/grand * scale) units. The units lost
// to truncation are then handed out one at a time to the shares with the
// largest relative remainder, ties going to the lexicographically smaller
// value. Every share therefore ends with either its truncated unit count or
// one more, and the units sum to scale.
//
// When every total is zero, all remainders tie and the first scale shares in
// value order receive one unit each; fewer than scale shares is
// ErrInsufficientCardinality.
//
// With a positive grand total the fractional parts of n shares sum to less
// than n, so at most n-1 units are left over. ErrScaleTooSmall guards that
// bound and is not reachable from valid input.
//
// The result keeps the order of shares.
func Apportion(shares []Share, scale int64) ([]Apportioned, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidScale, scale)
	}
	if err := checkUniqueValues(shares); err != nil {
		return nil, err
	}
	grand, err := GrandTotal(shares)
	if err != nil {
		return nil, err
	}

	s, g := uint64(scale), uint64(grand)
	cands := make([]candidate, len(shares))
	var truncated uint64
	for i, sh := range shares {
		c := candidate{index: i, value: sh.Value, total: uint64(sh.Total)}
		if g > 0 {
			// total <= grand, so the quotient fits in 64 bits and Div64 cannot panic.
			hi, lo := bits.Mul64(c.total, s)
			c.scaled, c.lost = bits.Div64(hi, lo, g)
		}
		truncated += c.scaled
		cands[i] = c
	}

	n := uint64(len(shares))
	leftover := s - truncated
	if g == 0 && n < s {
		return nil, fmt.Errorf("%w: all totals are zero and %d shares cannot absorb %d units",
			ErrInsufficientCardinality, n, s)
	}
	if leftover > n {
		return nil, fmt.Errorf("%w: %d leftover units for %d shares", ErrScaleTooSmall, leftover, n)
	}

	ranked := slices.Clone(cands)
	slices.SortFunc(ranked, compareCandidates)

	units := make([]uint64, len(cands))
	for i, c := range cands {
		units[i] = c.scaled
	}
	for _, c := range ranked[:leftover] {
		units[c.index]++
	}

	var sum uint64
	for _, u := range units {
		sum += u
	}
	if sum != s {
		return nil, fmt.Errorf("%w: units sum to %d, want %d", ErrInvariantViolated, sum, s)
	}

	out := make([]Apportioned, len(shares))
	for i, sh := range shares {
		c := cands[i]
		var remainder float64
		if c.total > 0 {
			remainder = float64(c.lost) / (float64(c.total) * float64(s))
		}
		out[i] = Apportioned{
			Share:      sh,
			Scaled:     int64(c.scaled),
			Units:      int64(units[i]),
			Remainder:  remainder,
			Percentage: NewPercentage(int64(units[i]), scale),
		}
	}
	return out, nil
}

func checkUniqueValues(shares []Share) error {
	seen := make(map[string]struct{}, len(shares))
	for _, s := range shares {
		if _, dup := seen[s.Value]; dup {
			return fmt.Errorf("%w: duplicate value %q", ErrInvalidShare, s.Value)
		}
		seen[s.Value] = struct{}{}
	}
	return nil
}

// ApportionmentSummary describes one feature's apportionment for reporting.
type ApportionmentSummary struct {
	Cardinality int   `json:"cardinality" validate:"min=0"`
	GrandTotal  int64 `json:"grand_total" validate:"min=0"`
	Scale       int64 `json:"scale" validate:"min=1"`
	// Distributed is the number of shares that received a leftover unit.
	Distributed int `json:"distributed" validate:"min=0"`
}

// Summarize reports cardinality, grand total and distributed units of an
// apportionment produced with scale.
func Summarize(apportioned []Apportioned, scale int64) ApportionmentSummary {
	summary := ApportionmentSummary{Cardinality: len(apportioned), Scale: scale}
	for _, a := range apportioned {
		summary.GrandTotal += a.Total
		if a.Incremented() {
			summary.Distributed++
		}
	}
	return summary
}
