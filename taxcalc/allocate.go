package taxcalc

import (
	"fmt"
	"math"
	"sort"
)

// Bracket is one row of a progressive rate table. UpperBound nil means the
// bracket is unbounded. Rate is a whole-number percentage (23 = 23%).
type Bracket struct {
	LowerBound float64  `json:"lower_bound"`
	UpperBound *float64 `json:"upper_bound"`
	Rate       float64  `json:"rate"`
}

// Allocation is the slice of income that landed in a single bracket.
type Allocation struct {
	Rate          float64 `json:"rate"`
	TaxableAmount float64 `json:"taxable_amount"`
	Tax           float64 `json:"tax"`
}

// AllocationResult holds the total tax plus the per-bracket breakdown.
// Brackets lists only the brackets that received a nonzero allocation,
// in ascending bracket order.
type AllocationResult struct {
	TotalTax float64      `json:"total_tax"`
	Brackets []Allocation `json:"brackets"`
}

// Allocate splits amount across the given rate brackets and computes the tax
// owed per bracket and in total, the way progressive taxation works: each
// slice of income is taxed at its own bracket's rate.
//
// The input may arrive in any order; Allocate sorts a copy by lower bound
// before processing. A zero or negative amount, or an empty bracket table,
// yields a zero result. All arithmetic is plain float64 with no rounding;
// currency rounding belongs to the caller.
func Allocate(amount float64, brackets []Bracket) AllocationResult {
	sorted := make([]Bracket, len(brackets))
	copy(sorted, brackets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LowerBound < sorted[j].LowerBound
	})

	result := AllocationResult{Brackets: []Allocation{}}
	remaining := amount

	for _, b := range sorted {
		if remaining <= 0 {
			break
		}

		upper := math.Inf(1)
		if b.UpperBound != nil {
			upper = *b.UpperBound
		}

		capacity := upper - b.LowerBound
		size := math.Min(capacity, math.Max(0, remaining))
		if size <= 0 {
			continue
		}

		tax := size * b.Rate / 100
		result.TotalTax += tax
		result.Brackets = append(result.Brackets, Allocation{
			Rate:          b.Rate,
			TaxableAmount: size,
			Tax:           tax,
		})
		remaining -= size
	}

	return result
}

// ValidateContiguity checks that a bracket table covers income without gaps
// or overlaps: sorted by lower bound, the table must start at zero, each
// bracket's upper bound must equal the next bracket's lower bound, and only
// the last bracket may be unbounded.
//
// Allocate itself never validates; it silently under-allocates across gaps.
// Callers loading bracket tables from storage should run this check and
// surface the diagnostic instead of trusting the table blindly.
func ValidateContiguity(brackets []Bracket) error {
	if len(brackets) == 0 {
		return fmt.Errorf("bracket table is empty")
	}

	sorted := make([]Bracket, len(brackets))
	copy(sorted, brackets)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LowerBound < sorted[j].LowerBound
	})

	if sorted[0].LowerBound != 0 {
		return fmt.Errorf("first bracket starts at %.2f, expected 0", sorted[0].LowerBound)
	}

	for i, b := range sorted {
		if b.Rate < 0 || b.Rate > 100 {
			return fmt.Errorf("bracket %d: rate %.2f out of range [0, 100]", i, b.Rate)
		}
		if b.UpperBound == nil {
			if i != len(sorted)-1 {
				return fmt.Errorf("bracket %d is unbounded but not last", i)
			}
			continue
		}
		if *b.UpperBound <= b.LowerBound {
			return fmt.Errorf("bracket %d: upper bound %.2f not above lower bound %.2f", i, *b.UpperBound, b.LowerBound)
		}
		if i == len(sorted)-1 {
			return fmt.Errorf("last bracket must be unbounded, got upper bound %.2f", *b.UpperBound)
		}
		if next := sorted[i+1].LowerBound; *b.UpperBound != next {
			return fmt.Errorf("bracket %d ends at %.2f but next starts at %.2f", i, *b.UpperBound, next)
		}
	}

	return nil
}
