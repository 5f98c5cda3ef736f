package seasonal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// SharesSumTolerance is how far the shares may stray from a total of 1.
const SharesSumTolerance = 1e-3

// MonthlyShares is the fraction of yearly usage per calendar month,
// index 0 being January.
type MonthlyShares [MonthsPerYear]float64

// SharesFromWeights normalises arbitrary non-negative monthly weights.
func SharesFromWeights(weights [MonthsPerYear]float64) (MonthlyShares, error) {
	total := floats.Sum(weights[:])
	if total <= 0 {
		return MonthlyShares{}, fmt.Errorf("%w: weights sum to %g", ErrInvalidShares, total)
	}
	var shares MonthlyShares
	for i, w := range weights {
		shares[i] = w / total
	}
	return shares, shares.Validate()
}

func (s MonthlyShares) Validate() error {
	for month, share := range s {
		if share < 0 || math.IsNaN(share) {
			return fmt.Errorf("%w: month %d has share %g", ErrInvalidShares, month+1, share)
		}
	}
	if total := floats.Sum(s[:]); math.Abs(total-1) > SharesSumTolerance {
		return fmt.Errorf("%w: shares sum to %g", ErrInvalidShares, total)
	}
	return nil
}
