package similarity

import (
	"math"

	"github.com/ahrav/go-corroborate/internal/domain"
)

// MonetaryRatio scores amounts with max(0, 1 - |a-b| / max(a, b, 1)).
// The floor of 1 in the denominator keeps tiny amounts from looking wildly different.
type MonetaryRatio struct{}

// Aspect implements Strategy.
func (MonetaryRatio) Aspect() domain.Aspect { return domain.AspectMonetaryAmount }

// Compare implements Strategy.
func (MonetaryRatio) Compare(a, b *domain.Record) (float64, bool) {
	if p := presenceOf(a.MonetaryAmount != nil, b.MonetaryAmount != nil); p != bothPresent {
		return missing(p)
	}
	x, y := *a.MonetaryAmount, *b.MonetaryAmount
	denom := math.Max(math.Max(x, y), 1)
	return math.Max(0, 1-math.Abs(x-y)/denom), true
}

// MonetaryTolerance scores 1 when the relative difference is within Tolerance.
type MonetaryTolerance struct {
	// Tolerance is a fraction such as 0.10 or 0.25.
	Tolerance float64
}

// Aspect implements Strategy.
func (MonetaryTolerance) Aspect() domain.Aspect { return domain.AspectMonetaryAmount }

// Compare implements Strategy.
func (s MonetaryTolerance) Compare(a, b *domain.Record) (float64, bool) {
	if p := presenceOf(a.MonetaryAmount != nil, b.MonetaryAmount != nil); p != bothPresent {
		return missing(p)
	}
	return boolScore(RelativeDifference(*a.MonetaryAmount, *b.MonetaryAmount) <= s.Tolerance), true
}

// RelativeDifference returns |a-b| / max(a, b), or 0 when both are zero.
func RelativeDifference(a, b float64) float64 {
	largest := math.Max(a, b)
	if largest == 0 {
		return 0
	}
	return math.Abs(a-b) / largest
}
