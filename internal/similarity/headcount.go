package similarity

import (
	"math"

	"github.com/ahrav/go-corroborate/internal/domain"
)

// HeadcountCosine scores headcounts by the cosine of [male, female, kids, total].
// Missing components count as 0 and total is derived when not reported.
type HeadcountCosine struct{}

// Aspect implements Strategy.
func (HeadcountCosine) Aspect() domain.Aspect { return domain.AspectHeadcount }

// Compare implements Strategy.
func (HeadcountCosine) Compare(a, b *domain.Record) (float64, bool) {
	if p := presenceOf(a.HasHeadcount(), b.HasHeadcount()); p != bothPresent {
		return missing(p)
	}
	return cosine(a.Headcount.Vector(), b.Headcount.Vector()), true
}

// cosine returns the cosine similarity of two non-negative vectors clamped to [0,1].
// A zero vector only matches another zero vector.
func cosine(x, y [4]float64) float64 {
	if x == y {
		return 1
	}
	var dot, nx, ny float64
	for i := range x {
		dot += x[i] * y[i]
		nx += x[i] * x[i]
		ny += y[i] * y[i]
	}
	if nx == 0 || ny == 0 {
		return 0
	}
	c := dot / math.Sqrt(nx*ny)
	return math.Max(0, math.Min(1, c))
}

// HeadcountTolerance scores 1 when every jointly reported sub-count differs by
// at most SubFieldTolerance and the totals differ by at most TotalTolerance.
type HeadcountTolerance struct {
	SubFieldTolerance float64
	TotalTolerance    float64
}

// Aspect implements Strategy.
func (HeadcountTolerance) Aspect() domain.Aspect { return domain.AspectHeadcount }

// Compare implements Strategy.
func (s HeadcountTolerance) Compare(a, b *domain.Record) (float64, bool) {
	if p := presenceOf(a.HasHeadcount(), b.HasHeadcount()); p != bothPresent {
		return missing(p)
	}
	for _, f := range domain.HeadcountFields() {
		va, okA := a.Headcount.Field(f)
		vb, okB := b.Headcount.Field(f)
		if !okA || !okB {
			continue
		}
		limit := s.SubFieldTolerance
		if f == domain.HeadcountTotal {
			limit = s.TotalTolerance
		}
		if math.Abs(va-vb) > limit {
			return 0, true
		}
	}
	return 1, true
}
