package similarity

import (
	"math"

	"github.com/ahrav/go-corroborate/internal/domain"
)

// DateDecay scores dates with exp(-Δdays/τ).
// Same-day reports score 1 and the score halves roughly every 0.7τ days.
type DateDecay struct {
	// ToleranceDays is τ. Non-positive values use the default of 7.
	ToleranceDays float64
}

// Aspect implements Strategy.
func (DateDecay) Aspect() domain.Aspect { return domain.AspectDate }

// Compare implements Strategy.
func (s DateDecay) Compare(a, b *domain.Record) (float64, bool) {
	if p := presenceOf(a.Date != nil, b.Date != nil); p != bothPresent {
		return missing(p)
	}
	tau := s.ToleranceDays
	if tau <= 0 || math.IsNaN(tau) {
		tau = domain.DefaultDateToleranceDays
	}
	return math.Exp(-a.Date.DaysBetween(*b.Date) / tau), true
}

// DateWindow scores 1 when the dates are at most WindowDays apart, else 0.
type DateWindow struct {
	WindowDays float64
}

// Aspect implements Strategy.
func (DateWindow) Aspect() domain.Aspect { return domain.AspectDate }

// Compare implements Strategy.
func (s DateWindow) Compare(a, b *domain.Record) (float64, bool) {
	if p := presenceOf(a.Date != nil, b.Date != nil); p != bothPresent {
		return missing(p)
	}
	return boolScore(a.Date.DaysBetween(*b.Date) <= s.WindowDays), true
}
