// Package similarity implements the per-aspect similarity functions used to
// compare two incident records.
//
// Every aspect has a continuous strategy that produces graded scores and most
// have a strict variant that produces 0 or 1 from fixed tolerances. The two
// philosophies share one interface so the scorer never needs to know which
// one is active.
//
// All strategies are pure and total. Missing data never fabricates
// similarity: when exactly one record carries the attribute the score is 0,
// and when neither does the score is undefined so the scorer can drop the
// aspect from the weighted average instead of counting it as a mismatch.
package similarity

import (
	"github.com/ahrav/go-corroborate/internal/domain"
)

// Strategy compares one aspect of two records.
type Strategy interface {
	// Aspect returns the aspect this strategy scores.
	Aspect() domain.Aspect

	// Compare returns a score in [0,1] and whether the score is defined.
	// The score is undefined only when both records lack the attribute.
	// Implementations must be symmetric in a and b.
	Compare(a, b *domain.Record) (score float64, defined bool)
}

// presence classifies how many sides of a comparison carry an attribute.
type presence int

const (
	bothAbsent presence = iota
	oneAbsent
	bothPresent
)

func presenceOf(hasA, hasB bool) presence {
	switch {
	case hasA && hasB:
		return bothPresent
	case hasA || hasB:
		return oneAbsent
	default:
		return bothAbsent
	}
}

// missing turns a non-bothPresent presence into the canonical result.
func missing(p presence) (float64, bool) {
	return 0, p == oneAbsent
}

func boolScore(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

// NewStrategies builds one strategy per aspect in canonical order from the
// configuration. Aspects without a strict variant always use the exact match
// strategy; unknown strategy names fall back to continuous.
func NewStrategies(cfg domain.LinkageConfig) []Strategy {
	cfg = cfg.Normalize()
	tol := cfg.Tolerances

	strategies := make([]Strategy, 0, len(domain.Aspects()))
	for _, aspect := range domain.Aspects() {
		strict := cfg.Strategy(aspect) == domain.StrategyStrict
		switch aspect {
		case domain.AspectDate:
			if strict {
				strategies = append(strategies, DateWindow{WindowDays: tol.StrictDateWindowDays})
			} else {
				strategies = append(strategies, DateDecay{ToleranceDays: tol.DateToleranceDays})
			}
		case domain.AspectLocation:
			if strict {
				strategies = append(strategies, LocationExact{})
			} else {
				strategies = append(strategies, LocationTokens{CountryBonus: tol.LocationCountryBonus})
			}
		case domain.AspectHeadcount:
			if strict {
				strategies = append(strategies, HeadcountTolerance{
					SubFieldTolerance: tol.HeadcountSubFieldTolerance,
					TotalTolerance:    tol.HeadcountTotalTolerance,
				})
			} else {
				strategies = append(strategies, HeadcountCosine{})
			}
		case domain.AspectMonetaryAmount:
			if strict {
				strategies = append(strategies, MonetaryTolerance{Tolerance: tol.StrictMonetaryTolerance})
			} else {
				strategies = append(strategies, MonetaryRatio{})
			}
		case domain.AspectEventTypes:
			strategies = append(strategies, EventTypesMatch{})
		case domain.AspectTransport:
			strategies = append(strategies, TransportMatch{})
		case domain.AspectConditions:
			strategies = append(strategies, ConditionsMatch{})
		}
	}
	return strategies
}
