package scoring

import (
	"math"

	"github.com/ahrav/go-corroborate/internal/domain"
	"github.com/ahrav/go-corroborate/internal/similarity"
)

// AspectScore is one defined aspect contribution to an overall score.
type AspectScore struct {
	Aspect domain.Aspect `json:"aspect"`
	Score  float64       `json:"score"`
	Weight float64       `json:"weight"`
}

// weighted pairs a strategy with its positive weight.
type weighted struct {
	strategy similarity.Strategy
	weight   float64
}

// Scorer combines aspect similarities into one pairwise similarity.
// A Scorer is immutable after construction and safe for concurrent use.
type Scorer struct {
	active []weighted
}

// NewScorer builds a scorer for the configuration. Aspects with a weight of
// zero or less are excluded entirely.
func NewScorer(cfg domain.LinkageConfig) *Scorer {
	cfg = cfg.Normalize()
	return NewScorerWithStrategies(cfg.Weights, similarity.NewStrategies(cfg))
}

// NewScorerWithStrategies builds a scorer from explicit strategies.
// Strategies whose aspect has no positive weight are dropped.
func NewScorerWithStrategies(weights domain.WeightConfig, strategies []similarity.Strategy) *Scorer {
	s := &Scorer{}
	for _, st := range strategies {
		if w := weights.Weight(st.Aspect()); w > 0 {
			s.active = append(s.active, weighted{strategy: st, weight: w})
		}
	}
	return s
}

// Overall returns Σ(w·s)/Σ(w) over aspects with positive weight and a defined
// score. Aspects undefined for the pair (both values absent) are dropped rather
// than counted as mismatches. Returns 0 when no aspect qualifies.
func (s *Scorer) Overall(a, b *domain.Record) float64 {
	var num, den float64
	for _, aw := range s.active {
		score, defined := aw.strategy.Compare(a, b)
		if !defined {
			continue
		}
		num += aw.weight * score
		den += aw.weight
	}
	if den == 0 {
		return 0
	}
	return math.Max(0, math.Min(1, num/den))
}

// Breakdown returns the defined aspect scores of a pair in canonical order.
func (s *Scorer) Breakdown(a, b *domain.Record) []AspectScore {
	out := make([]AspectScore, 0, len(s.active))
	for _, aw := range s.active {
		score, defined := aw.strategy.Compare(a, b)
		if !defined {
			continue
		}
		out = append(out, AspectScore{Aspect: aw.strategy.Aspect(), Score: score, Weight: aw.weight})
	}
	return out
}

// Aspects lists the aspects that participate in scoring.
func (s *Scorer) Aspects() []domain.Aspect {
	out := make([]domain.Aspect, len(s.active))
	for i, aw := range s.active {
		out[i] = aw.strategy.Aspect()
	}
	return out
}
