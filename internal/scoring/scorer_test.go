package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-corroborate/internal/domain"
	"github.com/ahrav/go-corroborate/internal/similarity"
)

func TestScorer_Overall(t *testing.T) {
	date := func(s float64) similarity.Strategy { return fixedStrategy{domain.AspectDate, s, true} }
	loc := func(s float64) similarity.Strategy { return fixedStrategy{domain.AspectLocation, s, true} }
	undefinedLoc := fixedStrategy{aspect: domain.AspectLocation}

	tests := []struct {
		name       string
		weights    domain.WeightConfig
		strategies []similarity.Strategy
		want       float64
	}{
		{
			name:       "weighted mean",
			weights:    domain.WeightConfig{domain.AspectDate: 1, domain.AspectLocation: 3},
			strategies: []similarity.Strategy{date(1), loc(0)},
			want:       0.25,
		},
		{
			name:       "undefined aspect dropped",
			weights:    domain.WeightConfig{domain.AspectDate: 1, domain.AspectLocation: 1},
			strategies: []similarity.Strategy{date(0.5), undefinedLoc},
			want:       0.5,
		},
		{
			name:       "nothing defined",
			weights:    domain.WeightConfig{domain.AspectLocation: 1},
			strategies: []similarity.Strategy{undefinedLoc},
			want:       0,
		},
		{
			name:       "zero weight excluded",
			weights:    domain.WeightConfig{domain.AspectDate: 0, domain.AspectLocation: 1},
			strategies: []similarity.Strategy{date(0), loc(1)},
			want:       1,
		},
		{
			name:       "negative weight excluded",
			weights:    domain.WeightConfig{domain.AspectDate: -2, domain.AspectLocation: 1},
			strategies: []similarity.Strategy{date(0), loc(0.75)},
			want:       0.75,
		},
		{
			name:       "no weights",
			weights:    nil,
			strategies: []similarity.Strategy{date(1), loc(1)},
			want:       0,
		},
	}

	a, b := &domain.Record{ID: "a"}, &domain.Record{ID: "b"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScorerWithStrategies(tt.weights, tt.strategies)
			assert.InDelta(t, tt.want, s.Overall(a, b), 1e-12)
		})
	}
}

func TestScorer_IdenticalRecordsScoreOne(t *testing.T) {
	d := domain.MustParseDate("2023-03-14")
	rec := domain.Record{
		ID:             "x",
		Date:           &d,
		Location:       "Sabha, Fezzan, Libya",
		Headcount:      &domain.Headcount{Male: domain.Float(3), Kids: domain.Float(1), Total: domain.Float(4)},
		MonetaryAmount: domain.Float(2500),
		EventTypes:     []string{"kidnapping", "extortion"},
		Transport:      "truck",
		Conditions:     []string{"beaten"},
	}
	twin := rec
	twin.ID = "y"

	for _, strategy := range []domain.StrategyName{domain.StrategyContinuous, domain.StrategyStrict} {
		t.Run(string(strategy), func(t *testing.T) {
			cfg := domain.DefaultLinkageConfig()
			for _, a := range domain.Aspects() {
				cfg.Strategies[a] = strategy
			}
			assert.InDelta(t, 1.0, NewScorer(cfg).Overall(&rec, &twin), 1e-9)
		})
	}
}

func TestScorer_SymmetricAndBounded(t *testing.T) {
	records := abcRecords()
	s := NewScorer(domain.DefaultLinkageConfig())

	for i := range records {
		for j := range records {
			ab := s.Overall(&records[i], &records[j])
			ba := s.Overall(&records[j], &records[i])
			assert.Equal(t, ab, ba, "%s/%s", records[i].ID, records[j].ID)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}
}

func TestScorer_Breakdown(t *testing.T) {
	s := NewScorerWithStrategies(
		domain.WeightConfig{domain.AspectDate: 2, domain.AspectLocation: 1, domain.AspectTransport: 1},
		[]similarity.Strategy{
			fixedStrategy{domain.AspectDate, 0.5, true},
			fixedStrategy{aspect: domain.AspectLocation},
			fixedStrategy{domain.AspectTransport, 1, true},
			fixedStrategy{domain.AspectConditions, 1, true},
		},
	)

	assert.Equal(t,
		[]domain.Aspect{domain.AspectDate, domain.AspectLocation, domain.AspectTransport},
		s.Aspects())

	got := s.Breakdown(&domain.Record{}, &domain.Record{})
	require.Len(t, got, 2)
	assert.Equal(t, AspectScore{Aspect: domain.AspectDate, Score: 0.5, Weight: 2}, got[0])
	assert.Equal(t, AspectScore{Aspect: domain.AspectTransport, Score: 1, Weight: 1}, got[1])
}

func TestNewScorer_ExcludesUnweightedAspects(t *testing.T) {
	cfg := domain.DefaultLinkageConfig()
	cfg.Weights = domain.WeightConfig{domain.AspectDate: 1, domain.AspectMonetaryAmount: 0.5}

	assert.Equal(t, []domain.Aspect{domain.AspectDate, domain.AspectMonetaryAmount}, NewScorer(cfg).Aspects())
}

func BenchmarkScorer_Overall(b *testing.B) {
	records := abcRecords()
	s := NewScorer(domain.DefaultLinkageConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Overall(&records[0], &records[1])
	}
}
