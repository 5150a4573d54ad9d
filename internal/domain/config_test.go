package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLinkageConfig(t *testing.T) {
	cfg := DefaultLinkageConfig()

	assert.InDelta(t, DefaultThreshold, cfg.Threshold, 1e-9)
	assert.Equal(t, DefaultMinBucketSize, cfg.MinBucketSize)
	assert.Len(t, cfg.Weights.Active(), len(Aspects()))
	require.NoError(t, cfg.Validate())

	t.Run("fresh copy every call", func(t *testing.T) {
		a := DefaultLinkageConfig()
		a.Weights[AspectDate] = 42
		b := DefaultLinkageConfig()
		assert.InDelta(t, 1.0, b.Weights[AspectDate], 1e-9)
	})
}

func TestLinkageConfig_Normalize(t *testing.T) {
	cfg := LinkageConfig{
		Weights:   WeightConfig{AspectDate: -1, Aspect("weather"): 3, AspectLocation: 2},
		Threshold: math.NaN(),
	}

	n := cfg.Normalize()

	assert.InDelta(t, DefaultThreshold, n.Threshold, 1e-9)
	assert.Equal(t, WeightConfig{AspectDate: 0, AspectLocation: 2}, n.Weights)
	assert.Equal(t, ToleranceConfig{DateToleranceDays: DefaultDateToleranceDays}, n.Tolerances)
	assert.Equal(t, ConsensusConfig{Location: LocationUnanimous, LocationMajority: LocationMajorityLow}, n.Consensus)
	require.NoError(t, n.Validate())

	// Normalize works on a copy.
	assert.InDelta(t, -1.0, cfg.Weights[AspectDate], 1e-9)
	_, stillThere := cfg.Weights[Aspect("weather")]
	assert.True(t, stillThere)
}

func TestLinkageConfig_NormalizeKeepsExplicitValues(t *testing.T) {
	cfg := DefaultLinkageConfig()
	cfg.Tolerances.StrictDateWindowDays = StrictDateWindowWide
	cfg.Tolerances.StrictMonetaryTolerance = MonetaryToleranceWide
	cfg.Consensus.Location = LocationMajority
	cfg.Consensus.LocationMajority = LocationMajorityHigh

	n := cfg.Normalize()

	assert.InDelta(t, StrictDateWindowWide, n.Tolerances.StrictDateWindowDays, 1e-9)
	assert.InDelta(t, MonetaryToleranceWide, n.Tolerances.StrictMonetaryTolerance, 1e-9)
	assert.Equal(t, LocationMajority, n.Consensus.Location)
	assert.InDelta(t, LocationMajorityHigh, n.Consensus.LocationMajority, 1e-9)
}

func TestLinkageConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LinkageConfig)
	}{
		{"threshold above one", func(c *LinkageConfig) { c.Threshold = 1.5 }},
		{"negative threshold", func(c *LinkageConfig) { c.Threshold = -0.1 }},
		{"negative min bucket size", func(c *LinkageConfig) { c.MinBucketSize = -1 }},
		{"negative workers", func(c *LinkageConfig) { c.Workers = -4 }},
		{"unknown location mode", func(c *LinkageConfig) { c.Consensus.Location = "plurality" }},
		{"monetary deviation above one", func(c *LinkageConfig) { c.Consensus.MonetaryDeviation = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultLinkageConfig()
			tt.mutate(&cfg)
			err := cfg.Normalize().Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLinkageConfig_Strategy(t *testing.T) {
	cfg := DefaultLinkageConfig()
	cfg.Strategies = map[Aspect]StrategyName{
		AspectDate:     StrategyStrict,
		AspectLocation: "fuzzy",
	}

	assert.Equal(t, StrategyStrict, cfg.Strategy(AspectDate))
	assert.Equal(t, StrategyContinuous, cfg.Strategy(AspectLocation), "unknown names fall back")
	assert.Equal(t, StrategyContinuous, cfg.Strategy(AspectHeadcount), "missing entries fall back")
}

func TestLinkageConfig_CloneIsDeep(t *testing.T) {
	cfg := DefaultLinkageConfig()
	cfg.Strategies[AspectDate] = StrategyStrict

	clone := cfg.Clone()
	clone.Weights[AspectDate] = 9
	clone.Strategies[AspectDate] = StrategyContinuous

	assert.InDelta(t, 1.0, cfg.Weights[AspectDate], 1e-9)
	assert.Equal(t, StrategyStrict, cfg.Strategies[AspectDate])
}

func TestLinkageConfig_NormalizeKeepsExplicitZeros(t *testing.T) {
	cfg := DefaultLinkageConfig()
	cfg.Threshold = 0
	cfg.MinBucketSize = 0
	cfg.Tolerances.StrictDateWindowDays = 0
	cfg.Tolerances.LocationCountryBonus = 0
	cfg.Tolerances.HeadcountSubFieldTolerance = 0
	cfg.Consensus.DateSpanDays = 0
	cfg.Consensus.MonetaryDeviation = 0

	n := cfg.Normalize()

	assert.Zero(t, n.Threshold)
	assert.Zero(t, n.MinBucketSize)
	assert.Zero(t, n.Tolerances.StrictDateWindowDays)
	assert.Zero(t, n.Tolerances.LocationCountryBonus)
	assert.Zero(t, n.Tolerances.HeadcountSubFieldTolerance)
	assert.Zero(t, n.Consensus.DateSpanDays)
	assert.Zero(t, n.Consensus.MonetaryDeviation)
	assert.NoError(t, n.Validate())
}

func TestLinkageConfig_UnmarshalJSON(t *testing.T) {
	t.Run("absent keys take defaults", func(t *testing.T) {
		var cfg LinkageConfig
		require.NoError(t, json.Unmarshal([]byte(`{"weights": {"date": 1, "location": 1}}`), &cfg))

		assert.InDelta(t, DefaultThreshold, cfg.Threshold, 1e-9)
		assert.Equal(t, DefaultMinBucketSize, cfg.MinBucketSize)
		assert.Equal(t, DefaultToleranceConfig(), cfg.Tolerances)
		assert.Equal(t, DefaultConsensusConfig(), cfg.Consensus)
		assert.Equal(t, WeightConfig{AspectDate: 1, AspectLocation: 1}, cfg.Weights)
	})

	t.Run("explicit zeros are kept", func(t *testing.T) {
		var cfg LinkageConfig
		require.NoError(t, json.Unmarshal([]byte(`{
			"threshold": 0,
			"min_bucket_size": 0,
			"tolerances": {"location_country_bonus": 0, "strict_date_window_days": 0, "headcount_sub_field_tolerance": 0},
			"consensus": {"date_span_days": 0}
		}`), &cfg))
		n := cfg.Normalize()

		assert.Zero(t, n.Threshold)
		assert.Zero(t, n.MinBucketSize)
		assert.Zero(t, n.Tolerances.LocationCountryBonus)
		assert.Zero(t, n.Tolerances.StrictDateWindowDays)
		assert.Zero(t, n.Tolerances.HeadcountSubFieldTolerance)
		assert.Zero(t, n.Consensus.DateSpanDays)
		assert.InDelta(t, DefaultDateToleranceDays, n.Tolerances.DateToleranceDays, 1e-9, "siblings keep defaults")
		assert.InDelta(t, HeadcountTotalTolerance, n.Tolerances.HeadcountTotalTolerance, 1e-9)
		assert.InDelta(t, MonetaryToleranceNarrow, n.Consensus.MonetaryDeviation, 1e-9)
	})

	t.Run("null and missing weights behave alike", func(t *testing.T) {
		var withNull, withoutKey LinkageConfig
		require.NoError(t, json.Unmarshal([]byte(`{"weights": null}`), &withNull))
		require.NoError(t, json.Unmarshal([]byte(`{}`), &withoutKey))

		assert.Equal(t, withoutKey.Normalize().Weights, withNull.Normalize().Weights)
		assert.Len(t, withNull.Normalize().Weights.Active(), len(Aspects()))
	})

	t.Run("round trip", func(t *testing.T) {
		want := DefaultLinkageConfig()
		want.Threshold = 0
		want.Tolerances.LocationCountryBonus = 0

		data, err := json.Marshal(want)
		require.NoError(t, err)
		var got LinkageConfig
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, want, got)
	})
}
