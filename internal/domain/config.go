package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Historical tolerance values. Earlier iterations of the linkage rules disagreed
// on these numbers, so both are kept as named constants rather than picking one.
const (
	// DefaultThreshold is the minimum overall similarity for a pair to form an edge.
	DefaultThreshold = 0.7

	// DefaultMinBucketSize keeps singleton buckets in the output.
	DefaultMinBucketSize = 1

	// DefaultDateToleranceDays is τ in the exponential date decay exp(-Δdays/τ).
	DefaultDateToleranceDays = 7.0

	// StrictDateWindowNarrow and StrictDateWindowWide are the two historical
	// windows used by the boolean date rule.
	StrictDateWindowNarrow = 1.0
	StrictDateWindowWide   = 2.0

	// MonetaryToleranceNarrow and MonetaryToleranceWide are the two historical
	// relative tolerances for boolean monetary comparisons.
	MonetaryToleranceNarrow = 0.10
	MonetaryToleranceWide   = 0.25

	// DefaultLocationCountryBonus is added to the location Jaccard score when the
	// last comma-separated segment matches exactly.
	DefaultLocationCountryBonus = 0.15

	// ConsensusDateSpanDays is the largest date span reported as a shared date.
	ConsensusDateSpanDays = 2.0

	// LocationMajorityLow and LocationMajorityHigh are the two historical
	// majority fractions for the majority location consensus.
	LocationMajorityLow  = 0.5
	LocationMajorityHigh = 0.6

	// HeadcountSubFieldTolerance bounds male/female/kids disagreement.
	HeadcountSubFieldTolerance = 1.0

	// HeadcountTotalTolerance bounds total disagreement.
	HeadcountTotalTolerance = 3.0
)

// LocationConsensusMode selects how the explainer decides a shared location.
type LocationConsensusMode string

const (
	// LocationUnanimous requires every member's normalized location to be identical.
	LocationUnanimous LocationConsensusMode = "unanimous"

	// LocationMajority accepts the most common location when it covers enough members.
	LocationMajority LocationConsensusMode = "majority"
)

// ToleranceConfig holds the tunable constants of the aspect similarity strategies.
type ToleranceConfig struct {
	// DateToleranceDays is τ for the continuous date strategy.
	DateToleranceDays float64 `json:"date_tolerance_days" validate:"gt=0"`

	// StrictDateWindowDays is the maximum Δdays accepted by the strict date strategy.
	StrictDateWindowDays float64 `json:"strict_date_window_days" validate:"gte=0"`

	// StrictMonetaryTolerance is the maximum relative difference accepted by the
	// strict monetary strategy.
	StrictMonetaryTolerance float64 `json:"strict_monetary_tolerance" validate:"gte=0,lte=1"`

	// LocationCountryBonus is added when the trailing location segment matches.
	LocationCountryBonus float64 `json:"location_country_bonus" validate:"gte=0,lte=1"`

	// HeadcountSubFieldTolerance bounds sub-count differences for the strict headcount strategy.
	HeadcountSubFieldTolerance float64 `json:"headcount_sub_field_tolerance" validate:"gte=0"`

	// HeadcountTotalTolerance bounds total differences for the strict headcount strategy.
	HeadcountTotalTolerance float64 `json:"headcount_total_tolerance" validate:"gte=0"`
}

// ConsensusConfig holds the explainer's all-members-must-agree rules.
// These are independent of the weights and threshold used to form buckets.
type ConsensusConfig struct {
	// DateSpanDays is the largest max-min date span reported as shared.
	DateSpanDays float64 `json:"date_span_days" validate:"gte=0"`

	// MonetaryDeviation is the largest relative deviation from the mean reported as shared.
	MonetaryDeviation float64 `json:"monetary_deviation" validate:"gte=0,lte=1"`

	// Location selects unanimous or majority location consensus.
	Location LocationConsensusMode `json:"location" validate:"omitempty,oneof=unanimous majority"`

	// LocationMajority is the fraction of members the majority location must cover.
	LocationMajority float64 `json:"location_majority" validate:"gt=0,lte=1"`

	// HeadcountSubFieldTolerance bounds pairwise male/female/kids differences.
	HeadcountSubFieldTolerance float64 `json:"headcount_sub_field_tolerance" validate:"gte=0"`

	// HeadcountTotalTolerance bounds pairwise total differences.
	HeadcountTotalTolerance float64 `json:"headcount_total_tolerance" validate:"gte=0"`
}

// LinkageConfig configures one linkage invocation.
//
// The zero value is not the default configuration: a zero Threshold links
// every pair. Build configurations from DefaultLinkageConfig. Decoding JSON
// starts from the defaults, so absent keys keep them and explicit zeros stay.
type LinkageConfig struct {
	// Weights selects and weighs the aspects that contribute to pairwise similarity.
	Weights WeightConfig `json:"weights"`

	// Threshold is the minimum overall similarity for an edge.
	Threshold float64 `json:"threshold" validate:"gte=0,lte=1"`

	// MinBucketSize filters the reported buckets. It never affects clustering.
	MinBucketSize int `json:"min_bucket_size" validate:"gte=0"`

	// Workers bounds the parallelism of the pairwise scan. 0 means GOMAXPROCS.
	Workers int `json:"workers" validate:"gte=0"`

	// Strategies selects the similarity strategy per aspect. Missing or unknown
	// entries fall back to StrategyContinuous.
	Strategies map[Aspect]StrategyName `json:"strategies,omitempty"`

	// Tolerances holds the strategy constants.
	Tolerances ToleranceConfig `json:"tolerances"`

	// Consensus holds the explainer rules.
	Consensus ConsensusConfig `json:"consensus"`
}

// DefaultToleranceConfig returns the canonical strategy constants.
func DefaultToleranceConfig() ToleranceConfig {
	return ToleranceConfig{
		DateToleranceDays:          DefaultDateToleranceDays,
		StrictDateWindowDays:       StrictDateWindowNarrow,
		StrictMonetaryTolerance:    MonetaryToleranceNarrow,
		LocationCountryBonus:       DefaultLocationCountryBonus,
		HeadcountSubFieldTolerance: HeadcountSubFieldTolerance,
		HeadcountTotalTolerance:    HeadcountTotalTolerance,
	}
}

// DefaultConsensusConfig returns the canonical explainer rules.
func DefaultConsensusConfig() ConsensusConfig {
	return ConsensusConfig{
		DateSpanDays:               ConsensusDateSpanDays,
		MonetaryDeviation:          MonetaryToleranceNarrow,
		Location:                   LocationUnanimous,
		LocationMajority:           LocationMajorityLow,
		HeadcountSubFieldTolerance: HeadcountSubFieldTolerance,
		HeadcountTotalTolerance:    HeadcountTotalTolerance,
	}
}

// DefaultLinkageConfig returns a fresh configuration with canonical defaults.
// Returns a new value on every call so callers may mutate it freely.
func DefaultLinkageConfig() LinkageConfig {
	return LinkageConfig{
		Weights:       DefaultWeights(),
		Threshold:     DefaultThreshold,
		MinBucketSize: DefaultMinBucketSize,
		Strategies:    map[Aspect]StrategyName{},
		Tolerances:    DefaultToleranceConfig(),
		Consensus:     DefaultConsensusConfig(),
	}
}

// Clone returns a deep copy of the configuration.
func (c LinkageConfig) Clone() LinkageConfig {
	out := c
	out.Weights = cloneWeights(c.Weights)
	out.Strategies = cloneStrategies(c.Strategies)
	return out
}

// Strategy returns the configured strategy for an aspect.
func (c LinkageConfig) Strategy(a Aspect) StrategyName {
	if name, ok := c.Strategies[a]; ok && name == StrategyStrict {
		return StrategyStrict
	}
	return StrategyContinuous
}

// UnmarshalJSON decodes over DefaultLinkageConfig.
func (c *LinkageConfig) UnmarshalJSON(data []byte) error {
	type plain LinkageConfig
	out := plain(DefaultLinkageConfig())
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*c = LinkageConfig(out)
	return nil
}

// Normalize returns a copy with sanitized weights. Nil weights, a NaN
// threshold and settings whose zero value is unusable (a non-positive date
// decay constant, an unset location consensus rule) take their defaults.
// Every other zero is kept as given.
func (c LinkageConfig) Normalize() LinkageConfig {
	out := c.Clone()
	if out.Weights == nil {
		out.Weights = DefaultWeights()
	}
	for a, w := range out.Weights {
		if !a.IsKnown() {
			delete(out.Weights, a)
			continue
		}
		out.Weights[a] = sanitizeWeight(w)
	}
	if math.IsNaN(out.Threshold) {
		out.Threshold = DefaultThreshold
	}
	if !(out.Tolerances.DateToleranceDays > 0) {
		out.Tolerances.DateToleranceDays = DefaultDateToleranceDays
	}

	out.Consensus = out.Consensus.WithDefaults()
	return out
}

// WithDefaults returns a copy in which an unset location rule takes its
// default. Zero tolerances are kept and require exact agreement.
func (c ConsensusConfig) WithDefaults() ConsensusConfig {
	if c.Location == "" {
		c.Location = LocationUnanimous
	}
	if !(c.LocationMajority > 0) {
		c.LocationMajority = LocationMajorityLow
	}
	return c
}

// Validate checks structural constraints after normalization.
// Returns an error wrapping ErrInvalidConfig on violation.
func (c LinkageConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
