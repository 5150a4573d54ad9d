package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Aspect names one attribute of a record that has its own similarity function.
// The string values double as WeightConfig keys.
type Aspect string

const (
	AspectDate           Aspect = "date"
	AspectLocation       Aspect = "location"
	AspectHeadcount      Aspect = "counts"
	AspectMonetaryAmount Aspect = "ransom"
	AspectEventTypes     Aspect = "event_types"
	AspectTransport      Aspect = "transport"
	AspectConditions     Aspect = "conditions"
)

// String returns the string representation of the aspect.
func (a Aspect) String() string { return string(a) }

// Aspects returns every aspect in canonical order.
// Scoring iterates in this order so floating-point sums are reproducible.
func Aspects() []Aspect {
	return []Aspect{
		AspectDate,
		AspectLocation,
		AspectHeadcount,
		AspectMonetaryAmount,
		AspectEventTypes,
		AspectTransport,
		AspectConditions,
	}
}

// IsKnown reports whether a is part of the fixed record schema.
func (a Aspect) IsKnown() bool {
	for _, known := range Aspects() {
		if a == known {
			return true
		}
	}
	return false
}

// StrategyName selects between the similarity philosophies available for an aspect.
type StrategyName string

const (
	// StrategyContinuous produces graded scores (decay, Jaccard, cosine, ratio).
	StrategyContinuous StrategyName = "continuous"

	// StrategyStrict produces boolean scores from fixed tolerances.
	StrategyStrict StrategyName = "strict"
)

// WeightConfig maps aspects to non-negative weights.
// An aspect whose weight is absent or ≤ 0 is excluded from scoring entirely.
//
// Keys are the Aspect values ("date", "location", "counts", "ransom",
// "event_types", "transport", "conditions"). ParseWeights also accepts the
// descriptive aliases listed in aspectAliases.
type WeightConfig map[Aspect]float64

// aspectAliases maps normalized alternative weight keys to their aspect.
var aspectAliases = map[string]Aspect{
	"headcount":       AspectHeadcount,
	"monetary amount": AspectMonetaryAmount,
	"monetary_amount": AspectMonetaryAmount,
	"monetaryamount":  AspectMonetaryAmount,
	"event types":     AspectEventTypes,
	"event_type":      AspectEventTypes,
	"event type":      AspectEventTypes,
}

// DefaultWeights weighs every aspect equally.
func DefaultWeights() WeightConfig {
	w := make(WeightConfig, len(Aspects()))
	for _, a := range Aspects() {
		w[a] = 1
	}
	return w
}

// ParseWeights builds a WeightConfig from loosely typed input such as decoded JSON.
// Keys are case folded and aliases resolved; unknown keys are ignored.
// Non-numeric, non-finite and negative values become 0. When an aspect is
// named more than once the canonical key wins, then the alias sorting first.
// Malformed weights are never an error.
func ParseWeights(raw map[string]any) WeightConfig {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	w := make(WeightConfig, len(raw))
	canonical := make(map[Aspect]bool, len(raw))
	for _, key := range keys {
		name := NormalizeText(key)
		aspect, isCanonical := Aspect(name), true
		if !aspect.IsKnown() {
			alias, ok := aspectAliases[name]
			if !ok {
				continue
			}
			aspect, isCanonical = alias, false
		}
		if _, seen := w[aspect]; seen && (canonical[aspect] || !isCanonical) {
			continue
		}
		w[aspect] = sanitizeWeight(toFloat(raw[key]))
		canonical[aspect] = isCanonical
	}
	return w
}

// Weight returns the effective weight of an aspect (0 when excluded).
func (w WeightConfig) Weight(a Aspect) float64 {
	return sanitizeWeight(w[a])
}

// Active returns the aspects with positive weight in canonical order.
func (w WeightConfig) Active() []Aspect {
	var active []Aspect
	for _, a := range Aspects() {
		if w.Weight(a) > 0 {
			active = append(active, a)
		}
	}
	return active
}

// UnmarshalJSON decodes weights leniently through ParseWeights. A JSON null
// leaves the weights unset, exactly like an absent key.
func (w *WeightConfig) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*w = nil
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		// A weight block that is not an object carries no usable weights.
		*w = WeightConfig{}
		return nil //nolint:nilerr // malformed weights degrade to "no aspects"
	}
	*w = ParseWeights(raw)
	return nil
}

func sanitizeWeight(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

func toFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case uint:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
