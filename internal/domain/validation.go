package domain

import (
	"maps"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance used for struct validation.
var validate = validator.New(validator.WithRequiredStructEnabled())

// cloneWeights creates a copy of a weight map to prevent aliasing.
// Returns nil for nil input to maintain consistency.
func cloneWeights(m WeightConfig) WeightConfig {
	if m == nil {
		return nil
	}
	result := make(WeightConfig, len(m))
	maps.Copy(result, m)
	return result
}

// cloneStrategies creates a copy of a strategy map to prevent aliasing.
func cloneStrategies(m map[Aspect]StrategyName) map[Aspect]StrategyName {
	if m == nil {
		return nil
	}
	result := make(map[Aspect]StrategyName, len(m))
	maps.Copy(result, m)
	return result
}
