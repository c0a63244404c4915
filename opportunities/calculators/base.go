// Package calculators contains the opportunity calculators: each one scans
// the portfolio snapshot for a specific kind of trade (profit taking,
// averaging down, rebalancing, weight targets) and emits prioritized
// candidates.
package calculators

import (
	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// Calculator is the interface that all opportunity calculators implement.
// Each calculator identifies trading opportunities of a specific type based
// on the current portfolio state.
type Calculator interface {
	// Name returns the unique identifier for this calculator.
	Name() string

	// Category returns the opportunity category this calculator produces.
	Category() domain.OpportunityCategory

	// DefaultParams returns the calculator's tunable parameters with their
	// default values. Configuration overrides are merged over these.
	DefaultParams() map[string]interface{}

	// Calculate identifies trading opportunities from the context. Returned
	// candidates are unvalidated; constraint enforcement happens later.
	Calculate(ctx *domain.OpportunityContext, params map[string]interface{}) ([]domain.ActionCandidate, error)
}

// CurrencyConverter converts trade values into EUR. Satisfied by
// fx.Converter.
type CurrencyConverter interface {
	ToEUR(value float64, currency string) float64
}

// BaseCalculator provides common functionality for all calculators.
type BaseCalculator struct {
	log zerolog.Logger
}

// NewBaseCalculator creates a new base calculator with logging.
func NewBaseCalculator(log zerolog.Logger, name string) *BaseCalculator {
	return &BaseCalculator{
		log: log.With().Str("calculator", name).Logger(),
	}
}

// MergeParams overlays overrides on top of a calculator's defaults.
func MergeParams(defaults, overrides map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(defaults)+len(overrides))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}

// GetFloatParam retrieves a float parameter with a default value.
func GetFloatParam(params map[string]interface{}, key string, defaultValue float64) float64 {
	if params == nil {
		return defaultValue
	}
	if val, ok := params[key]; ok {
		if floatVal, ok := val.(float64); ok {
			return floatVal
		}
		if intVal, ok := val.(int); ok {
			return float64(intVal)
		}
	}
	return defaultValue
}

// GetIntParam retrieves an int parameter with a default value.
func GetIntParam(params map[string]interface{}, key string, defaultValue int) int {
	if params == nil {
		return defaultValue
	}
	if val, ok := params[key]; ok {
		if intVal, ok := val.(int); ok {
			return intVal
		}
		if floatVal, ok := val.(float64); ok {
			return int(floatVal)
		}
	}
	return defaultValue
}

// GetBoolParam retrieves a bool parameter with a default value.
func GetBoolParam(params map[string]interface{}, key string, defaultValue bool) bool {
	if params == nil {
		return defaultValue
	}
	if val, ok := params[key]; ok {
		if boolVal, ok := val.(bool); ok {
			return boolVal
		}
	}
	return defaultValue
}

// GetStringParam retrieves a string parameter with a default value.
func GetStringParam(params map[string]interface{}, key string, defaultValue string) string {
	if params == nil {
		return defaultValue
	}
	if val, ok := params[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}
