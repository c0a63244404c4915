// Package patterns contains augmentation patterns: targeted sequence
// builders that add strategy-shaped sequences on top of the exhaustive
// combinatorial set.
package patterns

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// Pattern is the interface that all augmentation patterns implement.
// Each pattern creates action sequences from identified opportunities using
// a different strategic shape.
type Pattern interface {
	// Name returns the unique identifier for this pattern.
	Name() string

	// Generate creates action sequences from the given opportunities.
	Generate(opportunities domain.OpportunitiesByStrategy, params map[string]interface{}) ([]domain.ActionSequence, error)
}

// BasePattern provides common functionality for all patterns.
type BasePattern struct {
	log zerolog.Logger
}

// NewBasePattern creates a new base pattern with logging.
func NewBasePattern(log zerolog.Logger, name string) *BasePattern {
	return &BasePattern{
		log: log.With().Str("pattern", name).Logger(),
	}
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

// NormalizeActions sorts actions into canonical execution order: SELL before
// BUY, then by symbol within each side. Sells fund the buys that follow, and
// the canonical order makes the dedup hash order-independent.
func NormalizeActions(actions []domain.ActionCandidate) []domain.ActionCandidate {
	result := make([]domain.ActionCandidate, len(actions))
	copy(result, actions)

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Side != result[j].Side {
			return result[i].Side == "SELL"
		}
		return result[i].Symbol < result[j].Symbol
	})

	return result
}

// HashActions creates a deterministic MD5 hash over (symbol, side, quantity)
// tuples. Actions must be normalized first for order-independent comparison.
func HashActions(actions []domain.ActionCandidate) string {
	type tuple struct {
		Symbol   string `json:"symbol"`
		Side     string `json:"side"`
		Quantity int    `json:"quantity"`
	}

	tuples := make([]tuple, len(actions))
	for i, action := range actions {
		tuples[i] = tuple{
			Symbol:   action.Symbol,
			Side:     action.Side,
			Quantity: action.Quantity,
		}
	}

	jsonBytes, err := json.Marshal(tuples)
	if err != nil {
		return ""
	}

	hash := md5.Sum(jsonBytes)
	return hex.EncodeToString(hash[:])
}

// CreateSequence builds an ActionSequence from actions: normalizes order,
// computes the mean priority and the dedup hash.
func CreateSequence(actions []domain.ActionCandidate, patternType string) domain.ActionSequence {
	normalized := NormalizeActions(actions)

	priority := 0.0
	if len(normalized) > 0 {
		for _, action := range normalized {
			priority += action.Priority
		}
		priority /= float64(len(normalized))
	}

	return domain.ActionSequence{
		Actions:      normalized,
		Priority:     priority,
		Depth:        len(normalized),
		PatternType:  patternType,
		SequenceHash: HashActions(normalized),
	}
}
