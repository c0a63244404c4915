package patterns

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// Registry manages all registered augmentation patterns.
type Registry struct {
	patterns map[string]Pattern
	mu       sync.RWMutex
	log      zerolog.Logger
}

// NewRegistry creates an empty pattern registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		patterns: make(map[string]Pattern),
		log:      log.With().Str("component", "pattern_registry").Logger(),
	}
}

// Register registers a pattern.
func (r *Registry) Register(pattern Pattern) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := pattern.Name()
	r.patterns[name] = pattern
	r.log.Debug().Str("name", name).Msg("Registered pattern")
}

// Get retrieves a pattern by name.
func (r *Registry) Get(name string) (Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pattern, ok := r.patterns[name]
	if !ok {
		return nil, fmt.Errorf("pattern not found: %s", name)
	}
	return pattern, nil
}

// GetEnabled retrieves all enabled patterns from the configuration.
func (r *Registry) GetEnabled(config *domain.PlannerConfiguration) []Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabledNames := config.GetEnabledPatterns()
	var enabled []Pattern

	for _, name := range enabledNames {
		if pattern, ok := r.patterns[name]; ok {
			enabled = append(enabled, pattern)
		} else {
			r.log.Warn().Str("name", name).Msg("Enabled pattern not found in registry")
		}
	}

	return enabled
}

// GenerateSequences runs all enabled patterns and aggregates results. A
// failing pattern is logged and skipped.
func (r *Registry) GenerateSequences(
	opportunities domain.OpportunitiesByStrategy,
	config *domain.PlannerConfiguration,
) []domain.ActionSequence {
	enabled := r.GetEnabled(config)

	var allSequences []domain.ActionSequence

	for _, pattern := range enabled {
		name := pattern.Name()
		params := config.GetPatternParams(name)

		sequences, err := pattern.Generate(opportunities, params)
		if err != nil {
			r.log.Error().
				Err(err).
				Str("pattern", name).
				Msg("Pattern failed")
			continue
		}

		r.log.Debug().
			Str("pattern", name).
			Int("sequences", len(sequences)).
			Msg("Pattern completed")

		allSequences = append(allSequences, sequences...)
	}

	return allSequences
}

// NewPopulatedRegistry creates a registry with all patterns registered.
func NewPopulatedRegistry(log zerolog.Logger) *Registry {
	registry := NewRegistry(log)

	registry.Register(NewAdaptivePattern(log))
	registry.Register(NewMarketRegimePattern(log))

	return registry
}
