// Package filters contains sequence filters: remove-only passes that drop
// sequences violating portfolio-level rules.
package filters

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// Filter removes sequences from a set. Filters never add or mutate
// sequences.
type Filter interface {
	// Name returns the unique identifier for this filter.
	Name() string

	// Filter returns the subset of sequences that pass.
	Filter(sequences []domain.ActionSequence, params map[string]interface{}) ([]domain.ActionSequence, error)
}

// BaseFilter provides common functionality for all filters.
type BaseFilter struct {
	log zerolog.Logger
}

// NewBaseFilter creates a new base filter with logging.
func NewBaseFilter(log zerolog.Logger, name string) *BaseFilter {
	return &BaseFilter{
		log: log.With().Str("filter", name).Logger(),
	}
}

// Registry manages all registered sequence filters.
type Registry struct {
	filters map[string]Filter
	mu      sync.RWMutex
	log     zerolog.Logger
}

// NewRegistry creates an empty filter registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		filters: make(map[string]Filter),
		log:     log.With().Str("component", "filter_registry").Logger(),
	}
}

// Register registers a filter.
func (r *Registry) Register(filter Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := filter.Name()
	r.filters[name] = filter
	r.log.Debug().Str("name", name).Msg("Registered filter")
}

// Get retrieves a filter by name.
func (r *Registry) Get(name string) (Filter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filter, ok := r.filters[name]
	if !ok {
		return nil, fmt.Errorf("filter not found: %s", name)
	}
	return filter, nil
}

// Apply runs all enabled filters in configuration order. A failing filter
// is logged and skipped; filtering is best-effort, not load-bearing.
func (r *Registry) Apply(
	sequences []domain.ActionSequence,
	config *domain.PlannerConfiguration,
) []domain.ActionSequence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range config.GetEnabledFilters() {
		filter, ok := r.filters[name]
		if !ok {
			r.log.Warn().Str("name", name).Msg("Enabled filter not found in registry")
			continue
		}

		filtered, err := filter.Filter(sequences, config.GetFilterParams(name))
		if err != nil {
			r.log.Error().
				Err(err).
				Str("filter", name).
				Msg("Filter failed")
			continue
		}

		r.log.Debug().
			Str("filter", name).
			Int("before", len(sequences)).
			Int("after", len(filtered)).
			Msg("Filter applied")

		sequences = filtered
	}

	return sequences
}

// NewPopulatedRegistry creates a registry with all filters registered.
func NewPopulatedRegistry(prices PriceHistoryProvider, log zerolog.Logger) *Registry {
	registry := NewRegistry(log)

	registry.Register(NewCorrelationAwareFilter(prices, log))

	return registry
}
