// Package generators contains sequence-to-sequence transformers that expand
// the candidate pool: partial prefixes and relaxed-size variants of already
// generated sequences.
package generators

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// Generator transforms a set of sequences into an expanded set. Generators
// only ever add sequences; removal belongs to filters.
type Generator interface {
	// Name returns the unique identifier for this generator.
	Name() string

	// Generate returns the input sequences plus any derived variants.
	Generate(sequences []domain.ActionSequence, params map[string]interface{}) ([]domain.ActionSequence, error)
}

// BaseGenerator provides common functionality for all generators.
type BaseGenerator struct {
	log zerolog.Logger
}

// NewBaseGenerator creates a new base generator with logging.
func NewBaseGenerator(log zerolog.Logger, name string) *BaseGenerator {
	return &BaseGenerator{
		log: log.With().Str("generator", name).Logger(),
	}
}

// Registry manages all registered sequence generators.
type Registry struct {
	generators map[string]Generator
	mu         sync.RWMutex
	log        zerolog.Logger
}

// NewRegistry creates an empty generator registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		generators: make(map[string]Generator),
		log:        log.With().Str("component", "generator_registry").Logger(),
	}
}

// Register registers a generator.
func (r *Registry) Register(generator Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := generator.Name()
	r.generators[name] = generator
	r.log.Debug().Str("name", name).Msg("Registered generator")
}

// Get retrieves a generator by name.
func (r *Registry) Get(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	generator, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("generator not found: %s", name)
	}
	return generator, nil
}

// Apply runs all enabled generators in configuration order, chaining their
// outputs. A failing generator is logged and skipped.
func (r *Registry) Apply(
	sequences []domain.ActionSequence,
	config *domain.PlannerConfiguration,
) []domain.ActionSequence {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range config.GetEnabledGenerators() {
		generator, ok := r.generators[name]
		if !ok {
			r.log.Warn().Str("name", name).Msg("Enabled generator not found in registry")
			continue
		}

		expanded, err := generator.Generate(sequences, config.GetGeneratorParams(name))
		if err != nil {
			r.log.Error().
				Err(err).
				Str("generator", name).
				Msg("Generator failed")
			continue
		}

		r.log.Debug().
			Str("generator", name).
			Int("before", len(sequences)).
			Int("after", len(expanded)).
			Msg("Generator applied")

		sequences = expanded
	}

	return sequences
}

// NewPopulatedRegistry creates a registry with all generators registered.
// The combinatorial generator is not here: it runs first, on candidates
// rather than sequences.
func NewPopulatedRegistry(log zerolog.Logger) *Registry {
	registry := NewRegistry(log)

	registry.Register(NewPartialExecutionGenerator(log))
	registry.Register(NewConstraintRelaxationGenerator(log))

	return registry
}
