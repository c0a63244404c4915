package calculators

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// Registry manages all registered opportunity calculators.
type Registry struct {
	calculators map[string]Calculator
	mu          sync.RWMutex
	log         zerolog.Logger
}

// NewRegistry creates an empty calculator registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		calculators: make(map[string]Calculator),
		log:         log.With().Str("component", "calculator_registry").Logger(),
	}
}

// Register registers a calculator.
func (r *Registry) Register(calculator Calculator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := calculator.Name()
	r.calculators[name] = calculator
	r.log.Debug().
		Str("name", name).
		Str("category", string(calculator.Category())).
		Msg("Registered calculator")
}

// Get retrieves a calculator by name.
func (r *Registry) Get(name string) (Calculator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	calculator, ok := r.calculators[name]
	if !ok {
		return nil, fmt.Errorf("calculator not found: %s", name)
	}
	return calculator, nil
}

// GetEnabled retrieves all enabled calculators from the configuration.
func (r *Registry) GetEnabled(config *domain.PlannerConfiguration) []Calculator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabledNames := config.GetEnabledCalculators()
	var enabled []Calculator

	for _, name := range enabledNames {
		if calculator, ok := r.calculators[name]; ok {
			enabled = append(enabled, calculator)
		} else {
			r.log.Warn().
				Str("name", name).
				Msg("Enabled calculator not found in registry")
		}
	}

	return enabled
}

// List returns all registered calculators.
func (r *Registry) List() []Calculator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	calculators := make([]Calculator, 0, len(r.calculators))
	for _, calc := range r.calculators {
		calculators = append(calculators, calc)
	}
	return calculators
}

// NewPopulatedRegistry creates a registry with all reference calculators
// registered.
func NewPopulatedRegistry(
	advisor WindfallAdvisor,
	converter CurrencyConverter,
	log zerolog.Logger,
) *Registry {
	registry := NewRegistry(log)

	registry.Register(NewProfitTakingCalculator(advisor, converter, log))
	registry.Register(NewAveragingDownCalculator(converter, log))
	registry.Register(NewRebalanceSellsCalculator(converter, log))
	registry.Register(NewRebalanceBuysCalculator(converter, log))
	registry.Register(NewWeightBasedCalculator(converter, log))

	log.Info().
		Int("calculators", len(registry.calculators)).
		Msg("Calculator registry initialized")

	return registry
}
