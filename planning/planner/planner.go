// Package planner wires the full planning pipeline: opportunity
// identification, sequence generation and the feasibility gate.
package planner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
	"github.com/aristath/tradeplan/opportunities"
	"github.com/aristath/tradeplan/opportunities/calculators"
	"github.com/aristath/tradeplan/planning/budget"
	"github.com/aristath/tradeplan/planning/constraints"
	"github.com/aristath/tradeplan/planning/gate"
	"github.com/aristath/tradeplan/sequences"
	"github.com/aristath/tradeplan/sequences/filters"
)

// Planner produces an executable trade plan from a portfolio snapshot.
// Stateless between runs; every invocation builds a fresh plan.
type Planner struct {
	opportunities *opportunities.Service
	sequences     *sequences.Service
	gate          *gate.Gate
	log           zerolog.Logger
}

// New assembles a planner from pre-built pipeline stages.
func New(
	opportunityService *opportunities.Service,
	sequenceService *sequences.Service,
	feasibilityGate *gate.Gate,
	log zerolog.Logger,
) *Planner {
	return &Planner{
		opportunities: opportunityService,
		sequences:     sequenceService,
		gate:          feasibilityGate,
		log:           log.With().Str("component", "planner").Logger(),
	}
}

// NewDefault assembles a planner with the standard stages: all calculators
// registered, the constraint enforcer screening sequence candidates, and
// the budget allocator funding the winner. advisor, converter and prices
// may be nil; the affected stages fall back to pass-through behavior.
func NewDefault(
	advisor calculators.WindfallAdvisor,
	converter calculators.CurrencyConverter,
	prices filters.PriceHistoryProvider,
	log zerolog.Logger,
) *Planner {
	enforcer := constraints.NewEnforcer(log)
	registry := calculators.NewPopulatedRegistry(advisor, converter, log)

	return New(
		opportunities.NewService(registry, log),
		sequences.NewService(enforcer, prices, log),
		gate.NewGate(enforcer, budget.NewAllocator(log), log),
		log,
	)
}

// Plan runs the pipeline once and returns the resulting plan. The returned
// plan may be empty; that is a valid outcome, not an error.
func (p *Planner) Plan(
	ctx context.Context,
	snapshot *domain.OpportunityContext,
	config *domain.PlannerConfiguration,
) (domain.Plan, error) {
	runID := uuid.New().String()
	log := p.log.With().Str("run_id", runID).Logger()

	snapshot.ApplyConfig(config)

	opps, err := p.opportunities.Identify(ctx, snapshot, config)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("identifying opportunities: %w", err)
	}

	seqs := p.sequences.GenerateSequences(opps, snapshot, config)

	result, err := p.gate.SelectAndValidate(seqs, snapshot, config)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("validating sequences: %w", err)
	}

	plan := domain.Plan{
		RunID:   runID,
		Actions: result.Actions,
		Dropped: len(result.Filtered),
	}

	log.Info().
		Int("actions", len(plan.Actions)).
		Int("dropped", plan.Dropped).
		Bool("empty", plan.IsEmpty()).
		Msg("Plan complete")

	return plan, nil
}
