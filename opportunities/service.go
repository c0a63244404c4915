// Package opportunities runs the enabled opportunity calculators against a
// portfolio snapshot and collects their candidates by strategy.
package opportunities

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/tradeplan/domain"
	"github.com/aristath/tradeplan/opportunities/calculators"
)

// Service fans out over the enabled calculators. A failing calculator is
// logged and skipped; one broken strategy must not block the others.
type Service struct {
	registry *calculators.Registry
	log      zerolog.Logger
}

// NewService creates an opportunity identification service.
func NewService(registry *calculators.Registry, log zerolog.Logger) *Service {
	return &Service{
		registry: registry,
		log:      log.With().Str("component", "opportunities").Logger(),
	}
}

// Identify runs all enabled calculators concurrently and aggregates their
// candidates keyed by calculator name.
func (s *Service) Identify(
	ctx context.Context,
	snapshot *domain.OpportunityContext,
	config *domain.PlannerConfiguration,
) (domain.OpportunitiesByStrategy, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	enabled := s.registry.GetEnabled(config)
	results := make(domain.OpportunitiesByStrategy)

	s.log.Info().
		Int("enabled_calculators", len(enabled)).
		Msg("Identifying opportunities")

	var mu sync.Mutex
	group, ctx := errgroup.WithContext(ctx)

	for _, calculator := range enabled {
		calculator := calculator
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			name := calculator.Name()
			params := calculators.MergeParams(calculator.DefaultParams(), config.GetCalculatorParams(name))

			candidates, err := calculator.Calculate(snapshot, params)
			if err != nil {
				// Failure isolation: log and continue with the rest.
				s.log.Error().
					Err(err).
					Str("calculator", name).
					Msg("Calculator failed")
				return nil
			}

			s.log.Debug().
				Str("calculator", name).
				Int("candidates", len(candidates)).
				Msg("Calculator completed")

			mu.Lock()
			results[name] = candidates
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for name, candidates := range results {
		total += len(candidates)
		s.log.Info().
			Str("strategy", name).
			Int("candidates", len(candidates)).
			Msg("Opportunities by strategy")
	}
	s.log.Info().
		Int("total_candidates", total).
		Int("strategies", len(results)).
		Msg("Opportunity identification complete")

	return results, nil
}
