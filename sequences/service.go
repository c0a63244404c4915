package sequences

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
	"github.com/aristath/tradeplan/sequences/filters"
	"github.com/aristath/tradeplan/sequences/generators"
	"github.com/aristath/tradeplan/sequences/patterns"
)

// Service orchestrates sequence generation: combinatorial base set, pattern
// augmentation, expansion generators, then filters. Output is deduplicated
// and deterministically ordered.
type Service struct {
	combinatorial     *CombinatorialGenerator
	patternRegistry   *patterns.Registry
	generatorRegistry *generators.Registry
	filterRegistry    *filters.Registry
	log               zerolog.Logger
}

// NewService creates a sequence service with all stages populated. screen
// and prices may be nil.
func NewService(screen CandidateScreen, prices filters.PriceHistoryProvider, log zerolog.Logger) *Service {
	return &Service{
		combinatorial:     NewCombinatorialGenerator(screen, log),
		patternRegistry:   patterns.NewPopulatedRegistry(log),
		generatorRegistry: generators.NewPopulatedRegistry(log),
		filterRegistry:    filters.NewPopulatedRegistry(prices, log),
		log:               log.With().Str("component", "sequences").Logger(),
	}
}

// GenerateSequences runs the full sequencing pipeline over the identified
// opportunities.
func (s *Service) GenerateSequences(
	opportunities domain.OpportunitiesByStrategy,
	ctx *domain.OpportunityContext,
	config *domain.PlannerConfiguration,
) []domain.ActionSequence {
	var sequences []domain.ActionSequence

	if config.EnableCombinatorialGenerator {
		genConfig := GenerationConfig{
			MaxDepth:        config.MaxDepth,
			AvailableCash:   ctx.AvailableCashEUR,
			PruneInfeasible: true,
		}
		sequences = s.combinatorial.Generate(opportunities, ctx, genConfig)
	}

	// Augmentation patterns add strategy-shaped sequences on top.
	sequences = append(sequences, s.patternRegistry.GenerateSequences(opportunities, config)...)

	// Expansion generators derive prefixes and relaxed variants.
	sequences = s.generatorRegistry.Apply(sequences, config)

	// Filters are remove-only.
	sequences = s.filterRegistry.Apply(sequences, config)

	sequences = dedupe(sequences)

	// Priority descending; stable so equal priorities keep generation order.
	sort.SliceStable(sequences, func(i, j int) bool {
		return sequences[i].Priority > sequences[j].Priority
	})

	s.log.Info().Int("final_sequences", len(sequences)).Msg("Sequence generation complete")
	return sequences
}

// dedupe drops sequences with a hash already seen, keeping the first
// occurrence. Patterns and generators may re-derive combinations the
// combinatorial stage already produced.
func dedupe(sequences []domain.ActionSequence) []domain.ActionSequence {
	seen := make(map[string]bool, len(sequences))
	result := make([]domain.ActionSequence, 0, len(sequences))

	for _, seq := range sequences {
		if len(seq.Actions) == 0 || seen[seq.SequenceHash] {
			continue
		}
		seen[seq.SequenceHash] = true
		result = append(result, seq)
	}

	return result
}
