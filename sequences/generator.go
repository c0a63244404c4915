// Package sequences turns opportunity candidates into deduplicated,
// prioritized action sequences: exhaustive combinatorial generation,
// pattern-based augmentation, expansion generators, then filters.
package sequences

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
	"github.com/aristath/tradeplan/sequences/patterns"
)

// CandidateScreen pre-filters candidates before combination. Satisfied by
// constraints.Enforcer; may be nil.
type CandidateScreen interface {
	IsActionFeasible(action domain.ActionCandidate, ctx *domain.OpportunityContext) (bool, string)
}

// CombinatorialGenerator generates all valid combinations of opportunities
// up to a maximum depth:
//   - collects all candidates regardless of strategy
//   - applies candidate screening (cooloff, ineligibility, allow flags)
//   - generates every combination from depth 1 to max_depth
//   - uses order-independent hashing for deduplication
//   - prunes cash-infeasible sequences during generation
type CombinatorialGenerator struct {
	log    zerolog.Logger
	screen CandidateScreen
}

// NewCombinatorialGenerator creates a new combinatorial generator.
func NewCombinatorialGenerator(screen CandidateScreen, log zerolog.Logger) *CombinatorialGenerator {
	return &CombinatorialGenerator{
		log:    log.With().Str("component", "combinatorial_generator").Logger(),
		screen: screen,
	}
}

// GenerationConfig contains parameters for combinatorial generation.
type GenerationConfig struct {
	MaxDepth        int     // Maximum number of actions per sequence
	MaxSequences    int     // Maximum total sequences to generate (0 = unlimited)
	AvailableCash   float64 // Available cash for feasibility pruning
	PruneInfeasible bool    // Whether to prune cash-infeasible sequences
}

// DefaultGenerationConfig returns sensible defaults for generation.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MaxDepth:        4,
		MaxSequences:    0,
		AvailableCash:   0,
		PruneInfeasible: true,
	}
}

// Generate creates all valid action sequences from the given opportunities.
// Returns deduplicated sequences in deterministic order.
func (g *CombinatorialGenerator) Generate(
	opportunities domain.OpportunitiesByStrategy,
	ctx *domain.OpportunityContext,
	config GenerationConfig,
) []domain.ActionSequence {
	candidates := g.collectAndScreen(opportunities, ctx)
	if len(candidates) == 0 {
		g.log.Debug().Msg("No valid candidates after screening")
		return nil
	}

	g.log.Info().
		Int("candidates", len(candidates)).
		Int("max_depth", config.MaxDepth).
		Msg("Starting combinatorial generation")

	var sequences []domain.ActionSequence
	seen := make(map[string]bool)

	effectiveMaxDepth := config.MaxDepth
	if effectiveMaxDepth > len(candidates) {
		effectiveMaxDepth = len(candidates)
	}

	for depth := 1; depth <= effectiveMaxDepth; depth++ {
		for _, combo := range combinations(candidates, depth) {
			normalized := patterns.NormalizeActions(combo)

			hash := patterns.HashActions(normalized)
			if seen[hash] {
				continue
			}

			if config.PruneInfeasible && config.AvailableCash > 0 {
				if !cashFeasible(normalized, config.AvailableCash, ctx.Costs) {
					continue
				}
			}

			seen[hash] = true
			sequences = append(sequences, patterns.CreateSequence(normalized, "combinatorial"))

			if config.MaxSequences > 0 && len(sequences) >= config.MaxSequences {
				g.log.Info().
					Int("sequences", len(sequences)).
					Msg("Reached max sequences limit")
				return sequences
			}
		}
	}

	g.log.Info().
		Int("sequences", len(sequences)).
		Msg("Combinatorial generation complete")

	return sequences
}

// collectAndScreen gathers all candidates and applies candidate screening.
// Output order is deterministic: priority descending, then symbol.
func (g *CombinatorialGenerator) collectAndScreen(
	opportunities domain.OpportunitiesByStrategy,
	ctx *domain.OpportunityContext,
) []domain.ActionCandidate {
	var all []domain.ActionCandidate

	strategies := make([]string, 0, len(opportunities))
	for strategy := range opportunities {
		strategies = append(strategies, strategy)
	}
	sort.Strings(strategies)

	for _, strategy := range strategies {
		for _, candidate := range opportunities[strategy] {
			if g.screen != nil {
				feasible, reason := g.screen.IsActionFeasible(candidate, ctx)
				if !feasible {
					g.log.Debug().
						Str("symbol", candidate.Symbol).
						Str("side", candidate.Side).
						Str("strategy", strategy).
						Str("reason", reason).
						Msg("Candidate screened out")
					continue
				}
			}
			all = append(all, candidate)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Priority != all[j].Priority {
			return all[i].Priority > all[j].Priority
		}
		return all[i].Symbol < all[j].Symbol
	})

	return all
}

// combinations returns all k-element subsets of items (n choose k).
func combinations(items []domain.ActionCandidate, k int) [][]domain.ActionCandidate {
	n := len(items)
	if k > n || k <= 0 {
		return nil
	}

	var result [][]domain.ActionCandidate
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}

	for {
		combo := make([]domain.ActionCandidate, k)
		for i, idx := range indices {
			combo[i] = items[idx]
		}
		result = append(result, combo)

		i := k - 1
		for i >= 0 && indices[i] == n-k+i {
			i--
		}
		if i < 0 {
			break
		}

		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}

	return result
}

// cashFeasible performs a quick running-cash check including transaction
// costs. Assumes the sequence is normalized (SELL before BUY).
func cashFeasible(actions []domain.ActionCandidate, availableCash float64, costs domain.TransactionCosts) bool {
	cash := availableCash

	for _, action := range actions {
		if action.Side == "SELL" {
			cash += action.ValueEUR - costs.Cost(action.ValueEUR)
			continue
		}
		total := action.ValueEUR + costs.Cost(action.ValueEUR)
		if total > cash {
			return false
		}
		cash -= total
	}

	return true
}
