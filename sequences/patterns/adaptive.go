package patterns

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// AdaptivePattern pairs high-priority actions with complementary
// medium-priority actions of the opposite side.
type AdaptivePattern struct {
	*BasePattern
}

// NewAdaptivePattern creates a new adaptive pattern.
func NewAdaptivePattern(log zerolog.Logger) *AdaptivePattern {
	return &AdaptivePattern{BasePattern: NewBasePattern(log, "adaptive")}
}

// Name returns the pattern name.
func (p *AdaptivePattern) Name() string {
	return "adaptive"
}

// Generate builds sequences around the highest-priority candidates.
func (p *AdaptivePattern) Generate(
	opportunities domain.OpportunitiesByStrategy,
	params map[string]interface{},
) ([]domain.ActionSequence, error) {
	maxSequences := GetIntParam(params, "max_sequences", 5)
	threshold := GetFloatParam(params, "adaptive_threshold", 0.7)

	var highPriority []domain.ActionCandidate
	var mediumPriority []domain.ActionCandidate

	for _, candidate := range sortedCandidates(opportunities) {
		if candidate.Priority >= threshold {
			highPriority = append(highPriority, candidate)
		} else {
			mediumPriority = append(mediumPriority, candidate)
		}
	}

	var sequences []domain.ActionSequence

	for i := 0; i < len(highPriority) && i < maxSequences; i++ {
		actions := []domain.ActionCandidate{highPriority[i]}

		// Pair with a complementary medium-priority action of the other side.
		if i < len(mediumPriority) && mediumPriority[i].Side != highPriority[i].Side {
			actions = append(actions, mediumPriority[i])
		}

		sequences = append(sequences, CreateSequence(actions, "adaptive"))
	}

	p.log.Debug().
		Int("high_priority", len(highPriority)).
		Int("sequences", len(sequences)).
		Msg("Adaptive pattern complete")

	return sequences, nil
}

// sortedCandidates flattens the strategy map into a deterministic
// priority-descending slice.
func sortedCandidates(opportunities domain.OpportunitiesByStrategy) []domain.ActionCandidate {
	all := opportunities.Flatten()
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Priority != all[j].Priority {
			return all[i].Priority > all[j].Priority
		}
		return all[i].Symbol < all[j].Symbol
	})
	return all
}
