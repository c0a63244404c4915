package generators

import (
	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
	"github.com/aristath/tradeplan/sequences/patterns"
)

// relaxationBuyScale is the position-sizing cap multiplier applied to buys
// in relaxed variants.
const relaxationBuyScale = 1.5

// ConstraintRelaxationGenerator derives over-sized variants of buy-carrying
// sequences. Candidate buys arrive sized to their target; scaling them to
// 1.5x tests whether loosening the sizing cap is worth it when the cash is
// there. Cash feasibility is not relaxed: the oversized variants still face
// the gate's simulation and the budget allocator.
type ConstraintRelaxationGenerator struct {
	*BaseGenerator
}

// NewConstraintRelaxationGenerator creates a new constraint-relaxation
// generator.
func NewConstraintRelaxationGenerator(log zerolog.Logger) *ConstraintRelaxationGenerator {
	return &ConstraintRelaxationGenerator{BaseGenerator: NewBaseGenerator(log, "constraint_relaxation")}
}

// Name returns the generator name.
func (g *ConstraintRelaxationGenerator) Name() string {
	return "constraint_relaxation"
}

// Generate appends a variant of each sequence with buy quantities scaled
// up. Sell quantities are left alone: sells are bounded by the held
// position, and growing them relaxes nothing.
func (g *ConstraintRelaxationGenerator) Generate(
	sequences []domain.ActionSequence,
	params map[string]interface{},
) ([]domain.ActionSequence, error) {
	result := append([]domain.ActionSequence{}, sequences...)

	for _, seq := range sequences {
		relaxed := make([]domain.ActionCandidate, 0, len(seq.Actions))
		changed := false

		for _, action := range seq.Actions {
			if action.Side != "BUY" {
				relaxed = append(relaxed, action)
				continue
			}

			// Quantities arrive lot-aligned; the scaled quantity is
			// re-aligned later in constraint enforcement.
			bigger := int(float64(action.Quantity) * relaxationBuyScale)
			if bigger <= action.Quantity {
				relaxed = append(relaxed, action)
				continue
			}

			scaled := action
			scaled.Quantity = bigger
			if action.Quantity > 0 {
				scaled.ValueEUR = action.ValueEUR * float64(bigger) / float64(action.Quantity)
			}
			relaxed = append(relaxed, scaled)
			changed = true
		}

		if changed {
			result = append(result, patterns.CreateSequence(relaxed, "constraint_relaxation"))
		}
	}

	return result, nil
}
