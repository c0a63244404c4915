package generators

import (
	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
	"github.com/aristath/tradeplan/sequences/patterns"
)

// PartialExecutionGenerator derives prefix sequences from multi-action
// sequences. When a full sequence turns out infeasible, a prefix of it may
// still fit the budget.
type PartialExecutionGenerator struct {
	*BaseGenerator
}

// NewPartialExecutionGenerator creates a new partial-execution generator.
func NewPartialExecutionGenerator(log zerolog.Logger) *PartialExecutionGenerator {
	return &PartialExecutionGenerator{BaseGenerator: NewBaseGenerator(log, "partial_execution")}
}

// Name returns the generator name.
func (g *PartialExecutionGenerator) Name() string {
	return "partial_execution"
}

// Generate appends every strict prefix of each multi-action sequence.
func (g *PartialExecutionGenerator) Generate(
	sequences []domain.ActionSequence,
	params map[string]interface{},
) ([]domain.ActionSequence, error) {
	result := append([]domain.ActionSequence{}, sequences...)

	for _, seq := range sequences {
		for i := 1; i < len(seq.Actions); i++ {
			partial := patterns.CreateSequence(seq.Actions[:i], "partial_execution")
			result = append(result, partial)
		}
	}

	return result, nil
}
