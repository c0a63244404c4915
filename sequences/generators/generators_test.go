package generators

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tradeplan/domain"
	"github.com/aristath/tradeplan/sequences/patterns"
)

func twoStepSequence() domain.ActionSequence {
	return patterns.CreateSequence([]domain.ActionCandidate{
		{Side: "SELL", Symbol: "AAA", Quantity: 10, ValueEUR: 1000, Priority: 2.0},
		{Side: "BUY", Symbol: "BBB", Quantity: 6, ValueEUR: 600, Priority: 1.0},
	}, "combinatorial")
}

func TestPartialExecutionGenerator(t *testing.T) {
	gen := NewPartialExecutionGenerator(zerolog.Nop())

	t.Run("adds strict prefixes", func(t *testing.T) {
		expanded, err := gen.Generate([]domain.ActionSequence{twoStepSequence()}, nil)
		require.NoError(t, err)

		// The original plus its one-action prefix.
		require.Len(t, expanded, 2)
		assert.Equal(t, 2, expanded[0].Depth)
		assert.Equal(t, 1, expanded[1].Depth)
		assert.Equal(t, "partial_execution", expanded[1].PatternType)
		assert.Equal(t, "SELL", expanded[1].Actions[0].Side)
	})

	t.Run("single-action sequences have no prefixes", func(t *testing.T) {
		single := patterns.CreateSequence([]domain.ActionCandidate{
			{Side: "BUY", Symbol: "AAA", Quantity: 1, Priority: 1.0},
		}, "combinatorial")

		expanded, err := gen.Generate([]domain.ActionSequence{single}, nil)
		require.NoError(t, err)
		assert.Len(t, expanded, 1)
	})
}

func TestConstraintRelaxationGenerator(t *testing.T) {
	gen := NewConstraintRelaxationGenerator(zerolog.Nop())

	t.Run("scales buys up, keeps sells", func(t *testing.T) {
		expanded, err := gen.Generate([]domain.ActionSequence{twoStepSequence()}, nil)
		require.NoError(t, err)

		require.Len(t, expanded, 2)
		relaxed := expanded[1]
		assert.Equal(t, "constraint_relaxation", relaxed.PatternType)

		for _, action := range relaxed.Actions {
			switch action.Side {
			case "SELL":
				assert.Equal(t, 10, action.Quantity)
			case "BUY":
				assert.Equal(t, 9, action.Quantity)
				assert.InDelta(t, 900.0, action.ValueEUR, 1e-9)
			}
		}
	})

	t.Run("single-unit buys produce no variant", func(t *testing.T) {
		// floor(1 * 1.5) is still 1; no distinct variant exists.
		tiny := patterns.CreateSequence([]domain.ActionCandidate{
			{Side: "BUY", Symbol: "AAA", Quantity: 1, ValueEUR: 100, Priority: 1.0},
		}, "combinatorial")

		expanded, err := gen.Generate([]domain.ActionSequence{tiny}, nil)
		require.NoError(t, err)
		assert.Len(t, expanded, 1)
	})
}

func TestRegistryApply(t *testing.T) {
	registry := NewPopulatedRegistry(zerolog.Nop())
	config := domain.NewDefaultConfiguration()

	t.Run("chains enabled generators", func(t *testing.T) {
		expanded := registry.Apply([]domain.ActionSequence{twoStepSequence()}, config)

		// partial_execution adds the prefix, constraint_relaxation then
		// derives halved variants of both multi-buy sequences.
		assert.Greater(t, len(expanded), 2)
	})

	t.Run("disabled generators are skipped", func(t *testing.T) {
		off := domain.NewDefaultConfiguration()
		off.EnablePartialExecutionGenerator = false
		off.EnableConstraintRelaxationGenerator = false

		expanded := registry.Apply([]domain.ActionSequence{twoStepSequence()}, off)
		assert.Len(t, expanded, 1)
	})
}
