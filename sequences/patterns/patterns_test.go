package patterns

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tradeplan/domain"
)

func opportunityFixture() domain.OpportunitiesByStrategy {
	return domain.OpportunitiesByStrategy{
		"profit_taking": {
			{Side: "SELL", Symbol: "AAA", Quantity: 10, Priority: 1.5},
		},
		"rebalance_sells": {
			{Side: "SELL", Symbol: "BBB", Quantity: 4, Priority: 0.9},
		},
		"rebalance_buys": {
			{Side: "BUY", Symbol: "CCC", Quantity: 5, Priority: 0.8},
		},
		"averaging_down": {
			{Side: "BUY", Symbol: "DDD", Quantity: 3, Priority: 0.4},
		},
	}
}

func TestCreateSequence(t *testing.T) {
	sell := domain.ActionCandidate{Side: "SELL", Symbol: "AAA", Quantity: 1, Priority: 2.0}
	buy := domain.ActionCandidate{Side: "BUY", Symbol: "BBB", Quantity: 1, Priority: 1.0}

	seq := CreateSequence([]domain.ActionCandidate{buy, sell}, "test")

	assert.Equal(t, 2, seq.Depth)
	assert.Equal(t, "test", seq.PatternType)
	assert.InDelta(t, 1.5, seq.Priority, 1e-9) // mean of 2.0 and 1.0
	assert.Equal(t, "SELL", seq.Actions[0].Side)
	assert.NotEmpty(t, seq.SequenceHash)
}

func TestAdaptivePattern(t *testing.T) {
	pattern := NewAdaptivePattern(zerolog.Nop())

	sequences, err := pattern.Generate(opportunityFixture(), map[string]interface{}{
		"adaptive_threshold": 1.0,
	})
	require.NoError(t, err)
	require.NotEmpty(t, sequences)

	// Highest-priority candidate leads, paired with an opposite-side
	// medium candidate when one lines up.
	first := sequences[0]
	symbols := map[string]bool{}
	for _, action := range first.Actions {
		symbols[action.Symbol] = true
	}
	assert.True(t, symbols["AAA"])
}

func TestMarketRegimePattern(t *testing.T) {
	pattern := NewMarketRegimePattern(zerolog.Nop())

	t.Run("bull favors buys", func(t *testing.T) {
		sequences, err := pattern.Generate(opportunityFixture(), map[string]interface{}{"regime": "bull"})
		require.NoError(t, err)
		require.NotEmpty(t, sequences)
		for _, seq := range sequences {
			for _, action := range seq.Actions {
				assert.Equal(t, "BUY", action.Side)
			}
		}
	})

	t.Run("bear favors profit taking", func(t *testing.T) {
		sequences, err := pattern.Generate(opportunityFixture(), map[string]interface{}{"regime": "bear"})
		require.NoError(t, err)
		require.Len(t, sequences, 1)
		assert.Equal(t, "AAA", sequences[0].Actions[0].Symbol)
	})

	t.Run("neutral pairs sells with buys", func(t *testing.T) {
		sequences, err := pattern.Generate(opportunityFixture(), map[string]interface{}{"regime": "neutral"})
		require.NoError(t, err)
		require.Len(t, sequences, 1)
		require.Len(t, sequences[0].Actions, 2)
		assert.Equal(t, "SELL", sequences[0].Actions[0].Side)
		assert.Equal(t, "BUY", sequences[0].Actions[1].Side)
	})
}

func TestRegistryGenerateSequences(t *testing.T) {
	registry := NewPopulatedRegistry(zerolog.Nop())
	config := domain.NewDefaultConfiguration()

	sequences := registry.GenerateSequences(opportunityFixture(), config)
	assert.NotEmpty(t, sequences)

	config.EnableAdaptivePattern = false
	config.EnableMarketRegimePattern = false
	assert.Empty(t, registry.GenerateSequences(opportunityFixture(), config))
}
