package calculators

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tradeplan/domain"
)

func TestWeightBasedCalculator(t *testing.T) {
	security := domain.Security{
		Symbol: "NVO", Name: "Novo Nordisk", Currency: "EUR",
		AllowBuy: true, AllowSell: true, MinLot: 1, PriorityMultiplier: 1.0,
	}

	calc := NewWeightBasedCalculator(eurConverter(), zerolog.Nop())

	t.Run("buys toward underweight target", func(t *testing.T) {
		ctx := testContext(nil, []domain.Security{security})
		ctx.CurrentPrices = map[string]float64{"NVO": 100.0}
		ctx.TargetWeights = map[string]float64{"NVO": 0.05} // 2500 EUR of a 50k portfolio

		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		require.Len(t, candidates, 1)

		opp := candidates[0]
		assert.Equal(t, "BUY", opp.Side)
		assert.Equal(t, 25, opp.Quantity)
		assert.True(t, opp.HasTag("weight_based"))
		// |0.05| * 100
		assert.InDelta(t, 5.0, opp.Priority, 1e-9)
	})

	t.Run("sells toward overweight target", func(t *testing.T) {
		position := domain.Position{Symbol: "NVO", Quantity: 50, AvgPrice: 80.0, CurrentPrice: 100.0, Currency: "EUR"}
		ctx := testContext([]domain.Position{position}, []domain.Security{security})
		ctx.CurrentPrices = map[string]float64{"NVO": 100.0}
		// Held 5000 EUR = 10% of portfolio, target 5%.
		ctx.TargetWeights = map[string]float64{"NVO": 0.05}

		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		require.Len(t, candidates, 1)

		opp := candidates[0]
		assert.Equal(t, "SELL", opp.Side)
		assert.Equal(t, 25, opp.Quantity)
		assert.InDelta(t, 5.0, opp.Priority, 1e-9)
	})

	t.Run("ignores gaps below half a percent", func(t *testing.T) {
		position := domain.Position{Symbol: "NVO", Quantity: 25, AvgPrice: 100.0, CurrentPrice: 100.0, Currency: "EUR"}
		ctx := testContext([]domain.Position{position}, []domain.Security{security})
		ctx.CurrentPrices = map[string]float64{"NVO": 100.0}
		ctx.TargetWeights = map[string]float64{"NVO": 0.052} // current 5.0%, gap 0.2%

		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("skips gaps not worth the costs", func(t *testing.T) {
		ctx := testContext(nil, []domain.Security{security})
		ctx.CurrentPrices = map[string]float64{"NVO": 100.0}
		// Gap value 400 EUR; cost(400) = 2 + 0.8 = 2.8, so worth it at the
		// default costs. Crank the fixed fee until it is not.
		ctx.TargetWeights = map[string]float64{"NVO": 0.008}
		ctx.Costs = domain.TransactionCosts{Fixed: 300.0, Percent: 0.002}

		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("tags buy below average cost as averaging down", func(t *testing.T) {
		position := domain.Position{Symbol: "NVO", Quantity: 10, AvgPrice: 150.0, CurrentPrice: 100.0, Currency: "EUR"}
		ctx := testContext([]domain.Position{position}, []domain.Security{security})
		ctx.CurrentPrices = map[string]float64{"NVO": 100.0}
		// Held 1000 EUR = 2%, target 10%.
		ctx.TargetWeights = map[string]float64{"NVO": 0.10}

		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "BUY", candidates[0].Side)
		assert.True(t, candidates[0].HasTag("averaging_down"))
	})

	t.Run("exits position dropped from targets", func(t *testing.T) {
		position := domain.Position{Symbol: "NVO", Quantity: 3, AvgPrice: 100.0, CurrentPrice: 100.0, Currency: "EUR"}
		ctx := testContext([]domain.Position{position}, []domain.Security{security})
		ctx.CurrentPrices = map[string]float64{"NVO": 100.0}
		ctx.TargetWeights = map[string]float64{} // no target at all

		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "SELL", candidates[0].Side)
		assert.Equal(t, 3, candidates[0].Quantity)
		assert.Contains(t, candidates[0].Reason, "exiting")
	})

	t.Run("multiplier boosts buys and dampens sells", func(t *testing.T) {
		boosted := security
		boosted.PriorityMultiplier = 2.0

		ctx := testContext(nil, []domain.Security{boosted})
		ctx.CurrentPrices = map[string]float64{"NVO": 100.0}
		ctx.TargetWeights = map[string]float64{"NVO": 0.05}

		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.InDelta(t, 10.0, candidates[0].Priority, 1e-9) // 5 * 2.0

		position := domain.Position{Symbol: "NVO", Quantity: 50, AvgPrice: 80.0, CurrentPrice: 100.0, Currency: "EUR"}
		ctx = testContext([]domain.Position{position}, []domain.Security{boosted})
		ctx.CurrentPrices = map[string]float64{"NVO": 100.0}
		ctx.TargetWeights = map[string]float64{"NVO": 0.05}

		candidates, err = calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.InDelta(t, 2.5, candidates[0].Priority, 1e-9) // 5 / 2.0
	})

	t.Run("respects recently sold cooloff on buys", func(t *testing.T) {
		ctx := testContext(nil, []domain.Security{security})
		ctx.CurrentPrices = map[string]float64{"NVO": 100.0}
		ctx.TargetWeights = map[string]float64{"NVO": 0.05}
		ctx.RecentlySoldSymbols["NVO"] = true

		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})
}
