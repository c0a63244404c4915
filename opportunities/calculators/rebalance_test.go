package calculators

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tradeplan/domain"
)

func rebalanceFixture() *domain.OpportunityContext {
	securities := []domain.Security{
		{Symbol: "SAP", Name: "SAP SE", Currency: "EUR", AllowBuy: true, AllowSell: true, MinLot: 1, Country: "Germany", Industry: "Technology"},
		{Symbol: "SIE", Name: "Siemens AG", Currency: "EUR", AllowBuy: true, AllowSell: true, MinLot: 1, Country: "Germany", Industry: "Industrials"},
		{Symbol: "NOVN", Name: "Novartis AG", Currency: "EUR", AllowBuy: true, AllowSell: true, MinLot: 1, Country: "Switzerland", Industry: "Healthcare"},
	}
	positions := []domain.Position{
		{Symbol: "SAP", Quantity: 100, AvgPrice: 90.0, CurrentPrice: 100.0, Currency: "EUR"},
		{Symbol: "SIE", Quantity: 50, AvgPrice: 100.0, CurrentPrice: 100.0, Currency: "EUR"},
	}

	ctx := domain.NewOpportunityContext(positions, securities, 10000.0, 50000.0, map[string]float64{
		"SAP": 100.0, "SIE": 100.0, "NOVN": 100.0,
	})
	// Germany holds 15k of 50k = 30%; Switzerland nothing.
	ctx.GroupAllocations = map[string]float64{"Germany": 0.30, "Switzerland": 0.0}
	ctx.GroupWeights = map[string]float64{"Germany": 0.20, "Switzerland": 0.10}
	ctx.SecurityScores = map[string]float64{"SAP": 0.8, "SIE": 0.4, "NOVN": 0.7}
	return ctx
}

func TestRebalanceSellsCalculator(t *testing.T) {
	calc := NewRebalanceSellsCalculator(eurConverter(), zerolog.Nop())

	t.Run("sells overweight group, lowest quality first", func(t *testing.T) {
		ctx := rebalanceFixture()
		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		require.NotEmpty(t, candidates)

		first := candidates[0]
		assert.Equal(t, "SELL", first.Side)
		assert.Equal(t, "SIE", first.Symbol) // quality 0.4 beats SAP's 0.8 for selling
		assert.True(t, first.HasTag("rebalance"))

		// 30% of the 5000 EUR SIE position.
		assert.Equal(t, 15, first.Quantity)

		// Gap 0.10 scaled by 10.
		assert.InDelta(t, 1.0, first.Priority, 1e-9)
	})

	t.Run("sell capped by remaining overweight", func(t *testing.T) {
		ctx := rebalanceFixture()
		ctx.GroupAllocations["Germany"] = 0.26 // 6 points over: 3000 EUR overweight
		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		require.NotEmpty(t, candidates)

		total := 0.0
		for _, opp := range candidates {
			total += opp.ValueEUR
		}
		assert.LessOrEqual(t, total, 3000.0+100.0) // one lot of slack from rounding
	})

	t.Run("ignores groups within threshold", func(t *testing.T) {
		ctx := rebalanceFixture()
		ctx.GroupAllocations["Germany"] = 0.24 // 4 points over
		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})
}

func TestRebalanceBuysCalculator(t *testing.T) {
	calc := NewRebalanceBuysCalculator(eurConverter(), zerolog.Nop())

	t.Run("buys into underweight group", func(t *testing.T) {
		ctx := rebalanceFixture()
		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		require.NotEmpty(t, candidates)

		first := candidates[0]
		assert.Equal(t, "BUY", first.Side)
		assert.Equal(t, "NOVN", first.Symbol)
		assert.True(t, first.HasTag("rebalance"))

		// Gap 0.10 scaled by 10.
		assert.InDelta(t, 1.0, first.Priority, 1e-9)
	})

	t.Run("tactical adjustment shifts target", func(t *testing.T) {
		ctx := rebalanceFixture()
		ctx.GroupWeightAdjustments = map[string]float64{"Switzerland": -0.08}
		// Effective target 2%, current 0%: below the 5-point trigger.
		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("respects available cash", func(t *testing.T) {
		ctx := rebalanceFixture()
		ctx.AvailableCashEUR = 350.0
		candidates, err := calc.Calculate(ctx, calc.DefaultParams())
		require.NoError(t, err)
		require.NotEmpty(t, candidates)
		for _, opp := range candidates {
			assert.LessOrEqual(t, opp.ValueEUR, 350.0)
		}
	})
}
