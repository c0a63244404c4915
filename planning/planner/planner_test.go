package planner

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tradeplan/domain"
	"github.com/aristath/tradeplan/fx"
	"github.com/aristath/tradeplan/opportunities/calculators"
)

func testPlanner() *Planner {
	log := zerolog.Nop()
	converter := fx.NewConverter(fx.StaticRates{}, log)
	return NewDefault(calculators.NewGainBasedAdvisor(nil), converter, nil, log)
}

// rebalanceSnapshot holds an overweight AAA position and a missing BBB
// target, so the weight gap calculator proposes a sell and a buy.
func rebalanceSnapshot() *domain.OpportunityContext {
	securities := []domain.Security{
		{Symbol: "AAA", Name: "Alpha", Currency: "EUR", MinLot: 1, AllowBuy: true, AllowSell: true},
		{Symbol: "BBB", Name: "Beta", Currency: "EUR", MinLot: 1, AllowBuy: true, AllowSell: true},
	}
	positions := []domain.Position{
		{Symbol: "AAA", Quantity: 50, AvgPrice: 100.0, CurrentPrice: 100.0, Currency: "EUR"},
	}
	prices := map[string]float64{"AAA": 100.0, "BBB": 100.0}

	snapshot := domain.NewOpportunityContext(positions, securities, 2000.0, 10000.0, prices)
	snapshot.TargetWeights = map[string]float64{"AAA": 0.3, "BBB": 0.2}
	return snapshot
}

func TestPlannerPlan(t *testing.T) {
	p := testPlanner()
	config := domain.NewDefaultConfiguration()

	t.Run("produces a funded rebalancing plan", func(t *testing.T) {
		plan, err := p.Plan(context.Background(), rebalanceSnapshot(), config)
		require.NoError(t, err)

		assert.NotEmpty(t, plan.RunID)
		require.False(t, plan.IsEmpty())

		// Sells execute before buys.
		seenBuy := false
		for _, action := range plan.Actions {
			if action.Side == "BUY" {
				seenBuy = true
			}
			if action.Side == "SELL" {
				assert.False(t, seenBuy, "SELL after BUY in plan")
			}
		}
	})

	t.Run("empty snapshot yields an empty plan", func(t *testing.T) {
		snapshot := domain.NewOpportunityContext(nil, nil, 1000.0, 1000.0, nil)

		plan, err := p.Plan(context.Background(), snapshot, config)
		require.NoError(t, err)
		assert.True(t, plan.IsEmpty())
		assert.NotEmpty(t, plan.RunID)
	})

	t.Run("rejects malformed snapshots", func(t *testing.T) {
		snapshot := rebalanceSnapshot()
		snapshot.Securities[0].MinLot = 0

		_, err := p.Plan(context.Background(), snapshot, config)
		assert.Error(t, err)
	})

	t.Run("same snapshot yields the same actions, fresh run id", func(t *testing.T) {
		first, err := p.Plan(context.Background(), rebalanceSnapshot(), config)
		require.NoError(t, err)
		second, err := p.Plan(context.Background(), rebalanceSnapshot(), config)
		require.NoError(t, err)

		assert.NotEqual(t, first.RunID, second.RunID)
		assert.Equal(t, first.Actions, second.Actions)
		assert.Equal(t, first.Dropped, second.Dropped)
	})
}
