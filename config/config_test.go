package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.MaxDepth)
	assert.True(t, cfg.AllowBuy)
	assert.True(t, cfg.AllowSell)
	assert.Equal(t, "neutral", cfg.MarketRegime)
	assert.InDelta(t, 2.0, cfg.CostFixed, 1e-9)
	assert.InDelta(t, 0.002, cfg.CostPercent, 1e-9)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PLANNER_MAX_DEPTH", "2")
	t.Setenv("PLANNER_ALLOW_BUY", "false")
	t.Setenv("MARKET_REGIME", "bear")
	t.Setenv("TRANSACTION_COST_FIXED", "5.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.MaxDepth)
	assert.False(t, cfg.AllowBuy)
	assert.Equal(t, "bear", cfg.MarketRegime)
	assert.InDelta(t, 5.5, cfg.CostFixed, 1e-9)
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("PLANNER_MAX_DEPTH", "not-a-number")
	t.Setenv("PLANNER_ALLOW_SELL", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxDepth)
	assert.True(t, cfg.AllowSell)
}

func TestPlannerConfiguration(t *testing.T) {
	t.Setenv("PLANNER_MIN_TRADE_VALUE", "300")
	t.Setenv("PLANNER_MAX_SELL_PCT", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	planner := cfg.PlannerConfiguration()
	assert.InDelta(t, 300.0, planner.MinTradeValue, 1e-9)
	assert.InDelta(t, 0.5, planner.MaxSellPercentage, 1e-9)
	assert.True(t, planner.EnableCombinatorialGenerator, "module flags keep their defaults")
}
