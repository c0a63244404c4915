// Package config provides configuration management functionality.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/aristath/tradeplan/domain"
)

// Config holds process-level configuration loaded from the environment.
// Planner tuning lives in domain.PlannerConfiguration; this layer only
// covers the knobs operators set per deployment.
type Config struct {
	LogLevel  string
	LogPretty bool

	// Planner overrides
	MaxDepth          int
	PriorityThreshold float64
	MinTradeValue     float64
	MaxSellPercentage float64
	AllowBuy          bool
	AllowSell         bool
	MarketRegime      string

	// Transaction costs
	CostFixed   float64
	CostPercent float64

	// Exchange rate cache TTL in seconds
	FxCacheTTLSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	defaults := domain.NewDefaultConfiguration()

	cfg := &Config{
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogPretty:         getEnvAsBool("LOG_PRETTY", false),
		MaxDepth:          getEnvAsInt("PLANNER_MAX_DEPTH", defaults.MaxDepth),
		PriorityThreshold: getEnvAsFloat("PLANNER_PRIORITY_THRESHOLD", defaults.PriorityThreshold),
		MinTradeValue:     getEnvAsFloat("PLANNER_MIN_TRADE_VALUE", defaults.MinTradeValue),
		MaxSellPercentage: getEnvAsFloat("PLANNER_MAX_SELL_PCT", defaults.MaxSellPercentage),
		AllowBuy:          getEnvAsBool("PLANNER_ALLOW_BUY", defaults.AllowBuy),
		AllowSell:         getEnvAsBool("PLANNER_ALLOW_SELL", defaults.AllowSell),
		MarketRegime:      getEnv("MARKET_REGIME", defaults.MarketRegime),
		CostFixed:         getEnvAsFloat("TRANSACTION_COST_FIXED", defaults.Costs.Fixed),
		CostPercent:       getEnvAsFloat("TRANSACTION_COST_PERCENT", defaults.Costs.Percent),
		FxCacheTTLSeconds: getEnvAsInt("FX_CACHE_TTL_SECONDS", 3600),
	}

	return cfg, nil
}

// PlannerConfiguration builds a planner configuration from the loaded
// environment, starting from the library defaults.
func (c *Config) PlannerConfiguration() *domain.PlannerConfiguration {
	planner := domain.NewDefaultConfiguration()
	planner.MaxDepth = c.MaxDepth
	planner.PriorityThreshold = c.PriorityThreshold
	planner.MinTradeValue = c.MinTradeValue
	planner.MaxSellPercentage = c.MaxSellPercentage
	planner.AllowBuy = c.AllowBuy
	planner.AllowSell = c.AllowSell
	planner.MarketRegime = c.MarketRegime
	planner.Costs = domain.TransactionCosts{Fixed: c.CostFixed, Percent: c.CostPercent}
	return planner
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
