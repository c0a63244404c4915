package domain

// PlannerConfiguration holds the complete planner configuration: global
// limits, per-module enable flags, and risk settings. A configuration is
// immutable once handed to the planner; callers build a fresh one per run.
type PlannerConfiguration struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Global planning settings
	MaxDepth          int     `json:"max_depth"`           // Maximum actions per sequence
	PriorityThreshold float64 `json:"priority_threshold"`  // Minimum mean priority for a sequence
	MinTradeValue     float64 `json:"min_trade_value"`     // Minimum EUR per trade; 0 derives from costs
	MaxCostRatio      float64 `json:"max_cost_ratio"`      // Maximum costs as fraction of trade value
	MaxSellPercentage float64 `json:"max_sell_percentage"` // Per-trade cap as fraction of position
	AllowSell         bool    `json:"allow_sell"`
	AllowBuy          bool    `json:"allow_buy"`

	// Cooloff windows
	MinHoldDays      int `json:"min_hold_days"`      // No selling positions younger than this
	SellCooldownDays int `json:"sell_cooldown_days"` // No re-buying recently sold symbols

	// Transaction costs
	Costs TransactionCosts `json:"costs"`

	// Market regime hint used by the regime pattern ("bull", "bear", "neutral")
	MarketRegime string `json:"market_regime,omitempty"`

	// Correlation filter settings
	CorrelationThreshold    float64 `json:"correlation_threshold"`
	CorrelationLookbackDays int     `json:"correlation_lookback_days"`

	// Calculator enabled flags
	EnableProfitTakingCalc   bool `json:"enable_profit_taking_calc"`
	EnableAveragingDownCalc  bool `json:"enable_averaging_down_calc"`
	EnableRebalanceSellsCalc bool `json:"enable_rebalance_sells_calc"`
	EnableRebalanceBuysCalc  bool `json:"enable_rebalance_buys_calc"`
	EnableWeightBasedCalc    bool `json:"enable_weight_based_calc"`

	// Pattern enabled flags
	EnableAdaptivePattern     bool `json:"enable_adaptive_pattern"`
	EnableMarketRegimePattern bool `json:"enable_market_regime_pattern"`

	// Generator enabled flags
	EnableCombinatorialGenerator        bool `json:"enable_combinatorial_generator"`
	EnablePartialExecutionGenerator     bool `json:"enable_partial_execution_generator"`
	EnableConstraintRelaxationGenerator bool `json:"enable_constraint_relaxation_generator"`

	// Filter enabled flags
	EnableCorrelationAwareFilter bool `json:"enable_correlation_aware_filter"`

	// Calculator tuning overrides, keyed by calculator name. Values here are
	// merged over the built-in defaults in GetCalculatorParams.
	CalculatorParams map[string]map[string]interface{} `json:"calculator_params,omitempty"`
}

// NewDefaultConfiguration creates a PlannerConfiguration with default settings.
func NewDefaultConfiguration() *PlannerConfiguration {
	return &PlannerConfiguration{
		Name:                    "default",
		MaxDepth:                4,
		PriorityThreshold:       0.0,
		MinTradeValue:           0, // derived from costs via MinTradeAmount
		MaxCostRatio:            0.01,
		MaxSellPercentage:       1.0,
		AllowSell:               true,
		AllowBuy:                true,
		MinHoldDays:             0,
		SellCooldownDays:        0,
		Costs:                   DefaultTransactionCosts(),
		MarketRegime:            "neutral",
		CorrelationThreshold:    0.7,
		CorrelationLookbackDays: 252,
		// All modules enabled by default
		EnableProfitTakingCalc:              true,
		EnableAveragingDownCalc:             true,
		EnableRebalanceSellsCalc:            true,
		EnableRebalanceBuysCalc:             true,
		EnableWeightBasedCalc:               true,
		EnableAdaptivePattern:               true,
		EnableMarketRegimePattern:           true,
		EnableCombinatorialGenerator:        true,
		EnablePartialExecutionGenerator:     true,
		EnableConstraintRelaxationGenerator: true,
		EnableCorrelationAwareFilter:        true,
	}
}

// EffectiveMinTradeValue returns the configured minimum trade value, deriving
// it from the cost schedule when not set explicitly.
func (c *PlannerConfiguration) EffectiveMinTradeValue() float64 {
	if c.MinTradeValue > 0 {
		return c.MinTradeValue
	}
	return c.Costs.MinTradeAmount(c.MaxCostRatio)
}

// GetEnabledCalculators returns a list of enabled opportunity calculator names.
func (c *PlannerConfiguration) GetEnabledCalculators() []string {
	enabled := []string{}
	if c.EnableProfitTakingCalc {
		enabled = append(enabled, "profit_taking")
	}
	if c.EnableAveragingDownCalc {
		enabled = append(enabled, "averaging_down")
	}
	if c.EnableRebalanceSellsCalc {
		enabled = append(enabled, "rebalance_sells")
	}
	if c.EnableRebalanceBuysCalc {
		enabled = append(enabled, "rebalance_buys")
	}
	if c.EnableWeightBasedCalc {
		enabled = append(enabled, "weight_based")
	}
	return enabled
}

// GetEnabledPatterns returns a list of enabled augmentation pattern names.
func (c *PlannerConfiguration) GetEnabledPatterns() []string {
	enabled := []string{}
	if c.EnableAdaptivePattern {
		enabled = append(enabled, "adaptive")
	}
	if c.EnableMarketRegimePattern {
		enabled = append(enabled, "market_regime")
	}
	return enabled
}

// GetEnabledGenerators returns a list of enabled sequence generator names.
func (c *PlannerConfiguration) GetEnabledGenerators() []string {
	enabled := []string{}
	if c.EnableCombinatorialGenerator {
		enabled = append(enabled, "combinatorial")
	}
	if c.EnablePartialExecutionGenerator {
		enabled = append(enabled, "partial_execution")
	}
	if c.EnableConstraintRelaxationGenerator {
		enabled = append(enabled, "constraint_relaxation")
	}
	return enabled
}

// GetEnabledFilters returns a list of enabled sequence filter names.
func (c *PlannerConfiguration) GetEnabledFilters() []string {
	enabled := []string{}
	if c.EnableCorrelationAwareFilter {
		enabled = append(enabled, "correlation_aware")
	}
	return enabled
}

// GetCalculatorParams returns parameters for a specific calculator. Risk
// settings that apply across calculators are injected here; explicit
// per-calculator overrides from CalculatorParams win.
func (c *PlannerConfiguration) GetCalculatorParams(name string) map[string]interface{} {
	params := make(map[string]interface{})

	if name == "profit_taking" || name == "rebalance_sells" || name == "weight_based" {
		params["max_sell_percentage"] = c.MaxSellPercentage
		params["min_hold_days"] = float64(c.MinHoldDays)
	}
	params["min_trade_value"] = c.EffectiveMinTradeValue()

	for key, value := range c.CalculatorParams[name] {
		params[key] = value
	}
	return params
}

// GetPatternParams returns parameters for a specific augmentation pattern.
func (c *PlannerConfiguration) GetPatternParams(name string) map[string]interface{} {
	params := make(map[string]interface{})
	if name == "market_regime" {
		params["regime"] = c.MarketRegime
	}
	return params
}

// GetGeneratorParams returns parameters for a specific generator.
func (c *PlannerConfiguration) GetGeneratorParams(name string) map[string]interface{} {
	params := make(map[string]interface{})
	params["max_depth"] = float64(c.MaxDepth)
	return params
}

// GetFilterParams returns parameters for a specific filter.
func (c *PlannerConfiguration) GetFilterParams(name string) map[string]interface{} {
	params := make(map[string]interface{})
	if name == "correlation_aware" {
		params["correlation_threshold"] = c.CorrelationThreshold
		params["lookback_days"] = float64(c.CorrelationLookbackDays)
	}
	return params
}
