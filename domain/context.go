package domain

// OpportunityContext contains all data needed by opportunity calculators to
// identify trading opportunities. It is a read-only snapshot: all external
// lookups (prices, scores, rates) are resolved before it is built, so the
// calculators themselves stay deterministic and synchronous.
//
// CURRENCY INVARIANT: All monetary values are in EUR. Keys are symbols.
type OpportunityContext struct {
	// Portfolio state
	Positions              []Position `json:"positions"`
	Securities             []Security `json:"securities"`
	AvailableCashEUR       float64    `json:"available_cash_eur"`
	TotalPortfolioValueEUR float64    `json:"total_portfolio_value_eur"`

	// Market data
	CurrentPrices     map[string]float64  `json:"current_prices"`
	SecuritiesBySymbol map[string]Security `json:"securities_by_symbol"`

	// Enrichment data (already computed by external scorers)
	SecurityScores       map[string]float64 `json:"security_scores,omitempty"`       // Quality scores by symbol (0-1)
	TargetWeights        map[string]float64 `json:"target_weights,omitempty"`        // Optimizer per-symbol targets
	GroupAllocations     map[string]float64 `json:"group_allocations,omitempty"`     // Current allocation by group
	GroupWeights         map[string]float64 `json:"group_weights,omitempty"`         // Base target weight by group
	GroupWeightAdjustments map[string]float64 `json:"group_weight_adjustments,omitempty"` // Tactical adjustment by group

	// Constraints
	IneligibleSymbols     map[string]bool `json:"ineligible_symbols"`
	RecentlySoldSymbols   map[string]bool `json:"recently_sold_symbols"`
	RecentlyBoughtSymbols map[string]bool `json:"recently_bought_symbols"`

	// Configuration
	Costs     TransactionCosts `json:"costs"`
	AllowSell bool             `json:"allow_sell"`
	AllowBuy  bool             `json:"allow_buy"`
}

// NewOpportunityContext creates a context with defaults and derived lookups.
func NewOpportunityContext(
	positions []Position,
	securities []Security,
	availableCashEUR float64,
	totalPortfolioValueEUR float64,
	currentPrices map[string]float64,
) *OpportunityContext {
	bySymbol := make(map[string]Security, len(securities))
	for _, sec := range securities {
		bySymbol[sec.Symbol] = sec
	}

	return &OpportunityContext{
		Positions:              positions,
		Securities:             securities,
		AvailableCashEUR:       availableCashEUR,
		TotalPortfolioValueEUR: totalPortfolioValueEUR,
		CurrentPrices:          currentPrices,
		SecuritiesBySymbol:     bySymbol,
		IneligibleSymbols:      make(map[string]bool),
		RecentlySoldSymbols:    make(map[string]bool),
		RecentlyBoughtSymbols:  make(map[string]bool),
		Costs:                  DefaultTransactionCosts(),
		AllowSell:              true,
		AllowBuy:               true,
	}
}

// Validate checks the snapshot for configuration errors before planning.
// Infeasible candidates are handled later; malformed input is rejected here.
func (ctx *OpportunityContext) Validate() error {
	for _, sec := range ctx.Securities {
		if err := sec.Validate(); err != nil {
			return err
		}
	}
	for _, pos := range ctx.Positions {
		if err := pos.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// GetSecurity looks up a security by symbol.
func (ctx *OpportunityContext) GetSecurity(symbol string) (Security, bool) {
	sec, ok := ctx.SecuritiesBySymbol[symbol]
	return sec, ok
}

// GetPosition looks up a held position by symbol.
func (ctx *OpportunityContext) GetPosition(symbol string) (Position, bool) {
	for _, pos := range ctx.Positions {
		if pos.Symbol == symbol {
			return pos, true
		}
	}
	return Position{}, false
}

// GetPrice returns the current price for a symbol, or 0 when unknown.
func (ctx *OpportunityContext) GetPrice(symbol string) float64 {
	return ctx.CurrentPrices[symbol]
}

// QualityScore returns the externally computed quality score for a symbol,
// defaulting to 0.5 (neutral) when no score was supplied.
func (ctx *OpportunityContext) QualityScore(symbol string) float64 {
	if score, ok := ctx.SecurityScores[symbol]; ok {
		return score
	}
	return 0.5
}

// ApplyConfig copies the relevant configuration values onto the context.
func (ctx *OpportunityContext) ApplyConfig(config *PlannerConfiguration) {
	if config == nil {
		return
	}
	ctx.Costs = config.Costs
	ctx.AllowSell = config.AllowSell
	ctx.AllowBuy = config.AllowBuy
}
