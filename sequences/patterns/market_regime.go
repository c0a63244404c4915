package patterns

import (
	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// MarketRegimePattern adjusts sequence shape to the market regime: buys in
// bull markets, profit-taking in bear markets, balanced sell+buy pairs
// otherwise.
type MarketRegimePattern struct {
	*BasePattern
}

// NewMarketRegimePattern creates a new market-regime pattern.
func NewMarketRegimePattern(log zerolog.Logger) *MarketRegimePattern {
	return &MarketRegimePattern{BasePattern: NewBasePattern(log, "market_regime")}
}

// Name returns the pattern name.
func (p *MarketRegimePattern) Name() string {
	return "market_regime"
}

// Generate builds regime-shaped sequences.
func (p *MarketRegimePattern) Generate(
	opportunities domain.OpportunitiesByStrategy,
	params map[string]interface{},
) ([]domain.ActionSequence, error) {
	regime := GetStringParam(params, "regime", "neutral")
	maxSequences := GetIntParam(params, "max_sequences", 5)

	var sequences []domain.ActionSequence

	switch regime {
	case "bull":
		// Favor accumulating: averaging down and underweight buys.
		var buys []domain.ActionCandidate
		for _, candidate := range sortedCandidates(opportunities) {
			if candidate.Side == "BUY" {
				buys = append(buys, candidate)
			}
		}
		for i := 0; i < len(buys) && i < maxSequences; i++ {
			sequences = append(sequences, CreateSequence([]domain.ActionCandidate{buys[i]}, "market_regime"))
		}

	case "bear":
		// Favor de-risking: take profits while they exist.
		profitTaking := opportunities[string(domain.OpportunityCategoryProfitTaking)]
		for i := 0; i < len(profitTaking) && i < maxSequences; i++ {
			sequences = append(sequences, CreateSequence([]domain.ActionCandidate{profitTaking[i]}, "market_regime"))
		}

	default: // neutral
		// Balanced rebalancing: pair each sell with a buy.
		sells := opportunities[string(domain.OpportunityCategoryRebalanceSells)]
		buys := opportunities[string(domain.OpportunityCategoryRebalanceBuys)]
		for i := 0; i < len(sells) && i < len(buys) && i < maxSequences; i++ {
			actions := []domain.ActionCandidate{sells[i], buys[i]}
			sequences = append(sequences, CreateSequence(actions, "market_regime"))
		}
	}

	p.log.Debug().
		Str("regime", regime).
		Int("sequences", len(sequences)).
		Msg("Market regime pattern complete")

	return sequences, nil
}
