package calculators

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// AveragingDownCalculator identifies held positions trading well below
// average cost where adding makes sense. Only high-quality securities
// qualify; a drawdown on a weak security is a warning, not an opportunity.
type AveragingDownCalculator struct {
	*BaseCalculator
	converter CurrencyConverter
}

// NewAveragingDownCalculator creates a new averaging-down calculator.
func NewAveragingDownCalculator(converter CurrencyConverter, log zerolog.Logger) *AveragingDownCalculator {
	return &AveragingDownCalculator{
		BaseCalculator: NewBaseCalculator(log, "averaging_down"),
		converter:      converter,
	}
}

// Name returns the calculator name.
func (c *AveragingDownCalculator) Name() string {
	return "averaging_down"
}

// Category returns the opportunity category.
func (c *AveragingDownCalculator) Category() domain.OpportunityCategory {
	return domain.OpportunityCategoryAveragingDown
}

// DefaultParams returns the tunable parameters with defaults.
func (c *AveragingDownCalculator) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"max_drawdown":          -0.15,
		"min_quality_score":     0.6,
		"priority_weight":       0.9,
		"base_trade_amount_eur": 1000.0,
	}
}

// Calculate identifies averaging-down opportunities across held positions.
func (c *AveragingDownCalculator) Calculate(
	ctx *domain.OpportunityContext,
	params map[string]interface{},
) ([]domain.ActionCandidate, error) {
	maxDrawdown := GetFloatParam(params, "max_drawdown", -0.15)
	minQualityScore := GetFloatParam(params, "min_quality_score", 0.6)
	priorityWeight := GetFloatParam(params, "priority_weight", 0.9)
	baseTradeAmount := GetFloatParam(params, "base_trade_amount_eur", 1000.0)

	if !ctx.AllowBuy {
		return nil, nil
	}

	var candidates []domain.ActionCandidate

	for _, position := range ctx.Positions {
		security, ok := ctx.GetSecurity(position.Symbol)
		if !ok {
			c.log.Debug().Str("symbol", position.Symbol).Msg("No security for position")
			continue
		}
		if !security.AllowBuy {
			continue
		}
		if ctx.RecentlyBoughtSymbols[position.Symbol] {
			continue
		}
		if ctx.IneligibleSymbols[position.Symbol] {
			continue
		}

		price := position.EffectivePrice()
		if price <= 0 || position.AvgPrice <= 0 {
			continue
		}

		lossPct := (price - position.AvgPrice) / position.AvgPrice
		if lossPct > maxDrawdown {
			continue
		}

		quality := ctx.QualityScore(position.Symbol)
		if quality < minQualityScore {
			c.log.Debug().
				Str("symbol", position.Symbol).
				Float64("quality", quality).
				Msg("Drawdown on low-quality security, skipping")
			continue
		}

		priceEUR := c.converter.ToEUR(price, position.Currency)
		if priceEUR <= 0 {
			continue
		}

		quantity := int(baseTradeAmount / priceEUR)
		quantity = domain.RoundToLotSize(quantity, security.MinLot)
		if quantity <= 0 {
			continue
		}

		priority := (quality + math.Abs(lossPct)) * priorityWeight * security.Multiplier()

		candidates = append(candidates, domain.ActionCandidate{
			Side:     "BUY",
			Symbol:   position.Symbol,
			Name:     security.Name,
			Quantity: quantity,
			Price:    price,
			ValueEUR: float64(quantity) * priceEUR,
			Currency: position.Currency,
			Priority: priority,
			Reason:   fmt.Sprintf("Averaging down: %.1f%% below average cost, quality %.2f", -lossPct*100, quality),
			Tags:     []string{"averaging_down"},
		})

		c.log.Debug().
			Str("symbol", position.Symbol).
			Float64("loss_pct", lossPct).
			Float64("quality", quality).
			Float64("priority", priority).
			Msg("Averaging-down opportunity")
	}

	return candidates, nil
}
