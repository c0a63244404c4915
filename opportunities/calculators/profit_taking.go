package calculators

import (
	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// ProfitTakingCalculator identifies positions with windfall gains worth
// trimming. The windfall assessment is delegated to a WindfallAdvisor.
type ProfitTakingCalculator struct {
	*BaseCalculator
	advisor   WindfallAdvisor
	converter CurrencyConverter
}

// NewProfitTakingCalculator creates a new profit-taking calculator.
func NewProfitTakingCalculator(advisor WindfallAdvisor, converter CurrencyConverter, log zerolog.Logger) *ProfitTakingCalculator {
	return &ProfitTakingCalculator{
		BaseCalculator: NewBaseCalculator(log, "profit_taking"),
		advisor:        advisor,
		converter:      converter,
	}
}

// Name returns the calculator name.
func (c *ProfitTakingCalculator) Name() string {
	return "profit_taking"
}

// Category returns the opportunity category.
func (c *ProfitTakingCalculator) Category() domain.OpportunityCategory {
	return domain.OpportunityCategoryProfitTaking
}

// DefaultParams returns the tunable parameters with defaults.
func (c *ProfitTakingCalculator) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"windfall_threshold": 0.30,
		"priority_weight":    1.2,
	}
}

// Calculate identifies profit-taking opportunities across held positions.
func (c *ProfitTakingCalculator) Calculate(
	ctx *domain.OpportunityContext,
	params map[string]interface{},
) ([]domain.ActionCandidate, error) {
	windfallThreshold := GetFloatParam(params, "windfall_threshold", 0.30)
	priorityWeight := GetFloatParam(params, "priority_weight", 1.2)
	minHoldDays := GetIntParam(params, "min_hold_days", 0)

	if !ctx.AllowSell {
		return nil, nil
	}

	var candidates []domain.ActionCandidate

	for _, position := range ctx.Positions {
		security, ok := ctx.GetSecurity(position.Symbol)
		if !ok {
			c.log.Debug().Str("symbol", position.Symbol).Msg("No security for position")
			continue
		}
		if !security.AllowSell {
			continue
		}
		if minHoldDays > 0 && position.HoldingDays < minHoldDays {
			continue
		}

		price := position.EffectivePrice()
		if price <= 0 || position.Quantity <= 0 {
			continue
		}

		rec := c.advisor.Recommend(position, security)
		if !rec.TakeProfits || rec.Score < windfallThreshold {
			continue
		}

		quantity := int(position.Quantity * rec.SuggestedSellPct)
		quantity = domain.RoundToLotSize(quantity, security.MinLot)
		if quantity <= 0 {
			continue
		}
		if float64(quantity) > position.Quantity {
			quantity = int(position.Quantity)
		}

		priority := (rec.Score + 0.5) * priorityWeight / security.Multiplier()
		value := c.converter.ToEUR(float64(quantity)*price, position.Currency)

		candidates = append(candidates, domain.ActionCandidate{
			Side:     "SELL",
			Symbol:   position.Symbol,
			Name:     security.Name,
			Quantity: quantity,
			Price:    price,
			ValueEUR: value,
			Currency: position.Currency,
			Priority: priority,
			Reason:   rec.Reason,
			Tags:     []string{"windfall", "profit_taking"},
		})

		c.log.Debug().
			Str("symbol", position.Symbol).
			Float64("score", rec.Score).
			Int("quantity", quantity).
			Float64("priority", priority).
			Msg("Profit-taking opportunity")
	}

	return candidates, nil
}
