package calculators

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// WeightBasedCalculator turns optimizer per-symbol target weights into
// candidates. A gap is only actionable when the trade is worth at least
// twice its estimated transaction cost.
type WeightBasedCalculator struct {
	*BaseCalculator
	converter CurrencyConverter
}

// NewWeightBasedCalculator creates a new weight-based calculator.
func NewWeightBasedCalculator(converter CurrencyConverter, log zerolog.Logger) *WeightBasedCalculator {
	return &WeightBasedCalculator{
		BaseCalculator: NewBaseCalculator(log, "weight_based"),
		converter:      converter,
	}
}

// Name returns the calculator name.
func (c *WeightBasedCalculator) Name() string {
	return "weight_based"
}

// Category returns the opportunity category.
func (c *WeightBasedCalculator) Category() domain.OpportunityCategory {
	return domain.OpportunityCategoryWeightBased
}

// DefaultParams returns the tunable parameters with defaults.
func (c *WeightBasedCalculator) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"min_weight_gap": 0.005,
		"cost_multiple":  2.0,
		"priority_scale": 100.0,
	}
}

// Calculate identifies buys and sells that close optimizer weight gaps.
func (c *WeightBasedCalculator) Calculate(
	ctx *domain.OpportunityContext,
	params map[string]interface{},
) ([]domain.ActionCandidate, error) {
	minWeightGap := GetFloatParam(params, "min_weight_gap", 0.005)
	costMultiple := GetFloatParam(params, "cost_multiple", 2.0)
	priorityScale := GetFloatParam(params, "priority_scale", 100.0)
	minHoldDays := GetIntParam(params, "min_hold_days", 0)

	if ctx.TotalPortfolioValueEUR <= 0 {
		return nil, nil
	}
	if len(ctx.TargetWeights) == 0 && len(ctx.Positions) == 0 {
		return nil, nil
	}

	// Union of targeted and held symbols: a held symbol with no target
	// weight has an implicit target of zero and must be unwound.
	symbolSet := make(map[string]bool, len(ctx.TargetWeights))
	for symbol := range ctx.TargetWeights {
		symbolSet[symbol] = true
	}
	for _, position := range ctx.Positions {
		symbolSet[position.Symbol] = true
	}
	symbols := make([]string, 0, len(symbolSet))
	for symbol := range symbolSet {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var candidates []domain.ActionCandidate

	for _, symbol := range symbols {
		security, ok := ctx.GetSecurity(symbol)
		if !ok {
			c.log.Debug().Str("symbol", symbol).Msg("No security for target weight")
			continue
		}

		position, held := ctx.GetPosition(symbol)
		target := ctx.TargetWeights[symbol]

		price := ctx.GetPrice(symbol)
		if price <= 0 && held {
			price = position.EffectivePrice()
		}
		if price <= 0 {
			continue
		}
		priceEUR := c.converter.ToEUR(price, security.Currency)
		if priceEUR <= 0 {
			continue
		}

		currentWeight := 0.0
		if held {
			currentWeight = position.Quantity * priceEUR / ctx.TotalPortfolioValueEUR
		}

		gap := target - currentWeight
		if math.Abs(gap) <= minWeightGap {
			continue
		}

		// Full unwind when the optimizer dropped a held symbol entirely.
		fullExit := held && target <= 0

		gapValue := math.Abs(gap) * ctx.TotalPortfolioValueEUR
		if !fullExit && gapValue < costMultiple*ctx.Costs.Cost(gapValue) {
			c.log.Debug().
				Str("symbol", symbol).
				Float64("gap_value", gapValue).
				Msg("Gap not worth the transaction costs")
			continue
		}

		if gap > 0 {
			if !ctx.AllowBuy || !security.AllowBuy {
				continue
			}
			if ctx.RecentlySoldSymbols[symbol] || ctx.IneligibleSymbols[symbol] {
				continue
			}

			quantity := int(gapValue / priceEUR)
			quantity = domain.RoundToLotSize(quantity, security.MinLot)
			if quantity <= 0 {
				continue
			}

			tags := []string{"rebalance", "weight_based"}
			reason := fmt.Sprintf("Underweight vs target: %.1f points below", gap*100)
			if held && price < position.AvgPrice {
				tags = []string{"averaging_down", "weight_based"}
				reason = fmt.Sprintf("Underweight and below average cost: %.1f points below target", gap*100)
			}

			candidates = append(candidates, domain.ActionCandidate{
				Side:     "BUY",
				Symbol:   symbol,
				Name:     security.Name,
				Quantity: quantity,
				Price:    price,
				ValueEUR: float64(quantity) * priceEUR,
				Currency: security.Currency,
				Priority: math.Abs(gap) * priorityScale * security.Multiplier(),
				Reason:   reason,
				Tags:     tags,
			})
			continue
		}

		// Overweight: sell down toward target.
		if !ctx.AllowSell || !security.AllowSell || !held {
			continue
		}
		if minHoldDays > 0 && position.HoldingDays < minHoldDays {
			continue
		}

		quantity := int(gapValue / priceEUR)
		if fullExit {
			quantity = int(position.Quantity)
		}
		quantity = domain.RoundToLotSize(quantity, security.MinLot)
		if quantity <= 0 {
			continue
		}
		if float64(quantity) > position.Quantity {
			quantity = int(position.Quantity)
		}

		reason := fmt.Sprintf("Overweight vs target: %.1f points above", -gap*100)
		if fullExit {
			reason = "No longer in target portfolio, exiting position"
		}

		candidates = append(candidates, domain.ActionCandidate{
			Side:     "SELL",
			Symbol:   symbol,
			Name:     security.Name,
			Quantity: quantity,
			Price:    price,
			ValueEUR: float64(quantity) * priceEUR,
			Currency: security.Currency,
			Priority: math.Abs(gap) * priorityScale / security.Multiplier(),
			Reason:   reason,
			Tags:     []string{"rebalance", "weight_based"},
		})
	}

	return candidates, nil
}
