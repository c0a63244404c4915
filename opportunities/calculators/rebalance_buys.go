package calculators

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// RebalanceBuysCalculator identifies buys that close underweight group
// gaps, preferring the highest-quality securities in each group.
type RebalanceBuysCalculator struct {
	*BaseCalculator
	converter CurrencyConverter
}

// NewRebalanceBuysCalculator creates a new rebalance-buys calculator.
func NewRebalanceBuysCalculator(converter CurrencyConverter, log zerolog.Logger) *RebalanceBuysCalculator {
	return &RebalanceBuysCalculator{
		BaseCalculator: NewBaseCalculator(log, "rebalance_buys"),
		converter:      converter,
	}
}

// Name returns the calculator name.
func (c *RebalanceBuysCalculator) Name() string {
	return "rebalance_buys"
}

// Category returns the opportunity category.
func (c *RebalanceBuysCalculator) Category() domain.OpportunityCategory {
	return domain.OpportunityCategoryRebalanceBuys
}

// DefaultParams returns the tunable parameters with defaults.
func (c *RebalanceBuysCalculator) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"gap_threshold":      rebalanceGapThreshold,
		"priority_scale":     10.0,
		"max_buys_per_group": 2,
	}
}

// Calculate identifies buys in underweight groups.
func (c *RebalanceBuysCalculator) Calculate(
	ctx *domain.OpportunityContext,
	params map[string]interface{},
) ([]domain.ActionCandidate, error) {
	gapThreshold := GetFloatParam(params, "gap_threshold", rebalanceGapThreshold)
	priorityScale := GetFloatParam(params, "priority_scale", 10.0)
	maxBuysPerGroup := GetIntParam(params, "max_buys_per_group", 2)

	if !ctx.AllowBuy || ctx.TotalPortfolioValueEUR <= 0 || ctx.AvailableCashEUR <= 0 {
		return nil, nil
	}

	// Deterministic group order. Underweight groups may be absent from the
	// allocation map entirely, so iterate over targets too.
	groupSet := make(map[string]bool, len(ctx.GroupWeights))
	for group := range ctx.GroupWeights {
		groupSet[group] = true
	}
	for group := range ctx.GroupAllocations {
		groupSet[group] = true
	}
	groups := make([]string, 0, len(groupSet))
	for group := range groupSet {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	var candidates []domain.ActionCandidate

	for _, group := range groups {
		current := ctx.GroupAllocations[group]
		target := groupTarget(ctx, group)
		gap := target - current
		if gap < gapThreshold {
			continue
		}

		underweightValue := gap * ctx.TotalPortfolioValueEUR
		if underweightValue > ctx.AvailableCashEUR {
			underweightValue = ctx.AvailableCashEUR
		}

		// Buy the highest-quality securities in the group first.
		securities := c.groupSecurities(ctx, group)
		sort.SliceStable(securities, func(i, j int) bool {
			return ctx.QualityScore(securities[i].Symbol) > ctx.QualityScore(securities[j].Symbol)
		})

		bought := 0
		remaining := underweightValue
		for _, security := range securities {
			if bought >= maxBuysPerGroup || remaining <= 0 {
				break
			}
			if ctx.RecentlySoldSymbols[security.Symbol] || ctx.IneligibleSymbols[security.Symbol] {
				continue
			}

			price := ctx.GetPrice(security.Symbol)
			if price <= 0 {
				continue
			}
			priceEUR := c.converter.ToEUR(price, security.Currency)

			targetValue := remaining / float64(maxBuysPerGroup-bought)
			quantity := int(targetValue / priceEUR)
			quantity = domain.RoundToLotSize(quantity, security.MinLot)
			if quantity <= 0 {
				continue
			}

			priority := gap * priorityScale * security.Multiplier()
			valueEUR := float64(quantity) * priceEUR
			remaining -= valueEUR
			bought++

			candidates = append(candidates, domain.ActionCandidate{
				Side:     "BUY",
				Symbol:   security.Symbol,
				Name:     security.Name,
				Quantity: quantity,
				Price:    price,
				ValueEUR: valueEUR,
				Currency: security.Currency,
				Priority: priority,
				Reason:   fmt.Sprintf("Rebalance: %s underweight by %.1f points", group, gap*100),
				Tags:     []string{"rebalance", "underweight:" + group},
			})
		}

		c.log.Debug().
			Str("group", group).
			Float64("gap", gap).
			Int("buys", bought).
			Msg("Underweight group")
	}

	return candidates, nil
}

func (c *RebalanceBuysCalculator) groupSecurities(ctx *domain.OpportunityContext, group string) []domain.Security {
	var securities []domain.Security
	for _, security := range ctx.Securities {
		if !securityInGroup(security, group) || !security.AllowBuy {
			continue
		}
		securities = append(securities, security)
	}
	return securities
}
