package calculators

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// Group gap below which rebalancing is not worth the trading costs.
const rebalanceGapThreshold = 0.05

// securityInGroup reports whether a security belongs to a named group.
// Groups are country or industry labels; allocations are keyed by either.
func securityInGroup(sec domain.Security, group string) bool {
	return sec.Country == group || sec.Industry == group
}

// groupTarget returns the effective target weight for a group: the base
// weight plus any tactical adjustment.
func groupTarget(ctx *domain.OpportunityContext, group string) float64 {
	return ctx.GroupWeights[group] + ctx.GroupWeightAdjustments[group]
}

// RebalanceSellsCalculator identifies sells that reduce overweight groups.
// Sells are capped so a single rebalance never liquidates more than 30% of
// a position.
type RebalanceSellsCalculator struct {
	*BaseCalculator
	converter CurrencyConverter
}

// NewRebalanceSellsCalculator creates a new rebalance-sells calculator.
func NewRebalanceSellsCalculator(converter CurrencyConverter, log zerolog.Logger) *RebalanceSellsCalculator {
	return &RebalanceSellsCalculator{
		BaseCalculator: NewBaseCalculator(log, "rebalance_sells"),
		converter:      converter,
	}
}

// Name returns the calculator name.
func (c *RebalanceSellsCalculator) Name() string {
	return "rebalance_sells"
}

// Category returns the opportunity category.
func (c *RebalanceSellsCalculator) Category() domain.OpportunityCategory {
	return domain.OpportunityCategoryRebalanceSells
}

// DefaultParams returns the tunable parameters with defaults.
func (c *RebalanceSellsCalculator) DefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"gap_threshold":      rebalanceGapThreshold,
		"max_position_slice": 0.30,
		"priority_scale":     10.0,
	}
}

// Calculate identifies sells in overweight groups.
func (c *RebalanceSellsCalculator) Calculate(
	ctx *domain.OpportunityContext,
	params map[string]interface{},
) ([]domain.ActionCandidate, error) {
	gapThreshold := GetFloatParam(params, "gap_threshold", rebalanceGapThreshold)
	maxPositionSlice := GetFloatParam(params, "max_position_slice", 0.30)
	priorityScale := GetFloatParam(params, "priority_scale", 10.0)
	minHoldDays := GetIntParam(params, "min_hold_days", 0)

	if !ctx.AllowSell || ctx.TotalPortfolioValueEUR <= 0 {
		return nil, nil
	}

	// Deterministic group order.
	groups := make([]string, 0, len(ctx.GroupAllocations))
	for group := range ctx.GroupAllocations {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	var candidates []domain.ActionCandidate

	for _, group := range groups {
		current := ctx.GroupAllocations[group]
		target := groupTarget(ctx, group)
		gap := current - target
		if gap < gapThreshold {
			continue
		}

		overweightValue := gap * ctx.TotalPortfolioValueEUR
		remaining := overweightValue

		// Sell lowest-quality holdings in the group first.
		positions := c.groupPositions(ctx, group)
		sort.SliceStable(positions, func(i, j int) bool {
			return ctx.QualityScore(positions[i].Symbol) < ctx.QualityScore(positions[j].Symbol)
		})

		for _, position := range positions {
			if remaining <= 0 {
				break
			}
			security, _ := ctx.GetSecurity(position.Symbol)
			if !security.AllowSell {
				continue
			}
			if minHoldDays > 0 && position.HoldingDays < minHoldDays {
				continue
			}

			price := position.EffectivePrice()
			if price <= 0 {
				continue
			}
			priceEUR := c.converter.ToEUR(price, position.Currency)
			positionValueEUR := position.Quantity * priceEUR

			sellValue := positionValueEUR * maxPositionSlice
			if sellValue > remaining {
				sellValue = remaining
			}

			quantity := int(sellValue / priceEUR)
			quantity = domain.RoundToLotSize(quantity, security.MinLot)
			if quantity <= 0 {
				continue
			}
			if float64(quantity) > position.Quantity {
				quantity = int(position.Quantity)
			}

			priority := gap * priorityScale / security.Multiplier()
			valueEUR := float64(quantity) * priceEUR
			remaining -= valueEUR

			candidates = append(candidates, domain.ActionCandidate{
				Side:     "SELL",
				Symbol:   position.Symbol,
				Name:     security.Name,
				Quantity: quantity,
				Price:    price,
				ValueEUR: valueEUR,
				Currency: position.Currency,
				Priority: priority,
				Reason:   fmt.Sprintf("Rebalance: %s overweight by %.1f points", group, gap*100),
				Tags:     []string{"rebalance", "overweight:" + group},
			})
		}

		c.log.Debug().
			Str("group", group).
			Float64("gap", gap).
			Float64("overweight_value", overweightValue).
			Msg("Overweight group")
	}

	return candidates, nil
}

func (c *RebalanceSellsCalculator) groupPositions(ctx *domain.OpportunityContext, group string) []domain.Position {
	var positions []domain.Position
	for _, position := range ctx.Positions {
		security, ok := ctx.GetSecurity(position.Symbol)
		if !ok || !securityInGroup(security, group) {
			continue
		}
		if position.Quantity <= 0 {
			continue
		}
		positions = append(positions, position)
	}
	return positions
}
