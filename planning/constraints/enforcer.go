// Package constraints provides portfolio constraint enforcement for planning.
package constraints

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
)

// Enforcer validates and adjusts actions based on security constraints.
// Enforces:
//   - Global and per-security allow_buy/allow_sell flags
//   - Cooloff periods (recently sold/bought)
//   - Ineligible symbols (pending orders, etc.)
//   - Lot size rounding
//   - Max sell percentage and oversell clamping
//   - Minimum trade value
type Enforcer struct {
	log zerolog.Logger
}

// FilteredAction represents an action that was filtered out with a reason.
type FilteredAction struct {
	Action domain.ActionCandidate
	Reason string
}

// NewEnforcer creates a new constraint enforcer.
func NewEnforcer(log zerolog.Logger) *Enforcer {
	return &Enforcer{
		log: log.With().Str("component", "constraint_enforcer").Logger(),
	}
}

// EnforceConstraints validates and adjusts actions. Returns the surviving
// (possibly adjusted) actions plus the filtered ones with reasons. An error
// is returned only for malformed input; infeasible actions are filtered,
// not fatal.
func (e *Enforcer) EnforceConstraints(
	actions []domain.ActionCandidate,
	ctx *domain.OpportunityContext,
	config *domain.PlannerConfiguration,
) ([]domain.ActionCandidate, []FilteredAction, error) {
	var validated []domain.ActionCandidate
	var filtered []FilteredAction

	for _, action := range actions {
		valid, adjusted, reason, err := e.validateAndAdjustAction(action, ctx, config)
		if err != nil {
			return nil, nil, err
		}
		if valid {
			validated = append(validated, adjusted)
			continue
		}
		filtered = append(filtered, FilteredAction{Action: action, Reason: reason})
		e.log.Debug().
			Str("symbol", action.Symbol).
			Str("side", action.Side).
			Str("reason", reason).
			Msg("Action filtered by constraints")
	}

	return validated, filtered, nil
}

// validateAndAdjustAction checks constraints and adjusts quantity.
func (e *Enforcer) validateAndAdjustAction(
	action domain.ActionCandidate,
	ctx *domain.OpportunityContext,
	config *domain.PlannerConfiguration,
) (bool, domain.ActionCandidate, string, error) {
	if action.Symbol == "" {
		return false, action, "", fmt.Errorf("action missing symbol")
	}
	if action.Side != "BUY" && action.Side != "SELL" {
		return false, action, "", fmt.Errorf("%s: invalid side %q (must be BUY or SELL)", action.Symbol, action.Side)
	}
	if action.Price <= 0 {
		return false, action, "", fmt.Errorf("%s: invalid price %.2f (must be positive)", action.Symbol, action.Price)
	}

	// Global allow flags.
	if action.Side == "SELL" && !ctx.AllowSell {
		return false, action, "global allow_sell=false", nil
	}
	if action.Side == "BUY" && !ctx.AllowBuy {
		return false, action, "global allow_buy=false", nil
	}

	// Cooloff periods.
	if action.Side == "SELL" && ctx.RecentlySoldSymbols[action.Symbol] {
		return false, action, "cooloff: recently sold", nil
	}
	if action.Side == "BUY" && ctx.RecentlyBoughtSymbols[action.Symbol] {
		return false, action, "cooloff: recently bought", nil
	}

	// Ineligible symbols (pending orders and similar).
	if ctx.IneligibleSymbols[action.Symbol] {
		return false, action, "ineligible: pending order or other constraint", nil
	}

	security, found := ctx.GetSecurity(action.Symbol)
	if !found {
		return false, action, fmt.Sprintf("security not found: %s", action.Symbol), nil
	}
	if security.MinLot <= 0 {
		return false, action, "", fmt.Errorf("security %s: invalid min_lot %d", security.Symbol, security.MinLot)
	}

	if action.Side == "SELL" {
		if !security.AllowSell {
			return false, action, "security allow_sell=false", nil
		}

		position, held := ctx.GetPosition(action.Symbol)
		if !held || position.Quantity <= 0 {
			return false, action, "no position to sell", nil
		}

		// Oversell clamp: never sell more than held.
		maxQuantity := int(position.Quantity)

		// MaxSellPercentage safety net.
		if config != nil && config.MaxSellPercentage > 0 && config.MaxSellPercentage < 1.0 {
			capped := int(position.Quantity * config.MaxSellPercentage)
			if capped < maxQuantity {
				maxQuantity = capped
			}
		}

		if action.Quantity > maxQuantity {
			e.log.Debug().
				Str("symbol", action.Symbol).
				Int("requested_quantity", action.Quantity).
				Int("max_allowed_quantity", maxQuantity).
				Msg("Clamping sell quantity")
			action = e.resize(action, maxQuantity)
		}
	} else {
		if !security.AllowBuy {
			return false, action, "security allow_buy=false", nil
		}
	}

	// Lot size alignment.
	adjusted := domain.RoundToLotSize(action.Quantity, security.MinLot)
	if action.Side == "SELL" {
		// Rounding up must never oversell; round down only.
		adjusted = (action.Quantity / security.MinLot) * security.MinLot
	}
	if adjusted <= 0 {
		return false, action, fmt.Sprintf("quantity below minimum lot size (min_lot=%d, requested=%d)", security.MinLot, action.Quantity), nil
	}
	if adjusted != action.Quantity {
		e.log.Debug().
			Str("symbol", action.Symbol).
			Int("original_quantity", action.Quantity).
			Int("adjusted_quantity", adjusted).
			Int("min_lot", security.MinLot).
			Msg("Adjusted quantity to lot size")
		action = e.resize(action, adjusted)
	}

	// Minimum trade value: trades below it are eaten by fees.
	if config != nil {
		minTrade := config.EffectiveMinTradeValue()
		if minTrade > 0 && action.ValueEUR < minTrade {
			return false, action, fmt.Sprintf("trade value %.2f below minimum %.2f", action.ValueEUR, minTrade), nil
		}
	}

	return true, action, "", nil
}

// resize updates quantity and recomputes ValueEUR proportionally, keeping
// whatever currency conversion was already baked into the value.
func (e *Enforcer) resize(action domain.ActionCandidate, quantity int) domain.ActionCandidate {
	if action.Quantity > 0 {
		action.ValueEUR = action.ValueEUR * float64(quantity) / float64(action.Quantity)
	}
	action.Quantity = quantity
	return action
}

// IsActionFeasible performs a fast feasibility check without adjusting the
// action. Used for pruning during sequence generation.
func (e *Enforcer) IsActionFeasible(
	action domain.ActionCandidate,
	ctx *domain.OpportunityContext,
) (bool, string) {
	if action.Side == "SELL" && !ctx.AllowSell {
		return false, "global allow_sell=false"
	}
	if action.Side == "BUY" && !ctx.AllowBuy {
		return false, "global allow_buy=false"
	}

	if action.Side == "SELL" && ctx.RecentlySoldSymbols[action.Symbol] {
		return false, "cooloff: recently sold"
	}
	if action.Side == "BUY" && ctx.RecentlyBoughtSymbols[action.Symbol] {
		return false, "cooloff: recently bought"
	}

	if ctx.IneligibleSymbols[action.Symbol] {
		return false, "ineligible"
	}

	if security, found := ctx.GetSecurity(action.Symbol); found {
		if action.Side == "SELL" && !security.AllowSell {
			return false, "security allow_sell=false"
		}
		if action.Side == "BUY" && !security.AllowBuy {
			return false, "security allow_buy=false"
		}
	}

	return true, ""
}
