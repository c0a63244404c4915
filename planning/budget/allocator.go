// Package budget scales a validated action list to the available cash.
package budget

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
	"github.com/aristath/tradeplan/planning/constraints"
)

// topUpIterationCap bounds the greedy top-up loop.
const topUpIterationCap = 1000

// Allocator applies the cash constraint to a plan. Sells are executed
// first, so their proceeds (net of costs) fund the buys. When the buys do
// not fit, they are scaled back in three passes:
//
//  1. Accept everything if the total fits.
//  2. Otherwise grant each buy, in priority order, the minimum viable
//     quantity (enough whole lots to clear the minimum trade value).
//  3. Distribute the leftover cash proportionally to each buy's remaining
//     gap, in whole lots, then top up greedily lot by lot.
type Allocator struct {
	log zerolog.Logger
}

// NewAllocator creates a budget allocator.
func NewAllocator(log zerolog.Logger) *Allocator {
	return &Allocator{
		log: log.With().Str("component", "budget_allocator").Logger(),
	}
}

// buyState tracks one buy through the allocation passes.
type buyState struct {
	action       domain.ActionCandidate
	perUnitEUR   float64
	lotSize      int
	lotValueEUR  float64
	idealQty     int
	allocatedQty int
}

// Allocate returns the affordable subset of actions, with buy quantities
// scaled down where needed, plus the buys that were dropped. Sells pass
// through untouched.
func (a *Allocator) Allocate(
	actions []domain.ActionCandidate,
	ctx *domain.OpportunityContext,
	config *domain.PlannerConfiguration,
) ([]domain.ActionCandidate, []constraints.FilteredAction) {
	costs := ctx.Costs

	var sells []domain.ActionCandidate
	var buys []domain.ActionCandidate
	for _, action := range actions {
		if action.Side == "SELL" {
			sells = append(sells, action)
		} else {
			buys = append(buys, action)
		}
	}

	available := ctx.AvailableCashEUR
	for _, sell := range sells {
		available += sell.ValueEUR - costs.Cost(sell.ValueEUR)
	}

	// Pass 1: everything fits.
	totalBuyCost := 0.0
	for _, buy := range buys {
		totalBuyCost += buy.ValueEUR + costs.Cost(buy.ValueEUR)
	}
	if totalBuyCost <= available {
		return append(sells, buys...), nil
	}

	a.log.Debug().
		Float64("available_eur", available).
		Float64("required_eur", totalBuyCost).
		Int("buy_count", len(buys)).
		Msg("Buys exceed available cash, scaling back")

	sort.SliceStable(buys, func(i, j int) bool {
		return buys[i].Priority > buys[j].Priority
	})

	minTrade := config.EffectiveMinTradeValue()

	// Pass 2: minimum viable quantity per buy, in priority order.
	var states []*buyState
	var dropped []constraints.FilteredAction
	remaining := available

	for _, buy := range buys {
		state, reason := newBuyState(buy, ctx, minTrade)
		if state == nil {
			dropped = append(dropped, constraints.FilteredAction{Action: buy, Reason: reason})
			continue
		}

		minValue := float64(state.allocatedQty) * state.perUnitEUR
		needed := minValue + costs.Cost(minValue)
		if needed > remaining {
			dropped = append(dropped, constraints.FilteredAction{
				Action: buy,
				Reason: "insufficient cash for minimum viable trade",
			})
			continue
		}

		remaining -= needed
		states = append(states, state)
	}

	if len(states) == 0 {
		return sells, dropped
	}

	// Pass 3: distribute the leftover proportionally to each buy's gap.
	// The fixed fee is already paid, so only the percentage cost applies
	// to the extra value.
	totalGap := 0.0
	for _, state := range states {
		totalGap += float64(state.idealQty-state.allocatedQty) * state.perUnitEUR
	}
	if totalGap > 0 && remaining > 0 {
		leftover := remaining
		for _, state := range states {
			gap := float64(state.idealQty-state.allocatedQty) * state.perUnitEUR
			if gap <= 0 {
				continue
			}
			extraValue := (gap / totalGap) * leftover / (1.0 + costs.Percent)
			extraLots := int(math.Floor(extraValue / state.lotValueEUR))
			if extraLots <= 0 {
				continue
			}
			extraQty := extraLots * state.lotSize
			if state.allocatedQty+extraQty > state.idealQty {
				extraQty = state.idealQty - state.allocatedQty
			}
			spent := float64(extraQty) * state.perUnitEUR * (1.0 + costs.Percent)
			state.allocatedQty += extraQty
			remaining -= spent
		}
	}

	// Top-up: spend what is left one lot at a time, highest priority
	// first. Each incremental lot is priced at its full transaction cost,
	// fixed fee included. Not capped at the ideal quantity; a strong buy
	// may exceed its original sizing when the cash is there.
	for iter := 0; iter < topUpIterationCap; iter++ {
		progressed := false
		for _, state := range states {
			lotCost := state.lotValueEUR + costs.Cost(state.lotValueEUR)
			if lotCost <= remaining {
				state.allocatedQty += state.lotSize
				remaining -= lotCost
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	result := sells
	for _, state := range states {
		action := state.action
		action.Quantity = state.allocatedQty
		action.ValueEUR = float64(state.allocatedQty) * state.perUnitEUR
		result = append(result, action)
	}

	a.log.Info().
		Float64("available_eur", available).
		Float64("unspent_eur", remaining).
		Int("accepted_buys", len(states)).
		Int("dropped_buys", len(dropped)).
		Msg("Budget allocation complete")

	return result, dropped
}

// newBuyState derives per-lot economics for a buy and its minimum viable
// quantity. Returns nil with a reason when the buy cannot be sized.
func newBuyState(
	buy domain.ActionCandidate,
	ctx *domain.OpportunityContext,
	minTrade float64,
) (*buyState, string) {
	if buy.Quantity <= 0 || buy.ValueEUR <= 0 {
		return nil, "buy has no sizable quantity"
	}

	perUnit := buy.ValueEUR / float64(buy.Quantity)

	lotSize := 1
	if security, found := ctx.GetSecurity(buy.Symbol); found && security.MinLot > 0 {
		lotSize = security.MinLot
	}
	lotValue := perUnit * float64(lotSize)

	// A single lot that already clears the minimum trade value needs no
	// second lot to be viable.
	minLots := 1
	if lotValue < minTrade {
		minLots = int(minTrade/lotValue) + 1
	}
	idealLots := buy.Quantity / lotSize
	if idealLots <= 0 {
		return nil, "buy smaller than one lot"
	}
	if minLots > idealLots {
		minLots = idealLots
	}

	return &buyState{
		action:       buy,
		perUnitEUR:   perUnit,
		lotSize:      lotSize,
		lotValueEUR:  lotValue,
		idealQty:     idealLots * lotSize,
		allocatedQty: minLots * lotSize,
	}, ""
}
