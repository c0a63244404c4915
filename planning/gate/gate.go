// Package gate selects the best feasible action sequence and validates it
// into an executable action list.
package gate

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/tradeplan/domain"
	"github.com/aristath/tradeplan/planning/budget"
	"github.com/aristath/tradeplan/planning/constraints"
)

// Gate walks candidate sequences in priority order and picks the first one
// that survives a cash-and-holdings simulation. The winner is then run
// through constraint enforcement and budget allocation.
type Gate struct {
	enforcer  *constraints.Enforcer
	allocator *budget.Allocator
	log       zerolog.Logger
}

// Result is the gate's output for one planning invocation.
type Result struct {
	// Actions are the final, validated and funded actions.
	Actions []domain.ActionCandidate
	// Selected is the winning sequence, nil when nothing was feasible.
	Selected *domain.ActionSequence
	// Filtered holds actions removed during validation or funding.
	Filtered []constraints.FilteredAction
	// Rejected counts sequences discarded before selection.
	Rejected int
}

// NewGate creates a feasibility gate.
func NewGate(enforcer *constraints.Enforcer, allocator *budget.Allocator, log zerolog.Logger) *Gate {
	return &Gate{
		enforcer:  enforcer,
		allocator: allocator,
		log:       log.With().Str("component", "feasibility_gate").Logger(),
	}
}

// SelectAndValidate picks the highest-priority feasible sequence and turns
// it into a funded action list. Sequences must arrive sorted by priority
// descending; ties keep their generation order.
func (g *Gate) SelectAndValidate(
	sequences []domain.ActionSequence,
	ctx *domain.OpportunityContext,
	config *domain.PlannerConfiguration,
) (Result, error) {
	var result Result

	var selected *domain.ActionSequence
	for i := range sequences {
		seq := sequences[i]
		if seq.Priority < config.PriorityThreshold {
			result.Rejected++
			continue
		}
		if feasible, reason := g.IsSequenceFeasible(seq, ctx, config); !feasible {
			result.Rejected++
			g.log.Debug().
				Str("sequence_hash", seq.SequenceHash).
				Str("reason", reason).
				Msg("Sequence rejected as infeasible")
			continue
		}
		selected = &sequences[i]
		break
	}

	if selected == nil {
		g.log.Info().
			Int("sequences_considered", len(sequences)).
			Msg("No feasible sequence found")
		return result, nil
	}
	result.Selected = selected

	validated, filtered, err := g.enforcer.EnforceConstraints(selected.Actions, ctx, config)
	if err != nil {
		return Result{}, err
	}
	result.Filtered = filtered

	funded, dropped := g.allocator.Allocate(validated, ctx, config)
	result.Filtered = append(result.Filtered, dropped...)

	// Sells first so their proceeds are available, then by priority.
	sort.SliceStable(funded, func(i, j int) bool {
		if funded[i].Side != funded[j].Side {
			return funded[i].Side == "SELL"
		}
		return funded[i].Priority > funded[j].Priority
	})
	result.Actions = funded

	g.log.Info().
		Str("sequence_hash", selected.SequenceHash).
		Float64("sequence_priority", selected.Priority).
		Int("final_actions", len(result.Actions)).
		Int("filtered_actions", len(result.Filtered)).
		Msg("Sequence selected and validated")

	return result, nil
}

// IsSequenceFeasible simulates the sequence against current cash and
// holdings. Buys must be affordable including costs at the moment they
// execute; sells must not exceed the held quantity, and their net proceeds
// replenish the cash for later steps. One disallowed or sub-minimum step
// rejects the whole sequence: pattern- and generator-derived sequences
// never went through candidate screening.
func (g *Gate) IsSequenceFeasible(
	seq domain.ActionSequence,
	ctx *domain.OpportunityContext,
	config *domain.PlannerConfiguration,
) (bool, string) {
	minTrade := 0.0
	if config != nil {
		minTrade = config.EffectiveMinTradeValue()
	}

	cash := ctx.AvailableCashEUR
	held := make(map[string]float64, len(ctx.Positions))
	for _, pos := range ctx.Positions {
		held[pos.Symbol] = pos.Quantity
	}

	for _, action := range seq.Actions {
		if security, found := ctx.GetSecurity(action.Symbol); found {
			if action.Side == "SELL" && !security.AllowSell {
				return false, "security allow_sell=false: " + action.Symbol
			}
			if action.Side == "BUY" && !security.AllowBuy {
				return false, "security allow_buy=false: " + action.Symbol
			}
		}
		if minTrade > 0 && action.ValueEUR < minTrade {
			return false, "trade value below minimum: " + action.Symbol
		}

		switch action.Side {
		case "SELL":
			if held[action.Symbol] < float64(action.Quantity) {
				return false, "sell exceeds held quantity: " + action.Symbol
			}
			held[action.Symbol] -= float64(action.Quantity)
			cash += action.ValueEUR - ctx.Costs.Cost(action.ValueEUR)
		case "BUY":
			needed := action.ValueEUR + ctx.Costs.Cost(action.ValueEUR)
			if needed > cash {
				return false, "insufficient cash for buy: " + action.Symbol
			}
			cash -= needed
			held[action.Symbol] += float64(action.Quantity)
		default:
			return false, "invalid side: " + action.Side
		}
	}

	return true, ""
}
