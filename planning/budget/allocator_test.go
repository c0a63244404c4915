package budget

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tradeplan/domain"
)

func allocatorContext(cash float64) *domain.OpportunityContext {
	securities := []domain.Security{
		{Symbol: "AAA", Currency: "EUR", MinLot: 1, AllowBuy: true, AllowSell: true},
		{Symbol: "BBB", Currency: "EUR", MinLot: 1, AllowBuy: true, AllowSell: true},
	}
	return domain.NewOpportunityContext(nil, securities, cash, cash, nil)
}

func buy(symbol string, quantity int, price float64, priority float64) domain.ActionCandidate {
	return domain.ActionCandidate{
		Side:     "BUY",
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		ValueEUR: float64(quantity) * price,
		Priority: priority,
	}
}

func sell(symbol string, quantity int, price float64) domain.ActionCandidate {
	a := buy(symbol, quantity, price, 1.0)
	a.Side = "SELL"
	return a
}

// netSpend computes cash out minus cash in, including transaction costs.
func netSpend(actions []domain.ActionCandidate, costs domain.TransactionCosts) float64 {
	total := 0.0
	for _, action := range actions {
		if action.Side == "BUY" {
			total += action.ValueEUR + costs.Cost(action.ValueEUR)
		} else {
			total -= action.ValueEUR - costs.Cost(action.ValueEUR)
		}
	}
	return total
}

func TestAllocator(t *testing.T) {
	allocator := NewAllocator(zerolog.Nop())
	config := domain.NewDefaultConfiguration()

	t.Run("accepts everything when cash covers it", func(t *testing.T) {
		actions := []domain.ActionCandidate{
			buy("AAA", 5, 100.0, 2.0),
			buy("BBB", 3, 100.0, 1.0),
		}

		accepted, dropped := allocator.Allocate(actions, allocatorContext(10000.0), config)
		assert.Empty(t, dropped)
		require.Len(t, accepted, 2)
		assert.Equal(t, 5, accepted[0].Quantity)
		assert.Equal(t, 3, accepted[1].Quantity)
	})

	t.Run("accepts an exact fit in full", func(t *testing.T) {
		// 1000 EUR of stock plus 2 fixed plus 2 percentage = 1004.
		actions := []domain.ActionCandidate{buy("AAA", 10, 100.0, 1.0)}

		accepted, dropped := allocator.Allocate(actions, allocatorContext(1004.0), config)
		assert.Empty(t, dropped)
		require.Len(t, accepted, 1)
		assert.Equal(t, 10, accepted[0].Quantity)
	})

	t.Run("drops buys that cannot reach the minimum", func(t *testing.T) {
		actions := []domain.ActionCandidate{buy("AAA", 3, 100.0, 1.0)}

		accepted, dropped := allocator.Allocate(actions, allocatorContext(100.0), config)
		assert.Empty(t, accepted)
		require.Len(t, dropped, 1)
		assert.Contains(t, dropped[0].Reason, "insufficient cash")
	})

	t.Run("grants minimums in priority order", func(t *testing.T) {
		actions := []domain.ActionCandidate{
			buy("BBB", 5, 100.0, 1.0),
			buy("AAA", 5, 100.0, 2.0),
		}

		// Only one minimum viable trade (3 lots, ~302.6 EUR) fits.
		accepted, dropped := allocator.Allocate(actions, allocatorContext(400.0), config)
		require.Len(t, accepted, 1)
		assert.Equal(t, "AAA", accepted[0].Symbol)
		assert.Equal(t, 3, accepted[0].Quantity)
		require.Len(t, dropped, 1)
		assert.Equal(t, "BBB", dropped[0].Action.Symbol)
	})

	t.Run("tops up one lot each when cash is tight", func(t *testing.T) {
		loose := domain.NewDefaultConfiguration()
		loose.MinTradeValue = 90.0

		actions := []domain.ActionCandidate{
			buy("AAA", 2, 100.0, 2.0),
			buy("BBB", 2, 100.0, 1.0),
		}

		accepted, dropped := allocator.Allocate(actions, allocatorContext(250.0), loose)
		assert.Empty(t, dropped)
		require.Len(t, accepted, 2)
		assert.Equal(t, 1, accepted[0].Quantity)
		assert.Equal(t, 1, accepted[1].Quantity)
	})

	t.Run("sell proceeds fund buys", func(t *testing.T) {
		actions := []domain.ActionCandidate{
			sell("AAA", 10, 100.0),
			buy("BBB", 9, 100.0, 1.0),
		}

		accepted, dropped := allocator.Allocate(actions, allocatorContext(0.0), config)
		assert.Empty(t, dropped)
		require.Len(t, accepted, 2)
		assert.Equal(t, "SELL", accepted[0].Side)
		assert.Equal(t, 9, accepted[1].Quantity)
	})

	t.Run("top-up can exceed the ideal quantity", func(t *testing.T) {
		// BBB forces scaling, then fails its own minimum; the freed cash
		// tops AAA up past its requested three lots.
		actions := []domain.ActionCandidate{
			buy("AAA", 3, 100.0, 2.0),
			buy("BBB", 20, 100.0, 1.0),
		}

		accepted, dropped := allocator.Allocate(actions, allocatorContext(600.0), config)
		require.Len(t, dropped, 1)
		assert.Equal(t, "BBB", dropped[0].Action.Symbol)
		require.Len(t, accepted, 1)
		assert.Equal(t, 5, accepted[0].Quantity)
	})

	t.Run("top-up lot is priced with the fixed fee", func(t *testing.T) {
		// After minimums (302.6 each) 101 EUR remains. A fourth lot costs
		// 100 + 2 + 0.20 = 102.20, so nobody gets topped up.
		actions := []domain.ActionCandidate{
			buy("AAA", 4, 100.0, 2.0),
			buy("BBB", 4, 100.0, 1.0),
		}

		accepted, dropped := allocator.Allocate(actions, allocatorContext(706.2), config)
		assert.Empty(t, dropped)
		require.Len(t, accepted, 2)
		assert.Equal(t, 3, accepted[0].Quantity)
		assert.Equal(t, 3, accepted[1].Quantity)
	})

	t.Run("one lot at exactly the minimum is viable alone", func(t *testing.T) {
		// Lot value 250 equals the minimum trade value; the minimum pass
		// must grant a single lot, not demand two.
		actions := []domain.ActionCandidate{buy("AAA", 2, 250.0, 1.0)}

		accepted, dropped := allocator.Allocate(actions, allocatorContext(300.0), config)
		assert.Empty(t, dropped)
		require.Len(t, accepted, 1)
		assert.Equal(t, 1, accepted[0].Quantity)
	})

	t.Run("later passes never change the accepted set", func(t *testing.T) {
		// The minimum pass accepts AAA and BBB and runs out before CCC.
		// The proportional and top-up passes may only grow those two; the
		// 94.8 EUR left over must not resurrect CCC.
		actions := []domain.ActionCandidate{
			buy("AAA", 5, 100.0, 3.0),
			buy("BBB", 5, 100.0, 2.0),
			buy("CCC", 5, 100.0, 1.0),
		}
		ctx := allocatorContext(700.0)

		accepted, dropped := allocator.Allocate(actions, ctx, config)

		symbols := map[string]bool{}
		for _, action := range accepted {
			symbols[action.Symbol] = true
			assert.GreaterOrEqual(t, action.Quantity, 3,
				"%s shrank below its minimum viable quantity", action.Symbol)
		}
		assert.Equal(t, map[string]bool{"AAA": true, "BBB": true}, symbols)
		require.Len(t, dropped, 1)
		assert.Equal(t, "CCC", dropped[0].Action.Symbol)
	})

	t.Run("never spends more than available", func(t *testing.T) {
		ctx := allocatorContext(750.0)
		actions := []domain.ActionCandidate{
			sell("AAA", 2, 100.0),
			buy("AAA", 8, 100.0, 3.0),
			buy("BBB", 6, 100.0, 1.0),
		}

		accepted, _ := allocator.Allocate(actions, ctx, config)
		assert.LessOrEqual(t, netSpend(accepted, ctx.Costs), ctx.AvailableCashEUR+1e-9)
	})
}
