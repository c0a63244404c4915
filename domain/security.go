package domain

import "fmt"

// Security is a tradable instrument as seen by the planner. Read-only:
// the universe is maintained by an external collaborator.
type Security struct {
	Symbol             string  `json:"symbol"`
	Name               string  `json:"name"`
	Currency           string  `json:"currency"`
	AllowBuy           bool    `json:"allow_buy"`
	AllowSell          bool    `json:"allow_sell"`
	MinLot             int     `json:"min_lot"`             // Minimum tradable increment, >= 1
	PriorityMultiplier float64 `json:"priority_multiplier"` // Default 1.0; boosts buys, dampens sells
	Country            string  `json:"country,omitempty"`   // Grouping attribute, used by calculators only
	Industry           string  `json:"industry,omitempty"`  // Grouping attribute, used by calculators only
}

// Multiplier returns the priority multiplier, defaulting to 1.0 when unset.
func (s Security) Multiplier() float64 {
	if s.PriorityMultiplier <= 0 {
		return 1.0
	}
	return s.PriorityMultiplier
}

// Validate rejects malformed securities. A zero or negative lot size is a
// configuration error, not an infeasibility.
func (s Security) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("security missing symbol")
	}
	if s.MinLot <= 0 {
		return fmt.Errorf("security %s: invalid min_lot %d (must be >= 1)", s.Symbol, s.MinLot)
	}
	return nil
}

// Position is a current holding. Read-only to the planner.
type Position struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AvgPrice     float64 `json:"avg_price"`
	CurrentPrice float64 `json:"current_price"`
	ValueEUR     float64 `json:"value_eur"`
	Currency     string  `json:"currency"`
	HoldingDays  int     `json:"holding_days,omitempty"`
}

// EffectivePrice returns the current price, falling back to the average
// cost when no live quote is available.
func (p Position) EffectivePrice() float64 {
	if p.CurrentPrice > 0 {
		return p.CurrentPrice
	}
	return p.AvgPrice
}

// Validate rejects malformed positions. Negative prices are configuration
// errors reported to the caller.
func (p Position) Validate() error {
	if p.Symbol == "" {
		return fmt.Errorf("position missing symbol")
	}
	if p.AvgPrice < 0 || p.CurrentPrice < 0 {
		return fmt.Errorf("position %s: negative price", p.Symbol)
	}
	return nil
}

// RoundToLotSize rounds a quantity to the nearest valid lot multiple.
// Strategy:
//  1. Round down: floor(quantity/lotSize) * lotSize
//  2. If that gives 0, round up to a single lot
//  3. Return 0 if no valid quantity exists
func RoundToLotSize(quantity int, lotSize int) int {
	if lotSize <= 0 {
		return quantity
	}

	roundedDown := (quantity / lotSize) * lotSize
	if roundedDown >= lotSize {
		return roundedDown
	}

	roundedUp := ((quantity + lotSize - 1) / lotSize) * lotSize
	if roundedUp >= lotSize {
		return roundedUp
	}

	return 0
}
