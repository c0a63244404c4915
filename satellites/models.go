// Package satellites plans multiple isolated portfolio buckets and merges
// their plans into one aggregate view.
package satellites

import "fmt"

// Bucket is an isolated sub-portfolio with its own cash, universe and risk
// posture. Buckets never share positions; aggregation happens only at the
// plan level.
type Bucket struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name,omitempty"`
	TradingAllowed      bool               `json:"trading_allowed"`
	TargetAllocationPct float64            `json:"target_allocation_pct"` // Fraction of the total portfolio
	HighWaterMark       float64            `json:"high_water_mark"`       // Peak bucket value in EUR
	CurrentValue        float64            `json:"current_value"`         // Current bucket value in EUR
	Balances            map[string]float64 `json:"balances,omitempty"`    // Cash balances by currency
	Universe            []string           `json:"universe,omitempty"`    // Symbols this bucket may trade
}

// Validate rejects malformed buckets.
func (b Bucket) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("bucket missing id")
	}
	if b.TargetAllocationPct < 0 || b.TargetAllocationPct > 1 {
		return fmt.Errorf("bucket %s: target allocation %.4f out of [0,1]", b.ID, b.TargetAllocationPct)
	}
	if b.CurrentValue < 0 {
		return fmt.Errorf("bucket %s: negative current value", b.ID)
	}
	return nil
}

// Drawdown returns the fractional decline from the high-water mark, 0 when
// no mark is recorded or the bucket sits at a new peak.
func (b Bucket) Drawdown() float64 {
	if b.HighWaterMark <= 0 || b.CurrentValue >= b.HighWaterMark {
		return 0
	}
	return (b.HighWaterMark - b.CurrentValue) / b.HighWaterMark
}

// FundedFraction returns how much of the bucket's target allocation is
// actually funded, given the total portfolio value. A bucket with no
// target is treated as fully funded.
func (b Bucket) FundedFraction(totalPortfolioValueEUR float64) float64 {
	target := b.TargetAllocationPct * totalPortfolioValueEUR
	if target <= 0 {
		return 1.0
	}
	return b.CurrentValue / target
}

// InUniverse reports whether the bucket may trade the symbol. An empty
// universe means unrestricted.
func (b Bucket) InUniverse(symbol string) bool {
	if len(b.Universe) == 0 {
		return true
	}
	for _, s := range b.Universe {
		if s == symbol {
			return true
		}
	}
	return false
}
