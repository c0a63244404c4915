package domain

// TransactionCosts models broker fees as a fixed fee plus a percentage of
// trade value. Supplied as configuration by the caller.
type TransactionCosts struct {
	Fixed   float64 `json:"fixed"`   // EUR per trade
	Percent float64 `json:"percent"` // Fraction of trade value (0.002 = 0.2%)
}

// DefaultTransactionCosts matches the reference broker fee schedule.
func DefaultTransactionCosts() TransactionCosts {
	return TransactionCosts{Fixed: 2.0, Percent: 0.002}
}

// Cost returns the transaction cost for a given trade value in EUR.
func (t TransactionCosts) Cost(valueEUR float64) float64 {
	return t.Fixed + valueEUR*t.Percent
}

// MinTradeAmount calculates the minimum trade value where transaction costs
// stay below maxCostRatio of the trade:
//
//	minTrade = fixed / (maxCostRatio - percent)
//
// With the defaults (1% max ratio, 2 EUR fixed, 0.2% variable) this yields
// 2 / 0.008 = 250 EUR.
func (t TransactionCosts) MinTradeAmount(maxCostRatio float64) float64 {
	if maxCostRatio <= 0 {
		maxCostRatio = 0.01
	}
	denominator := maxCostRatio - t.Percent
	if denominator <= 0 {
		// Variable cost alone exceeds the ratio; demand a high minimum.
		return 1000.0
	}
	return t.Fixed / denominator
}
