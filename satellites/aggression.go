package satellites

import "fmt"

// Default aggression thresholds.
const (
	defaultHibernationThreshold = 0.30
)

// AggressionConfig controls how hard a bucket trades relative to its
// funding level and drawdown. Both dimensions map to a stepped factor and
// the lower one wins.
type AggressionConfig struct {
	// HibernationThreshold is the aggression factor below which a bucket
	// stops trading entirely.
	HibernationThreshold float64 `json:"hibernation_threshold"`
}

// NewDefaultAggressionConfig returns the standard aggression settings.
func NewDefaultAggressionConfig() AggressionConfig {
	return AggressionConfig{
		HibernationThreshold: defaultHibernationThreshold,
	}
}

// Aggression is the computed trading intensity for one bucket.
type Aggression struct {
	Factor           float64 `json:"factor"`            // Final scaling factor in [0,1]
	AllocationFactor float64 `json:"allocation_factor"` // Contribution from funding level
	DrawdownFactor   float64 `json:"drawdown_factor"`   // Contribution from drawdown
	LimitingFactor   string  `json:"limiting_factor"`   // "allocation" or "drawdown"
	Description      string  `json:"description"`
}

// ShouldHibernate reports whether the aggression factor is too low to
// trade at all. The threshold is a strict bound: the 0.3 drawdown rung
// stays alive at the default 0.30 threshold.
func (c AggressionConfig) ShouldHibernate(aggression float64) bool {
	threshold := c.HibernationThreshold
	if threshold <= 0 {
		threshold = defaultHibernationThreshold
	}
	return aggression < threshold
}

// Compute derives the aggression for a bucket from its funded fraction and
// current drawdown. The final factor is the minimum of the two stepped
// ladders.
func (c AggressionConfig) Compute(fundedFraction, drawdown float64) Aggression {
	allocation := allocationFactor(fundedFraction)
	dd := drawdownFactor(drawdown)

	result := Aggression{
		AllocationFactor: allocation,
		DrawdownFactor:   dd,
	}
	if allocation <= dd {
		result.Factor = allocation
		result.LimitingFactor = "allocation"
		result.Description = fmt.Sprintf(
			"aggression %.2f limited by allocation (funded %.0f%%, drawdown factor %.2f)",
			allocation, fundedFraction*100, dd,
		)
	} else {
		result.Factor = dd
		result.LimitingFactor = "drawdown"
		result.Description = fmt.Sprintf(
			"aggression %.2f limited by drawdown (drawdown %.0f%%, allocation factor %.2f)",
			dd, drawdown*100, allocation,
		)
	}
	return result
}

// allocationFactor steps the funding level down to a trading factor.
// Underfunded buckets trade smaller until they hibernate entirely.
func allocationFactor(fundedFraction float64) float64 {
	switch {
	case fundedFraction >= 1.0:
		return 1.0
	case fundedFraction >= 0.8:
		return 0.8
	case fundedFraction >= 0.6:
		return 0.6
	case fundedFraction >= 0.4:
		return 0.4
	default:
		return 0.0
	}
}

// drawdownFactor throttles trading as the bucket falls from its peak.
func drawdownFactor(drawdown float64) float64 {
	switch {
	case drawdown >= 0.35:
		return 0.0
	case drawdown >= 0.25:
		return 0.3
	case drawdown >= 0.15:
		return 0.7
	default:
		return 1.0
	}
}
