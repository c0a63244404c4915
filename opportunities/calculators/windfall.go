package calculators

import (
	"fmt"
	"math"

	"github.com/aristath/tradeplan/domain"
)

// Windfall thresholds. A windfall is a gain well above what the security's
// own growth history would predict.
const (
	windfallExcessHigh       = 0.50
	windfallExcessMedium     = 0.25
	windfallSellPctHigh      = 0.40
	windfallSellPctMedium    = 0.20
	windfallDoublerSellPct   = 0.50
	consistentDoublerSellPct = 0.30
	defaultHistoricalCAGR    = 0.10
)

// WindfallRecommendation is the advisor's verdict on a single position.
type WindfallRecommendation struct {
	TakeProfits      bool    `json:"take_profits"`
	SuggestedSellPct float64 `json:"suggested_sell_pct"` // Fraction of position (0.40 = 40%)
	Score            float64 `json:"windfall_score"`     // 0.0 to 1.0
	Reason           string  `json:"reason"`
}

// WindfallAdvisor scores positions for excess gains. The default
// implementation compares realized gain against a compounded historical
// growth expectation; callers with richer analytics can supply their own.
type WindfallAdvisor interface {
	Recommend(position domain.Position, security domain.Security) WindfallRecommendation
}

// GainBasedAdvisor is the default WindfallAdvisor. Expected gain after N
// years is (1+cagr)^N - 1; everything above that is excess.
type GainBasedAdvisor struct {
	// HistoricalCAGR holds per-symbol annual growth rates. Symbols without
	// an entry use DefaultCAGR.
	HistoricalCAGR map[string]float64
	DefaultCAGR    float64
}

// NewGainBasedAdvisor creates an advisor with the given per-symbol growth
// rates (may be nil).
func NewGainBasedAdvisor(historicalCAGR map[string]float64) *GainBasedAdvisor {
	return &GainBasedAdvisor{
		HistoricalCAGR: historicalCAGR,
		DefaultCAGR:    defaultHistoricalCAGR,
	}
}

// Recommend assesses a position for profit taking.
func (a *GainBasedAdvisor) Recommend(position domain.Position, security domain.Security) WindfallRecommendation {
	if position.AvgPrice <= 0 || position.EffectivePrice() <= 0 {
		return WindfallRecommendation{Reason: "insufficient data"}
	}

	gain := (position.EffectivePrice() - position.AvgPrice) / position.AvgPrice
	yearsHeld := float64(position.HoldingDays) / 365.25
	if yearsHeld <= 0 {
		yearsHeld = 1.0
	}

	cagr := a.DefaultCAGR
	if cagr <= 0 {
		cagr = defaultHistoricalCAGR
	}
	if rate, ok := a.HistoricalCAGR[position.Symbol]; ok && rate > 0 {
		cagr = rate
	}

	expectedGain := math.Pow(1+cagr, yearsHeld) - 1
	excess := gain - expectedGain

	rec := WindfallRecommendation{Score: windfallScore(excess)}

	switch {
	case gain >= 1.0 && excess >= windfallExcessHigh:
		rec.TakeProfits = true
		rec.SuggestedSellPct = windfallDoublerSellPct
		rec.Reason = fmt.Sprintf("Windfall doubler: %.0f%% gain, %.0f%% above expectation", gain*100, excess*100)
	case gain >= 1.0:
		rec.TakeProfits = true
		rec.SuggestedSellPct = consistentDoublerSellPct
		rec.Reason = fmt.Sprintf("Consistent doubler: %.0f%% gain over %.1f years", gain*100, yearsHeld)
	case excess >= windfallExcessHigh:
		rec.TakeProfits = true
		rec.SuggestedSellPct = windfallSellPctHigh
		rec.Reason = fmt.Sprintf("High windfall: %.0f%% excess gain", excess*100)
	case excess >= windfallExcessMedium:
		rec.TakeProfits = true
		rec.SuggestedSellPct = windfallSellPctMedium
		rec.Reason = fmt.Sprintf("Medium windfall: %.0f%% excess gain", excess*100)
	case excess <= -0.10:
		rec.Reason = fmt.Sprintf("Underperforming: %.0f%% below expectation", -excess*100)
	case math.Abs(excess) <= 0.05:
		rec.Reason = "Performing near expectations"
	default:
		rec.Reason = "Gain within normal range"
	}

	return rec
}

// windfallScore maps excess gain to a 0..1 score: 0 at or below zero
// excess, 0.5 at the medium threshold, 1.0 at the high threshold and above.
func windfallScore(excess float64) float64 {
	switch {
	case excess <= 0:
		return 0.0
	case excess >= windfallExcessHigh:
		return 1.0
	case excess >= windfallExcessMedium:
		return 0.5 + 0.5*(excess-windfallExcessMedium)/(windfallExcessHigh-windfallExcessMedium)
	default:
		return 0.5 * excess / windfallExcessMedium
	}
}
