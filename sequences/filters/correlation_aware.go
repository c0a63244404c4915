package filters

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/tradeplan/domain"
)

// PriceHistoryProvider supplies daily price series for correlation
// computation. May be nil, in which case the filter degrades to a
// pass-through unless a correlation matrix is provided via params.
type PriceHistoryProvider interface {
	// PriceHistory returns up to lookbackDays of daily closes for a symbol,
	// oldest first.
	PriceHistory(symbol string, lookbackDays int) ([]float64, error)
}

// CorrelationAwareFilter drops sequences that buy two highly correlated
// securities at once. Buying both sides of a 0.9 correlation is one bet,
// not two.
type CorrelationAwareFilter struct {
	*BaseFilter
	prices PriceHistoryProvider
}

// NewCorrelationAwareFilter creates a new correlation-aware filter.
func NewCorrelationAwareFilter(prices PriceHistoryProvider, log zerolog.Logger) *CorrelationAwareFilter {
	return &CorrelationAwareFilter{
		BaseFilter: NewBaseFilter(log, "correlation_aware"),
		prices:     prices,
	}
}

// Name returns the filter name.
func (f *CorrelationAwareFilter) Name() string {
	return "correlation_aware"
}

// Filter removes sequences whose BUY legs are highly correlated.
func (f *CorrelationAwareFilter) Filter(
	sequences []domain.ActionSequence,
	params map[string]interface{},
) ([]domain.ActionSequence, error) {
	if len(sequences) == 0 {
		return sequences, nil
	}

	threshold := 0.7
	if val, ok := params["correlation_threshold"].(float64); ok {
		threshold = val
	}
	lookbackDays := 252
	if val, ok := params["lookback_days"].(float64); ok {
		lookbackDays = int(val)
	} else if val, ok := params["lookback_days"].(int); ok {
		lookbackDays = val
	}

	// A pre-provided matrix wins over recomputation.
	var correlations map[string]float64
	if matrix, ok := params["correlation_matrix"].(map[string]float64); ok {
		correlations = matrix
	} else {
		correlations = f.buildCorrelationMap(sequences, lookbackDays)
	}

	if len(correlations) == 0 {
		f.log.Debug().Msg("No correlation data available, passing all sequences through")
		return sequences, nil
	}

	filtered := make([]domain.ActionSequence, 0, len(sequences))
	removed := 0

	for _, seq := range sequences {
		buySymbols := extractBuySymbols(seq)
		if len(buySymbols) < 2 {
			filtered = append(filtered, seq)
			continue
		}

		if hasHighCorrelation(buySymbols, correlations, threshold) {
			removed++
			f.log.Debug().
				Str("sequence_hash", seq.SequenceHash).
				Strs("buy_symbols", buySymbols).
				Msg("Dropped sequence with correlated buys")
			continue
		}
		filtered = append(filtered, seq)
	}

	if removed > 0 {
		f.log.Info().
			Int("before", len(sequences)).
			Int("after", len(filtered)).
			Float64("threshold", threshold).
			Msg("Correlation filtering complete")
	}

	return filtered, nil
}

// buildCorrelationMap computes pairwise Pearson correlations for all BUY
// symbols across the sequences from injected price history.
func (f *CorrelationAwareFilter) buildCorrelationMap(
	sequences []domain.ActionSequence,
	lookbackDays int,
) map[string]float64 {
	correlations := make(map[string]float64)
	if f.prices == nil {
		return correlations
	}

	symbolSet := make(map[string]bool)
	for _, seq := range sequences {
		for _, symbol := range extractBuySymbols(seq) {
			symbolSet[symbol] = true
		}
	}
	if len(symbolSet) < 2 {
		return correlations
	}

	histories := make(map[string][]float64, len(symbolSet))
	for symbol := range symbolSet {
		history, err := f.prices.PriceHistory(symbol, lookbackDays)
		if err != nil || len(history) < 2 {
			continue
		}
		histories[symbol] = dailyReturns(history)
	}

	for a, returnsA := range histories {
		for b, returnsB := range histories {
			if a >= b {
				continue
			}
			n := len(returnsA)
			if len(returnsB) < n {
				n = len(returnsB)
			}
			if n < 2 {
				continue
			}
			corr := stat.Correlation(returnsA[len(returnsA)-n:], returnsB[len(returnsB)-n:], nil)
			if math.IsNaN(corr) {
				continue
			}
			correlations[a+":"+b] = corr
		}
	}

	return correlations
}

// dailyReturns converts a price series into simple daily returns.
func dailyReturns(prices []float64) []float64 {
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, prices[i]/prices[i-1]-1)
	}
	return returns
}

func extractBuySymbols(seq domain.ActionSequence) []string {
	var symbols []string
	for _, action := range seq.Actions {
		if action.Side == "BUY" {
			symbols = append(symbols, action.Symbol)
		}
	}
	return symbols
}

// hasHighCorrelation checks every buy pair, looking up both key orderings.
func hasHighCorrelation(symbols []string, correlations map[string]float64, threshold float64) bool {
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			corr, ok := correlations[symbols[i]+":"+symbols[j]]
			if !ok {
				corr, ok = correlations[symbols[j]+":"+symbols[i]]
			}
			if ok && math.Abs(corr) >= threshold {
				return true
			}
		}
	}
	return false
}
