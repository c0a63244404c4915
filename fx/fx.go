// Package fx converts trade values into EUR, the planner's reference
// currency. Rates come from a pluggable source; a TTL cache keeps repeated
// lookups within one planning run cheap and tolerates a flaky source by
// serving stale rates.
package fx

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Source provides exchange rates. Implementations may hit an external API;
// callers should wrap them in a CachedSource.
type Source interface {
	// Rate returns how many units of toCurrency one unit of fromCurrency buys.
	Rate(fromCurrency, toCurrency string) (float64, error)
}

// StaticRates is a Source backed by a fixed map keyed "FROM:TO". Useful for
// tests and for callers that resolve rates ahead of a planning run.
type StaticRates map[string]float64

// Rate looks up a pair, checking the inverse direction when the direct pair
// is missing.
func (s StaticRates) Rate(fromCurrency, toCurrency string) (float64, error) {
	if fromCurrency == toCurrency {
		return 1.0, nil
	}
	if rate, ok := s[fromCurrency+":"+toCurrency]; ok && rate > 0 {
		return rate, nil
	}
	if inverse, ok := s[toCurrency+":"+fromCurrency]; ok && inverse > 0 {
		return 1.0 / inverse, nil
	}
	return 0, fmt.Errorf("no rate for %s:%s", fromCurrency, toCurrency)
}

type cachedRate struct {
	rate      float64
	fetchedAt time.Time
}

// CachedSource wraps a Source with an in-memory TTL cache. When the
// underlying source fails, a stale cached rate is returned instead
// (stale data > no data).
type CachedSource struct {
	source Source
	ttl    time.Duration
	log    zerolog.Logger

	mu    sync.RWMutex
	cache map[string]cachedRate
}

// NewCachedSource creates a caching wrapper around source.
func NewCachedSource(source Source, ttl time.Duration, log zerolog.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		ttl:    ttl,
		log:    log.With().Str("component", "fx_cache").Logger(),
		cache:  make(map[string]cachedRate),
	}
}

// Rate returns a cached rate when fresh, otherwise consults the underlying
// source and caches the result.
func (c *CachedSource) Rate(fromCurrency, toCurrency string) (float64, error) {
	if fromCurrency == toCurrency {
		return 1.0, nil
	}

	key := fromCurrency + ":" + toCurrency

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry.rate, nil
	}

	rate, err := c.source.Rate(fromCurrency, toCurrency)
	if err != nil {
		if ok {
			c.log.Warn().
				Err(err).
				Str("pair", key).
				Float64("rate", entry.rate).
				Msg("Rate source failed, using stale cached rate")
			return entry.rate, nil
		}
		return 0, err
	}

	c.mu.Lock()
	c.cache[key] = cachedRate{rate: rate, fetchedAt: time.Now()}
	c.mu.Unlock()

	return rate, nil
}

// Converter converts monetary values into EUR.
type Converter struct {
	source Source
	log    zerolog.Logger
}

// NewConverter creates a Converter backed by the given rate source.
func NewConverter(source Source, log zerolog.Logger) *Converter {
	return &Converter{
		source: source,
		log:    log.With().Str("component", "fx").Logger(),
	}
}

// ToEUR converts a value from the given currency into EUR. When no usable
// rate is available the value is passed through at 1:1 and a warning is
// logged; a wrong-but-bounded value beats aborting the whole planning run.
func (c *Converter) ToEUR(value float64, currency string) float64 {
	if currency == "" || currency == "EUR" {
		return value
	}
	rate, err := c.source.Rate(currency, "EUR")
	if err != nil || rate <= 0 {
		c.log.Warn().
			Err(err).
			Str("currency", currency).
			Msg("No exchange rate available, assuming 1:1")
		return value
	}
	return value * rate
}
