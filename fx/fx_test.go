package fx

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticRates(t *testing.T) {
	rates := StaticRates{"USD:EUR": 0.9}

	t.Run("same currency is identity", func(t *testing.T) {
		rate, err := rates.Rate("EUR", "EUR")
		require.NoError(t, err)
		assert.Equal(t, 1.0, rate)
	})

	t.Run("direct pair", func(t *testing.T) {
		rate, err := rates.Rate("USD", "EUR")
		require.NoError(t, err)
		assert.Equal(t, 0.9, rate)
	})

	t.Run("inverse pair", func(t *testing.T) {
		rate, err := rates.Rate("EUR", "USD")
		require.NoError(t, err)
		assert.InDelta(t, 1.0/0.9, rate, 1e-12)
	})

	t.Run("unknown pair errors", func(t *testing.T) {
		_, err := rates.Rate("GBP", "EUR")
		assert.Error(t, err)
	})
}

type failingSource struct {
	calls int
	rates StaticRates
	fail  bool
}

func (f *failingSource) Rate(from, to string) (float64, error) {
	f.calls++
	if f.fail {
		return 0, errors.New("source unavailable")
	}
	return f.rates.Rate(from, to)
}

func TestCachedSource(t *testing.T) {
	t.Run("caches within TTL", func(t *testing.T) {
		src := &failingSource{rates: StaticRates{"USD:EUR": 0.9}}
		cached := NewCachedSource(src, time.Minute, zerolog.Nop())

		for i := 0; i < 3; i++ {
			rate, err := cached.Rate("USD", "EUR")
			require.NoError(t, err)
			assert.Equal(t, 0.9, rate)
		}
		assert.Equal(t, 1, src.calls)
	})

	t.Run("serves stale rate when source fails", func(t *testing.T) {
		src := &failingSource{rates: StaticRates{"USD:EUR": 0.9}}
		cached := NewCachedSource(src, 0, zerolog.Nop()) // zero TTL: always stale

		rate, err := cached.Rate("USD", "EUR")
		require.NoError(t, err)
		assert.Equal(t, 0.9, rate)

		src.fail = true
		rate, err = cached.Rate("USD", "EUR")
		require.NoError(t, err)
		assert.Equal(t, 0.9, rate)
	})

	t.Run("same currency bypasses source", func(t *testing.T) {
		src := &failingSource{fail: true}
		cached := NewCachedSource(src, time.Minute, zerolog.Nop())

		rate, err := cached.Rate("EUR", "EUR")
		require.NoError(t, err)
		assert.Equal(t, 1.0, rate)
		assert.Equal(t, 0, src.calls)
	})
}

func TestConverterToEUR(t *testing.T) {
	conv := NewConverter(StaticRates{"USD:EUR": 0.5}, zerolog.Nop())

	assert.Equal(t, 100.0, conv.ToEUR(100.0, "EUR"))
	assert.Equal(t, 100.0, conv.ToEUR(100.0, ""))
	assert.Equal(t, 50.0, conv.ToEUR(100.0, "USD"))

	// Missing rate falls through at 1:1 rather than failing the run.
	assert.Equal(t, 100.0, conv.ToEUR(100.0, "GBP"))
}
