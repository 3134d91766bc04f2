package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/marketdata"
)

// DefaultFallbackExchangeRate is the KRW per USD used when the live rate is unavailable.
const DefaultFallbackExchangeRate = 1370.0

// DefaultExchangeRateTTL is how long a live rate is reused before the provider is asked again.
const DefaultExchangeRateTTL = time.Hour

// ExchangeRate is a resolved USD→KRW rate. Fallback reports that the live
// lookup failed and Rate holds the configured constant.
type ExchangeRate struct {
	Rate     float64 `json:"rate"`
	Fallback bool    `json:"fallback"`
}

// RateSource resolves the USD→KRW rate; it always produces a usable value.
type RateSource interface {
	Resolve(ctx context.Context) ExchangeRate
}

// ExchangeRateResolver reuses the last live rate for ttl and falls back to
// the configured constant only when no fresh rate is held. A zero ttl
// disables caching.
type ExchangeRateResolver struct {
	provider marketdata.RateProvider
	fallback float64
	ttl      time.Duration
	now      func() time.Time

	mu        sync.Mutex
	cached    float64
	fetchedAt time.Time
}

func NewExchangeRateResolver(provider marketdata.RateProvider, fallback float64, ttl time.Duration) *ExchangeRateResolver {
	if fallback <= 0 || math.IsNaN(fallback) || math.IsInf(fallback, 0) {
		fallback = DefaultFallbackExchangeRate
	}
	if ttl < 0 {
		ttl = 0
	}
	return &ExchangeRateResolver{provider: provider, fallback: fallback, ttl: ttl, now: time.Now}
}

func (r *ExchangeRateResolver) Resolve(ctx context.Context) ExchangeRate {
	// Held across the fetch so concurrent refreshes share one provider call.
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fresh() {
		return ExchangeRate{Rate: r.cached}
	}

	rate, err := r.live(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Using fallback exchange rate", "rate", r.fallback, "error", err)
		return ExchangeRate{Rate: r.fallback, Fallback: true}
	}

	r.cached = rate
	r.fetchedAt = r.now()
	return ExchangeRate{Rate: rate}
}

func (r *ExchangeRateResolver) fresh() bool {
	if r.ttl == 0 || r.fetchedAt.IsZero() {
		return false
	}
	return r.now().Sub(r.fetchedAt) < r.ttl
}

func (r *ExchangeRateResolver) live(ctx context.Context) (float64, error) {
	if r.provider == nil {
		return 0, errors.New("no rate provider configured")
	}

	result, err := r.provider.GetRate(ctx)
	if err != nil {
		return 0, err
	}
	if result == nil {
		return 0, errors.New("provider returned no rate")
	}

	rate := result.Rate.Float64()
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("unusable rate %s", result.Rate)
	}
	return rate, nil
}
