package application

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmanzanog/portfolio-dashboard/internal/domain"
	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/marketdata"
)

func TestPartitionCodes(t *testing.T) {
	holdings := []domain.RawHolding{
		{Code: "005930", Currency: domain.CurrencyKRW},
		{Code: "AAPL", Currency: domain.CurrencyUSD},
		{Code: "069500", Currency: domain.CurrencyKRW},
		{Code: "005930", Currency: domain.CurrencyKRW},
		{Code: "", Currency: domain.CurrencyKRW},
		{Code: "QQQ", Currency: domain.CurrencyUSD},
		{Code: "AAPL", Currency: domain.CurrencyUSD},
	}

	domestic, foreign := partitionCodes(holdings)

	assert.Equal(t, []string{"005930", "069500"}, domestic)
	assert.Equal(t, []string{"AAPL", "QQQ"}, foreign)
}

func TestPriceResolver_RoutesByCurrency(t *testing.T) {
	domestic := &MockQuoteProvider{
		GetQuoteFunc: func(ctx context.Context, symbol string) (*marketdata.QuoteResult, error) {
			return quote(symbol, 70000, 69000), nil
		},
	}
	foreign := &MockQuoteProvider{
		GetQuoteFunc: func(ctx context.Context, symbol string) (*marketdata.QuoteResult, error) {
			return quote(symbol, 200, 190), nil
		},
	}
	resolver := NewPriceResolver(domestic, foreign, time.Second, 4)

	prices := resolver.Resolve(context.Background(), []domain.RawHolding{
		{Code: "005930", Currency: domain.CurrencyKRW},
		{Code: "AAPL", Currency: domain.CurrencyUSD},
		{Code: "005930", Currency: domain.CurrencyKRW},
	})

	assert.Equal(t, domain.PriceMap{
		"005930": {CurrentPrice: 70000, PreviousClose: 69000},
		"AAPL":   {CurrentPrice: 200, PreviousClose: 190},
	}, prices)
	assert.Equal(t, []string{"005930"}, domestic.Calls())
	assert.Equal(t, []string{"AAPL"}, foreign.Calls())
}

func TestPriceResolver_ForeignQuoteWinsSharedCode(t *testing.T) {
	domestic := &MockQuoteProvider{
		GetQuoteFunc: func(ctx context.Context, symbol string) (*marketdata.QuoteResult, error) {
			return quote(symbol, 70000, 69000), nil
		},
	}
	foreign := &MockQuoteProvider{
		GetQuoteFunc: func(ctx context.Context, symbol string) (*marketdata.QuoteResult, error) {
			return quote(symbol, 200, 190), nil
		},
	}
	resolver := NewPriceResolver(domestic, foreign, time.Second, 4)
	holdings := []domain.RawHolding{
		{Code: "TSLA", Currency: domain.CurrencyKRW},
		{Code: "TSLA", Currency: domain.CurrencyUSD},
	}

	for i := 0; i < 20; i++ {
		prices := resolver.Resolve(context.Background(), holdings)
		assert.Equal(t, domain.PriceMap{
			"TSLA": {CurrentPrice: 200, PreviousClose: 190},
		}, prices)
	}
}

func TestPriceResolver_FailuresAreOmitted(t *testing.T) {
	domestic := &MockQuoteProvider{
		GetQuoteFunc: func(ctx context.Context, symbol string) (*marketdata.QuoteResult, error) {
			switch symbol {
			case "BAD":
				return nil, errors.New("upstream 500")
			case "NIL":
				return nil, nil
			}
			return quote(symbol, 1000, 1000), nil
		},
	}
	resolver := NewPriceResolver(domestic, &MockQuoteProvider{}, time.Second, 2)

	prices := resolver.Resolve(context.Background(), []domain.RawHolding{
		{Code: "BAD", Currency: domain.CurrencyKRW},
		{Code: "GOOD", Currency: domain.CurrencyKRW},
		{Code: "NIL", Currency: domain.CurrencyKRW},
	})

	require.Len(t, prices, 1)
	assert.Contains(t, prices, "GOOD")
}

func TestPriceResolver_PerCodeTimeout(t *testing.T) {
	foreign := &MockQuoteProvider{
		GetQuoteFunc: func(ctx context.Context, symbol string) (*marketdata.QuoteResult, error) {
			if symbol == "SLOW" {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return quote(symbol, 10, 9), nil
		},
	}
	resolver := NewPriceResolver(nil, foreign, 20*time.Millisecond, 1)

	start := time.Now()
	prices := resolver.Resolve(context.Background(), []domain.RawHolding{
		{Code: "SLOW", Currency: domain.CurrencyUSD},
		{Code: "FAST", Currency: domain.CurrencyUSD},
	})

	assert.Less(t, time.Since(start), time.Second)
	assert.NotContains(t, prices, "SLOW")
	assert.Contains(t, prices, "FAST")
}

func TestPriceResolver_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	domestic := &MockQuoteProvider{
		GetQuoteFunc: func(ctx context.Context, symbol string) (*marketdata.QuoteResult, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			return quote(symbol, 1, 1), nil
		},
	}
	resolver := NewPriceResolver(domestic, nil, time.Second, 2)

	holdings := make([]domain.RawHolding, 0, 10)
	for _, code := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
		holdings = append(holdings, domain.RawHolding{Code: code, Currency: domain.CurrencyKRW})
	}

	prices := resolver.Resolve(context.Background(), holdings)

	assert.Len(t, prices, 10)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPriceResolver_MissingProvider(t *testing.T) {
	resolver := NewPriceResolver(nil, nil, 0, 0)

	prices := resolver.Resolve(context.Background(), []domain.RawHolding{
		{Code: "005930", Currency: domain.CurrencyKRW},
		{Code: "AAPL", Currency: domain.CurrencyUSD},
	})

	assert.Empty(t, prices)
	assert.Equal(t, DefaultQuoteTimeout, resolver.timeout)
	assert.Equal(t, DefaultQuoteConcurrency, resolver.concurrency)
}
