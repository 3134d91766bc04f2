package application

import (
	"context"
	"sync"

	"github.com/jmanzanog/portfolio-dashboard/internal/domain"
	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/marketdata"
)

// --- Mocks ---

type MockQuoteProvider struct {
	mu           sync.Mutex
	calls        []string
	GetQuoteFunc func(ctx context.Context, symbol string) (*marketdata.QuoteResult, error)
}

func (m *MockQuoteProvider) GetQuote(ctx context.Context, symbol string) (*marketdata.QuoteResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()
	if m.GetQuoteFunc != nil {
		return m.GetQuoteFunc(ctx, symbol)
	}
	return nil, nil
}

func (m *MockQuoteProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type MockRateProvider struct {
	GetRateFunc func(ctx context.Context) (*marketdata.RateResult, error)
}

func (m *MockRateProvider) GetRate(ctx context.Context) (*marketdata.RateResult, error) {
	if m.GetRateFunc != nil {
		return m.GetRateFunc(ctx)
	}
	return nil, nil
}

type MockPriceSource struct {
	ResolveFunc func(ctx context.Context, holdings []domain.RawHolding) domain.PriceMap
}

func (m *MockPriceSource) Resolve(ctx context.Context, holdings []domain.RawHolding) domain.PriceMap {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, holdings)
	}
	return domain.PriceMap{}
}

type MockRateSource struct {
	ResolveFunc func(ctx context.Context) ExchangeRate
}

func (m *MockRateSource) Resolve(ctx context.Context) ExchangeRate {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return ExchangeRate{Rate: 1400}
}

func quote(symbol string, price, prev int64) *marketdata.QuoteResult {
	return &marketdata.QuoteResult{
		Symbol:        symbol,
		Price:         domain.NewDecimalFromInt(price),
		PreviousClose: domain.NewDecimalFromInt(prev),
	}
}
