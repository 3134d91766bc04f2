package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmanzanog/portfolio-dashboard/internal/domain"
	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/marketdata"
)

const (
	DefaultQuoteTimeout     = 5 * time.Second
	DefaultQuoteConcurrency = 8
)

var errEmptyQuote = errors.New("provider returned no quote")

// PriceSource resolves current and previous-close prices for a set of holdings.
type PriceSource interface {
	Resolve(ctx context.Context, holdings []domain.RawHolding) domain.PriceMap
}

// PriceResolver routes KRW codes to the domestic provider and USD tickers to
// the foreign provider. A code whose lookup fails is logged and left out of
// the result; it never affects the other codes.
type PriceResolver struct {
	domestic    marketdata.QuoteProvider
	foreign     marketdata.QuoteProvider
	timeout     time.Duration
	concurrency int
}

func NewPriceResolver(domestic, foreign marketdata.QuoteProvider, timeout time.Duration, concurrency int) *PriceResolver {
	if timeout <= 0 {
		timeout = DefaultQuoteTimeout
	}
	if concurrency <= 0 {
		concurrency = DefaultQuoteConcurrency
	}
	return &PriceResolver{
		domestic:    domestic,
		foreign:     foreign,
		timeout:     timeout,
		concurrency: concurrency,
	}
}

func (r *PriceResolver) Resolve(ctx context.Context, holdings []domain.RawHolding) domain.PriceMap {
	domesticCodes, foreignCodes := partitionCodes(holdings)

	var domesticQuotes, foreignQuotes domain.PriceMap
	var g errgroup.Group
	g.Go(func() error {
		domesticQuotes = r.fetchAll(ctx, r.domestic, domain.CurrencyKRW, domesticCodes)
		return nil
	})
	g.Go(func() error {
		foreignQuotes = r.fetchAll(ctx, r.foreign, domain.CurrencyUSD, foreignCodes)
		return nil
	})
	_ = g.Wait()

	// A code held in both currencies keeps the foreign quote.
	prices := make(domain.PriceMap, len(domesticQuotes)+len(foreignQuotes))
	for code, q := range domesticQuotes {
		prices[code] = q
	}
	for code, q := range foreignQuotes {
		prices[code] = q
	}
	return prices
}

// partitionCodes splits holding codes by currency, de-duplicated in first-seen order.
func partitionCodes(holdings []domain.RawHolding) (domestic, foreign []string) {
	seen := make(map[domain.Currency]map[string]bool, 2)
	for _, h := range holdings {
		if h.Code == "" {
			continue
		}
		if seen[h.Currency] == nil {
			seen[h.Currency] = make(map[string]bool)
		}
		if seen[h.Currency][h.Code] {
			continue
		}
		seen[h.Currency][h.Code] = true

		if h.Currency.IsForeign() {
			foreign = append(foreign, h.Code)
		} else {
			domestic = append(domestic, h.Code)
		}
	}
	return domestic, foreign
}

// fetchAll fetches every code concurrently, bounded by the resolver's
// concurrency, each under its own timeout.
func (r *PriceResolver) fetchAll(ctx context.Context, provider marketdata.QuoteProvider, currency domain.Currency, codes []string) domain.PriceMap {
	quotes := make(domain.PriceMap, len(codes))
	if len(codes) == 0 {
		return quotes
	}
	if provider == nil {
		slog.WarnContext(ctx, "No quote provider configured", "currency", currency, "count", len(codes))
		return quotes
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for _, code := range codes {
		code := code
		g.Go(func() error {
			quote, err := r.fetchOne(ctx, provider, code)
			if err != nil {
				slog.WarnContext(ctx, "Failed to fetch quote", "code", code, "currency", currency, "error", err)
				return nil
			}

			mu.Lock()
			quotes[code] = quote
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return quotes
}

func (r *PriceResolver) fetchOne(ctx context.Context, provider marketdata.QuoteProvider, code string) (domain.PriceQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := provider.GetQuote(ctx, code)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	if result == nil {
		return domain.PriceQuote{}, errEmptyQuote
	}

	return domain.PriceQuote{
		CurrentPrice:  result.Price.Float64(),
		PreviousClose: result.PreviousClose.Float64(),
	}, nil
}
