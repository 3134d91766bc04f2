package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jmanzanog/portfolio-dashboard/internal/domain"
)

var ErrHoldingNotFound = errors.New("holding not found")

// Dashboard is one complete valuation of the current holdings. Every view in
// it was computed from the same prices and exchange rate.
type Dashboard struct {
	ID                   uuid.UUID                    `json:"id"`
	GeneratedAt          time.Time                    `json:"generated_at"`
	ExchangeRateFallback bool                         `json:"exchange_rate_fallback"`
	UnavailableCount     int                          `json:"unavailable_count"`
	Summary              domain.PortfolioSummary      `json:"summary"`
	Holdings             []domain.EnrichedHolding     `json:"holdings"`
	Consolidated         []domain.ConsolidatedHolding `json:"consolidated"`
	Accounts             []domain.AccountSummary      `json:"accounts"`
	Sectors              []domain.SectorAllocation    `json:"sectors"`
}

// DashboardService owns the uploaded holdings and the latest Dashboard built
// from them.
type DashboardService struct {
	repo     domain.HoldingsRepository
	prices   PriceSource
	rates    RateSource
	location *time.Location
	now      func() time.Time

	seq atomic.Uint64

	mu        sync.RWMutex
	current   *Dashboard
	published uint64
}

// Option customizes a DashboardService.
type Option func(*DashboardService)

// WithLocation sets the time zone of the summary's display time. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *DashboardService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewDashboardService(repo domain.HoldingsRepository, prices PriceSource, rates RateSource, opts ...Option) *DashboardService {
	s := &DashboardService{
		repo:     repo,
		prices:   prices,
		rates:    rates,
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadHoldings replaces the tracked holdings and values them immediately.
func (s *DashboardService) UploadHoldings(ctx context.Context, holdings []domain.RawHolding) (*Dashboard, error) {
	if err := s.repo.Save(ctx, holdings); err != nil {
		return nil, fmt.Errorf("failed to save holdings: %w", err)
	}
	slog.InfoContext(ctx, "Holdings uploaded", "count", len(holdings))

	return s.Refresh(ctx)
}

// ClearHoldings removes the holdings and the current dashboard. Refreshes
// still in flight are discarded.
func (s *DashboardService) ClearHoldings(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.published = s.seq.Add(1)
	return nil
}

// Refresh fetches prices and the exchange rate, values the holdings and
// publishes the result. A refresh that finishes after a newer one has already
// been published is discarded and the newer dashboard is returned instead.
func (s *DashboardService) Refresh(ctx context.Context) (*Dashboard, error) {
	seq := s.seq.Add(1)

	holdings, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	var (
		priceMap domain.PriceMap
		fx       ExchangeRate
	)
	var g errgroup.Group
	g.Go(func() error {
		priceMap = s.prices.Resolve(ctx, holdings)
		return nil
	})
	g.Go(func() error {
		fx = s.rates.Resolve(ctx)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("refresh canceled: %w", err)
	}

	dashboard := s.build(holdings, priceMap, fx)
	return s.publish(ctx, seq, dashboard)
}

func (s *DashboardService) build(holdings []domain.RawHolding, priceMap domain.PriceMap, fx ExchangeRate) *Dashboard {
	now := s.now().In(s.location)
	enriched := domain.Enrich(holdings, priceMap, fx.Rate)

	d := &Dashboard{
		ID:                   uuid.New(),
		GeneratedAt:          now,
		ExchangeRateFallback: fx.Fallback,
		Holdings:             enriched,
	}

	var g errgroup.Group
	g.Go(func() error {
		d.Consolidated = domain.Consolidate(enriched)
		return nil
	})
	g.Go(func() error {
		d.Accounts = domain.SummarizeAccounts(enriched)
		return nil
	})
	g.Go(func() error {
		d.Sectors = domain.AllocateSectors(enriched)
		return nil
	})
	g.Go(func() error {
		d.Summary = domain.SummarizePortfolio(enriched, fx.Rate, now)
		return nil
	})
	_ = g.Wait()

	for _, h := range enriched {
		if h.PriceUnavailable {
			d.UnavailableCount++
		}
	}
	return d
}

func (s *DashboardService) publish(ctx context.Context, seq uint64, d *Dashboard) (*Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.published {
		slog.DebugContext(ctx, "Discarding superseded refresh", "seq", seq, "published", s.published)
		if s.current == nil {
			return nil, domain.ErrNoHoldings
		}
		return s.current, nil
	}

	s.current = d
	s.published = seq
	slog.InfoContext(ctx, "Dashboard refreshed",
		"id", d.ID,
		"holdings", len(d.Holdings),
		"unavailable", d.UnavailableCount,
		"exchange_rate", d.Summary.ExchangeRate,
		"exchange_rate_fallback", d.ExchangeRateFallback,
	)
	return d, nil
}

// RefreshPrices is the periodic refresh entry point. Having nothing uploaded
// yet is not an error.
func (s *DashboardService) RefreshPrices(ctx context.Context) error {
	_, err := s.Refresh(ctx)
	if errors.Is(err, domain.ErrNoHoldings) {
		return nil
	}
	return err
}

// Dashboard returns the latest published dashboard. Holdings that were stored
// but never valued are refreshed on demand.
func (s *DashboardService) Dashboard(ctx context.Context) (*Dashboard, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current != nil {
		return current, nil
	}
	return s.Refresh(ctx)
}

// Holdings returns the raw holdings as uploaded.
func (s *DashboardService) Holdings(ctx context.Context) ([]domain.RawHolding, error) {
	holdings, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	return holdings, nil
}

// ConsolidatedHolding returns the cross-account view of one instrument code.
func (s *DashboardService) ConsolidatedHolding(ctx context.Context, code string) (*domain.ConsolidatedHolding, error) {
	d, err := s.Dashboard(ctx)
	if err != nil {
		return nil, err
	}

	for i := range d.Consolidated {
		if d.Consolidated[i].Code == code {
			h := d.Consolidated[i]
			return &h, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrHoldingNotFound, code)
}
