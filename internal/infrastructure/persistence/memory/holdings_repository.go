package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/jmanzanog/portfolio-dashboard/internal/domain"
)

// HoldingsRepository keeps the most recent upload in process memory. Each
// Save replaces the previous set.
type HoldingsRepository struct {
	mu       sync.RWMutex
	holdings []domain.RawHolding
	loaded   bool
}

func NewHoldingsRepository() *HoldingsRepository {
	return &HoldingsRepository{}
}

func (r *HoldingsRepository) Save(ctx context.Context, holdings []domain.RawHolding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.holdings = slices.Clone(holdings)
	r.loaded = true
	return nil
}

// Load returns a copy of the stored holdings, or domain.ErrNoHoldings before
// the first Save and after Clear. An uploaded empty file is a valid, empty set.
func (r *HoldingsRepository) Load(ctx context.Context) ([]domain.RawHolding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.loaded {
		return nil, domain.ErrNoHoldings
	}

	holdings := make([]domain.RawHolding, len(r.holdings))
	copy(holdings, r.holdings)
	return holdings, nil
}

func (r *HoldingsRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.holdings = nil
	r.loaded = false
	return nil
}

var _ domain.HoldingsRepository = (*HoldingsRepository)(nil)
