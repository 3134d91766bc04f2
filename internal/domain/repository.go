package domain

import (
	"context"
	"errors"
)

// ErrNoHoldings is returned when no holdings have been uploaded yet.
var ErrNoHoldings = errors.New("no holdings loaded")

// HoldingsRepository keeps the holdings currently being tracked.
// All methods accept context.Context to keep the signature compatible with
// stores that do I/O.
type HoldingsRepository interface {
	Save(ctx context.Context, holdings []RawHolding) error
	Load(ctx context.Context) ([]RawHolding, error)
	Clear(ctx context.Context) error
}
