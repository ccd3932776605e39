package ports

import (
	"context"
	"time"

	"pricechart/internal/domain"
)

// PriceRepository defines the interface for storing and retrieving price
// history, so the host can render a chart immediately after a restart.
type PriceRepository interface {
	// SavePoints persists a batch of price points for a symbol.
	// Points already stored for the same (symbol, timestamp) are ignored.
	SavePoints(ctx context.Context, symbol string, points []domain.PricePoint) error
	// RecentBySymbol retrieves the most recent points for a symbol, up to a
	// limit, ordered oldest first.
	RecentBySymbol(ctx context.Context, symbol string, limit int) ([]domain.PricePoint, error)
	// PruneBefore deletes points older than the cutoff and returns the number
	// of rows removed.
	PruneBefore(ctx context.Context, symbol string, cutoff time.Time) (int64, error)
}
