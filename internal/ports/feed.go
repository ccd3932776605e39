package ports

import (
	"context"

	"pricechart/internal/domain"
)

// PriceFeed defines the interface for a market data source feeding the chart.
// This abstraction decouples the host from any specific exchange client.
type PriceFeed interface {
	// GetRecentPrices retrieves up to limit historical price points for the
	// given symbol, ordered oldest first.
	GetRecentPrices(ctx context.Context, symbol string, limit int) ([]domain.PricePoint, error)

	// GetTickerPrice retrieves the last traded price for a given symbol.
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)

	// StreamPrices starts a live price stream for the symbol.
	// handler is invoked once per new price point; errHandler receives
	// non-fatal stream errors. Returns channels to observe and stop the
	// stream, or an error if the connection cannot be established.
	StreamPrices(ctx context.Context, symbol string, handler func(point domain.PricePoint), errHandler func(err error)) (doneCh chan struct{}, stopCh chan struct{}, err error)

	// Ping checks connectivity to the feed.
	Ping(ctx context.Context) error
}
