package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	gioapp "gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/system"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"pricechart/config"
	"pricechart/internal/chart"
	"pricechart/internal/domain"
	"pricechart/internal/ports"
)

// ChartService owns the window event loop and orchestrates the data flow
// into the chart: cached history for an instant first paint, a feed backfill,
// then live stream updates. All chart mutations happen on the frame loop
// goroutine; background goroutines only append to a pending buffer.
type ChartService struct {
	cfg     *config.Config
	logger  ports.Logger
	feed    ports.PriceFeed
	repo    ports.PriceRepository
	haptics ports.Haptics

	window *gioapp.Window
	chart  *chart.Chart

	// State shared with background goroutines
	mu            sync.Mutex
	pending       []domain.PricePoint
	loadingUpdate *bool
	refUpdate     *referenceUpdate

	// Frame-loop owned, no lock needed
	series []domain.PricePoint
}

// referenceUpdate carries a pending SetReference call to the frame loop.
type referenceUpdate struct {
	price float64
	mcap  float64
}

// NewChartService creates a new application service instance.
func NewChartService(
	cfg *config.Config,
	logger ports.Logger,
	feed ports.PriceFeed,
	repo ports.PriceRepository,
	haptics ports.Haptics,
) (*ChartService, error) {

	// Validate dependencies
	if cfg == nil || logger == nil || feed == nil || repo == nil {
		return nil, fmt.Errorf("missing required dependencies for ChartService: %w", ports.ErrConfigurationError)
	}
	if cfg.HistoryLimit <= 1 {
		return nil, fmt.Errorf("configuration HistoryLimit must be greater than 1: %w", ports.ErrConfigurationError)
	}

	ch, err := chart.New(chart.Config{
		Style:          cfg.ChartStyle(),
		Logger:         logger,
		Haptics:        haptics,
		LongPressDelay: cfg.LongPressDelay,
		OnSelect: func(point *domain.PricePoint) {
			if point == nil {
				logger.Debug(context.Background(), "selection cleared")
				return
			}
			logger.Debug(context.Background(), "point selected", map[string]interface{}{
				"timestamp": point.Timestamp,
				"price":     chart.FormatPrice(point.Price),
			})
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build chart: %w", err)
	}

	return &ChartService{
		cfg:     cfg,
		logger:  logger,
		feed:    feed,
		repo:    repo,
		haptics: haptics,
		chart:   ch,
	}, nil
}

// Run opens the window and blocks in its event loop until the window closes
// or the context is cancelled. It must be called from a dedicated goroutine
// while gioui.org/app.Main holds the main one.
func (s *ChartService) Run(ctx context.Context) error {
	s.logger.Info(ctx, "Starting Chart Service...", map[string]interface{}{"symbol": s.cfg.Symbol})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	s.window = new(gioapp.Window)
	s.window.Option(
		gioapp.Title(s.cfg.Symbol),
		gioapp.Size(unit.Dp(960), unit.Dp(540)),
		gioapp.MinSize(unit.Dp(320), unit.Dp(200)),
	)

	// Close the window when the context ends so the loop below unblocks.
	go func() {
		<-ctx.Done()
		s.window.Perform(system.ActionClose)
	}()

	s.chart.SetLoading(true)
	go s.loadData(ctx)

	defer s.chart.Close()

	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))

	var ops op.Ops
	for {
		switch e := s.window.Event().(type) {
		case gioapp.DestroyEvent:
			s.logger.Info(ctx, "Window destroyed, shutting down")
			cancel()
			return e.Err
		case gioapp.FrameEvent:
			gtx := gioapp.NewContext(&ops, e)
			s.drainPending(ctx)
			s.chart.Layout(gtx, th)
			e.Frame(gtx.Ops)
		}
	}
}

// loadData brings the chart to a live state: cached points first, then a
// feed backfill, then the stream. A stage failing leaves the previous
// stage's data on screen.
func (s *ChartService) loadData(ctx context.Context) {
	// 1. Cached history paints immediately, even with the feed down.
	cached, err := s.repo.RecentBySymbol(ctx, s.cfg.Symbol, s.cfg.HistoryLimit)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load cached history")
	} else if len(cached) > 0 {
		s.enqueue(cached)
		s.logger.Info(ctx, "Cached history loaded", map[string]interface{}{"points": len(cached)})
	}

	// 2. Drop points beyond the retention window.
	cutoff := time.Now().Add(-s.cfg.RetentionPeriod)
	if removed, err := s.repo.PruneBefore(ctx, s.cfg.Symbol, cutoff); err != nil {
		s.logger.Warn(ctx, "Failed to prune old points", map[string]interface{}{"error": err.Error()})
	} else if removed > 0 {
		s.logger.Info(ctx, "Old points pruned", map[string]interface{}{"removed": removed})
	}

	// 3. Check feed connectivity before the heavier calls.
	if err := s.feed.Ping(ctx); err != nil {
		s.logger.Error(ctx, err, "Price feed unreachable, staying on cached data")
		s.setLoading(false)
		return
	}

	// 4. Backfill fresh history from the feed and persist it.
	points, err := s.feed.GetRecentPrices(ctx, s.cfg.Symbol, s.cfg.HistoryLimit)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to backfill history from feed")
	} else {
		if err := s.repo.SavePoints(ctx, s.cfg.Symbol, points); err != nil {
			s.logger.Error(ctx, err, "Failed to persist backfilled history")
		}
		s.enqueue(points)
		s.logger.Info(ctx, "History backfilled from feed", map[string]interface{}{"points": len(points)})
	}

	// 5. Reference price for the tooltip's implied market cap.
	if s.cfg.CirculatingSupply > 0 {
		price, err := s.feed.GetTickerPrice(ctx, s.cfg.Symbol)
		if err != nil {
			s.logger.Warn(ctx, "Failed to fetch ticker price for market cap", map[string]interface{}{"error": err.Error()})
		} else {
			s.setReference(price, price*s.cfg.CirculatingSupply)
		}
	}

	s.setLoading(false)

	// 6. Live updates.
	doneCh, stopCh, err := s.feed.StreamPrices(ctx, s.cfg.Symbol, s.handlePricePoint, s.handleStreamError)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to start price stream")
		return
	}
	s.logger.Info(ctx, "Price stream started", map[string]interface{}{"symbol": s.cfg.Symbol})

	select {
	case <-ctx.Done():
		close(stopCh)
	case <-doneCh:
		s.logger.Warn(ctx, "Price stream ended")
	}
}

// handlePricePoint is invoked from the stream goroutine for each live trade.
func (s *ChartService) handlePricePoint(point domain.PricePoint) {
	s.mu.Lock()
	s.pending = append(s.pending, point)
	s.mu.Unlock()
	s.window.Invalidate()
}

func (s *ChartService) handleStreamError(err error) {
	s.logger.Warn(context.Background(), "Price stream error", map[string]interface{}{"error": err.Error()})
}

// enqueue schedules a batch for the next frame and wakes the window.
func (s *ChartService) enqueue(points []domain.PricePoint) {
	if len(points) == 0 {
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, points...)
	s.mu.Unlock()
	s.window.Invalidate()
}

func (s *ChartService) setLoading(loading bool) {
	s.mu.Lock()
	s.loadingUpdate = &loading
	s.mu.Unlock()
	s.window.Invalidate()
}

func (s *ChartService) setReference(price, mcap float64) {
	s.mu.Lock()
	s.refUpdate = &referenceUpdate{price: price, mcap: mcap}
	s.mu.Unlock()
	s.window.Invalidate()
}

// drainPending applies buffered updates on the frame loop. The series is
// capped at HistoryLimit, dropping the oldest points, and live points are
// persisted as they arrive.
func (s *ChartService) drainPending(ctx context.Context) {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	loading := s.loadingUpdate
	s.loadingUpdate = nil
	ref := s.refUpdate
	s.refUpdate = nil
	s.mu.Unlock()

	if loading != nil {
		s.chart.SetLoading(*loading)
	}
	if ref != nil {
		s.chart.SetReference(ref.price, ref.mcap)
	}
	if len(batch) == 0 {
		return
	}

	s.series = mergePoints(s.series, batch, s.cfg.HistoryLimit)
	s.chart.SetSeries(s.series)

	// Saves of already-stored timestamps are ignored by the repository, so
	// replaying a backfill batch here is harmless.
	if err := s.repo.SavePoints(ctx, s.cfg.Symbol, batch); err != nil {
		s.logger.Warn(ctx, "Failed to persist points", map[string]interface{}{"error": err.Error()})
	}
}

// mergePoints folds a batch into an ordered series: points newer than the
// tail append, a point sharing the tail's timestamp replaces it (intra-second
// trades collapse to the latest price), and older points insert into their
// slot. The result keeps at most limit points.
func mergePoints(series []domain.PricePoint, batch []domain.PricePoint, limit int) []domain.PricePoint {
	for _, p := range batch {
		n := len(series)
		switch {
		case n == 0 || p.Timestamp > series[n-1].Timestamp:
			series = append(series, p)
		case p.Timestamp == series[n-1].Timestamp:
			series[n-1] = p
		default:
			series = insertPoint(series, p)
		}
	}
	if len(series) > limit {
		series = series[len(series)-limit:]
	}
	return series
}

// insertPoint places an out-of-order point into its timestamp slot,
// replacing an existing point with the same timestamp.
func insertPoint(series []domain.PricePoint, p domain.PricePoint) []domain.PricePoint {
	lo, hi := 0, len(series)
	for lo < hi {
		mid := (lo + hi) / 2
		if series[mid].Timestamp < p.Timestamp {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(series) && series[lo].Timestamp == p.Timestamp {
		series[lo] = p
		return series
	}
	series = append(series, domain.PricePoint{})
	copy(series[lo+1:], series[lo:])
	series[lo] = p
	return series
}
