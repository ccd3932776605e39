package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pricechart/internal/domain"
	"pricechart/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	defaultHistoryInterval = "1m"
)

// Client implements the ports.PriceFeed interface using the go-binance
// library. Only public market-data endpoints are used; no API keys are
// required.
type Client struct {
	futuresClient        *futures.Client
	logger               ports.Logger
	historyInterval      string
	reconnectDelay       time.Duration
	maxReconnectAttempts int
}

// Config holds configuration specific to the Binance feed adapter.
type Config struct {
	UseTestnet           bool
	Logger               ports.Logger
	HistoryInterval      string        // Kline interval for history, e.g. "1m"
	ReconnectDelay       time.Duration // Reconnect delay (e.g., 1 * time.Second)
	MaxReconnectAttempts int           // Max attempts before giving up
}

// New creates a new Binance feed adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client: %w", ports.ErrConfigurationError)
	}

	client := futures.NewClient("", "")

	// Set BaseURL directly instead of using global futures.UseTestnet
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
		cfg.Logger.Info(context.Background(), "Binance feed configured for Testnet", map[string]interface{}{"baseURL": client.BaseURL})
	} else {
		client.BaseURL = baseURLProduction
		cfg.Logger.Info(context.Background(), "Binance feed configured for Production", map[string]interface{}{"baseURL": client.BaseURL})
	}

	interval := cfg.HistoryInterval
	if interval == "" {
		interval = defaultHistoryInterval
	}
	reconnectDelay := cfg.ReconnectDelay
	if reconnectDelay <= 0 {
		reconnectDelay = 1 * time.Second
	}
	maxAttempts := cfg.MaxReconnectAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	return &Client{
		futuresClient:        client,
		logger:               cfg.Logger,
		historyInterval:      interval,
		reconnectDelay:       reconnectDelay,
		maxReconnectAttempts: maxAttempts,
	}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		// Map specific Binance error codes to custom errors
		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp for this request is outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022: // Signature for this request is not valid
			mappedErr = ports.ErrAuthenticationFailed
		case -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1121, -1125, -1127, -1128, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		case -2014, -2015: // API-key format invalid / invalid key, IP, or permissions
			mappedErr = ports.ErrAuthenticationFailed
		default:
			// General classification for unmapped API errors
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		// Default for other errors (e.g., parsing errors within the adapter)
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// GetRecentPrices retrieves up to limit historical price points for a symbol,
// one per kline close, ordered oldest first.
func (c *Client) GetRecentPrices(ctx context.Context, symbol string, limit int) ([]domain.PricePoint, error) {
	op := "GetRecentPrices"
	binanceKlines, err := c.futuresClient.NewKlinesService().
		Symbol(symbol).
		Interval(c.historyInterval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	points := make([]domain.PricePoint, 0, len(binanceKlines))
	for _, bk := range binanceKlines {
		point, err := translateKline(bk)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("failed to translate historical kline: %w", err), op)
		}
		points = append(points, point)
	}

	return points, nil
}

// GetTickerPrice retrieves the last ticker price for a given symbol.
func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	op := "GetTickerPrice"
	tickers, err := c.futuresClient.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	if len(tickers) == 0 {
		err := fmt.Errorf("no ticker data returned for symbol %s", symbol)
		return 0, c.handleError(ctx, err, op)
	}

	price, err := strconv.ParseFloat(tickers[0].LastPrice, 64)
	if err != nil {
		parseErr := fmt.Errorf("could not parse price '%s': %w", tickers[0].LastPrice, err)
		return 0, c.handleError(ctx, parseErr, op)
	}
	return price, nil
}

// Ping checks the connectivity to the feed API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	err := c.futuresClient.NewPingService().Do(ctx)
	if err != nil {
		return c.handleError(ctx, fmt.Errorf("ping failed: %w", err), op)
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}

// StreamPrices starts a WebSocket aggregated-trade stream and reports each
// trade as a price point. The stream reconnects with exponential backoff
// until the context is cancelled, a stop signal arrives, or the attempt
// budget is exhausted.
func (c *Client) StreamPrices(ctx context.Context, symbol string, handler func(point domain.PricePoint), errHandler func(err error)) (doneCh chan struct{}, stopCh chan struct{}, err error) {
	op := "StreamPrices"
	wsCtx, cancelWs := context.WithCancel(ctx)

	// Wrapper for the domain handler to perform translation
	binanceHandler := func(event *futures.WsAggTradeEvent) {
		point, err := translateAggTrade(event)
		if err != nil {
			// Translation failures are logged, not surfaced: a single bad
			// event must not trigger reconnection.
			c.logger.Error(wsCtx, err, op+": Failed to translate WebSocket trade event")
			return
		}
		handler(point)
	}

	// Wrapper for the error handler to perform translation and logging
	binanceErrHandler := func(err error) {
		translatedErr := c.handleError(wsCtx, err, op+" WebSocket")
		c.logger.Warn(wsCtx, op+": WebSocket error reported", map[string]interface{}{"error": translatedErr})
		errHandler(translatedErr)
	}

	// Reconnection loop
	go func() {
		defer cancelWs()

		attempt := 0
		for {
			select {
			case <-wsCtx.Done():
				c.logger.Info(wsCtx, op+": Context cancelled, stopping connection attempts.", map[string]interface{}{"symbol": symbol})
				return
			default:
				c.logger.Info(wsCtx, op+": Attempting WebSocket connection...", map[string]interface{}{"symbol": symbol, "attempt": attempt + 1})
				innerDoneCh, innerStopCh, connectErr := futures.WsAggTradeServe(symbol, binanceHandler, binanceErrHandler)

				if connectErr != nil {
					c.handleError(wsCtx, connectErr, op+" connection attempt")
					attempt++
					if attempt >= c.maxReconnectAttempts {
						c.logger.Error(wsCtx, connectErr, op+": Max reconnection attempts exceeded, giving up.", map[string]interface{}{"symbol": symbol, "maxAttempts": c.maxReconnectAttempts})
						errHandler(fmt.Errorf("%s: %w: %w", op, ports.ErrFeedUnavailable, connectErr))
						return
					}

					actualDelay := backoffDelay(c.reconnectDelay, attempt)
					c.logger.Info(wsCtx, op+": Connection failed, retrying...", map[string]interface{}{"symbol": symbol, "attempt": attempt + 1, "delay": actualDelay.String()})

					select {
					case <-time.After(actualDelay):
						continue
					case <-wsCtx.Done():
						c.logger.Info(wsCtx, op+": Context cancelled during backoff.", map[string]interface{}{"symbol": symbol})
						return
					}
				}

				c.logger.Info(wsCtx, op+": WebSocket connection established.", map[string]interface{}{"symbol": symbol})
				attempt = 0

				select {
				case <-innerDoneCh:
					c.logger.Warn(wsCtx, op+": WebSocket connection closed unexpectedly. Reconnecting...", map[string]interface{}{"symbol": symbol})
					// Loop continues and attempts reconnection
				case <-wsCtx.Done():
					c.logger.Info(wsCtx, op+": Context cancelled, stopping WebSocket.", map[string]interface{}{"symbol": symbol})
					select {
					case innerStopCh <- struct{}{}:
						c.logger.Debug(wsCtx, op+": Stop signal sent to inner WebSocket.", map[string]interface{}{"symbol": symbol})
					default:
						c.logger.Warn(wsCtx, op+": Failed to send stop signal to inner WebSocket (already closed?).", map[string]interface{}{"symbol": symbol})
					}
					return
				}
			}
		}
	}()

	// doneCh closes when the reconnection loop exits (cancellation or max
	// attempts); stopCh lets the caller cancel the loop.
	doneCh = make(chan struct{})
	stopCh = make(chan struct{})

	go func() {
		select {
		case <-stopCh:
			c.logger.Info(ctx, op+": Received external stop signal, cancelling WebSocket context.", map[string]interface{}{"symbol": symbol})
			cancelWs()
		case <-wsCtx.Done():
			c.logger.Debug(ctx, op+": WebSocket context done, stop listener exiting.", map[string]interface{}{"symbol": symbol})
		}
	}()

	go func() {
		<-wsCtx.Done()
		c.logger.Info(ctx, op+": WebSocket context done, closing external done channel.", map[string]interface{}{"symbol": symbol})
		close(doneCh)
	}()

	return doneCh, stopCh, nil
}

// backoffDelay computes the wait before reconnect attempt n (1-based): the
// base delay doubled per attempt, plus a 10% margin of the result.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base * time.Duration(1<<uint(attempt-1))
	return delay + time.Duration(float64(delay)*0.1)
}

// --- Translation Helpers ---

func translateAggTrade(event *futures.WsAggTradeEvent) (domain.PricePoint, error) {
	if event == nil {
		return domain.PricePoint{}, errors.New("received nil trade event")
	}
	price, err := strconv.ParseFloat(event.Price, 64)
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("parsing trade price '%s': %w", event.Price, err)
	}
	return domain.PricePoint{
		Timestamp: event.TradeTime / 1000, // ms to seconds
		Price:     price,
	}, nil
}

func translateKline(bk *futures.Kline) (domain.PricePoint, error) {
	if bk == nil {
		return domain.PricePoint{}, errors.New("received nil historical kline")
	}
	cls, err := strconv.ParseFloat(bk.Close, 64)
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("parsing close price '%s': %w", bk.Close, err)
	}
	return domain.PricePoint{
		Timestamp: bk.CloseTime / 1000, // ms to seconds
		Price:     cls,
	}, nil
}
