package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pricechart/internal/chart"
)

// Config holds all application configuration.
type Config struct {
	// Market data
	Symbol          string
	IsTestnet       bool
	HistoryInterval string // Kline interval used for the history backfill
	HistoryLimit    int    // Number of points loaded and kept on screen
	// CirculatingSupply of the charted asset. When positive, the tooltip
	// shows the implied market cap (price * supply) for the hovered point.
	CirculatingSupply float64

	// Chart appearance
	LineColor      string
	GridColor      string
	CrosshairColor string
	ShowGrid       bool
	ShowAxisLabels bool

	// Interaction
	LongPressDelay time.Duration

	// Database
	DBPath          string
	RetentionPeriod time.Duration // Points older than this are pruned on start

	// Logging
	LogLevel   string
	LogConsole bool

	// Connection Settings
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string // Collect validation errors

	// Market data
	cfg.Symbol = getEnv("SYMBOL", "ETHUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)
	cfg.HistoryInterval = getEnv("HISTORY_INTERVAL", "1m")

	cfg.HistoryLimit = getEnvAsInt("HISTORY_LIMIT", 240)
	if cfg.HistoryLimit <= 1 {
		errs = append(errs, "HISTORY_LIMIT must be greater than 1")
	}

	cfg.CirculatingSupply = getEnvAsFloat("CIRCULATING_SUPPLY", 0)
	if cfg.CirculatingSupply < 0 {
		errs = append(errs, "CIRCULATING_SUPPLY cannot be negative")
	}

	// Chart appearance
	cfg.LineColor = getEnv("CHART_LINE_COLOR", chart.DefaultLineColor)
	cfg.GridColor = getEnv("CHART_GRID_COLOR", chart.DefaultGridColor)
	cfg.CrosshairColor = getEnv("CHART_CROSSHAIR_COLOR", chart.DefaultCrosshairColor)
	for _, hex := range []struct{ key, value string }{
		{"CHART_LINE_COLOR", cfg.LineColor},
		{"CHART_GRID_COLOR", cfg.GridColor},
		{"CHART_CROSSHAIR_COLOR", cfg.CrosshairColor},
	} {
		if _, err := chart.ParseHexColor(hex.value); err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s: %v", hex.key, err))
		}
	}
	cfg.ShowGrid = getEnvAsBool("CHART_SHOW_GRID", true)
	cfg.ShowAxisLabels = getEnvAsBool("CHART_SHOW_AXIS_LABELS", true)

	// Interaction
	longPressMs := getEnvAsInt("LONG_PRESS_DELAY_MS", 300)
	if longPressMs <= 0 {
		errs = append(errs, "LONG_PRESS_DELAY_MS must be positive")
	}
	cfg.LongPressDelay = time.Duration(longPressMs) * time.Millisecond

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/pricechart.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}
	retentionHours := getEnvAsInt("RETENTION_HOURS", 72)
	if retentionHours <= 0 {
		errs = append(errs, "RETENTION_HOURS must be positive")
	}
	cfg.RetentionPeriod = time.Duration(retentionHours) * time.Hour

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "INFO")
	cfg.LogConsole = getEnvAsBool("LOG_CONSOLE", true)

	// Connection Settings
	reconnectDelaySeconds := getEnvAsInt("RECONNECT_DELAY_SECONDS", 5)
	if reconnectDelaySeconds <= 0 {
		errs = append(errs, "RECONNECT_DELAY_SECONDS must be positive")
	}
	cfg.ReconnectDelay = time.Duration(reconnectDelaySeconds) * time.Second

	cfg.MaxReconnectAttempts = getEnvAsInt("MAX_RECONNECT_ATTEMPTS", 10)
	if cfg.MaxReconnectAttempts < 0 {
		errs = append(errs, "MAX_RECONNECT_ATTEMPTS cannot be negative")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// ChartStyle assembles the chart style from the loaded parameters.
func (c *Config) ChartStyle() chart.Style {
	return chart.Style{
		LineColor:      c.LineColor,
		GridColor:      c.GridColor,
		CrosshairColor: c.CrosshairColor,
		ShowGrid:       c.ShowGrid,
		ShowAxisLabels: c.ShowAxisLabels,
	}
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
