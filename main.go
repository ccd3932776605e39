package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"

	gioapp "gioui.org/app"

	"pricechart/config"
	"pricechart/internal/adapters/binanceclient"
	"pricechart/internal/adapters/haptics"
	"pricechart/internal/adapters/logger"
	"pricechart/internal/adapters/sqlite"
	"pricechart/internal/app"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:         cfg.LogLevel,
		ConsoleFormat: cfg.LogConsole,
	})
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err) // Also log to stderr
	}
	appLogger.Info(context.Background(), "Database repository initialized")

	// 4. Initialize Price Feed (Binance Adapter)
	feed, err := binanceclient.New(binanceclient.Config{
		UseTestnet:           cfg.IsTestnet,
		Logger:               appLogger,
		HistoryInterval:      cfg.HistoryInterval,
		ReconnectDelay:       cfg.ReconnectDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance feed")
		log.Fatalf("FATAL: Failed to initialize Binance feed: %v", err)
	}
	appLogger.Info(context.Background(), "Binance feed initialized")

	// 5. Initialize Application Service
	chartService, err := app.NewChartService(
		cfg,
		appLogger,
		feed, // Pass the concrete implementation, service expects the interface
		repo, // Pass the concrete implementation, service expects the interface
		haptics.NewLogHaptics(appLogger),
	)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize chart service")
		log.Fatalf("FATAL: Failed to initialize chart service: %v", err)
	}
	appLogger.Info(context.Background(), "Chart service initialized")

	// 6. Run the window loop in a goroutine; gio requires the main goroutine
	// for its own event processing.
	go func() {
		err := chartService.Run(context.Background())
		if closeErr := repo.Close(); closeErr != nil {
			appLogger.Error(context.Background(), closeErr, "Error closing database repository")
		}
		if err != nil {
			appLogger.Error(context.Background(), err, "Chart service exited with error")
			os.Exit(1)
		}
		appLogger.Info(context.Background(), "Application finished gracefully.")
		os.Exit(0)
	}()

	gioapp.Main()
}
