// Command seedseries fills the local price database with a synthetic random
// walk so the chart can be developed and demoed without a feed connection.
// It can also export the generated series to CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"pricechart/config"
	"pricechart/internal/adapters/logger"
	"pricechart/internal/adapters/sqlite"
	"pricechart/internal/domain"
	"pricechart/internal/utils"
)

func main() {
	var (
		count      = flag.Int("count", 240, "number of points to generate")
		startPrice = flag.Float64("start", 2000, "starting price of the walk")
		volatility = flag.Float64("volatility", 0.002, "per-step fraction of price")
		stepSec    = flag.Int("step", 60, "seconds between points")
		seed       = flag.Int64("seed", 0, "random seed (0 = current time)")
		csvPath    = flag.String("csv", "", "also export the series to this CSV file")
	)
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:         cfg.LogLevel,
		ConsoleFormat: cfg.LogConsole,
	})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer repo.Close()

	// 4. Generate and persist the walk
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	points := randomWalk(*count, *startPrice, *volatility, time.Duration(*stepSec)*time.Second, *seed)

	ctx := context.Background()
	if err := repo.SavePoints(ctx, cfg.Symbol, points); err != nil {
		appLogger.Error(ctx, err, "Error saving generated points")
		log.Fatalf("Error saving generated points: %v", err)
	}
	appLogger.Info(ctx, "Seeded price series", map[string]interface{}{
		"symbol": cfg.Symbol,
		"points": len(points),
		"seed":   *seed,
	})

	if *csvPath != "" {
		if err := utils.WritePointsToCSV(points, *csvPath); err != nil {
			appLogger.Error(ctx, err, "Error writing CSV")
			log.Fatalf("Error writing CSV: %v", err)
		}
		appLogger.Info(ctx, "Exported series to CSV", map[string]interface{}{"filename": *csvPath})
	}

	fmt.Printf("Seeded %d points for %s into %s\n", len(points), cfg.Symbol, cfg.DBPath)
}

// randomWalk produces count points ending at the current time, stepping back
// one interval per point. Each step moves the price by a uniform fraction of
// itself within ±volatility.
func randomWalk(count int, startPrice, volatility float64, step time.Duration, seed int64) []domain.PricePoint {
	rng := rand.New(rand.NewSource(seed))
	points := make([]domain.PricePoint, count)
	start := time.Now().Add(-time.Duration(count-1) * step)

	price := startPrice
	for i := 0; i < count; i++ {
		points[i] = domain.PricePoint{
			Timestamp: start.Add(time.Duration(i) * step).Unix(),
			Price:     price,
		}
		price *= 1 + (rng.Float64()*2-1)*volatility
	}
	return points
}
