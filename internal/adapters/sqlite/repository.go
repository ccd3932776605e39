package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pricechart/internal/domain"
	"pricechart/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.PriceRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository: %w", ports.ErrConfigurationError)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/pricechart.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Data directory checked/created", map[string]interface{}{"path": filepath.Dir(dbPath)})

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// NOTE: This is a basic approach. A proper migration tool is recommended for production.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS price_points (
		symbol TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		price REAL NOT NULL,
		PRIMARY KEY (symbol, timestamp)
	);
	CREATE INDEX IF NOT EXISTS idx_price_points_symbol_timestamp ON price_points (symbol, timestamp);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- PriceRepository Implementation ---

// SavePoints persists a batch of price points for a symbol inside a single
// transaction. Points already stored for the same (symbol, timestamp) are
// ignored, so replays of overlapping history are harmless.
func (r *Repository) SavePoints(ctx context.Context, symbol string, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for symbol %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}

	const query = `INSERT OR IGNORE INTO price_points (symbol, timestamp, price) VALUES (?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert for symbol %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, symbol, p.Timestamp, p.Price); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert price point for symbol %s at %d: %w: %w", symbol, p.Timestamp, ports.ErrQueryFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price points for symbol %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Price points saved", map[string]interface{}{"symbol": symbol, "count": len(points)})
	return nil
}

// RecentBySymbol retrieves the most recent points for a symbol, up to a
// limit, ordered oldest first so the result can feed the chart directly.
func (r *Repository) RecentBySymbol(ctx context.Context, symbol string, limit int) ([]domain.PricePoint, error) {
	const query = `
	SELECT timestamp, price FROM (
		SELECT timestamp, price FROM price_points
		WHERE symbol = ? ORDER BY timestamp DESC LIMIT ?
	) ORDER BY timestamp ASC`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price points for symbol %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	points := make([]domain.PricePoint, 0, limit)
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price point during RecentBySymbol: %w", err)
		}
		points = append(points, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price point rows: %w", err)
	}
	return points, nil
}

// PruneBefore deletes points older than the cutoff and returns the number of
// rows removed.
func (r *Repository) PruneBefore(ctx context.Context, symbol string, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM price_points WHERE symbol = ? AND timestamp < ?`
	result, err := r.db.ExecContext(ctx, query, symbol, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune price points for symbol %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for prune of symbol %s: %w", symbol, err)
	}
	if removed > 0 {
		r.logger.Debug(ctx, "Pruned old price points", map[string]interface{}{"symbol": symbol, "removed": removed, "cutoff": cutoff})
	}
	return removed, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanPoint scans a row into a domain.PricePoint.
func scanPoint(s scanner) (domain.PricePoint, error) {
	var p domain.PricePoint
	if err := s.Scan(&p.Timestamp, &p.Price); err != nil {
		return domain.PricePoint{}, err
	}
	return p, nil
}
