package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pricechart/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "pricechart-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

func points(start int64, prices ...float64) []domain.PricePoint {
	pts := make([]domain.PricePoint, len(prices))
	for i, p := range prices {
		pts[i] = domain.PricePoint{Timestamp: start + int64(i)*60, Price: p}
	}
	return pts
}

func TestRepository_SaveAndRecent(t *testing.T) {
	tests := []struct {
		name   string
		save   []domain.PricePoint
		limit  int
		want   []domain.PricePoint
		symbol string
	}{
		{
			name:   "round trip preserves order",
			symbol: "ETHUSDT",
			save:   points(1000, 2000, 2010, 1995),
			limit:  10,
			want:   points(1000, 2000, 2010, 1995),
		},
		{
			name:   "limit returns newest points oldest first",
			symbol: "ETHUSDT",
			save:   points(1000, 1, 2, 3, 4, 5),
			limit:  2,
			want:   points(1000+3*60, 4, 5),
		},
		{
			name:   "unknown symbol yields empty slice",
			symbol: "BTCUSDT",
			save:   nil,
			limit:  10,
			want:   []domain.PricePoint{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, cleanup := setupTestDB(t)
			defer cleanup()

			ctx := context.Background()
			if len(tt.save) > 0 {
				require.NoError(t, repo.SavePoints(ctx, "ETHUSDT", tt.save))
			}

			got, err := repo.RecentBySymbol(ctx, tt.symbol, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepository_SavePointsIgnoresDuplicates(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	batch := points(1000, 2000, 2010)
	require.NoError(t, repo.SavePoints(ctx, "ETHUSDT", batch))

	// Replaying an overlapping batch must not error or duplicate rows. The
	// original price wins for a repeated (symbol, timestamp).
	overlap := []domain.PricePoint{
		{Timestamp: 1060, Price: 9999},
		{Timestamp: 1120, Price: 2020},
	}
	require.NoError(t, repo.SavePoints(ctx, "ETHUSDT", overlap))

	got, err := repo.RecentBySymbol(ctx, "ETHUSDT", 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.PricePoint{
		{Timestamp: 1000, Price: 2000},
		{Timestamp: 1060, Price: 2010},
		{Timestamp: 1120, Price: 2020},
	}, got)
}

func TestRepository_SavePointsEmptyBatch(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SavePoints(context.Background(), "ETHUSDT", nil))
}

func TestRepository_SymbolsAreIsolated(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, repo.SavePoints(ctx, "ETHUSDT", points(1000, 2000)))
	require.NoError(t, repo.SavePoints(ctx, "BTCUSDT", points(1000, 40000)))

	got, err := repo.RecentBySymbol(ctx, "ETHUSDT", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2000.0, got[0].Price)
}

func TestRepository_PruneBefore(t *testing.T) {
	tests := []struct {
		name        string
		cutoff      time.Time
		wantRemoved int64
		wantLeft    int
	}{
		{
			name:        "removes older points",
			cutoff:      time.Unix(1120, 0),
			wantRemoved: 2,
			wantLeft:    1,
		},
		{
			name:        "nothing older than cutoff",
			cutoff:      time.Unix(500, 0),
			wantRemoved: 0,
			wantLeft:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, cleanup := setupTestDB(t)
			defer cleanup()

			ctx := context.Background()
			require.NoError(t, repo.SavePoints(ctx, "ETHUSDT", points(1000, 1, 2, 3)))

			removed, err := repo.PruneBefore(ctx, "ETHUSDT", tt.cutoff)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRemoved, removed)

			left, err := repo.RecentBySymbol(ctx, "ETHUSDT", 10)
			require.NoError(t, err)
			assert.Len(t, left, tt.wantLeft)
		})
	}
}
