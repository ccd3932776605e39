package utils

import (
	"os"
	"path/filepath"
	"testing"

	"pricechart/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadPoints(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "series.csv")

	points := []domain.PricePoint{
		{Timestamp: 1700000000, Price: 2010.5},
		{Timestamp: 1700000060, Price: 2011.25},
		{Timestamp: 1700000120, Price: 0.0000012345},
	}
	require.NoError(t, WritePointsToCSV(points, filename))

	got, err := ReadPointsFromCSV(filename)
	require.NoError(t, err)
	assert.Equal(t, points, got)
}

func TestReadPointsRejectsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(filename, []byte("timestamp,price\nnot-a-time,42\n"), 0644))

	_, err := ReadPointsFromCSV(filename)
	assert.Error(t, err)
}
