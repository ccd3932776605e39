package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"pricechart/internal/domain"
)

// WritePointsToCSV exports a price series with a header row. Timestamps are
// written in RFC3339 so the files diff cleanly.
func WritePointsToCSV(points []domain.PricePoint, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"timestamp", "price"})

	for _, p := range points {
		writer.Write([]string{
			p.Time().Format(time.RFC3339),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// ReadPointsFromCSV loads a price series written by WritePointsToCSV.
func ReadPointsFromCSV(filename string) ([]domain.PricePoint, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	points := make([]domain.PricePoint, 0, len(records)-1)
	for i, rec := range records[1:] { // Skip header
		if len(rec) != 2 {
			return nil, fmt.Errorf("row %d: expected 2 columns, got %d", i+2, len(rec))
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp %q: %w", i+2, rec[0], err)
		}
		price, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q: %w", i+2, rec[1], err)
		}
		points = append(points, domain.PricePoint{Timestamp: ts.Unix(), Price: price})
	}
	return points, nil
}
