package domain

import "time"

// PricePoint is a single sample of a price series.
// A series is an ordered slice of PricePoints; insertion order is
// chronological order. The chart only reads points, it never mutates them.
type PricePoint struct {
	Timestamp int64   // Sample time, seconds since the Unix epoch
	Price     float64 // Price at that time
}

// Time returns the sample time as a time.Time in the local zone.
func (p PricePoint) Time() time.Time {
	return time.Unix(p.Timestamp, 0)
}

// SeriesBounds returns the minimum and maximum price of a series.
// ok is false for an empty series.
func SeriesBounds(points []PricePoint) (min, max float64, ok bool) {
	if len(points) == 0 {
		return 0, 0, false
	}
	min, max = points[0].Price, points[0].Price
	for _, p := range points[1:] {
		if p.Price < min {
			min = p.Price
		}
		if p.Price > max {
			max = p.Price
		}
	}
	return min, max, true
}
