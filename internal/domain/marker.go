package domain

// MarkerKind identifies the kind of a chart marker.
type MarkerKind string

const (
	MarkerBuy  MarkerKind = "BUY"
	MarkerSell MarkerKind = "SELL"
)

// Marker annotates a single data point of a series, matched by exact
// timestamp. A marker whose timestamp does not appear in the current series
// is skipped silently.
type Marker struct {
	Timestamp int64      // Must equal a PricePoint.Timestamp to be drawn
	Price     float64    // Price at the annotated point
	Kind      MarkerKind // Buy or Sell
	Label     string     // Optional display label
}
