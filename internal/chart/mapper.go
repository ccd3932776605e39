package chart

import (
	"math"

	"pricechart/internal/domain"
)

// minAxisRange guards the price projection against a degenerate axis.
const minAxisRange = 1e-9

// Mapper projects data coordinates (index, price) into pixel coordinates for
// the current viewport, padding, and axis bounds. It is a pure value: all
// methods are side-effect free.
type Mapper struct {
	Viewport domain.Viewport
	Padding  domain.Padding
	AxisMin  float64
	AxisMax  float64
}

// ChartWidth is the horizontal extent of the plot area in pixels.
func (m Mapper) ChartWidth() float64 {
	return m.Viewport.Width - m.Padding.Left - m.Padding.Right
}

// ChartHeight is the vertical extent of the plot area in pixels.
func (m Mapper) ChartHeight() float64 {
	return m.Viewport.Height - m.Padding.Top - m.Padding.Bottom
}

// PointSpacing is the fixed pixel distance between consecutive data indices.
// It is zero for series with fewer than two points.
func (m Mapper) PointSpacing(n int) float64 {
	if n <= 1 {
		return 0
	}
	return m.ChartWidth() / float64(n-1)
}

// IndexToX maps a data index in [0, n-1] to its pixel X coordinate.
func (m Mapper) IndexToX(index, n int) float64 {
	return m.Padding.Left + float64(index)*m.PointSpacing(n)
}

// PriceToY maps a price to its pixel Y coordinate. Y is inverted relative to
// price: a higher price maps to a smaller Y, higher on screen.
func (m Mapper) PriceToY(price float64) float64 {
	axisRange := m.AxisMax - m.AxisMin
	if axisRange < minAxisRange {
		axisRange = minAxisRange
	}
	h := m.ChartHeight()
	return m.Padding.Top + h - (price-m.AxisMin)*(h/axisRange)
}

// NearestIndex maps a pixel X coordinate to the closest data index by
// rounding the offset from the left padding over the point spacing, clamped
// to the valid index range. For sparse series this yields wide per-point
// bands; that behavior is intentional and must not change.
func (m Mapper) NearestIndex(x float64, n int) int {
	if n <= 0 {
		return -1
	}
	spacing := m.PointSpacing(n)
	if spacing <= 0 {
		return 0
	}
	idx := int(math.Round((x - m.Padding.Left) / spacing))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}
