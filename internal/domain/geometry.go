package domain

// Viewport is the drawable surface size in device-independent pixels.
// Both dimensions must be positive for any drawing to proceed.
type Viewport struct {
	Width  float64
	Height float64
}

// IsZero reports whether the viewport cannot be drawn into.
func (v Viewport) IsZero() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Padding is a four-sided inset between the viewport edge and the chart
// area. It is chosen once per render pass and is never animated.
type Padding struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}
