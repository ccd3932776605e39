package chart

import (
	"math"

	"pricechart/internal/domain"
)

const (
	// axisPadFraction widens the target bounds beyond the data range so the
	// line never touches the plot edge.
	axisPadFraction = 0.1
	// axisSmoothing is the fraction of the remaining distance covered per
	// frame while easing toward the target bounds.
	axisSmoothing = 0.15
	// axisTolerance halts the animation once both bounds are this close to
	// their targets.
	axisTolerance = 1e-4
	// axisZeroEpsilon pads an all-zero series, where a relative pad would
	// collapse to nothing.
	axisZeroEpsilon = 1e-6
)

// AxisAnimator owns the vertical axis bounds and eases them toward a target
// range whenever the visible data changes. Min/Max are the currently
// rendered, possibly mid-transition bounds.
type AxisAnimator struct {
	Min float64
	Max float64

	targetMin   float64
	targetMax   float64
	initialized bool
}

// Retarget recomputes the target bounds from the visible series. The first
// call snaps the live bounds directly to the target; later calls animate.
// An empty series leaves the bounds untouched.
func (a *AxisAnimator) Retarget(points []domain.PricePoint) {
	dataMin, dataMax, ok := domain.SeriesBounds(points)
	if !ok {
		return
	}
	a.targetMin, a.targetMax = padBounds(dataMin, dataMax)
	if !a.initialized {
		a.Min, a.Max = a.targetMin, a.targetMax
		a.initialized = true
	}
}

// padBounds widens a raw data range by axisPadFraction. A zero range pads by
// 10% of the value itself, or by a fixed epsilon when the value is zero.
func padBounds(dataMin, dataMax float64) (min, max float64) {
	r := dataMax - dataMin
	if r > 0 {
		return dataMin - axisPadFraction*r, dataMax + axisPadFraction*r
	}
	pad := math.Abs(dataMin) * axisPadFraction
	if pad == 0 {
		pad = axisZeroEpsilon
	}
	return dataMin - pad, dataMax + pad
}

// Step advances the live bounds one smoothing step toward the targets.
// Within tolerance the bounds snap exactly so the animation terminates.
func (a *AxisAnimator) Step() {
	if !a.initialized {
		return
	}
	a.Min += (a.targetMin - a.Min) * axisSmoothing
	a.Max += (a.targetMax - a.Max) * axisSmoothing
	if math.Abs(a.Min-a.targetMin) <= axisTolerance {
		a.Min = a.targetMin
	}
	if math.Abs(a.Max-a.targetMax) <= axisTolerance {
		a.Max = a.targetMax
	}
}

// Converged reports whether both bounds have reached their targets; no
// further frames need to be scheduled once it returns true.
func (a *AxisAnimator) Converged() bool {
	if !a.initialized {
		return true
	}
	return math.Abs(a.Min-a.targetMin) <= axisTolerance &&
		math.Abs(a.Max-a.targetMax) <= axisTolerance
}
