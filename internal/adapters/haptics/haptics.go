// Package haptics provides ports.Haptics implementations. Desktop targets
// have no vibration hardware, so the default adapter only logs the pulses it
// would have played; mobile ports plug in a platform driver instead.
package haptics

import (
	"context"

	"pricechart/internal/ports"
)

// LogHaptics reports each pulse to the logger. Useful on desktop builds and
// in development, where the pulse timing still matters but no hardware
// exists.
type LogHaptics struct {
	logger ports.Logger
}

// NewLogHaptics creates a logging haptics adapter.
func NewLogHaptics(logger ports.Logger) *LogHaptics {
	return &LogHaptics{logger: logger}
}

// Pulse logs the pulse instead of vibrating.
func (h *LogHaptics) Pulse(ctx context.Context, level ports.HapticLevel) {
	if h.logger == nil {
		return
	}
	h.logger.Debug(ctx, "haptic pulse", map[string]interface{}{
		"level":      level.String(),
		"durationMs": level.Duration(),
	})
}

// Noop discards all pulses.
type Noop struct{}

// Pulse does nothing.
func (Noop) Pulse(ctx context.Context, level ports.HapticLevel) {}
