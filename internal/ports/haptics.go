package ports

import "context"

// HapticLevel is the intensity of a haptic pulse.
type HapticLevel int

const (
	HapticLight HapticLevel = iota
	HapticMedium
	HapticHeavy
)

// Duration returns the nominal vibration duration in milliseconds for the
// level. Higher levels vibrate longer.
func (l HapticLevel) Duration() int {
	switch l {
	case HapticLight:
		return 10
	case HapticMedium:
		return 20
	case HapticHeavy:
		return 40
	default:
		return 0
	}
}

// String returns the string representation of the HapticLevel.
func (l HapticLevel) String() string {
	switch l {
	case HapticLight:
		return "light"
	case HapticMedium:
		return "medium"
	case HapticHeavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// Haptics defines a best-effort haptic feedback device. Implementations must
// silently no-op on platforms without vibration support; Pulse never fails
// the caller.
type Haptics interface {
	Pulse(ctx context.Context, level HapticLevel)
}
