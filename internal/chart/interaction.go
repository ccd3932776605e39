package chart

import (
	"context"
	"time"

	"pricechart/internal/domain"
	"pricechart/internal/ports"
)

// DefaultLongPressDelay is the hold duration after which a press becomes a
// long press.
const DefaultLongPressDelay = 300 * time.Millisecond

// InteractionState is the shared gesture state consumed by the scene while
// drawing the overlay layers. It is mutated exclusively by the Controller.
// Crosshair coordinates use -1 as the "none" sentinel; SelectedIndex uses -1.
type InteractionState struct {
	IsLongPress   bool
	CrosshairX    float64
	CrosshairY    float64
	SelectedIndex int
}

// noSelection is the reset value of InteractionState.
var noSelection = InteractionState{CrosshairX: -1, CrosshairY: -1, SelectedIndex: -1}

// Controller translates pointer events into crosshair position, selection,
// and long-press state. One gesture is tracked at a time; all methods are
// called from the UI event loop, never concurrently.
type Controller struct {
	longPressDelay time.Duration
	haptics        ports.Haptics
	logger         ports.Logger
	onSelect       func(point *domain.PricePoint)

	state    InteractionState
	pressed  bool
	deadline time.Time
}

// ControllerConfig carries the Controller dependencies.
type ControllerConfig struct {
	LongPressDelay time.Duration // Defaults to DefaultLongPressDelay
	Haptics        ports.Haptics
	Logger         ports.Logger
	OnSelect       func(point *domain.PricePoint) // Invoked with nil on leave
}

// NewController creates an interaction controller in the idle state.
func NewController(cfg ControllerConfig) *Controller {
	delay := cfg.LongPressDelay
	if delay <= 0 {
		delay = DefaultLongPressDelay
	}
	return &Controller{
		longPressDelay: delay,
		haptics:        cfg.Haptics,
		logger:         cfg.Logger,
		onSelect:       cfg.OnSelect,
		state:          noSelection,
	}
}

// State returns the current interaction state for the scene to read.
func (c *Controller) State() InteractionState {
	return c.state
}

// Press arms the long-press timer. The host must also capture the pointer so
// later events stay routed here.
func (c *Controller) Press(now time.Time) {
	c.pressed = true
	c.deadline = now.Add(c.longPressDelay)
}

// Deadline returns the pending long-press deadline, if one is armed, so the
// host can schedule a wake-up frame.
func (c *Controller) Deadline() (time.Time, bool) {
	if !c.pressed || c.state.IsLongPress {
		return time.Time{}, false
	}
	return c.deadline, true
}

// Poll promotes an armed press to a long press once its deadline has passed,
// triggering exactly one medium haptic pulse. It reports whether the state
// changed and a re-render is needed.
func (c *Controller) Poll(now time.Time) bool {
	if !c.pressed || c.state.IsLongPress || now.Before(c.deadline) {
		return false
	}
	c.state.IsLongPress = true
	if c.haptics != nil {
		c.haptics.Pulse(context.Background(), ports.HapticMedium)
	}
	if c.logger != nil {
		c.logger.Debug(context.Background(), "long press engaged",
			map[string]interface{}{"selectedIndex": c.state.SelectedIndex})
	}
	return true
}

// Move updates the crosshair and selection from a pointer position. The
// crosshair snaps to the nearest data point so the guides pass through it.
func (c *Controller) Move(x float64, m Mapper, series []domain.PricePoint) {
	idx := m.NearestIndex(x, len(series))
	if idx < 0 {
		c.clearSelection(false)
		return
	}
	point := series[idx]
	c.state.SelectedIndex = idx
	c.state.CrosshairX = m.IndexToX(idx, len(series))
	c.state.CrosshairY = m.PriceToY(point.Price)
	if c.onSelect != nil {
		c.onSelect(&point)
	}
}

// Release ends the gesture: the pending timer is cancelled and the
// long-press flag cleared. The selection stays until the pointer leaves.
func (c *Controller) Release() {
	c.pressed = false
	c.deadline = time.Time{}
	c.state.IsLongPress = false
}

// Leave resets the crosshair and selection to "none" and reports nil to the
// selection callback.
func (c *Controller) Leave() {
	c.Release()
	c.clearSelection(true)
}

// Reset clears all interaction state without notifying the callback. Called
// when the data set or viewport changes.
func (c *Controller) Reset() {
	c.pressed = false
	c.deadline = time.Time{}
	c.state = noSelection
}

func (c *Controller) clearSelection(notify bool) {
	c.state = InteractionState{
		IsLongPress:   c.state.IsLongPress,
		CrosshairX:    -1,
		CrosshairY:    -1,
		SelectedIndex: -1,
	}
	if notify && c.onSelect != nil {
		c.onSelect(nil)
	}
}
