package chart

import (
	"context"
	"testing"
	"time"

	"pricechart/internal/domain"
	"pricechart/internal/ports"
)

type recordingHaptics struct {
	pulses []ports.HapticLevel
}

func (h *recordingHaptics) Pulse(_ context.Context, level ports.HapticLevel) {
	h.pulses = append(h.pulses, level)
}

// selectionRecorder remembers every invocation of the selection callback,
// including the nil "cleared" notifications.
type selectionRecorder struct {
	calls []*domain.PricePoint
}

func (r *selectionRecorder) onSelect(p *domain.PricePoint) {
	r.calls = append(r.calls, p)
}

func TestLongPressFiresSingleMediumPulse(t *testing.T) {
	haptics := &recordingHaptics{}
	c := NewController(ControllerConfig{Haptics: haptics})
	t0 := time.Now()

	c.Press(t0)
	if c.Poll(t0.Add(100 * time.Millisecond)) {
		t.Fatal("promoted before the long-press deadline")
	}
	if !c.Poll(t0.Add(DefaultLongPressDelay)) {
		t.Fatal("did not promote at the deadline")
	}
	if !c.State().IsLongPress {
		t.Error("IsLongPress not set after promotion")
	}
	// Further polls must not re-fire.
	if c.Poll(t0.Add(2 * DefaultLongPressDelay)) {
		t.Error("promoted twice")
	}
	if len(haptics.pulses) != 1 || haptics.pulses[0] != ports.HapticMedium {
		t.Errorf("pulses = %v, want exactly one medium pulse", haptics.pulses)
	}
}

func TestReleaseBeforeDeadlineCancelsLongPress(t *testing.T) {
	haptics := &recordingHaptics{}
	c := NewController(ControllerConfig{Haptics: haptics})
	t0 := time.Now()

	c.Press(t0)
	c.Release()
	if c.Poll(t0.Add(time.Second)) {
		t.Error("promoted after release")
	}
	if len(haptics.pulses) != 0 {
		t.Errorf("pulses = %v, want none", haptics.pulses)
	}
	if _, ok := c.Deadline(); ok {
		t.Error("deadline still armed after release")
	}
}

func TestDeadlineReportedWhileArmed(t *testing.T) {
	c := NewController(ControllerConfig{LongPressDelay: 200 * time.Millisecond})
	t0 := time.Now()
	c.Press(t0)
	deadline, ok := c.Deadline()
	if !ok {
		t.Fatal("no deadline while armed")
	}
	if want := t0.Add(200 * time.Millisecond); !deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", deadline, want)
	}
	c.Poll(deadline)
	if _, ok := c.Deadline(); ok {
		t.Error("deadline still reported after promotion")
	}
}

func TestMoveSnapsCrosshairToNearestPoint(t *testing.T) {
	rec := &selectionRecorder{}
	c := NewController(ControllerConfig{OnSelect: rec.onSelect})
	m := testMapper()
	pts := series(100, 150, 200, 120, 180)

	// Slightly right of index 2's pixel column.
	x := m.IndexToX(2, len(pts)) + 0.3*m.PointSpacing(len(pts))
	c.Move(x, m, pts)

	st := c.State()
	if st.SelectedIndex != 2 {
		t.Fatalf("SelectedIndex = %d, want 2", st.SelectedIndex)
	}
	if !almostEqual(st.CrosshairX, m.IndexToX(2, len(pts))) {
		t.Errorf("CrosshairX = %v, want snap to %v", st.CrosshairX, m.IndexToX(2, len(pts)))
	}
	if !almostEqual(st.CrosshairY, m.PriceToY(pts[2].Price)) {
		t.Errorf("CrosshairY = %v, want %v", st.CrosshairY, m.PriceToY(pts[2].Price))
	}
	if len(rec.calls) != 1 || rec.calls[0] == nil || rec.calls[0].Timestamp != pts[2].Timestamp {
		t.Errorf("selection callback calls = %v, want the snapped point", rec.calls)
	}
}

func TestMoveOnEmptySeriesClearsSilently(t *testing.T) {
	rec := &selectionRecorder{}
	c := NewController(ControllerConfig{OnSelect: rec.onSelect})
	c.Move(100, testMapper(), nil)
	if st := c.State(); st.SelectedIndex != -1 || st.CrosshairX != -1 {
		t.Errorf("state = %+v, want no selection", st)
	}
	if len(rec.calls) != 0 {
		t.Errorf("callback invoked %d times, want 0", len(rec.calls))
	}
}

func TestLeaveClearsAndNotifiesNil(t *testing.T) {
	rec := &selectionRecorder{}
	c := NewController(ControllerConfig{OnSelect: rec.onSelect})
	m := testMapper()
	pts := series(100, 150, 200)

	c.Press(time.Now())
	c.Move(m.IndexToX(1, len(pts)), m, pts)
	c.Leave()

	st := c.State()
	if st.SelectedIndex != -1 || st.CrosshairX != -1 || st.CrosshairY != -1 {
		t.Errorf("state after leave = %+v, want cleared", st)
	}
	if st.IsLongPress {
		t.Error("long-press flag survived leave")
	}
	if n := len(rec.calls); n != 2 || rec.calls[n-1] != nil {
		t.Errorf("callback calls = %v, want selection then nil", rec.calls)
	}
}

func TestLeaveWithoutSelectionStillNotifiesNil(t *testing.T) {
	rec := &selectionRecorder{}
	c := NewController(ControllerConfig{OnSelect: rec.onSelect})
	c.Leave()
	if len(rec.calls) != 1 || rec.calls[0] != nil {
		t.Errorf("callback calls = %v, want a single nil", rec.calls)
	}
}

func TestResetClearsWithoutCallback(t *testing.T) {
	rec := &selectionRecorder{}
	c := NewController(ControllerConfig{OnSelect: rec.onSelect})
	m := testMapper()
	pts := series(100, 150, 200)

	c.Press(time.Now())
	c.Move(m.IndexToX(0, len(pts)), m, pts)
	before := len(rec.calls)
	c.Reset()

	if st := c.State(); st != noSelection {
		t.Errorf("state after reset = %+v, want %+v", st, noSelection)
	}
	if len(rec.calls) != before {
		t.Error("reset notified the selection callback")
	}
}

func TestDefaultLongPressDelayApplied(t *testing.T) {
	c := NewController(ControllerConfig{})
	if c.longPressDelay != DefaultLongPressDelay {
		t.Errorf("longPressDelay = %v, want %v", c.longPressDelay, DefaultLongPressDelay)
	}
}
