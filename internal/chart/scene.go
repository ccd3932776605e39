package chart

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"gioui.org/x/stroke"

	"pricechart/internal/domain"
	"pricechart/internal/ports"
)

const (
	// yGridSteps horizontal bands give yGridSteps+1 grid lines and labels.
	yGridSteps = 5

	priceLineWidth   = 2
	currentDotRadius = 4

	markerHalfWidth = 5
	markerHeight    = 8
	markerGap       = 10

	crosshairDashOn  = 4
	crosshairDashOff = 4

	highlightOuterRadius = 12
	highlightInnerRadius = 4

	tooltipGap       = 12
	tooltipMargin    = 10
	tooltipPadding   = 8
	tooltipEdgeSlack = 30
)

// Layer names in stacking order. Each frame rebuilds the stack; a layer that
// cannot be produced (failed gradient, no selection) is simply absent.
const (
	layerGrid      = "grid"
	layerGradient  = "gradient"
	layerLine      = "line"
	layerMarkers   = "markers"
	layerLabels    = "labels"
	layerCrosshair = "crosshair"
	layerTooltip   = "tooltip"
	layerLoading   = "loading"

	layerPlaceholder = "placeholder"
)

// sceneLayer is one recorded draw layer. Add-order defines stacking: later
// layers composite on top of earlier ones.
type sceneLayer struct {
	name string
	call op.CallOp
}

// Config holds the chart dependencies and appearance parameters.
type Config struct {
	Style          Style
	Logger         ports.Logger
	Haptics        ports.Haptics
	LongPressDelay time.Duration
	// OnSelect is invoked with the hovered/touched point, or nil when the
	// pointer leaves the chart.
	OnSelect func(point *domain.PricePoint)
}

// Chart renders a price series into a layered gio op list and owns all
// per-instance mutable state: axis animation, gradient cache, and the
// interaction controller. All methods must be called from the UI event loop.
type Chart struct {
	style  Style
	colors styleColors
	logger ports.Logger

	axis *AxisAnimator
	grad *gradientCache
	ctrl *Controller

	series  []domain.PricePoint
	markers []domain.Marker

	refPrice float64
	refMcap  float64
	hasRef   bool
	loading  bool

	viewport domain.Viewport
	layers   []sceneLayer
	closed   bool
}

// New creates a chart instance. The style's hex colors are parsed once here;
// invalid colors fail construction rather than every frame.
func New(cfg Config) (*Chart, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for chart: %w", ports.ErrConfigurationError)
	}
	colors, err := cfg.Style.parse()
	if err != nil {
		return nil, fmt.Errorf("chart style: %w", err)
	}
	c := &Chart{
		style:  cfg.Style,
		colors: colors,
		logger: cfg.Logger,
		axis:   &AxisAnimator{},
		grad:   &gradientCache{},
	}
	c.ctrl = NewController(ControllerConfig{
		LongPressDelay: cfg.LongPressDelay,
		Haptics:        cfg.Haptics,
		Logger:         cfg.Logger,
		OnSelect:       cfg.OnSelect,
	})
	return c, nil
}

// SetSeries replaces the visible data set. Axis targets are recomputed and
// any in-flight gesture is reset.
func (c *Chart) SetSeries(points []domain.PricePoint) {
	if c.closed {
		return
	}
	c.series = points
	c.axis.Retarget(points)
	c.ctrl.Reset()
}

// SetMarkers replaces the marker annotations.
func (c *Chart) SetMarkers(markers []domain.Marker) {
	if c.closed {
		return
	}
	c.markers = markers
}

// SetReference supplies the current price and market cap used for the
// tooltip's implied market-cap line.
func (c *Chart) SetReference(currentPrice, currentMcap float64) {
	if c.closed {
		return
	}
	c.refPrice = currentPrice
	c.refMcap = currentMcap
	c.hasRef = currentPrice != 0 && currentMcap != 0
}

// SetLoading toggles the loading overlay.
func (c *Chart) SetLoading(loading bool) {
	if c.closed {
		return
	}
	c.loading = loading
}

// Close releases the gradient texture and disables further rendering.
// It is idempotent and safe to call before the first layout.
func (c *Chart) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.grad.release()
	c.ctrl.Reset()
	c.layers = nil
}

// LayerNames returns the names of the layers produced by the last render,
// in stacking order.
func (c *Chart) LayerNames() []string {
	names := make([]string, len(c.layers))
	for i, l := range c.layers {
		names[i] = l.name
	}
	return names
}

// Layout processes pending pointer events, renders one frame, and schedules
// follow-up frames while the axis animation or a long-press timer is live.
func (c *Chart) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	size := gtx.Constraints.Max
	if c.closed {
		return layout.Dimensions{Size: size}
	}

	vp := domain.Viewport{Width: float64(size.X), Height: float64(size.Y)}
	if vp != c.viewport {
		c.viewport = vp
		c.axis.Retarget(c.series)
		c.ctrl.Reset()
	}

	defer clip.Rect(image.Rectangle{Max: size}).Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, c)

	c.handleEvents(gtx)
	c.ctrl.Poll(gtx.Now)

	c.render(gtx, th)

	if !c.axis.Converged() {
		gtx.Execute(op.InvalidateCmd{})
	}
	if deadline, ok := c.ctrl.Deadline(); ok {
		gtx.Execute(op.InvalidateCmd{At: deadline})
	}
	return layout.Dimensions{Size: size}
}

func (c *Chart) handleEvents(gtx layout.Context) {
	m := c.mapper()
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: c,
			Kinds:  pointer.Press | pointer.Release | pointer.Move | pointer.Drag | pointer.Enter | pointer.Leave | pointer.Cancel,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			c.ctrl.Press(gtx.Now)
			c.ctrl.Move(float64(pe.Position.X), m, c.series)
			// Keep receiving move/release events even outside our bounds.
			gtx.Execute(pointer.GrabCmd{Tag: c, ID: pe.PointerID})
		case pointer.Move, pointer.Drag:
			c.ctrl.Move(float64(pe.Position.X), m, c.series)
		case pointer.Release:
			c.ctrl.Release()
		case pointer.Leave, pointer.Cancel:
			c.ctrl.Leave()
		}
	}
}

func (c *Chart) mapper() Mapper {
	return Mapper{
		Viewport: c.viewport,
		Padding:  c.style.Padding(),
		AxisMin:  c.axis.Min,
		AxisMax:  c.axis.Max,
	}
}

// render rebuilds and composites the layer stack for one frame. Optional
// layers are skipped on failure; the base price line always renders once the
// preconditions hold.
func (c *Chart) render(gtx layout.Context, th *material.Theme) {
	c.layers = c.layers[:0]
	if c.viewport.IsZero() {
		return
	}
	if len(c.series) == 0 {
		c.addLayer(gtx, layerPlaceholder, func(gtx layout.Context) {
			c.drawEmptyState(gtx, th)
		})
		if c.loading {
			c.addLayer(gtx, layerLoading, func(gtx layout.Context) {
				c.drawLoading(gtx, th)
			})
		}
		c.compose(gtx)
		return
	}

	c.axis.Step()
	m := c.mapper()
	st := c.ctrl.State()

	if c.style.ShowGrid {
		c.addLayer(gtx, layerGrid, func(gtx layout.Context) {
			c.drawGrid(gtx, m)
		})
	}
	if len(c.series) > 1 {
		texW := int(c.viewport.Width)
		texH := int(m.ChartHeight())
		if tex, ok := c.grad.get(texW, texH, c.colors.line); ok {
			c.addLayer(gtx, layerGradient, func(gtx layout.Context) {
				c.drawGradient(gtx, m, tex)
			})
		} else {
			c.logger.Debug(context.Background(), "gradient surface unavailable, skipping fade layer",
				map[string]interface{}{"width": texW, "height": texH})
		}
	}
	c.addLayer(gtx, layerLine, func(gtx layout.Context) {
		c.drawLine(gtx, m)
	})
	if placed := placeMarkers(c.series, c.markers); len(placed) > 0 {
		c.addLayer(gtx, layerMarkers, func(gtx layout.Context) {
			c.drawMarkers(gtx, m, placed)
		})
	}
	if c.style.ShowAxisLabels {
		c.addLayer(gtx, layerLabels, func(gtx layout.Context) {
			c.drawAxisLabels(gtx, th, m)
		})
	}
	if st.SelectedIndex >= 0 && st.SelectedIndex < len(c.series) {
		c.addLayer(gtx, layerCrosshair, func(gtx layout.Context) {
			c.drawCrosshair(gtx, m, st)
		})
		c.addLayer(gtx, layerTooltip, func(gtx layout.Context) {
			c.drawTooltip(gtx, th, st)
		})
	}
	if c.loading {
		c.addLayer(gtx, layerLoading, func(gtx layout.Context) {
			c.drawLoading(gtx, th)
		})
	}
	c.compose(gtx)
}

// addLayer records one layer into its own macro and appends it to the stack.
func (c *Chart) addLayer(gtx layout.Context, name string, draw func(gtx layout.Context)) {
	macro := op.Record(gtx.Ops)
	draw(gtx)
	c.layers = append(c.layers, sceneLayer{name: name, call: macro.Stop()})
}

// compose replays the recorded layers in order, submitting the frame.
func (c *Chart) compose(gtx layout.Context) {
	for _, l := range c.layers {
		l.call.Add(gtx.Ops)
	}
}

func (c *Chart) drawGrid(gtx layout.Context, m Mapper) {
	left := int(m.Padding.Left)
	right := int(m.Viewport.Width - m.Padding.Right)
	rowHeight := m.ChartHeight() / yGridSteps
	for i := 0; i <= yGridSteps; i++ {
		y := int(m.Padding.Top + float64(i)*rowHeight)
		paint.FillShape(gtx.Ops, c.colors.grid, clip.Rect{
			Min: image.Point{X: left, Y: y},
			Max: image.Point{X: right, Y: y + 1},
		}.Op())
	}
}

// drawGradient paints the fade texture over the chart area, masked by the
// closed silhouette traced under the price line. The texture itself is
// reused across frames; only the mask path is rebuilt.
func (c *Chart) drawGradient(gtx layout.Context, m Mapper, tex paint.ImageOp) {
	n := len(c.series)
	var p clip.Path
	p.Begin(gtx.Ops)
	for i, pt := range c.series {
		pos := f32.Pt(float32(m.IndexToX(i, n)), float32(m.PriceToY(pt.Price)))
		if i == 0 {
			p.MoveTo(pos)
		} else {
			p.LineTo(pos)
		}
	}
	bottom := float32(m.Padding.Top + m.ChartHeight())
	p.LineTo(f32.Pt(float32(m.IndexToX(n-1, n)), bottom))
	p.LineTo(f32.Pt(float32(m.IndexToX(0, n)), bottom))
	p.Close()

	mask := clip.Outline{Path: p.End()}.Op().Push(gtx.Ops)
	offset := op.Offset(image.Point{Y: int(m.Padding.Top)}).Push(gtx.Ops)
	tex.Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)
	offset.Pop()
	mask.Pop()
}

func (c *Chart) drawLine(gtx layout.Context, m Mapper) {
	n := len(c.series)
	if n > 1 {
		segments := make([]stroke.Segment, 0, n)
		for i, pt := range c.series {
			pos := f32.Pt(float32(m.IndexToX(i, n)), float32(m.PriceToY(pt.Price)))
			if i == 0 {
				segments = append(segments, stroke.MoveTo(pos))
			} else {
				segments = append(segments, stroke.LineTo(pos))
			}
		}
		shape := stroke.Stroke{
			Path:  stroke.Path{Segments: segments},
			Width: priceLineWidth,
			Cap:   stroke.RoundCap,
			Join:  stroke.RoundJoin,
		}.Op(gtx.Ops)
		paint.FillShape(gtx.Ops, c.colors.line, shape)
	}
	// Filled dot marking the current (last) price.
	lastX := m.IndexToX(n-1, n)
	lastY := m.PriceToY(c.series[n-1].Price)
	fillCircle(gtx.Ops, lastX, lastY, currentDotRadius, c.colors.line)
}

// placedMarker is a marker resolved to a data index of the current series.
type placedMarker struct {
	index int
	kind  domain.MarkerKind
}

// placeMarkers matches markers to series points by exact timestamp. Markers
// with no matching timestamp are dropped; they contribute no shapes.
func placeMarkers(series []domain.PricePoint, markers []domain.Marker) []placedMarker {
	if len(series) == 0 || len(markers) == 0 {
		return nil
	}
	byTS := make(map[int64]int, len(series))
	for i, pt := range series {
		byTS[pt.Timestamp] = i
	}
	placed := make([]placedMarker, 0, len(markers))
	for _, mk := range markers {
		idx, ok := byTS[mk.Timestamp]
		if !ok {
			continue
		}
		placed = append(placed, placedMarker{index: idx, kind: mk.Kind})
	}
	return placed
}

func (c *Chart) drawMarkers(gtx layout.Context, m Mapper, placed []placedMarker) {
	n := len(c.series)
	for _, mk := range placed {
		x := float32(m.IndexToX(mk.index, n))
		y := float32(m.PriceToY(c.series[mk.index].Price))
		var p clip.Path
		p.Begin(gtx.Ops)
		switch mk.kind {
		case domain.MarkerBuy:
			// Upward triangle, apex above the point.
			apex := y - markerGap - markerHeight
			base := y - markerGap
			p.MoveTo(f32.Pt(x, apex))
			p.LineTo(f32.Pt(x+markerHalfWidth, base))
			p.LineTo(f32.Pt(x-markerHalfWidth, base))
		case domain.MarkerSell:
			// Downward triangle, apex below the point.
			apex := y + markerGap + markerHeight
			base := y + markerGap
			p.MoveTo(f32.Pt(x, apex))
			p.LineTo(f32.Pt(x-markerHalfWidth, base))
			p.LineTo(f32.Pt(x+markerHalfWidth, base))
		}
		p.Close()
		col := buyMarkerColor
		if mk.kind == domain.MarkerSell {
			col = sellMarkerColor
		}
		paint.FillShape(gtx.Ops, col, clip.Outline{Path: p.End()}.Op())
	}
}

func (c *Chart) drawAxisLabels(gtx layout.Context, th *material.Theme, m Mapper) {
	axisRange := m.AxisMax - m.AxisMin
	priceStep := axisRange / yGridSteps
	rowHeight := m.ChartHeight() / yGridSteps
	for i := 0; i <= yGridSteps; i++ {
		price := m.AxisMax - float64(i)*priceStep
		y := m.Padding.Top + float64(i)*rowHeight
		c.drawLabel(gtx, th, FormatPrice(price), func(size image.Point) image.Point {
			// Right-aligned in the label column.
			return image.Point{
				X: int(m.Viewport.Width) - size.X - 4,
				Y: int(y) - size.Y/2,
			}
		})
	}
}

// drawLabel records a small caption, then places it at the position chosen
// from its measured size.
func (c *Chart) drawLabel(gtx layout.Context, th *material.Theme, txt string, at func(size image.Point) image.Point) {
	gtx.Constraints.Min = image.Point{}
	l := material.Caption(th, txt)
	l.Color = c.colors.crosshair
	l.MaxLines = 1
	dims, call := record(gtx, l.Layout)
	defer op.Offset(at(dims.Size)).Push(gtx.Ops).Pop()
	call.Add(gtx.Ops)
}

func (c *Chart) drawCrosshair(gtx layout.Context, m Mapper, st InteractionState) {
	x := float32(st.CrosshairX)
	y := float32(st.CrosshairY)
	top := float32(m.Padding.Top)
	bottom := float32(m.Padding.Top + m.ChartHeight())
	left := float32(m.Padding.Left)
	right := float32(m.Viewport.Width - m.Padding.Right)

	dashes := stroke.Dashes{Dashes: []float32{crosshairDashOn, crosshairDashOff}}
	vertical := stroke.Stroke{
		Path:   stroke.Path{Segments: []stroke.Segment{stroke.MoveTo(f32.Pt(x, top)), stroke.LineTo(f32.Pt(x, bottom))}},
		Width:  1,
		Dashes: dashes,
	}.Op(gtx.Ops)
	paint.FillShape(gtx.Ops, c.colors.crosshair, vertical)
	horizontal := stroke.Stroke{
		Path:   stroke.Path{Segments: []stroke.Segment{stroke.MoveTo(f32.Pt(left, y)), stroke.LineTo(f32.Pt(right, y))}},
		Width:  1,
		Dashes: dashes,
	}.Op(gtx.Ops)
	paint.FillShape(gtx.Ops, c.colors.crosshair, horizontal)

	if st.IsLongPress {
		fillCircle(gtx.Ops, st.CrosshairX, st.CrosshairY, highlightOuterRadius, withAlpha(c.colors.line, 64))
		fillCircle(gtx.Ops, st.CrosshairX, st.CrosshairY, highlightInnerRadius, c.colors.line)
	}
}

func (c *Chart) drawTooltip(gtx layout.Context, th *material.Theme, st InteractionState) {
	point := c.series[st.SelectedIndex]
	lines := []string{
		FormatTimestamp(point.Timestamp),
		FormatPrice(point.Price),
	}
	if c.hasRef {
		implied := c.refMcap * (point.Price / c.refPrice)
		lines = append(lines, "MC "+FormatMarketCap(implied))
	}

	gtx.Constraints.Min = image.Point{}
	calls := make([]op.CallOp, len(lines))
	sizes := make([]image.Point, len(lines))
	var boxW, boxH int
	for i, txt := range lines {
		l := material.Caption(th, txt)
		l.Color = color.NRGBA{R: 0xf2, G: 0xf4, B: 0xf7, A: 0xff}
		l.MaxLines = 1
		dims, call := record(gtx, l.Layout)
		calls[i], sizes[i] = call, dims.Size
		if dims.Size.X > boxW {
			boxW = dims.Size.X
		}
		boxH += dims.Size.Y
	}
	boxW += 2 * tooltipPadding
	boxH += 2 * tooltipPadding

	origin := tooltipOrigin(st.CrosshairX, st.CrosshairY, float64(boxW), float64(boxH), c.viewport)
	rect := image.Rectangle{
		Min: image.Point{X: int(origin.X), Y: int(origin.Y)},
		Max: image.Point{X: int(origin.X) + boxW, Y: int(origin.Y) + boxH},
	}
	paint.FillShape(gtx.Ops, color.NRGBA{R: 0x14, G: 0x16, B: 0x1a, A: 0xe6},
		clip.UniformRRect(rect, 6).Op(gtx.Ops))

	y := rect.Min.Y + tooltipPadding
	for i, call := range calls {
		offset := op.Offset(image.Point{X: rect.Min.X + tooltipPadding, Y: y}).Push(gtx.Ops)
		call.Add(gtx.Ops)
		offset.Pop()
		y += sizes[i].Y
	}
}

// tooltipOrigin places the tooltip box next to the crosshair. It flips to
// the left when drawing to the right would run into the viewport edge, and
// clamps vertically so the box stays fully visible with a fixed margin.
func tooltipOrigin(crossX, crossY, boxW, boxH float64, vp domain.Viewport) f32.Point {
	var x float64
	if crossX+boxW+tooltipEdgeSlack > vp.Width {
		x = crossX - tooltipGap - boxW
	} else {
		x = crossX + tooltipGap
	}
	y := crossY - boxH/2
	if y < tooltipMargin {
		y = tooltipMargin
	}
	if max := vp.Height - boxH - tooltipMargin; y > max {
		y = max
	}
	return f32.Pt(float32(x), float32(y))
}

func (c *Chart) drawEmptyState(gtx layout.Context, th *material.Theme) {
	c.drawLabel(gtx, th, "No data", func(size image.Point) image.Point {
		return image.Point{
			X: (int(c.viewport.Width) - size.X) / 2,
			Y: (int(c.viewport.Height) - size.Y) / 2,
		}
	})
}

func (c *Chart) drawLoading(gtx layout.Context, th *material.Theme) {
	size := image.Point{X: int(c.viewport.Width), Y: int(c.viewport.Height)}
	paint.FillShape(gtx.Ops, color.NRGBA{A: 0x8c}, clip.Rect{Max: size}.Op())

	loaderPx := gtx.Dp(unit.Dp(28))
	gtx.Constraints.Min = image.Point{X: loaderPx, Y: loaderPx}
	gtx.Constraints.Max = gtx.Constraints.Min
	defer op.Offset(image.Point{
		X: (size.X - loaderPx) / 2,
		Y: (size.Y - loaderPx) / 2,
	}).Push(gtx.Ops).Pop()
	material.Loader(th).Layout(gtx)
}

// record captures a widget's drawing into a macro for deferred playback.
func record(gtx layout.Context, w layout.Widget) (layout.Dimensions, op.CallOp) {
	macro := op.Record(gtx.Ops)
	dims := w(gtx)
	return dims, macro.Stop()
}

// fillCircle fills a dot of the given radius centered at (x, y).
func fillCircle(ops *op.Ops, x, y, r float64, col color.NRGBA) {
	bounds := image.Rectangle{
		Min: image.Point{X: int(x - r), Y: int(y - r)},
		Max: image.Point{X: int(x + r), Y: int(y + r)},
	}
	paint.FillShape(ops, col, clip.Ellipse(bounds).Op(ops))
}
