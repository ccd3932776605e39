package chart

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"pricechart/internal/domain"
)

// Default style parameters.
const (
	DefaultLineColor      = "#16c784"
	DefaultGridColor      = "#2b2f36"
	DefaultCrosshairColor = "#9aa0a6"
)

// Fixed marker colors; Buy and Sell are always drawn in these.
var (
	buyMarkerColor  = color.NRGBA{R: 0x16, G: 0xc7, B: 0x84, A: 0xff}
	sellMarkerColor = color.NRGBA{R: 0xea, G: 0x39, B: 0x43, A: 0xff}
)

// Padding applied when axis labels are shown, leaving room on the right for
// the label column, and the smaller uniform inset used when they are hidden.
var (
	paddingWithLabels = domain.Padding{Top: 20, Right: 64, Bottom: 20, Left: 10}
	paddingPlain      = domain.Padding{Top: 8, Right: 8, Bottom: 8, Left: 8}
)

// Style holds the caller-supplied appearance parameters of a chart.
// Colors are hex strings; zero values fall back to the defaults above.
type Style struct {
	LineColor      string
	GridColor      string
	CrosshairColor string
	ShowGrid       bool
	ShowAxisLabels bool
}

// styleColors is the parsed form of Style used during rendering.
type styleColors struct {
	line      color.NRGBA
	grid      color.NRGBA
	crosshair color.NRGBA
}

// Padding returns the inset configuration selected by the axis-labels flag.
func (s Style) Padding() domain.Padding {
	if s.ShowAxisLabels {
		return paddingWithLabels
	}
	return paddingPlain
}

// parse resolves the hex color parameters, applying defaults for empty ones.
func (s Style) parse() (styleColors, error) {
	var c styleColors
	var err error
	if c.line, err = ParseHexColor(orDefault(s.LineColor, DefaultLineColor)); err != nil {
		return c, fmt.Errorf("line color: %w", err)
	}
	if c.grid, err = ParseHexColor(orDefault(s.GridColor, DefaultGridColor)); err != nil {
		return c, fmt.Errorf("grid color: %w", err)
	}
	if c.crosshair, err = ParseHexColor(orDefault(s.CrosshairColor, DefaultCrosshairColor)); err != nil {
		return c, fmt.Errorf("crosshair color: %w", err)
	}
	return c, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// ParseHexColor parses a "#rrggbb" hex string into an opaque NRGBA color.
func ParseHexColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// withAlpha returns the color with its alpha channel replaced.
func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
