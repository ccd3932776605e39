package chart

import (
	"image"
	"image/color"

	"gioui.org/op/paint"
)

// gradientAlphas are the opacity stops of the fade, top to bottom, at six
// evenly spaced rows.
var gradientAlphas = [6]float64{0.25, 0.19, 0.12, 0.06, 0.03, 0}

// gradientCache memoizes the fade texture keyed by (width, height, color).
// It is single-slot: at most one generation is alive at a time, and the
// previous raster is released before a new one is built.
type gradientCache struct {
	op     paint.ImageOp
	img    *image.NRGBA
	width  int
	height int
	key    color.NRGBA
	valid  bool
}

// get returns the cached texture when the key matches the previous request,
// otherwise synthesizes a new one. ok is false when no texture can be
// produced (non-positive size); the caller must skip the gradient layer for
// that frame.
func (g *gradientCache) get(width, height int, col color.NRGBA) (paint.ImageOp, bool) {
	if g.valid && g.width == width && g.height == height && g.key == col {
		return g.op, true
	}
	g.release()
	if width <= 0 || height <= 0 {
		return paint.ImageOp{}, false
	}
	g.img = renderFade(width, height, col)
	g.op = paint.NewImageOp(g.img)
	g.width, g.height, g.key = width, height, col
	g.valid = true
	return g.op, true
}

// release drops the current generation so its raster and upload can be
// collected. Safe to call when the slot is already empty.
func (g *gradientCache) release() {
	g.op = paint.ImageOp{}
	g.img = nil
	g.valid = false
}

// renderFade rasterizes a vertical fade of col into an offscreen image,
// interpolating alpha linearly between the six stops.
func renderFade(width, height int, col color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		var t float64
		if height > 1 {
			t = float64(y) / float64(height-1)
		}
		a := uint8(fadeAlphaAt(t) * 255)
		row := color.NRGBA{R: col.R, G: col.G, B: col.B, A: a}
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, row)
		}
	}
	return img
}

// fadeAlphaAt interpolates the stop table at position t in [0, 1].
func fadeAlphaAt(t float64) float64 {
	if t <= 0 {
		return gradientAlphas[0]
	}
	if t >= 1 {
		return gradientAlphas[len(gradientAlphas)-1]
	}
	pos := t * float64(len(gradientAlphas)-1)
	i := int(pos)
	frac := pos - float64(i)
	return gradientAlphas[i] + (gradientAlphas[i+1]-gradientAlphas[i])*frac
}
