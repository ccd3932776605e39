package chart

import (
	"image/color"
	"testing"
)

var fadeTestColor = color.NRGBA{R: 0x16, G: 0xc7, B: 0x84, A: 0xff}

func TestGradientCacheReusesTexture(t *testing.T) {
	var g gradientCache
	if _, ok := g.get(40, 30, fadeTestColor); !ok {
		t.Fatal("first get failed")
	}
	first := g.img
	if _, ok := g.get(40, 30, fadeTestColor); !ok {
		t.Fatal("second get failed")
	}
	if g.img != first {
		t.Error("matching key regenerated the texture")
	}
}

func TestGradientCacheRegeneratesOnKeyChange(t *testing.T) {
	var g gradientCache
	g.get(40, 30, fadeTestColor)
	first := g.img

	other := color.NRGBA{R: 0xea, G: 0x39, B: 0x43, A: 0xff}
	if _, ok := g.get(40, 30, other); !ok {
		t.Fatal("get with new color failed")
	}
	if g.img == first {
		t.Error("color change did not regenerate the texture")
	}

	second := g.img
	if _, ok := g.get(80, 30, other); !ok {
		t.Fatal("get with new size failed")
	}
	if g.img == second {
		t.Error("size change did not regenerate the texture")
	}
}

func TestGradientCacheRejectsEmptySurface(t *testing.T) {
	var g gradientCache
	if _, ok := g.get(0, 30, fadeTestColor); ok {
		t.Error("expected failure for zero width")
	}
	if _, ok := g.get(40, -1, fadeTestColor); ok {
		t.Error("expected failure for negative height")
	}
	if g.valid {
		t.Error("cache marked valid after failed generation")
	}
}

func TestGradientCacheRelease(t *testing.T) {
	var g gradientCache
	g.get(40, 30, fadeTestColor)
	g.release()
	if g.valid || g.img != nil {
		t.Error("release left the slot populated")
	}
	// Releasing an empty slot is a no-op.
	g.release()
	if _, ok := g.get(40, 30, fadeTestColor); !ok {
		t.Error("get after release failed")
	}
}

func TestRenderFadeAlphaRamp(t *testing.T) {
	img := renderFade(4, 60, fadeTestColor)
	top := img.NRGBAAt(0, 0)
	bottom := img.NRGBAAt(0, 59)
	if top.A != uint8(gradientAlphas[0]*255) {
		t.Errorf("top alpha = %d, want %d", top.A, uint8(gradientAlphas[0]*255))
	}
	if bottom.A != 0 {
		t.Errorf("bottom alpha = %d, want 0", bottom.A)
	}
	prev := top.A
	for y := 1; y < 60; y++ {
		a := img.NRGBAAt(0, y).A
		if a > prev {
			t.Fatalf("alpha increased at row %d: %d > %d", y, a, prev)
		}
		prev = a
	}
	if top.R != fadeTestColor.R || top.G != fadeTestColor.G || top.B != fadeTestColor.B {
		t.Errorf("fade tint = %v, want %v channels", top, fadeTestColor)
	}
}

func TestFadeAlphaAtStops(t *testing.T) {
	if got := fadeAlphaAt(0); got != gradientAlphas[0] {
		t.Errorf("fadeAlphaAt(0) = %v, want %v", got, gradientAlphas[0])
	}
	if got := fadeAlphaAt(1); got != 0 {
		t.Errorf("fadeAlphaAt(1) = %v, want 0", got)
	}
	// Exactly on the second stop.
	if got := fadeAlphaAt(0.2); !almostEqual(got, gradientAlphas[1]) {
		t.Errorf("fadeAlphaAt(0.2) = %v, want %v", got, gradientAlphas[1])
	}
	// Halfway between the first two stops.
	mid := (gradientAlphas[0] + gradientAlphas[1]) / 2
	if got := fadeAlphaAt(0.1); !almostEqual(got, mid) {
		t.Errorf("fadeAlphaAt(0.1) = %v, want %v", got, mid)
	}
}
