package alphapass

import (
	"image"
	"image/color"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
)

// Expected capture backgrounds.
var (
	White = colorful.Color{R: 1, G: 1, B: 1}
	Black = colorful.Color{R: 0, G: 0, B: 0}
)

// Border colors farther than this from the expected background usually
// mean the capture was rendered on something other than pure white/black,
// or was recompressed lossily between renders.
const purityBound = 0.08

// BackgroundCheck reports how close a capture's border is to the
// background it was supposed to be rendered on.
type BackgroundCheck struct {
	Name     string
	Want     colorful.Color
	Dominant colorful.Color
	Distance float64 // RGB-space distance between Dominant and Want
}

func (c BackgroundCheck) Suspicious() bool {
	return c.Distance > purityBound
}

// CheckBackground finds the dominant color of the image's outermost pixel
// ring and measures its distance to the expected background color. A
// subject touching the image edge can raise the distance even for a clean
// capture, so treat the result as a diagnostic, not a verdict.
func CheckBackground(img image.Image, want colorful.Color) BackgroundCheck {
	dom := dominantcolor.Find(borderRing(img))
	col, _ := colorful.MakeColor(color.NRGBA{R: dom.R, G: dom.G, B: dom.B, A: 255})
	return BackgroundCheck{
		Want:     want,
		Dominant: col,
		Distance: col.DistanceRgb(want),
	}
}

// VerifyCaptures checks that the white capture's border is near pure white
// and the black capture's near pure black. Diagnostics only; extraction
// proceeds regardless.
func VerifyCaptures(white, black image.Image) []BackgroundCheck {
	wc := CheckBackground(white, White)
	wc.Name = "white capture"
	bc := CheckBackground(black, Black)
	bc.Name = "black capture"
	return []BackgroundCheck{wc, bc}
}

// borderRing copies the outermost pixel ring into a strip so the dominant
// color search only sees background-adjacent pixels.
func borderRing(img image.Image) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 2 || h <= 2 {
		return img
	}

	strip := image.NewRGBA(image.Rect(0, 0, 2*w+2*(h-2), 1))
	i := 0
	put := func(x, y int) {
		strip.Set(i, 0, img.At(x, y))
		i++
	}
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		put(x, bounds.Min.Y)
		put(x, bounds.Max.Y-1)
	}
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		put(bounds.Min.X, y)
		put(bounds.Max.X-1, y)
	}
	return strip
}
