package alphapass

import (
	"fmt"
	"image"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the alpha channel of a recovered image.
type Stats struct {
	Opaque      int     // pixels with alpha 255
	Partial     int     // pixels with alpha in (0,255)
	Transparent int     // pixels with alpha 0
	Coverage    float64 // fraction of pixels with nonzero alpha
	MeanAlpha   float64 // mean normalized alpha over all pixels
	MedianAlpha float64
}

// CollectStats reads the alpha channel of img. Useful as a sanity report:
// a coverage near 1.0 usually means the captures did not share a
// transparent region, a coverage near 0 means they barely overlap.
func CollectStats(img *image.NRGBA) Stats {
	var s Stats
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	n := w * h
	if n == 0 {
		return s
	}

	alphas := make([]float64, 0, n)
	for y := 0; y < h; y++ {
		rowOff := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < w; x++ {
			a := img.Pix[rowOff+x*4+3]
			switch a {
			case 0:
				s.Transparent++
			case 255:
				s.Opaque++
			default:
				s.Partial++
			}
			alphas = append(alphas, float64(a)/255)
		}
	}

	s.Coverage = float64(s.Opaque+s.Partial) / float64(n)
	s.MeanAlpha = stat.Mean(alphas, nil)
	slices.Sort(alphas)
	s.MedianAlpha = stat.Quantile(0.5, stat.Empirical, alphas, nil)
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("opaque=%d partial=%d transparent=%d coverage=%.3f meanAlpha=%.3f medianAlpha=%.3f",
		s.Opaque, s.Partial, s.Transparent, s.Coverage, s.MeanAlpha, s.MedianAlpha)
}
