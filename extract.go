// Package alphapass recovers true per-pixel transparency from two captures
// of the same subject: one rendered on a pure white background and one on a
// pure black background, with everything else held fixed.
//
// A fully opaque pixel looks identical on both backgrounds; a fully
// transparent pixel shows exactly the background, so the two observations
// differ by the white-to-black distance. Comparing the captures therefore
// solves for alpha in closed form, and dividing the black capture by alpha
// un-premultiplies the true foreground color.
package alphapass

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"
)

type Options struct {
	// Minimum alpha for color recovery. Pixels whose recovered alpha is at
	// or below this value emit black; above it, the black-capture channels
	// are divided by alpha. Dividing by a near-zero alpha is numerically
	// meaningless, so the valid range is (0,1].
	Threshold float64
	// Number of row bands processed concurrently.
	// Zero or negative uses GOMAXPROCS.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Threshold: 0.01,
		Workers:   0,
	}
}

// DimensionMismatchError reports captures whose sizes differ.
// The two-pass technique needs pixel-aligned inputs.
type DimensionMismatchError struct {
	White, Black image.Point
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: white capture is %dx%d, black capture is %dx%d",
		e.White.X, e.White.Y, e.Black.X, e.Black.Y)
}

// InvalidThresholdError reports a color-recovery threshold outside (0,1].
type InvalidThresholdError struct {
	Threshold float64
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("invalid threshold %v: must be in (0,1]", e.Threshold)
}

// bgDist is the RGB-space distance between pure white and pure black,
// sqrt(3*255^2).
var bgDist = math.Sqrt(3 * 255 * 255)

// Extract computes an image with a true alpha channel from a capture on
// pure white and a capture on pure black. Input alpha channels, if any,
// are ignored. The captures must be the same size.
//
// Per pixel: alpha = 1 - dist(white,black)/dist(pure white,pure black),
// clamped to [0,1]. When alpha exceeds opt.Threshold the foreground color
// is recovered as blackChannel/alpha (compositing over black contributes
// nothing, so the black capture holds the premultiplied color); otherwise
// the color is irrelevant and the pixel emits black.
func Extract(white, black image.Image, opt Options) (*image.NRGBA, error) {
	if opt.Threshold <= 0 || opt.Threshold > 1 {
		return nil, &InvalidThresholdError{Threshold: opt.Threshold}
	}
	ws := white.Bounds().Size()
	bs := black.Bounds().Size()
	if ws != bs {
		return nil, &DimensionMismatchError{White: ws, Black: bs}
	}

	w, h := ws.X, ws.Y
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out, nil
	}

	whitePix := flattenRGB(white)
	blackPix := flattenRGB(black)

	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > h {
		workers = h
	}

	// Each band owns a disjoint row range of out.Pix, so the only
	// synchronization needed is waiting for completion.
	var wg sync.WaitGroup
	wg.Add(workers)
	for band := 0; band < workers; band++ {
		y0 := band * h / workers
		y1 := (band + 1) * h / workers
		go func() {
			defer wg.Done()
			extractRows(out.Pix, whitePix, blackPix, w, y0, y1, opt.Threshold)
		}()
	}
	wg.Wait()

	return out, nil
}

// extractRows recovers rows [y0,y1) into the output pixel buffer.
func extractRows(out, whitePix, blackPix []uint8, w, y0, y1 int, threshold float64) {
	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			off := pixOffset(w, x, y)
			rb := blackPix[off]
			gb := blackPix[off+1]
			bb := blackPix[off+2]

			dr := float64(whitePix[off]) - float64(rb)
			dg := float64(whitePix[off+1]) - float64(gb)
			db := float64(whitePix[off+2]) - float64(bb)
			dist := math.Sqrt(dr*dr + dg*dg + db*db)

			alpha := 1 - dist/bgDist
			alpha = min(1, max(0, alpha))

			var r, g, b uint8
			if alpha > threshold {
				r = clampByte(math.Round(float64(rb) / alpha))
				g = clampByte(math.Round(float64(gb) / alpha))
				b = clampByte(math.Round(float64(bb) / alpha))
			}

			o := (y*w + x) * 4
			out[o] = r
			out[o+1] = g
			out[o+2] = b
			out[o+3] = uint8(math.Round(alpha * 255))
		}
	}
}

// flattenRGB copies the stored color channels of img into an interleaved
// RGB byte buffer. Source alpha is ignored: the NRGBA fast path reads the
// un-premultiplied channels directly, everything else goes through
// color.NRGBAModel.
func flattenRGB(img image.Image) []uint8 {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	pix := make([]uint8, w*h*3)

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			srcOff := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			row := src.Pix[srcOff : srcOff+w*4]
			for x := 0; x < w; x++ {
				off := pixOffset(w, x, y)
				pix[off] = row[x*4]
				pix[off+1] = row[x*4+1]
				pix[off+2] = row[x*4+2]
			}
		}
		return pix
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			off := pixOffset(w, x, y)
			pix[off] = c.R
			pix[off+1] = c.G
			pix[off+2] = c.B
		}
	}
	return pix
}

func pixOffset(w, x, y int) int {
	return (y*w + x) * 3
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
