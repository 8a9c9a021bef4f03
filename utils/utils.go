// Package utils holds the I/O collaborators around the extraction core:
// image decoding/encoding and palette helpers for inspecting the recovered
// foreground.
package utils

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"slices"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeError reports an input image that could not be opened or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ReadImage decodes an image file. PNG, JPEG, GIF, WebP, BMP and TIFF are
// supported; background captures usually arrive as WebP or PNG.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// SaveImage writes img as PNG. PNG is the one common format that keeps an
// 8-bit alpha channel bit-exact.
func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// ExtractPalette picks k representative colors from the pixels of img that
// carry alpha. On a recovered image the transparent region is placeholder
// black, so fully transparent pixels are never sampled.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	switch method {
	case PaletteMethodKMeans:
		return ExtractKMeansPalette(img, k)
	default:
		return ExtractDominantPalette(img, k)
	}
}

// maxPaletteSamples caps how many pixels palette extraction looks at so it
// stays tractable on large captures.
const maxPaletteSamples = 12000

// opaqueSamples copies up to maxPaletteSamples pixels with nonzero alpha
// into a strip image. Returns nil when the image has no such pixels.
func opaqueSamples(img image.Image) image.Image {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	step := 1
	if width*height > maxPaletteSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxPaletteSamples))) + 1
	}

	var picked []color.RGBA
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			picked = append(picked, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	if len(picked) == 0 {
		return nil
	}

	strip := image.NewRGBA(image.Rect(0, 0, len(picked), 1))
	for i, c := range picked {
		strip.SetRGBA(i, 0, c)
	}
	return strip
}

func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	sample := opaqueSamples(img)
	if sample == nil {
		return nil
	}

	nCandidates := max(16, k*6)
	candidates := dominantcolor.FindWeight(sample, nCandidates)
	if len(candidates) == 0 {
		return nil
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: w})
	}
	return selectDiverse(weighted, k)
}

func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	sample := opaqueSamples(img)
	if sample == nil {
		return nil
	}

	b := sample.Bounds()
	dataset := make(clusters.Observations, 0, b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		r16, g16, b16, _ := sample.At(x, b.Min.Y).RGBA()
		dataset = append(dataset, clusters.Coordinates{
			float64(r16) / 65535.0,
			float64(g16) / 65535.0,
			float64(b16) / 65535.0,
		})
	}

	workK := min(max(k*3, k+2), len(dataset))
	if workK < 2 {
		// Too few samples to partition.
		return ExtractDominantPalette(img, k)
	}
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return ExtractDominantPalette(img, k)
	}

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		// Empty clusters have meaningless zero centers.
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{
			R: c.Center[0],
			G: c.Center[1],
			B: c.Center[2],
		}.Clamped()
		weighted = append(weighted, weightedColor{Col: col, Weight: float64(len(c.Observations))})
	}
	if len(weighted) == 0 {
		return ExtractDominantPalette(img, k)
	}
	return selectDiverse(weighted, k)
}

// selectDiverse greedily picks k colors, seeding with the heaviest
// candidate and then maximizing Lab-space distance to the picks so far,
// weight-biased so dominant tones still win ties.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	if k > len(cands) {
		k = len(cands)
	}

	labs := make([][3]float64, len(cands))
	maxW := 0.0
	for i, c := range cands {
		l, a, b := c.Col.Lab()
		labs[i] = [3]float64{l, a, b}
		if c.Weight > maxW {
			maxW = c.Weight
		}
	}
	if maxW <= 0 {
		maxW = 1.0
	}

	seed := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].Weight > cands[seed].Weight {
			seed = i
		}
	}
	pickedIdx := []int{seed}
	picked := make([]bool, len(cands))
	picked[seed] = true

	for len(pickedIdx) < k {
		bestIdx := -1
		bestScore := -1.0
		for i := range cands {
			if picked[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, p := range pickedIdx {
				d0 := labs[i][0] - labs[p][0]
				d1 := labs[i][1] - labs[p][1]
				d2 := labs[i][2] - labs[p][2]
				if d := d0*d0 + d1*d1 + d2*d2; d < minD2 {
					minD2 = d
				}
			}
			normW := cands[i].Weight / maxW
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(normW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		picked[bestIdx] = true
		pickedIdx = append(pickedIdx, bestIdx)
	}

	out := make([]colorful.Color, len(pickedIdx))
	for i, idx := range pickedIdx {
		out[i] = cands[idx].Col
	}
	return out
}

// SortPaletteByBrightness orders colors from darkest to brightest.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

// SavePalette renders the palette as a horizontal sheet of tiles.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	img := image.NewNRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		tile := color.NRGBA{
			R: uint8(max(0, min(255, c.R*255))),
			G: uint8(max(0, min(255, c.G*255))),
			B: uint8(max(0, min(255, c.B*255))),
			A: 255,
		}
		for y := 0; y < tileSize; y++ {
			for x := i * tileSize; x < (i+1)*tileSize; x++ {
				img.SetNRGBA(x, y, tile)
			}
		}
	}
	return SaveImage(img, filename)
}
