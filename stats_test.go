package alphapass

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestCollectStats(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 0})
	img.SetNRGBA(1, 0, color.NRGBA{200, 10, 10, 255})
	img.SetNRGBA(0, 1, color.NRGBA{50, 50, 50, 128})
	img.SetNRGBA(1, 1, color.NRGBA{0, 0, 0, 0})

	s := CollectStats(img)
	if s.Opaque != 1 || s.Partial != 1 || s.Transparent != 2 {
		t.Errorf("counts = %d/%d/%d, want 1/1/2", s.Opaque, s.Partial, s.Transparent)
	}
	if s.Coverage != 0.5 {
		t.Errorf("Coverage = %v, want 0.5", s.Coverage)
	}
	wantMean := (1.0 + 128.0/255.0) / 4.0
	if math.Abs(s.MeanAlpha-wantMean) > 1e-12 {
		t.Errorf("MeanAlpha = %v, want %v", s.MeanAlpha, wantMean)
	}
	// Sorted alphas are [0, 0, 128/255, 1]; the empirical median is the
	// second sample.
	if s.MedianAlpha != 0 {
		t.Errorf("MedianAlpha = %v, want 0", s.MedianAlpha)
	}
}

func TestCollectStatsUniform(t *testing.T) {
	tests := []struct {
		name  string
		alpha uint8
		want  Stats
	}{
		{"all_opaque", 255, Stats{Opaque: 9, Coverage: 1, MeanAlpha: 1, MedianAlpha: 1}},
		{"all_transparent", 0, Stats{Transparent: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := solid(3, 3, color.NRGBA{10, 20, 30, tt.alpha})
			if got := CollectStats(img); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCollectStatsEmpty(t *testing.T) {
	if got := CollectStats(image.NewNRGBA(image.Rectangle{})); got != (Stats{}) {
		t.Errorf("got %+v, want zero Stats", got)
	}
}

func TestStatsString(t *testing.T) {
	s := Stats{Opaque: 3, Partial: 1, Transparent: 4, Coverage: 0.5, MeanAlpha: 0.25, MedianAlpha: 0.125}
	want := "opaque=3 partial=1 transparent=4 coverage=0.500 meanAlpha=0.250 medianAlpha=0.125"
	if got := s.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
