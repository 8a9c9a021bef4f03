package alphapass

import (
	"image/color"
	"testing"
)

func TestCheckBackground(t *testing.T) {
	red := color.NRGBA{200, 30, 30, 255}
	onWhite := solid(16, 16, color.NRGBA{255, 255, 255, 255})
	for y := 5; y < 11; y++ {
		for x := 5; x < 11; x++ {
			onWhite.SetNRGBA(x, y, red)
		}
	}

	check := CheckBackground(onWhite, White)
	if check.Suspicious() {
		t.Errorf("white-bordered capture flagged suspicious (distance %v)", check.Distance)
	}

	check = CheckBackground(onWhite, Black)
	if !check.Suspicious() {
		t.Errorf("white border accepted as black background (distance %v)", check.Distance)
	}
}

func TestVerifyCaptures(t *testing.T) {
	red := color.NRGBA{200, 30, 30, 255}
	onWhite := solid(16, 16, color.NRGBA{255, 255, 255, 255})
	onBlack := solid(16, 16, color.NRGBA{0, 0, 0, 255})
	for y := 5; y < 11; y++ {
		for x := 5; x < 11; x++ {
			onWhite.SetNRGBA(x, y, red)
			onBlack.SetNRGBA(x, y, red)
		}
	}

	checks := VerifyCaptures(onWhite, onBlack)
	if len(checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(checks))
	}
	if checks[0].Name != "white capture" || checks[1].Name != "black capture" {
		t.Errorf("check names = %q, %q", checks[0].Name, checks[1].Name)
	}
	for _, c := range checks {
		if c.Suspicious() {
			t.Errorf("%s flagged suspicious (dominant %v, distance %v)", c.Name, c.Dominant.Hex(), c.Distance)
		}
	}

	// Swapped captures: both borders sit a full background apart.
	for _, c := range VerifyCaptures(onBlack, onWhite) {
		if !c.Suspicious() {
			t.Errorf("%s not flagged after swapping captures (distance %v)", c.Name, c.Distance)
		}
	}
}

func TestBorderRingTinyImage(t *testing.T) {
	// Images too small for an inset ring are checked whole.
	img := solid(2, 2, color.NRGBA{255, 255, 255, 255})
	if check := CheckBackground(img, White); check.Suspicious() {
		t.Errorf("2x2 white image flagged suspicious (distance %v)", check.Distance)
	}
}
