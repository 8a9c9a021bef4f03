// Command alphapass recovers true transparency from two captures of the
// same subject, one on a pure white background and one on pure black.
//
//	alphapass [flags] <image_on_white> <image_on_black> <output.png>
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/setanarut/alphapass"
	"github.com/setanarut/alphapass/utils"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: alphapass [flags] <image_on_white> <image_on_black> <output.png>")
	fmt.Fprintln(os.Stderr, "\nGenerate two captures with identical content, one on pure white and one on pure black.")
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("alphapass: ")

	threshold := flag.Float64("threshold", 0.01, "minimum alpha for color recovery, in (0,1]")
	workers := flag.Int("workers", 0, "row bands processed concurrently (0 = all cores)")
	palettePath := flag.String("palette", "", "also write a palette sheet of the recovered foreground to this path")
	paletteSize := flag.Int("k", 6, "number of colors in the -palette sheet")
	kmeansMethod := flag.Bool("kmeans", false, "use kmeans instead of dominant-color for -palette")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 3 {
		usage()
		os.Exit(2)
	}
	whitePath := flag.Arg(0)
	blackPath := flag.Arg(1)
	outPath := flag.Arg(2)

	for _, path := range []string{whitePath, blackPath} {
		if _, err := os.Stat(path); err != nil {
			log.Fatalf("file not found: %s", path)
		}
	}

	white, err := utils.ReadImage(whitePath)
	if err != nil {
		log.Fatal(err)
	}
	black, err := utils.ReadImage(blackPath)
	if err != nil {
		log.Fatal(err)
	}

	for _, check := range alphapass.VerifyCaptures(white, black) {
		if check.Suspicious() {
			log.Printf("warning: %s border is not %s (dominant %s, distance %.3f); was it rendered on the right background?",
				check.Name, check.Want.Hex(), check.Dominant.Hex(), check.Distance)
		}
	}

	opt := alphapass.DefaultOptions()
	opt.Threshold = *threshold
	opt.Workers = *workers

	out, err := alphapass.Extract(white, black, opt)
	if err != nil {
		log.Fatal(err)
	}
	log.Println(alphapass.CollectStats(out))

	if err := utils.SaveImage(out, outPath); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s", outPath)

	if *palettePath != "" {
		method := utils.PaletteMethodDominantColor
		if *kmeansMethod {
			method = utils.PaletteMethodKMeans
		}
		palette := utils.ExtractPalette(out, *paletteSize, method)
		if len(palette) == 0 {
			log.Fatal("palette: recovered image has no visible pixels")
		}
		utils.SortPaletteByBrightness(palette)
		if err := utils.SavePalette(palette, 64, *palettePath); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s (%s, %d colors)", *palettePath, method, len(palette))
	}
}
