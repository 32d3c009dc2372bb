// Test image generator for the banded stress image used when checking
// dominant colour extraction by hand.
//
//	go run testdata/generate_test_image.go
package main

import (
	"image"
	"image/color"
	"image/png"
	"log"
	"math/rand"
	"os"
)

func main() {
	// Eight horizontal bands; band i is grey 32*i plus up to 7 units of
	// per-channel noise.
	const (
		width      = 400
		bandHeight = 50
		bands      = 8
	)
	img := image.NewNRGBA(image.Rect(0, 0, width, bandHeight*bands))
	rng := rand.New(rand.NewSource(1))

	for band := range bands {
		base := uint8(32 * band)
		for y := band * bandHeight; y < (band+1)*bandHeight; y++ {
			for x := range width {
				img.SetNRGBA(x, y, color.NRGBA{
					R: base + uint8(rng.Intn(8)),
					G: base + uint8(rng.Intn(8)),
					B: base + uint8(rng.Intn(8)),
					A: 255,
				})
			}
		}
	}

	file, err := os.Create("testdata/bands.png")
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		log.Fatal(err)
	}
}
