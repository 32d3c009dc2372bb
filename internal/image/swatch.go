package image

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"

	"github.com/jmylchreest/domcol/internal/colour"
)

// DefaultTileSize is the swatch tile edge in pixels.
const DefaultTileSize = 64

// RenderSwatch draws the palette as a horizontal strip of square tiles.
func RenderSwatch(p *colour.Palette, tile int) (*image.RGBA, error) {
	if p.Len() == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	if tile <= 0 {
		tile = DefaultTileSize
	}

	img := image.NewRGBA(image.Rect(0, 0, tile*p.Len(), tile))
	for i, s := range p.Swatches {
		c := s.Colour.Color()
		for y := range tile {
			for x := i * tile; x < (i+1)*tile; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return img, nil
}

// EncodeSwatch writes the swatch image to w as "png" or "webp".
func EncodeSwatch(w io.Writer, p *colour.Palette, tile int, format string) error {
	img, err := RenderSwatch(p, tile)
	if err != nil {
		return err
	}
	switch format {
	case "png":
		return png.Encode(w, img)
	case "webp":
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("unsupported swatch format: %s (supported: png, webp)", format)
	}
}

// WriteSwatch writes the swatch image to path, choosing the encoder from the
// file extension.
func WriteSwatch(path string, p *colour.Palette, tile int) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format != "png" && format != "webp" {
		return fmt.Errorf("unsupported swatch file extension: %q (supported: .png, .webp)", filepath.Ext(path))
	}

	f, err := os.Create(path) // #nosec G304 - User-specified output path
	if err != nil {
		return fmt.Errorf("failed to create swatch file: %w", err)
	}
	if err := EncodeSwatch(f, p, tile, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode swatch: %w", err)
	}
	return f.Close()
}
