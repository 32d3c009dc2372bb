package colour

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Swatch is one palette entry: an observed image colour and the number of
// pixels in the cluster it represents.
type Swatch struct {
	Colour RGB
	Weight int
}

// Palette is an ordered list of swatches extracted from an image.
type Palette struct {
	Swatches []Swatch
	// Total is the number of opaque pixels in the source image.
	Total int
}

// NewPalette creates a new Palette.
func NewPalette(swatches []Swatch, total int) *Palette {
	return &Palette{Swatches: swatches, Total: total}
}

// Len returns the number of colors in the palette.
func (p *Palette) Len() int {
	return len(p.Swatches)
}

// Hex returns the palette colours as "#rrggbb" strings.
func (p *Palette) Hex() []string {
	out := make([]string, len(p.Swatches))
	for i, s := range p.Swatches {
		out[i] = s.Colour.Hex()
	}
	return out
}

// Colours returns the palette colours.
func (p *Palette) Colours() []RGB {
	out := make([]RGB, len(p.Swatches))
	for i, s := range p.Swatches {
		out[i] = s.Colour
	}
	return out
}

// Weights returns the pixel weights, parallel to Hex and Colours.
func (p *Palette) Weights() []int {
	out := make([]int, len(p.Swatches))
	for i, s := range p.Swatches {
		out[i] = s.Weight
	}
	return out
}

// Share returns the fraction of opaque pixels represented by swatch i.
func (p *Palette) Share(i int) float64 {
	if p.Total == 0 || i < 0 || i >= len(p.Swatches) {
		return 0
	}
	return float64(p.Swatches[i].Weight) / float64(p.Total)
}

// Dominant returns the swatch with the largest weight. The earliest swatch
// wins a tie.
func (p *Palette) Dominant() (Swatch, bool) {
	if len(p.Swatches) == 0 {
		return Swatch{}, false
	}
	best := p.Swatches[0]
	for _, s := range p.Swatches[1:] {
		if s.Weight > best.Weight {
			best = s
		}
	}
	return best, true
}

// SortedByWeight returns a copy of the palette ordered by descending weight.
func (p *Palette) SortedByWeight() *Palette {
	swatches := slices.Clone(p.Swatches)
	slices.SortStableFunc(swatches, func(a, b Swatch) int {
		return b.Weight - a.Weight
	})
	return &Palette{Swatches: swatches, Total: p.Total}
}

// SwatchJSON represents a swatch in JSON output format.
type SwatchJSON struct {
	Hex    string  `json:"hex"`
	RGB    RGB     `json:"rgb"`
	Weight int     `json:"weight"`
	Share  float64 `json:"share"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count   int          `json:"count"`
	Total   int          `json:"total"`
	Colours []SwatchJSON `json:"colours"`
}

// ToJSON converts the palette to JSON format.
func (p *Palette) ToJSON() ([]byte, error) {
	colours := make([]SwatchJSON, len(p.Swatches))
	for i, s := range p.Swatches {
		colours[i] = SwatchJSON{
			Hex:    s.Colour.Hex(),
			RGB:    s.Colour,
			Weight: s.Weight,
			Share:  p.Share(i),
		}
	}
	return json.MarshalIndent(PaletteJSON{
		Count:   len(p.Swatches),
		Total:   p.Total,
		Colours: colours,
	}, "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if len(p.Swatches) == 0 {
		return "Empty palette"
	}

	result := fmt.Sprintf("Palette with %d colours:\n", len(p.Swatches))
	for i, s := range p.Swatches {
		result += fmt.Sprintf("  %2d: %s (%s) %6.2f%%\n", i+1, s.Colour.Hex(), s.Colour.String(), p.Share(i)*100)
	}
	return result
}
