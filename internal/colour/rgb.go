// Package colour implements dominant colour extraction: a frequency histogram
// over observed colours, k-means clustering under a perceptual LAB metric,
// filtering against an ignore list, and snapping of cluster centres back onto
// colours that actually occur in the source image.
package colour

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrChannelRange is returned when a colour channel falls outside [0, 255].
var ErrChannelRange = errors.New("colour channel out of range")

// RGB is an opaque colour. It is comparable and used directly as a map key.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBFromInts builds an RGB from integer channels, rejecting values outside [0, 255].
func RGBFromInts(r, g, b int) (RGB, error) {
	for _, v := range [3]int{r, g, b} {
		if v < 0 || v > 255 {
			return RGB{}, fmt.Errorf("%w: rgb(%d, %d, %d)", ErrChannelRange, r, g, b)
		}
	}
	return RGB{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

// mustRGB is RGBFromInts for values the engine computed itself. An out-of-range
// channel there means the histogram or the update step is broken.
func mustRGB(r, g, b int) RGB {
	c, err := RGBFromInts(r, g, b)
	if err != nil {
		panic(err)
	}
	return c
}

// ToRGB converts a color.Color to RGB, discarding alpha.
func ToRGB(c color.Color) RGB {
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: nrgba.R, G: nrgba.G, B: nrgba.B}
}

// Color returns the colour as a fully opaque color.RGBA.
func (rgb RGB) Color() color.RGBA {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// Key returns the fixed-width decimal key, each channel zero-padded to three
// digits ("005012255" for rgb(5, 12, 255)).
func (rgb RGB) Key() string {
	return fmt.Sprintf("%03d%03d%03d", rgb.R, rgb.G, rgb.B)
}

// ParseKey parses a nine-digit decimal key produced by Key.
func ParseKey(s string) (RGB, error) {
	if len(s) != 9 {
		return RGB{}, fmt.Errorf("invalid colour key %q: expected 9 digits", s)
	}
	var ch [3]int
	for i := range ch {
		v, err := strconv.Atoi(s[i*3 : i*3+3])
		if err != nil {
			return RGB{}, fmt.Errorf("invalid colour key %q: %w", s, err)
		}
		ch[i] = v
	}
	return RGBFromInts(ch[0], ch[1], ch[2])
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex colour %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// ParseColour accepts either a nine-digit key or a hex colour.
func ParseColour(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if len(s) == 9 && !strings.HasPrefix(s, "#") {
		return ParseKey(s)
	}
	return ParseHex(s)
}

// ParseColours parses a list of colours with ParseColour.
func ParseColours(values []string) ([]RGB, error) {
	out := make([]RGB, 0, len(values))
	for _, v := range values {
		c, err := ParseColour(v)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
