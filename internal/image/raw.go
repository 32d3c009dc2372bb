package image

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/domcol/internal/colour"
)

// MaxRawBytes caps the decompressed size of a raw pixel dump.
const MaxRawBytes = 256 * 1024 * 1024

// LoadRaw reads a raw RGBA dump, four bytes per pixel in row-major order as
// copied out of a canvas ImageData. Files ending in ".xz" are decompressed.
// The height is derived from width and the data length.
func LoadRaw(path string, width int) (colour.PixelBuffer, error) {
	if width <= 0 {
		return colour.PixelBuffer{}, fmt.Errorf("raw width must be positive, got %d", width)
	}
	if err := checkFile(path); err != nil {
		return colour.PixelBuffer{}, err
	}

	file, err := os.Open(path) // #nosec G304 - User-specified pixel dump, intended to be read
	if err != nil {
		return colour.PixelBuffer{}, fmt.Errorf("failed to open raw pixel file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(strings.ToLower(path), ".xz") {
		xzr, err := xz.NewReader(file)
		if err != nil {
			return colour.PixelBuffer{}, fmt.Errorf("failed to create xz reader: %w", err)
		}
		r = xzr
	}

	return ReadRaw(r, width)
}

// ReadRaw reads raw RGBA bytes from r. See LoadRaw.
func ReadRaw(r io.Reader, width int) (colour.PixelBuffer, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxRawBytes+1))
	if err != nil {
		return colour.PixelBuffer{}, fmt.Errorf("failed to read raw pixels: %w", err)
	}
	if len(data) > MaxRawBytes {
		return colour.PixelBuffer{}, fmt.Errorf("raw pixel data exceeds %d bytes", MaxRawBytes)
	}

	rowBytes := width * 4
	if len(data)%rowBytes != 0 {
		return colour.PixelBuffer{}, fmt.Errorf("raw pixel data length %d is not a whole number of %d-pixel rows", len(data), width)
	}

	pb := colour.PixelBuffer{Width: width, Height: len(data) / rowBytes, Data: data}
	return pb, pb.Validate()
}
