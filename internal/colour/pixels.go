package colour

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// ErrInvalidBuffer is returned when a PixelBuffer's data does not match its dimensions.
var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// PixelBuffer is a row-major RGBA sample buffer, four non-premultiplied bytes
// per pixel, in the layout of a canvas ImageData.
type PixelBuffer struct {
	Width  int
	Height int
	Data   []uint8
}

// Validate checks that Data holds exactly Width*Height pixels.
func (pb PixelBuffer) Validate() error {
	if pb.Width < 0 || pb.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidBuffer, pb.Width, pb.Height)
	}
	if want := pb.Width * pb.Height * 4; len(pb.Data) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrInvalidBuffer, pb.Width, pb.Height, want, len(pb.Data))
	}
	return nil
}

// Pixels returns the number of pixels in the buffer.
func (pb PixelBuffer) Pixels() int {
	return len(pb.Data) / 4
}

// Image exposes the buffer as an *image.NRGBA sharing the same backing array.
func (pb PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    pb.Data,
		Stride: pb.Width * 4,
		Rect:   image.Rect(0, 0, pb.Width, pb.Height),
	}
}

// NewPixelBuffer converts img into a PixelBuffer. A tightly packed NRGBA
// anchored at the origin is shared rather than copied.
func NewPixelBuffer(img image.Image) PixelBuffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if nrgba, ok := img.(*image.NRGBA); ok && bounds.Min == (image.Point{}) && nrgba.Stride == w*4 {
		return PixelBuffer{Width: w, Height: h, Data: nrgba.Pix[:w*h*4]}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return PixelBuffer{Width: w, Height: h, Data: dst.Pix}
}
