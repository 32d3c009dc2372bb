package colour

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestPixelBufferValidate(t *testing.T) {
	tests := []struct {
		name    string
		pb      PixelBuffer
		wantErr bool
	}{
		{name: "empty", pb: PixelBuffer{}},
		{name: "exact", pb: PixelBuffer{Width: 2, Height: 3, Data: make([]uint8, 24)}},
		{name: "short", pb: PixelBuffer{Width: 2, Height: 3, Data: make([]uint8, 20)}, wantErr: true},
		{name: "long", pb: PixelBuffer{Width: 1, Height: 1, Data: make([]uint8, 5)}, wantErr: true},
		{name: "negative", pb: PixelBuffer{Width: -1, Height: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pb.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidBuffer) {
				t.Errorf("Validate() error = %v, want ErrInvalidBuffer", err)
			}
		})
	}
}

func TestNewPixelBuffer(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 6))
	src.Set(5, 5, color.RGBA{R: 255, A: 255})
	src.Set(6, 5, color.RGBA{B: 255, A: 255})

	pb := NewPixelBuffer(src)
	if pb.Width != 2 || pb.Height != 1 {
		t.Fatalf("NewPixelBuffer() = %dx%d, want 2x1", pb.Width, pb.Height)
	}
	want := []uint8{255, 0, 0, 255, 0, 0, 255, 255}
	for i, v := range want {
		if pb.Data[i] != v {
			t.Fatalf("Data = %v, want %v", pb.Data, want)
		}
	}
}

func TestNewPixelBufferSharesNRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	pb := NewPixelBuffer(src)
	pb.Data[0] = 42
	if src.Pix[0] != 42 {
		t.Error("NewPixelBuffer() copied a tightly packed NRGBA")
	}
	if got := pb.Image().NRGBAAt(0, 0).R; got != 42 {
		t.Errorf("Image().NRGBAAt(0, 0).R = %d, want 42", got)
	}
}
