package colour

import (
	"math/rand"
	"testing"
)

var (
	black = RGB{}
	white = RGB{R: 255, G: 255, B: 255}
	red   = RGB{R: 255}
	green = RGB{G: 255}
	blue  = RGB{B: 255}
)

// run is n pixels of one colour at one alpha.
type run struct {
	colour RGB
	n      int
	alpha  uint8
}

// opaque is an alpha-255 run.
func opaque(c RGB, n int) run {
	return run{colour: c, n: n, alpha: 255}
}

// bufferOf lays runs out in order as a single-row buffer.
func bufferOf(runs ...run) PixelBuffer {
	var data []uint8
	for _, r := range runs {
		for range r.n {
			data = append(data, r.colour.R, r.colour.G, r.colour.B, r.alpha)
		}
	}
	return PixelBuffer{Width: len(data) / 4, Height: 1, Data: data}
}

func mustHistogram(t *testing.T, pb PixelBuffer) *Histogram {
	t.Helper()
	h, err := BuildHistogram(pb)
	if err != nil {
		t.Fatalf("BuildHistogram() error = %v", err)
	}
	return h
}

// scriptedSource returns preset values from Intn, in order.
type scriptedSource struct {
	values []int
	calls  int
}

func (s *scriptedSource) Intn(n int) int {
	v := s.values[s.calls%len(s.values)]
	s.calls++
	if v >= n {
		return n - 1
	}
	return v
}

// noisyBuffer scatters jittered variants of a few base colours over a w×h
// image. Output depends only on seed.
func noisyBuffer(w, h int, seed int64) PixelBuffer {
	bases := []RGB{
		{R: 200, G: 40, B: 40},
		{R: 30, G: 160, B: 60},
		{R: 40, G: 60, B: 200},
		{R: 230, G: 220, B: 80},
		{R: 20, G: 20, B: 20},
	}
	rng := rand.New(rand.NewSource(seed))
	jitter := func(v uint8) uint8 {
		return uint8(int(v) + rng.Intn(17) - 8)
	}

	data := make([]uint8, 0, w*h*4)
	for range w * h {
		base := bases[rng.Intn(len(bases))]
		data = append(data, jitter(base.R), jitter(base.G), jitter(base.B), 255)
	}
	return PixelBuffer{Width: w, Height: h, Data: data}
}
