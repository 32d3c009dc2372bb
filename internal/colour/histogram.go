package colour

// CandidateDivisor scales the mean per-colour count down to the minimum count a
// colour needs to be eligible as an initial cluster centre.
const CandidateDivisor = 2

// Histogram counts how often each opaque colour occurs in a pixel buffer.
// It is immutable once built.
type Histogram struct {
	counts  map[RGB]int
	colours []RGB // first-encountered order
	labs    []lab // parallel to colours
	total   int
}

// BuildHistogram scans pb once. Pixels with alpha 0 are skipped; any other
// alpha counts the pixel as opaque.
func BuildHistogram(pb PixelBuffer) (*Histogram, error) {
	if err := pb.Validate(); err != nil {
		return nil, err
	}

	h := &Histogram{counts: make(map[RGB]int)}
	data := pb.Data
	for i := 0; i+3 < len(data); i += 4 {
		if data[i+3] == 0 {
			continue
		}
		c := RGB{R: data[i], G: data[i+1], B: data[i+2]}
		if _, seen := h.counts[c]; !seen {
			h.colours = append(h.colours, c)
		}
		h.counts[c]++
		h.total++
	}

	h.labs = make([]lab, len(h.colours))
	for i, c := range h.colours {
		h.labs[i] = toLab(c)
	}
	return h, nil
}

// Count returns the number of opaque pixels with colour c.
func (h *Histogram) Count(c RGB) int {
	return h.counts[c]
}

// Total returns the number of opaque pixels.
func (h *Histogram) Total() int {
	return h.total
}

// Len returns the number of distinct colours.
func (h *Histogram) Len() int {
	return len(h.colours)
}

// Empty reports whether the buffer had no opaque pixels.
func (h *Histogram) Empty() bool {
	return h.total == 0
}

// Colours returns the distinct colours in first-encountered order.
func (h *Histogram) Colours() []RGB {
	out := make([]RGB, len(h.colours))
	copy(out, h.colours)
	return out
}

// CenterCandidates returns the colours whose count exceeds
// total / distinct / CandidateDivisor, in histogram order. Rare colours such as
// anti-aliasing fringes still take part in assignment, they just never seed.
func (h *Histogram) CenterCandidates() []RGB {
	if len(h.colours) == 0 {
		return nil
	}
	threshold := float64(h.total) / float64(len(h.colours)) / CandidateDivisor

	var out []RGB
	for _, c := range h.colours {
		if float64(h.counts[c]) > threshold {
			out = append(out, c)
		}
	}
	return out
}
