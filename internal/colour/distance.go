package colour

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Metric selects the perceptual colour difference formula.
type Metric int

const (
	// MetricCIE76 is the Euclidean distance between LAB triples.
	MetricCIE76 Metric = iota
	// MetricCIE94 weights chroma and hue differences by the reference chroma
	// (graphic arts constants).
	MetricCIE94
)

// String returns the metric name.
func (m Metric) String() string {
	switch m {
	case MetricCIE94:
		return "cie94"
	default:
		return "cie76"
	}
}

// ParseMetric converts a metric name into a Metric.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cie76", "de76":
		return MetricCIE76, nil
	case "cie94", "de94":
		return MetricCIE94, nil
	default:
		return 0, fmt.Errorf("unknown metric: %s (valid: cie76, cie94)", s)
	}
}

// lab holds CIE L*a*b* coordinates on the conventional scale (L* in 0..100).
type lab struct {
	L, A, B float64
}

// toLab converts an sRGB colour to LAB under the D65 white point.
func toLab(c RGB) lab {
	col := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
	l, a, b := col.LabWhiteRef(colorful.D65)
	// go-colorful scales L* to [0, 1].
	return lab{L: l * 100, A: a * 100, B: b * 100}
}

// Distance returns the perceptual difference between two colours in ΔE units.
func (m Metric) Distance(a, b RGB) float64 {
	return m.between(toLab(a), toLab(b))
}

// Distance is MetricCIE76.Distance.
func Distance(a, b RGB) float64 {
	return MetricCIE76.Distance(a, b)
}

func (m Metric) between(p, q lab) float64 {
	dL := p.L - q.L
	da := p.A - q.A
	db := p.B - q.B

	if m != MetricCIE94 {
		return math.Sqrt(dL*dL + da*da + db*db)
	}

	c1 := math.Hypot(p.A, p.B)
	c2 := math.Hypot(q.A, q.B)
	dC := c1 - c2
	// ΔH² can dip marginally below zero through rounding.
	dH2 := math.Max(0, da*da+db*db-dC*dC)

	sC := 1 + 0.045*c1
	sH := 1 + 0.015*c1
	tC := dC / sC
	return math.Sqrt(dL*dL + tC*tC + dH2/(sH*sH))
}
