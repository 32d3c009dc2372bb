package colour

import (
	"context"
	"fmt"
	"math"

	"github.com/cenkalti/dominantcolor"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Extractor defines the interface for color extraction algorithms.
type Extractor interface {
	// Extract returns at most opts.Count colours, none within opts.Threshold
	// of an ignored colour.
	Extract(ctx context.Context, pb PixelBuffer, opts Options) (*Palette, error)
}

// Algorithm represents the color extraction algorithm type.
type Algorithm string

const (
	// AlgorithmSnapped clusters observed colours in LAB space and snaps every
	// centre onto a colour present in the image.
	AlgorithmSnapped Algorithm = "snapped"

	// AlgorithmKMeans runs plain RGB k-means over sampled pixels. Centres are
	// arithmetic means and may not occur in the image.
	AlgorithmKMeans Algorithm = "kmeans"

	// AlgorithmDominantColor uses the dominantcolor package's weighted k-means.
	AlgorithmDominantColor Algorithm = "dominantcolor"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmSnapped,
		AlgorithmKMeans,
		AlgorithmDominantColor,
	}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	for _, valid := range ValidAlgorithms() {
		if alg == valid {
			return true
		}
	}
	return false
}

// NewExtractor creates a new Extractor based on the specified algorithm.
func NewExtractor(alg Algorithm) (Extractor, error) {
	switch alg {
	case AlgorithmSnapped, "":
		return SnappedExtractor{}, nil
	case AlgorithmKMeans:
		return &KMeansExtractor{maxSamples: defaultKMeansSamples}, nil
	case AlgorithmDominantColor:
		return DominantColorExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// SnappedExtractor adapts Dominant to the Extractor interface.
type SnappedExtractor struct{}

// Extract implements Extractor.
func (SnappedExtractor) Extract(ctx context.Context, pb PixelBuffer, opts Options) (*Palette, error) {
	result, err := Dominant(ctx, pb, opts)
	if err != nil {
		return nil, err
	}
	return result.Palette, nil
}

const defaultKMeansSamples = 12000

// KMeansExtractor partitions a grid sample of opaque pixels with muesli/kmeans.
type KMeansExtractor struct {
	maxSamples int
}

// Extract implements Extractor.
func (e *KMeansExtractor) Extract(ctx context.Context, pb PixelBuffer, opts Options) (*Palette, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := pb.Validate(); err != nil {
		return nil, err
	}

	pixels := pb.Pixels()
	step := 1
	if pixels > e.maxSamples {
		step = pixels/e.maxSamples + 1
	}

	total := 0
	dataset := make(clusters.Observations, 0, min(pixels, e.maxSamples))
	for i := 0; i < pixels; i++ {
		off := i * 4
		if pb.Data[off+3] == 0 {
			continue
		}
		total++
		if i%step != 0 {
			continue
		}
		// clusters seeds centres in the unit cube.
		dataset = append(dataset, clusters.Coordinates{
			float64(pb.Data[off]) / 255,
			float64(pb.Data[off+1]) / 255,
			float64(pb.Data[off+2]) / 255,
		})
	}
	if len(dataset) == 0 {
		return nil, fmt.Errorf("%w: image has no opaque pixels", ErrNoColour)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	partitions, err := kmeans.New().Partition(dataset, min(opts.Count, len(dataset)))
	if err != nil {
		return nil, fmt.Errorf("kmeans partition failed: %w", err)
	}

	scale := float64(total) / float64(len(dataset))
	swatches := make([]Swatch, 0, len(partitions))
	for _, p := range partitions {
		if len(p.Observations) == 0 {
			continue
		}
		c := meanColour(p.Observations)
		swatches = append(swatches, Swatch{Colour: c, Weight: int(math.Round(float64(len(p.Observations)) * scale))})
	}
	return keepUnignored(swatches, total, opts)
}

// meanColour averages observations from the unit cube. Partition can return a
// lone cluster with its centre still at the random seed, so Center is not used.
func meanColour(obs clusters.Observations) RGB {
	var sum [3]float64
	for _, o := range obs {
		c := o.Coordinates()
		sum[0] += c[0]
		sum[1] += c[1]
		sum[2] += c[2]
	}
	n := float64(len(obs))
	return mustRGB(
		int(math.Round(sum[0]/n*255)),
		int(math.Round(sum[1]/n*255)),
		int(math.Round(sum[2]/n*255)),
	)
}

// DominantColorExtractor delegates to github.com/cenkalti/dominantcolor.
type DominantColorExtractor struct{}

// Extract implements Extractor.
func (DominantColorExtractor) Extract(ctx context.Context, pb PixelBuffer, opts Options) (*Palette, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	hist, err := BuildHistogram(pb)
	if err != nil {
		return nil, err
	}
	if hist.Empty() {
		return nil, fmt.Errorf("%w: image has no opaque pixels", ErrNoColour)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found := dominantcolor.FindWeight(pb.Image(), opts.Count)
	swatches := make([]Swatch, 0, len(found))
	for _, f := range found {
		if !(f.Weight > 0) {
			continue
		}
		swatches = append(swatches, Swatch{
			Colour: RGB{R: f.RGBA.R, G: f.RGBA.G, B: f.RGBA.B},
			Weight: int(math.Round(f.Weight * float64(hist.Total()))),
		})
	}
	if len(swatches) == 0 {
		return nil, fmt.Errorf("%w: dominantcolor found no colours", ErrNoColour)
	}
	return keepUnignored(swatches, hist.Total(), opts)
}

// keepUnignored applies the ignore list to swatches that were not produced by
// FilterAndSnap.
func keepUnignored(swatches []Swatch, total int, opts Options) (*Palette, error) {
	kept := swatches[:0]
	for _, s := range swatches {
		ignored := false
		for _, ig := range opts.Ignore {
			if opts.Metric.Distance(ig, s.Colour) <= opts.Threshold {
				ignored = true
				break
			}
		}
		if !ignored {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: every extracted colour is ignored", ErrPaletteExhausted)
	}
	return NewPalette(kept, total), nil
}
