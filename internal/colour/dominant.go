package colour

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultColourCount is the palette size used when none is configured.
	DefaultColourCount = 5

	// MaxColourCount is the largest palette that may be requested.
	MaxColourCount = 256

	// DefaultMaxAttempts bounds how many times clustering restarts from fresh
	// seeds when the ignore filter removes every centre.
	DefaultMaxAttempts = 10
)

var (
	// ErrInvalidCount is returned for a requested palette size below 1 or above MaxColourCount.
	ErrInvalidCount = errors.New("invalid colour count")

	// ErrInvalidThreshold is returned for a negative or NaN ignore threshold.
	ErrInvalidThreshold = errors.New("invalid ignore threshold")

	// ErrNoColour is returned when the image has no opaque pixels.
	ErrNoColour = errors.New("no dominant colour computable")

	// ErrPaletteExhausted is returned when every attempt ends with all
	// centres removed by the ignore filter.
	ErrPaletteExhausted = errors.New("palette exhausted by ignore filter")
)

// Options configures a dominant colour extraction.
type Options struct {
	// Count is the desired palette size. The result may be smaller, never larger.
	Count int
	// Ignore lists colours that must not appear in the palette.
	Ignore []RGB
	// Threshold is the ΔE distance at or below which a colour counts as ignored.
	Threshold float64
	// Metric is the perceptual distance used everywhere in the run.
	Metric Metric
	// MaxAttempts caps clustering restarts. Zero means DefaultMaxAttempts.
	MaxAttempts int
	// MaxIterations caps each k-means run. Zero means DefaultMaxIterations.
	MaxIterations int
	// Source picks initial centres. Nil uses the math/rand package source.
	Source Source
	// Logger receives progress at debug level. Nil discards.
	Logger hclog.Logger
}

// DefaultOptions returns the default extraction options.
func DefaultOptions() Options {
	return Options{
		Count:         DefaultColourCount,
		Metric:        MetricCIE76,
		MaxAttempts:   DefaultMaxAttempts,
		MaxIterations: DefaultMaxIterations,
	}
}

// Validate validates the extraction options.
func (o Options) Validate() error {
	if o.Count < 1 {
		return fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidCount, o.Count)
	}
	if o.Count > MaxColourCount {
		return fmt.Errorf("%w: %d (maximum: %d)", ErrInvalidCount, o.Count, MaxColourCount)
	}
	if o.Threshold < 0 || math.IsNaN(o.Threshold) || math.IsInf(o.Threshold, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, o.Threshold)
	}
	if o.MaxAttempts < 0 {
		return fmt.Errorf("max attempts cannot be negative, got %d", o.MaxAttempts)
	}
	if o.MaxIterations < 0 {
		return fmt.Errorf("max iterations cannot be negative, got %d", o.MaxIterations)
	}
	return nil
}

// Result is a successful extraction.
type Result struct {
	Palette *Palette
	// Attempts is the number of clustering runs, including the successful one.
	Attempts int
	// Iterations is the iteration count of the successful run.
	Iterations int
	// Converged is false when the successful run stopped at the iteration cap.
	Converged bool
}

// Dominant computes the dominant colours of pb. The histogram and seed
// candidates are built once; clustering restarts from fresh seeds while the
// ignore filter leaves nothing, up to MaxAttempts runs.
func Dominant(ctx context.Context, pb PixelBuffer, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}

	hist, err := BuildHistogram(pb)
	if err != nil {
		return nil, err
	}
	if hist.Empty() {
		return nil, fmt.Errorf("%w: image has no opaque pixels", ErrNoColour)
	}
	candidates := hist.CenterCandidates()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoColour, ErrNoCandidates)
	}
	logger.Debug("histogram built",
		"pixels", hist.Total(), "distinct", hist.Len(), "candidates", len(candidates))

	clusterer := &Clusterer{
		Source:        opts.Source,
		Metric:        opts.Metric,
		MaxIterations: opts.MaxIterations,
		Logger:        logger,
	}
	// With no more candidates than requested clusters every attempt seeds
	// identically, so a retry cannot change the outcome.
	deterministic := opts.Count >= len(candidates)

	attempts := 0
	for attempts < maxAttempts {
		attempts++

		clustering, err := clusterer.Cluster(ctx, hist, candidates, opts.Count)
		if err != nil && !errors.Is(err, ErrNotConverged) {
			return nil, err
		}

		swatches := FilterAndSnap(clustering, opts.Ignore, opts.Threshold, opts.Metric)
		logger.Debug("clustering attempt finished",
			"attempt", attempts,
			"iterations", clustering.Iterations,
			"converged", clustering.Converged,
			"clusters", len(clustering.Clusters),
			"kept", len(swatches))

		if len(swatches) > 0 {
			return &Result{
				Palette:    NewPalette(swatches, hist.Total()),
				Attempts:   attempts,
				Iterations: clustering.Iterations,
				Converged:  clustering.Converged,
			}, nil
		}
		if deterministic {
			break
		}
	}

	return nil, fmt.Errorf("%w: no non-ignored dominant colour after %d attempts", ErrPaletteExhausted, attempts)
}

// GetDominantColors returns the hex palette and parallel pixel weights for pb.
// ignore accepts nine-digit decimal keys or hex colours.
func GetDominantColors(pb PixelBuffer, k int, ignore []string, threshold float64) ([]string, []int, error) {
	ignoreColours, err := ParseColours(ignore)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid ignore colour: %w", err)
	}

	opts := DefaultOptions()
	opts.Count = k
	opts.Ignore = ignoreColours
	opts.Threshold = threshold

	result, err := Dominant(context.Background(), pb, opts)
	if err != nil {
		return nil, nil, err
	}
	return result.Palette.Hex(), result.Palette.Weights(), nil
}
