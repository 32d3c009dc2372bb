package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jmylchreest/domcol/internal/colour"
	"github.com/jmylchreest/domcol/internal/seed"
)

// Environment variables that override extract flag defaults.
const (
	envColours     = "DOMCOL_COLOURS"
	envIgnore      = "DOMCOL_IGNORE"
	envThreshold   = "DOMCOL_THRESHOLD"
	envMetric      = "DOMCOL_METRIC"
	envSeedMode    = "DOMCOL_SEED_MODE"
	envMaxAttempts = "DOMCOL_MAX_ATTEMPTS"
)

// defaultExtractOptions returns the built-in defaults with any DOMCOL_*
// overrides applied.
func defaultExtractOptions() (*extractOptions, error) {
	engine := colour.DefaultOptions()
	o := &extractOptions{
		colours:       engine.Count,
		metric:        engine.Metric.String(),
		algorithm:     string(colour.AlgorithmSnapped),
		seedMode:      string(seed.ModeContent),
		maxAttempts:   engine.MaxAttempts,
		maxIterations: engine.MaxIterations,
		format:        "hex",
		sort:          "cluster",
	}

	if v := os.Getenv(envColours); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return o, fmt.Errorf("invalid %s: %w", envColours, err)
		}
		o.colours = n
	}
	if v := os.Getenv(envIgnore); v != "" {
		o.ignore = parseList(v)
	}
	if v := os.Getenv(envThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return o, fmt.Errorf("invalid %s: %w", envThreshold, err)
		}
		o.threshold = f
	}
	if v := os.Getenv(envMetric); v != "" {
		o.metric = v
	}
	if v := os.Getenv(envSeedMode); v != "" {
		o.seedMode = v
	}
	if v := os.Getenv(envMaxAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return o, fmt.Errorf("invalid %s: %w", envMaxAttempts, err)
		}
		o.maxAttempts = n
	}
	return o, nil
}

// parseList splits a comma-separated list, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
