// Package seed derives the random seed used to pick initial k-means centres,
// so that extraction can be made reproducible per image, per path, or by hand.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"path/filepath"
	"slices"
	"time"

	"github.com/jmylchreest/domcol/internal/colour"
)

// Mode determines how the seed is generated.
type Mode string

const (
	// ModeContent hashes the pixel data (default, deterministic by content).
	ModeContent Mode = "content"
	// ModeFilepath hashes the absolute file path (deterministic by path).
	ModeFilepath Mode = "filepath"
	// ModeManual uses a user-provided seed value.
	ModeManual Mode = "manual"
	// ModeRandom uses a non-deterministic seed (varies each run).
	ModeRandom Mode = "random"
)

// Config holds configuration for seed generation.
type Config struct {
	Mode  Mode
	Value *int64 // only used with ModeManual
}

// Calculate determines the seed value for the configured mode. pb is required
// for ModeContent and path for ModeFilepath.
func Calculate(pb colour.PixelBuffer, path string, config Config) (int64, error) {
	switch config.Mode {
	case ModeContent, "":
		return ContentSeed(pb)
	case ModeFilepath:
		if path == "" {
			return 0, fmt.Errorf("image path is required for filepath-based seed mode")
		}
		return FilepathSeed(path), nil
	case ModeManual:
		if config.Value == nil {
			return 0, fmt.Errorf("seed value is required for manual seed mode")
		}
		return *config.Value, nil
	case ModeRandom:
		return RandomSeed(), nil
	default:
		return 0, fmt.Errorf("unknown seed mode: %s", config.Mode)
	}
}

// ContentSeed hashes the buffer dimensions and a grid sample of its pixels, so
// the same image yields the same seed regardless of where it was loaded from.
func ContentSeed(pb colour.PixelBuffer) (int64, error) {
	if err := pb.Validate(); err != nil {
		return 0, err
	}

	hasher := sha256.New()
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:4], uint32(pb.Width))  // #nosec G115 -- validated non-negative
	binary.LittleEndian.PutUint32(dims[4:8], uint32(pb.Height)) // #nosec G115 -- validated non-negative
	hasher.Write(dims[:])

	// Hashing every pixel is unnecessary to tell images apart.
	step := max(pb.Width/100, pb.Height/100, 1)
	for y := 0; y < pb.Height; y += step {
		for x := 0; x < pb.Width; x += step {
			off := (y*pb.Width + x) * 4
			hasher.Write(pb.Data[off : off+4])
		}
	}

	sum := hasher.Sum(nil)
	return int64(binary.LittleEndian.Uint64(sum[:8])), nil // #nosec G115 -- hash conversion is safe
}

// FilepathSeed hashes the absolute form of path.
func FilepathSeed(path string) int64 {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha256.Sum256([]byte(abs))
	return int64(binary.LittleEndian.Uint64(sum[:8])) // #nosec G115 -- hash conversion is safe
}

// RandomSeed generates a non-deterministic seed.
func RandomSeed() int64 {
	// #nosec G404 -- seed generation is intentionally non-deterministic
	return time.Now().UnixNano() + int64(rand.Intn(1000000))
}

// NewSource returns a centre-seeding source for seed.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed)) // #nosec G404 -- centre seeding is not security sensitive
}

// ValidModes returns a list of valid seed modes.
func ValidModes() []Mode {
	return []Mode{ModeContent, ModeFilepath, ModeManual, ModeRandom}
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(s)
	if slices.Contains(ValidModes(), mode) {
		return mode, nil
	}
	return "", fmt.Errorf("invalid seed mode: %s (valid: content, filepath, manual, random)", s)
}
