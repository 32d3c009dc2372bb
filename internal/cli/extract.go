package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/domcol/internal/colour"
	"github.com/jmylchreest/domcol/internal/image"
	"github.com/jmylchreest/domcol/internal/seed"
)

// extractOptions holds the extract command flags.
type extractOptions struct {
	colours       int
	ignore        []string
	threshold     float64
	metric        string
	algorithm     string
	seedMode      string
	seedValue     int64
	maxAttempts   int
	maxIterations int
	timeout       time.Duration
	rawWidth      int
	format        string
	sort          string
	preview       bool
	swatch        string
	tile          int
	output        string

	envErr error
}

func newExtractCmd() *cobra.Command {
	opts, envErr := defaultExtractOptions()
	opts.envErr = envErr

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract the dominant colours of an image",
		Long: `Extract the dominant colours of an image.

Each reported colour is snapped to a colour present in the image and carries
the number of pixels in its cluster. Colours within --threshold (ΔE) of an
--ignore colour are never reported; ignore colours are nine-digit decimal
keys (255255255) or hex (#ffffff).

Supported image formats: JPEG, PNG, GIF, WebP, TGA. With --raw-width the
input is read as raw RGBA bytes instead (optionally .xz compressed).

Examples:
  # Five dominant colours (default)
  domcol extract photo.jpg

  # Three colours, ignoring anything close to white or black
  domcol extract -c 3 --ignore 255255255 --ignore 000000000 --threshold 10 photo.jpg

  # Reproducible JSON output with a fixed seed
  domcol extract --seed-mode manual --seed-value 42 -f json photo.png

  # Canvas ImageData dump, 640 pixels wide, and a webp swatch
  domcol extract --raw-width 640 --swatch palette.webp frame.rgba.xz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}

	opts.registerFlags(cmd.Flags())
	return cmd
}

func (o *extractOptions) registerFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&o.colours, "colours", "c", o.colours, "number of colours to extract (1-256)")
	fs.StringArrayVar(&o.ignore, "ignore", o.ignore, "colour to exclude, as 9-digit key or hex (repeatable)")
	fs.Float64Var(&o.threshold, "threshold", o.threshold, "ΔE distance at or below which a colour counts as ignored")
	fs.StringVar(&o.metric, "metric", o.metric, "perceptual distance metric (cie76, cie94)")
	fs.StringVarP(&o.algorithm, "algorithm", "a", o.algorithm, "extraction algorithm (snapped, kmeans, dominantcolor)")
	fs.StringVar(&o.seedMode, "seed-mode", o.seedMode, "k-means seed mode: content, filepath, manual, random")
	fs.Int64Var(&o.seedValue, "seed-value", 0, "k-means seed value (only used with --seed-mode=manual)")
	fs.IntVar(&o.maxAttempts, "max-attempts", o.maxAttempts, "clustering restarts before giving up when everything is ignored")
	fs.IntVar(&o.maxIterations, "max-iterations", o.maxIterations, "iteration cap for each clustering run")
	fs.DurationVar(&o.timeout, "timeout", 0, "abort extraction after this long (0 = no limit)")
	fs.IntVar(&o.rawWidth, "raw-width", 0, "treat the input as raw RGBA bytes of this pixel width")
	fs.StringVarP(&o.format, "format", "f", o.format, "output format (hex, rgb, json, table)")
	fs.StringVar(&o.sort, "sort", o.sort, "colour order: cluster or weight")
	fs.BoolVar(&o.preview, "preview", false, "show colour previews in terminal")
	fs.StringVar(&o.swatch, "swatch", "", "also write a swatch image (.png or .webp)")
	fs.IntVar(&o.tile, "tile", image.DefaultTileSize, "swatch tile size in pixels")
	fs.StringVarP(&o.output, "output", "o", "", "output file (default: stdout)")
}

// run executes the extract command.
func (o *extractOptions) run(cmd *cobra.Command, path string) error {
	if o.envErr != nil {
		return o.envErr
	}
	logger := newLogger(cmd)

	alg := colour.Algorithm(o.algorithm)
	if !colour.IsValidAlgorithm(alg) {
		return fmt.Errorf("invalid algorithm: %s (valid: %v)", o.algorithm, colour.ValidAlgorithms())
	}
	metric, err := colour.ParseMetric(o.metric)
	if err != nil {
		return err
	}
	ignore, err := colour.ParseColours(o.ignore)
	if err != nil {
		return fmt.Errorf("invalid ignore colour: %w", err)
	}
	mode, err := seed.ParseMode(o.seedMode)
	if err != nil {
		return err
	}
	if o.sort != "cluster" && o.sort != "weight" {
		return fmt.Errorf("invalid sort order: %s (valid: cluster, weight)", o.sort)
	}

	pb, err := o.loadPixels(path)
	if err != nil {
		return err
	}
	logger.Debug("pixels loaded", "path", path, "width", pb.Width, "height", pb.Height)

	seedConfig := seed.Config{Mode: mode}
	if mode == seed.ModeManual {
		seedConfig.Value = &o.seedValue
	}
	seedValue, err := seed.Calculate(pb, path, seedConfig)
	if err != nil {
		return fmt.Errorf("failed to calculate seed: %w", err)
	}
	logger.Debug("seed selected", "mode", mode, "seed", seedValue)

	engineOpts := colour.Options{
		Count:         o.colours,
		Ignore:        ignore,
		Threshold:     o.threshold,
		Metric:        metric,
		MaxAttempts:   o.maxAttempts,
		MaxIterations: o.maxIterations,
		Source:        seed.NewSource(seedValue),
		Logger:        logger.Named(string(alg)),
	}
	if err := engineOpts.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	extractor, err := colour.NewExtractor(alg)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}
	palette, err := extractor.Extract(ctx, pb, engineOpts)
	if err != nil {
		return fmt.Errorf("failed to extract colours: %w", err)
	}
	logger.Debug("palette extracted", "colours", palette.Len(), "pixels", palette.Total)

	if o.sort == "weight" {
		palette = palette.SortedByWeight()
	}

	if o.swatch != "" {
		if err := image.WriteSwatch(o.swatch, palette, o.tile); err != nil {
			return err
		}
		logger.Debug("swatch written", "path", o.swatch)
	}

	showPreview := o.preview && o.output == "" && colour.SupportsANSIColours(cmd.OutOrStdout())
	output, err := formatPalette(palette, o.format, showPreview)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if o.output != "" {
		if err := os.WriteFile(o.output, []byte(output), 0o644); err != nil { // #nosec G306 - palette output is not sensitive
			return fmt.Errorf("failed to write output file: %w", err)
		}
		logger.Debug("palette written", "path", o.output)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

// loadPixels reads path as an image, or as a raw RGBA dump when --raw-width is set.
func (o *extractOptions) loadPixels(path string) (colour.PixelBuffer, error) {
	if o.rawWidth > 0 {
		pb, err := image.LoadRaw(path, o.rawWidth)
		if err != nil {
			return colour.PixelBuffer{}, fmt.Errorf("failed to load raw pixels: %w", err)
		}
		return pb, nil
	}

	if err := image.ValidateImagePath(path); err != nil {
		return colour.PixelBuffer{}, fmt.Errorf("invalid image path: %w", err)
	}
	img, err := image.NewFileLoader().Load(path)
	if err != nil {
		return colour.PixelBuffer{}, fmt.Errorf("failed to load image: %w", err)
	}
	return colour.NewPixelBuffer(img), nil
}

// formatPalette formats the palette according to the specified format.
func formatPalette(palette *colour.Palette, format string, showPreview bool) (string, error) {
	var b strings.Builder
	switch format {
	case "hex":
		for _, s := range palette.Swatches {
			if showPreview {
				b.WriteString(colour.ColourPreview(s.Colour, 8) + " ")
			}
			fmt.Fprintf(&b, "%s %d\n", s.Colour.Hex(), s.Weight)
		}
	case "rgb":
		for _, s := range palette.Swatches {
			if showPreview {
				b.WriteString(colour.ColourPreview(s.Colour, 8) + " ")
			}
			fmt.Fprintf(&b, "%s %d\n", s.Colour.String(), s.Weight)
		}
	case "json":
		data, err := palette.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		b.Write(data)
		b.WriteString("\n")
	case "table":
		table := NewTable([]string{"#", "Hex", "RGB", "Weight", "Share"})
		table.AlignRight(0, 3, 4)
		for i, s := range palette.Swatches {
			hex := s.Colour.Hex()
			if showPreview {
				hex = colour.ColourPreviewWithText(s.Colour, hex, 9)
			}
			table.AddRow([]string{
				strconv.Itoa(i + 1),
				hex,
				fmt.Sprintf("%d,%d,%d", s.Colour.R, s.Colour.G, s.Colour.B),
				strconv.Itoa(s.Weight),
				fmt.Sprintf("%.1f%%", palette.Share(i)*100),
			})
		}
		b.WriteString(table.Render())
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: hex, rgb, json, table)", format)
	}
	return b.String(), nil
}
