// Package image loads pixel data for colour extraction from image files and
// raw RGBA dumps, and renders palettes back out as swatch images.
package image

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// The tga package registers itself with image.RegisterFormat using an empty
// magic string, which matches any input. image.Decode would hand every file to
// it, so decoders are chosen here instead.

// codec decodes one image format.
type codec struct {
	name   string
	match  func(header []byte) bool
	decode func(io.Reader) (image.Image, error)
	config func(io.Reader) (image.Config, error)
}

var codecs = []codec{
	{
		name:   "png",
		match:  func(h []byte) bool { return bytes.HasPrefix(h, []byte("\x89PNG\r\n\x1a\n")) },
		decode: png.Decode,
		config: png.DecodeConfig,
	},
	{
		name:   "jpeg",
		match:  func(h []byte) bool { return bytes.HasPrefix(h, []byte("\xff\xd8")) },
		decode: jpeg.Decode,
		config: jpeg.DecodeConfig,
	},
	{
		name: "gif",
		match: func(h []byte) bool {
			return bytes.HasPrefix(h, []byte("GIF87a")) || bytes.HasPrefix(h, []byte("GIF89a"))
		},
		decode: gif.Decode,
		config: gif.DecodeConfig,
	},
	{
		name: "webp",
		match: func(h []byte) bool {
			return len(h) >= 12 && bytes.HasPrefix(h, []byte("RIFF")) && string(h[8:12]) == "WEBP"
		},
		decode: webp.Decode,
		config: webp.DecodeConfig,
	},
}

// tgaCodec has no magic number; it is only chosen by file extension.
var tgaCodec = codec{name: "tga", decode: tga.Decode, config: tga.DecodeConfig}

const sniffLen = 12

// sniff picks the codec for r from its leading bytes, or from ext for TGA.
func sniff(r *bufio.Reader, ext string) (codec, error) {
	header, _ := r.Peek(sniffLen)
	for _, c := range codecs {
		if c.match(header) {
			return c, nil
		}
	}
	if strings.EqualFold(ext, ".tga") {
		return tgaCodec, nil
	}
	return codec{}, image.ErrFormat
}

// Decode decodes an image from r, returning the format name. ext is the
// source file extension and only matters for TGA, which cannot be sniffed.
func Decode(r io.Reader, ext string) (image.Image, string, error) {
	br := bufio.NewReader(r)
	c, err := sniff(br, ext)
	if err != nil {
		return nil, "", err
	}
	img, err := c.decode(br)
	return img, c.name, err
}

// DecodeConfig is Decode for the image header only.
func DecodeConfig(r io.Reader, ext string) (image.Config, string, error) {
	br := bufio.NewReader(r)
	c, err := sniff(br, ext)
	if err != nil {
		return image.Config{}, "", err
	}
	cfg, err := c.config(br)
	return cfg, c.name, err
}

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given path.
	Load(path string) (image.Image, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP, TGA.
func (l *FileLoader) Load(path string) (image.Image, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, format, err := Decode(file, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}
	return img, nil
}

// ValidateImagePath checks that path names a readable file in a supported
// image format. Only the header is decoded.
func ValidateImagePath(path string) error {
	if err := checkFile(path); err != nil {
		return err
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	if _, _, err := DecodeConfig(file, filepath.Ext(path)); err != nil {
		return fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	return nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".tga"}
}

// IsImageFile checks if a file has a supported image extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

func checkFile(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file not found: %s", path)
		}
		return fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	return nil
}
