package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "github.com/jdeng/goheif" // Register HEIC format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// SupportedExtensions lists the upload extensions accepted for extraction,
// without the leading dot.
var SupportedExtensions = []string{"png", "jpg", "jpeg", "heic", "webp"}

var errEmptyImage = errors.New("image data is empty")

// DecodeError reports image bytes that could not be parsed.
type DecodeError struct {
	// Format is the decoder that recognised the header, if any.
	Format string

	Err error
}

func (e *DecodeError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("failed to decode %s image: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("failed to decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ImageInfo contains metadata about an uploaded image.
//
// It is read from the image header only, so it is cheap to compute for every
// upload before any pixel data is decoded.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name: "png", "jpeg", "gif", "webp" or "heic".
	// Detection is based on file contents, not the extension.
	Format string `json:"format"`

	// HasAlpha indicates whether the color model can carry transparency.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the size of the encoded upload.
	SizeBytes int64 `json:"size_bytes"`
}

// Inspect reads the image header and returns its metadata.
//
// Returns *DecodeError if no registered decoder recognises the data.
func Inspect(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errEmptyImage}
	}

	cfg, format, err := decodeConfig(data)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	return &ImageInfo{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    format,
		HasAlpha:  hasAlpha(cfg.ColorModel),
		SizeBytes: int64(len(data)),
	}, nil
}

// decode parses data with the registered decoders.
//
// The header is sniffed first so a failure deeper in the pixel data can still
// name the format in the returned *DecodeError.
func decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", &DecodeError{Err: errEmptyImage}
	}

	_, format, err := decodeConfig(data)
	if err != nil {
		return nil, "", &DecodeError{Err: err}
	}

	img, err := decodePixels(data)
	if err != nil {
		return nil, format, &DecodeError{Format: format, Err: err}
	}

	return img, format, nil
}

// decodeConfig and decodePixels turn decoder panics into errors. Some
// decoders panic on malformed input.
func decodeConfig(data []byte) (cfg image.Config, format string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return image.DecodeConfig(bytes.NewReader(data))
}

func decodePixels(data []byte) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// hasAlpha reports whether images in model m may contain transparent pixels.
func hasAlpha(m color.Model) bool {
	switch m {
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model,
		color.AlphaModel, color.Alpha16Model:
		return true
	}
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// SupportedExtension reports whether name has one of SupportedExtensions.
// The comparison is case-insensitive.
func SupportedExtension(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// MediaTypeFor returns the media type implied by the extension of name,
// or "application/octet-stream" when it is not a supported image extension.
func MediaTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".heic":
		return "image/heic"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}
