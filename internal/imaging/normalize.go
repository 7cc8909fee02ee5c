package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	// MaxDimension bounds both sides of a normalized image, in pixels.
	MaxDimension = 2000

	// JPEGQuality is the quality used when re-encoding normalized images.
	JPEGQuality = 85

	// MediaType is the media type of every normalized payload.
	MediaType = "image/jpeg"
)

// Payload is a normalized image ready to be embedded in an extraction request.
//
// A Payload is created for a single request and should not be retained.
type Payload struct {
	// Data is the JPEG-encoded image.
	Data []byte

	// Base64 is Data in standard base64 encoding.
	Base64 string

	// MediaType is always "image/jpeg".
	MediaType string

	// Width and Height are the normalized dimensions.
	Width  int
	Height int

	// SourceFormat is the decoder that read the upload ("png", "heic", ...).
	SourceFormat string

	// Image is the normalized image before JPEG encoding.
	Image image.Image
}

// Normalize converts arbitrary image bytes into a bounded RGB JPEG payload.
//
// Parameters:
//   - data: The raw upload. Any registered format is accepted.
//
// Returns:
//   - *Payload: JPEG bytes, their base64 form, and the resulting dimensions.
//   - error: *DecodeError if data is not a decodable image; a plain error if
//     JPEG encoding fails.
//
// # Idempotence
//
// Normalizing the output of Normalize again yields the same dimensions:
// the image is already RGB and already within MaxDimension, so it is neither
// flattened differently nor resized.
func Normalize(data []byte) (*Payload, error) {
	img, format, err := decode(data)
	if err != nil {
		return nil, err
	}

	out := NormalizeImage(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode normalized image: %w", err)
	}

	return &Payload{
		Data:         buf.Bytes(),
		Base64:       base64.StdEncoding.EncodeToString(buf.Bytes()),
		MediaType:    MediaType,
		Width:        out.Bounds().Dx(),
		Height:       out.Bounds().Dy(),
		SourceFormat: format,
		Image:        out,
	}, nil
}

// NormalizeImage flattens img onto a white background and fits it within
// MaxDimension x MaxDimension using the Lanczos filter.
//
// The result is always fully opaque. Images already within bounds keep their
// size.
func NormalizeImage(img image.Image) *image.NRGBA {
	b := img.Bounds()

	canvas := imaging.New(b.Dx(), b.Dy(), color.White)
	flat := imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)

	if b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		return imaging.Fit(flat, MaxDimension, MaxDimension, imaging.Lanczos)
	}
	return flat
}
