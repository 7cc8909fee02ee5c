package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

const (
	// ThumbnailWidth is the preview width used by the browser UI.
	ThumbnailWidth = 150

	thumbnailQuality = 75
)

// Thumbnail renders img as a small JPEG and returns it as a data URI.
//
// The height follows the aspect ratio of img. Images narrower than width are
// not enlarged.
func Thumbnail(img image.Image, width int) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("invalid thumbnail width: %d", width)
	}

	b := img.Bounds()
	if b.Empty() {
		return "", fmt.Errorf("cannot thumbnail empty image")
	}
	if width > b.Dx() {
		width = b.Dx()
	}
	height := int(math.Round(float64(b.Dy()) * float64(width) / float64(b.Dx())))
	if height < 1 {
		height = 1
	}

	small := transform.Resize(img, width, height, transform.Linear)

	var buf bytes.Buffer
	if err := imgio.JPEGEncoder(thumbnailQuality)(&buf, small); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return "data:" + MediaType + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
