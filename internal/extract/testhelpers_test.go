package extract

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ironsheep/note-extract/internal/imaging"
)

// testPayload returns a small normalized image.
func testPayload(t *testing.T) *imaging.Payload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.Set(4, 4, color.Black)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	p, err := imaging.Normalize(buf.Bytes())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return p
}
