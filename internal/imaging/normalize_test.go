package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

// decodeOutput decodes normalized JPEG bytes.
func decodeOutput(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("normalized output is not a valid JPEG: %v", err)
	}
	return img
}

func TestNormalize_WithinBounds(t *testing.T) {
	data := encodePNG(t, createTestImage(300, 200, color.RGBA{10, 20, 30, 255}))

	p, err := Normalize(data)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if p.Width != 300 || p.Height != 200 {
		t.Errorf("dimensions: got %dx%d, want 300x200", p.Width, p.Height)
	}
	if p.MediaType != "image/jpeg" {
		t.Errorf("MediaType: got %s, want image/jpeg", p.MediaType)
	}
	if p.SourceFormat != "png" {
		t.Errorf("SourceFormat: got %s, want png", p.SourceFormat)
	}

	decoded, err := base64.StdEncoding.DecodeString(p.Base64)
	if err != nil {
		t.Fatalf("Base64 is not valid: %v", err)
	}
	if !bytes.Equal(decoded, p.Data) {
		t.Error("Base64 does not match Data")
	}

	out := decodeOutput(t, p.Data)
	if out.Bounds().Dx() != 300 || out.Bounds().Dy() != 200 {
		t.Errorf("decoded dimensions: got %dx%d, want 300x200", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestNormalize_Downscale(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"wide", 4000, 1000, 2000, 500},
		{"tall", 1000, 4000, 500, 2000},
		{"square", 3000, 3000, 2000, 2000},
		{"one side over", 2200, 1100, 2000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeJPEG(t, createTestImage(tt.width, tt.height, color.RGBA{200, 200, 200, 255}))

			p, err := Normalize(data)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if p.Width != tt.wantW || p.Height != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", p.Width, p.Height, tt.wantW, tt.wantH)
			}
			if p.Width > MaxDimension || p.Height > MaxDimension {
				t.Errorf("dimensions %dx%d exceed bound %d", p.Width, p.Height, MaxDimension)
			}

			out := decodeOutput(t, p.Data)
			if out.Bounds().Dx() != p.Width || out.Bounds().Dy() != p.Height {
				t.Errorf("decoded %dx%d does not match payload %dx%d",
					out.Bounds().Dx(), out.Bounds().Dy(), p.Width, p.Height)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	data := encodePNG(t, createTestImage(2600, 1300, color.RGBA{0, 128, 255, 255}))

	first, err := Normalize(data)
	if err != nil {
		t.Fatalf("first Normalize failed: %v", err)
	}
	second, err := Normalize(first.Data)
	if err != nil {
		t.Fatalf("second Normalize failed: %v", err)
	}

	if first.Width != second.Width || first.Height != second.Height {
		t.Errorf("re-normalizing changed dimensions: %dx%d -> %dx%d",
			first.Width, first.Height, second.Width, second.Height)
	}
	if second.SourceFormat != "jpeg" {
		t.Errorf("SourceFormat: got %s, want jpeg", second.SourceFormat)
	}
}

func TestNormalize_ThreeChannelOutput(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 40, 30))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i % 256)
	}

	paletted := image.NewPaletted(image.Rect(0, 0, 40, 30), color.Palette{
		color.RGBA{255, 0, 0, 255},
		color.RGBA{0, 0, 255, 255},
	})

	tests := []struct {
		name string
		data []byte
	}{
		{"rgba png", encodePNG(t, createTestImage(40, 30, color.RGBA{255, 0, 0, 255}))},
		{"gray png", encodePNG(t, gray)},
		{"transparent png", encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 40, 30)))},
		{"paletted gif", encodeGIF(t, paletted)},
		{"jpeg", encodeJPEG(t, createTestImage(40, 30, color.RGBA{0, 255, 0, 255}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Normalize(tt.data)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			out := decodeOutput(t, p.Data)
			if _, ok := out.(*image.YCbCr); !ok {
				t.Errorf("decoded output should be three-channel YCbCr, got %T", out)
			}
		})
	}
}

func TestNormalize_TransparencyBecomesWhite(t *testing.T) {
	data := encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 16, 16)))

	p, err := Normalize(data)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	r, g, b, _ := decodeOutput(t, p.Data).At(8, 8).RGBA()
	if r>>8 < 250 || g>>8 < 250 || b>>8 < 250 {
		t.Errorf("transparent pixel should flatten to white, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestNormalize_Invalid(t *testing.T) {
	valid := encodePNG(t, createTestImage(50, 50, color.RGBA{1, 2, 3, 255}))

	tests := []struct {
		name       string
		data       []byte
		wantFormat string
	}{
		{"empty", []byte{}, ""},
		{"text", []byte("not an image"), ""},
		{"truncated png", valid[:60], "png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.data)
			if err == nil {
				t.Fatal("Normalize should fail for invalid data")
			}
			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Fatalf("expected *DecodeError, got %T: %v", err, err)
			}
			if decErr.Format != tt.wantFormat {
				t.Errorf("Format: got %q, want %q", decErr.Format, tt.wantFormat)
			}
		})
	}
}

func TestNormalizeImage_NoUpscale(t *testing.T) {
	out := NormalizeImage(createTestImage(10, 12, color.Black))
	if out.Bounds().Dx() != 10 || out.Bounds().Dy() != 12 {
		t.Errorf("small image was resized to %dx%d", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestNormalizeImage_OffsetBounds(t *testing.T) {
	src := createTestImage(100, 100, color.RGBA{255, 0, 0, 255})
	sub := src.SubImage(image.Rect(20, 30, 70, 60))

	out := NormalizeImage(sub)
	if out.Bounds().Dx() != 50 || out.Bounds().Dy() != 30 {
		t.Fatalf("dimensions: got %dx%d, want 50x30", out.Bounds().Dx(), out.Bounds().Dy())
	}
	if c := out.NRGBAAt(0, 0); c.R != 255 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Errorf("sub-image content not preserved: got %v", c)
	}
}

func TestNormalize_MobileFormats(t *testing.T) {
	tests := []struct {
		file         string
		wantFormat   string
		wantW, wantH int
	}{
		{"blue-purple-pink.lossless.webp", "webp", 150, 100},
		{"camel.heic", "heic", 1596, 1064},
	}

	for _, tt := range tests {
		t.Run(tt.wantFormat, func(t *testing.T) {
			data, err := os.ReadFile(filepath.Join("testdata", tt.file))
			if err != nil {
				t.Fatalf("reading fixture: %v", err)
			}

			p, err := Normalize(data)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if p.SourceFormat != tt.wantFormat {
				t.Errorf("SourceFormat: got %s, want %s", p.SourceFormat, tt.wantFormat)
			}
			if p.Width != tt.wantW || p.Height != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", p.Width, p.Height, tt.wantW, tt.wantH)
			}
			if p.Width > MaxDimension || p.Height > MaxDimension {
				t.Errorf("dimensions %dx%d exceed bound %d", p.Width, p.Height, MaxDimension)
			}

			out := decodeOutput(t, p.Data)
			if _, ok := out.(*image.YCbCr); !ok {
				t.Errorf("decoded output should be three-channel YCbCr, got %T", out)
			}
			if out.Bounds().Dx() != p.Width || out.Bounds().Dy() != p.Height {
				t.Errorf("decoded %dx%d does not match payload %dx%d",
					out.Bounds().Dx(), out.Bounds().Dy(), p.Width, p.Height)
			}
		})
	}
}
