//go:build tesseract

package extract

import (
	"context"
	"strings"

	"github.com/ironsheep/note-extract/internal/imaging"
	"github.com/otiai10/gosseract/v2"
)

// TesseractProvider extracts text locally with the Tesseract engine.
//
// Tesseract returns plain text, not structured Markdown. Paragraph breaks are
// kept, which renders acceptably as Markdown paragraphs.
type TesseractProvider struct {
	language string
}

// NewTesseractProvider creates a provider for the given Tesseract language
// code, e.g. "eng". The language data must be installed.
func NewTesseractProvider(language string) (*TesseractProvider, error) {
	if language == "" {
		language = "eng"
	}
	return &TesseractProvider{language: language}, nil
}

// ProviderName returns "tesseract".
func (p *TesseractProvider) ProviderName() string {
	return "tesseract"
}

// Extract runs OCR over the JPEG bytes of payload.
//
// The context is checked before OCR starts; Tesseract itself cannot be
// interrupted.
func (p *TesseractProvider) Extract(ctx context.Context, payload *imaging.Payload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &ServiceError{Provider: p.ProviderName(), Message: err.Error(), Err: err}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(p.language); err != nil {
		return "", &ServiceError{Provider: p.ProviderName(), Message: "failed to set language: " + err.Error(), Err: err}
	}
	if err := client.SetImageFromBytes(payload.Data); err != nil {
		return "", &ServiceError{Provider: p.ProviderName(), Message: "failed to set image: " + err.Error(), Err: err}
	}

	text, err := client.Text()
	if err != nil {
		return "", &ServiceError{Provider: p.ProviderName(), Message: "OCR failed: " + err.Error(), Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ServiceError{Provider: p.ProviderName(), Message: "no text recognised"}
	}
	return text, nil
}
