package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/ironsheep/note-extract/internal/config"
	"github.com/ironsheep/note-extract/internal/imaging"
	"github.com/rs/zerolog"
)

// Instruction is the fixed prompt sent alongside every image.
const Instruction = `Analyze the text in the provided image. Extract all readable content
and present it in a structured Markdown format that is clear, concise,
and well-organized.`

const (
	// MaxTokens is the response ceiling requested from remote providers.
	// Longer transcriptions are truncated by the service.
	MaxTokens = 4000

	// RequestTimeout bounds a single extraction request.
	RequestTimeout = 120 * time.Second
)

// Extractor turns one normalized image into Markdown text.
type Extractor interface {
	Extract(ctx context.Context, p *imaging.Payload) (string, error)
	ProviderName() string
}

// ServiceError reports a failed extraction request.
type ServiceError struct {
	// Provider is the backend name, e.g. "anthropic".
	Provider string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Message is the backend's description of the failure.
	Message string

	Err error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s service error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s service error: %s", e.Provider, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// New builds the Extractor selected by cfg.Provider.
//
// A missing API key is logged but not rejected. Every request then fails
// with the provider's authentication error, item by item.
func New(cfg *config.Config, logger zerolog.Logger) (Extractor, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			logger.Warn().Msg("ANTHROPIC_API_KEY is empty, extraction requests will be rejected")
		}
		return NewAnthropicProvider(cfg.AnthropicAPIKey, "", logger), nil

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			logger.Warn().Msg("OPENAI_API_KEY is empty, extraction requests will be rejected")
		}
		return NewOpenAIProvider(cfg.OpenAIAPIKey, ""), nil

	case config.ProviderTesseract:
		return NewTesseractProvider(cfg.TesseractLanguage)

	default:
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
}
