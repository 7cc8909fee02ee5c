package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ironsheep/note-extract/internal/imaging"
	"github.com/rs/zerolog"
)

const (
	// AnthropicModel is the Claude model used for extraction.
	AnthropicModel = "claude-3-7-sonnet-20250219"

	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"

	// maxErrorBody limits how much of an error response is read.
	maxErrorBody = 4096
)

// AnthropicProvider extracts text with the Claude Messages API.
type AnthropicProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  zerolog.Logger
}

// NewAnthropicProvider creates a provider. An empty baseURL selects the
// public API endpoint.
func NewAnthropicProvider(apiKey, baseURL string, logger zerolog.Logger) *AnthropicProvider {
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	return &AnthropicProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   AnthropicModel,
		client: &http.Client{
			Timeout: RequestTimeout,
		},
		logger: logger.With().Str("provider", "anthropic").Logger(),
	}
}

// ProviderName returns "anthropic".
func (p *AnthropicProvider) ProviderName() string {
	return "anthropic"
}

// Messages API request/response structures
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Extract sends one image and returns the text of the first content block.
func (p *AnthropicProvider) Extract(ctx context.Context, payload *imaging.Payload) (string, error) {
	reqBody := anthropicRequest{
		Model:     p.model,
		MaxTokens: MaxTokens,
		Messages: []anthropicMessage{
			{
				Role: "user",
				Content: []anthropicBlock{
					{Type: "text", Text: Instruction},
					{
						Type: "image",
						Source: &anthropicImageSource{
							Type:      "base64",
							MediaType: payload.MediaType,
							Data:      payload.Base64,
						},
					},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &ServiceError{Provider: p.ProviderName(), Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &ServiceError{
			Provider:   p.ProviderName(),
			StatusCode: resp.StatusCode,
			Message:    anthropicErrorMessage(body),
		}
	}

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ServiceError{
			Provider:   p.ProviderName(),
			StatusCode: resp.StatusCode,
			Message:    "malformed response: " + err.Error(),
			Err:        err,
		}
	}

	if len(parsed.Content) == 0 || parsed.Content[0].Text == "" {
		return "", &ServiceError{
			Provider:   p.ProviderName(),
			StatusCode: resp.StatusCode,
			Message:    "response contained no text",
		}
	}

	if parsed.StopReason == "max_tokens" {
		p.logger.Warn().Int("max_tokens", MaxTokens).Msg("response truncated at token ceiling")
	}

	return parsed.Content[0].Text, nil
}

// anthropicErrorMessage pulls the message out of an API error body, falling
// back to the raw body text.
func anthropicErrorMessage(body []byte) string {
	var apiErr anthropicErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		if apiErr.Error.Type != "" {
			return apiErr.Error.Type + ": " + apiErr.Error.Message
		}
		return apiErr.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty error response"
	}
	return msg
}
