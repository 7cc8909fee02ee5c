package extract

import (
	"context"
	"errors"
	"net/http"

	"github.com/ironsheep/note-extract/internal/imaging"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIModel is the vision-capable chat model used by OpenAIProvider.
const OpenAIModel = openai.GPT4o

// OpenAIProvider extracts text through the Chat Completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider. An empty baseURL selects the public
// API endpoint.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: RequestTimeout}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  OpenAIModel,
	}
}

// ProviderName returns "openai".
func (p *OpenAIProvider) ProviderName() string {
	return "openai"
}

// Extract sends one image as an inline data URL and returns the first choice.
func (p *OpenAIProvider) Extract(ctx context.Context, payload *imaging.Payload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: Instruction},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    "data:" + payload.MediaType + ";base64," + payload.Base64,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", p.serviceError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &ServiceError{Provider: p.ProviderName(), Message: "response contained no text"}
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) serviceError(err error) *ServiceError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ServiceError{
			Provider:   p.ProviderName(),
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ServiceError{
			Provider:   p.ProviderName(),
			StatusCode: reqErr.HTTPStatusCode,
			Message:    reqErr.Error(),
			Err:        err,
		}
	}

	return &ServiceError{Provider: p.ProviderName(), Message: err.Error(), Err: err}
}
