package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestAnthropicProvider_Extract(t *testing.T) {
	payload := testPayload(t)

	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key: got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("anthropic-version: got %q", r.Header.Get("anthropic-version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"# Notes\n\nhello"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", srv.URL, zerolog.Nop())
	text, err := p.Extract(context.Background(), payload)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if text != "# Notes\n\nhello" {
		t.Errorf("text: got %q", text)
	}

	if got.Model != AnthropicModel {
		t.Errorf("model: got %s, want %s", got.Model, AnthropicModel)
	}
	if got.MaxTokens != MaxTokens {
		t.Errorf("max_tokens: got %d, want %d", got.MaxTokens, MaxTokens)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("expected one user message, got %+v", got.Messages)
	}
	blocks := got.Messages[0].Content
	if len(blocks) != 2 {
		t.Fatalf("expected 2 content blocks, got %d", len(blocks))
	}
	if blocks[0].Type != "text" || blocks[0].Text != Instruction {
		t.Errorf("first block should carry the instruction, got %+v", blocks[0])
	}
	if blocks[1].Type != "image" || blocks[1].Source == nil {
		t.Fatalf("second block should be an image, got %+v", blocks[1])
	}
	if blocks[1].Source.Type != "base64" || blocks[1].Source.MediaType != "image/jpeg" {
		t.Errorf("image source: got %+v", blocks[1].Source)
	}
	if blocks[1].Source.Data != payload.Base64 {
		t.Error("image data does not match payload")
	}
}

func TestAnthropicProvider_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "auth failure",
			status:     http.StatusUnauthorized,
			body:       `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "invalid x-api-key",
		},
		{
			name:       "plain text error",
			status:     http.StatusBadGateway,
			body:       "upstream unavailable",
			wantStatus: http.StatusBadGateway,
			wantMsg:    "upstream unavailable",
		},
		{
			name:       "empty content",
			status:     http.StatusOK,
			body:       `{"content":[]}`,
			wantStatus: http.StatusOK,
			wantMsg:    "no text",
		},
		{
			name:       "malformed body",
			status:     http.StatusOK,
			body:       `{"content":`,
			wantStatus: http.StatusOK,
			wantMsg:    "malformed response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewAnthropicProvider("k", srv.URL, zerolog.Nop())
			_, err := p.Extract(context.Background(), testPayload(t))
			if err == nil {
				t.Fatal("Extract should fail")
			}

			var svcErr *ServiceError
			if !errors.As(err, &svcErr) {
				t.Fatalf("expected *ServiceError, got %T: %v", err, err)
			}
			if svcErr.Provider != "anthropic" {
				t.Errorf("Provider: got %s", svcErr.Provider)
			}
			if svcErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode: got %d, want %d", svcErr.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(svcErr.Message, tt.wantMsg) {
				t.Errorf("Message %q should contain %q", svcErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestAnthropicProvider_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewAnthropicProvider("k", url, zerolog.Nop())
	_, err := p.Extract(context.Background(), testPayload(t))

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
	if svcErr.StatusCode != 0 {
		t.Errorf("StatusCode: got %d, want 0", svcErr.StatusCode)
	}
	if svcErr.Unwrap() == nil {
		t.Error("network failure should wrap the transport error")
	}
}

func TestAnthropicProvider_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewAnthropicProvider("k", srv.URL, zerolog.Nop())
	if _, err := p.Extract(ctx, testPayload(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestServiceError_Error(t *testing.T) {
	withStatus := &ServiceError{Provider: "anthropic", StatusCode: 401, Message: "invalid x-api-key"}
	if got := withStatus.Error(); got != "anthropic service error (status 401): invalid x-api-key" {
		t.Errorf("Error(): got %q", got)
	}

	noStatus := &ServiceError{Provider: "openai", Message: "connection refused"}
	if got := noStatus.Error(); got != "openai service error: connection refused" {
		t.Errorf("Error(): got %q", got)
	}
}
