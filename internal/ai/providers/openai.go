package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mindwell-care/mindwell-backend-go/internal/ai"
	"github.com/mindwell-care/mindwell-backend-go/internal/config"
	"github.com/sirupsen/logrus"
)

// OpenAIProvider implements ai.Provider against an OpenAI-compatible
// chat completions API.
type OpenAIProvider struct {
	name         string
	client       *http.Client
	logger       *logrus.Logger
	apiKey       string
	baseURL      string
	defaultModel string
}

// NewOpenAIProvider creates a new OpenAI provider instance
func NewOpenAIProvider(cfg config.AIProviderConfig, logger *logrus.Logger) *OpenAIProvider {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	return &OpenAIProvider{
		name:         "openai",
		client:       &http.Client{Timeout: 60 * time.Second},
		logger:       logger,
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		defaultModel: model,
	}
}

// GetName returns the provider name
func (o *OpenAIProvider) GetName() string { return o.name }

// IsAvailable reports whether the provider is configured
func (o *OpenAIProvider) IsAvailable() bool { return o.apiKey != "" }

type openAIChatRequest struct {
	Model       string           `json:"model"`
	Messages    []ai.ChatMessage `json:"messages"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float64          `json:"temperature"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat performs a chat completion request
func (o *OpenAIProvider) Chat(ctx context.Context, messages []ai.ChatMessage, opts ai.ChatOptions) (*ai.ChatResponse, error) {
	if o.apiKey == "" {
		return nil, &ai.ProviderError{Provider: o.name, Type: "auth", Message: "API key is not configured"}
	}

	model := opts.Model
	if model == "" {
		model = o.defaultModel
	}

	payload, err := json.Marshal(openAIChatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return nil, &ai.ProviderError{Provider: o.name, Type: "response", Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, &ai.ProviderError{Provider: o.name, Type: "network", Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &ai.ProviderError{Provider: o.name, Type: "network", Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ai.ProviderError{Provider: o.name, Type: "network", Message: "failed to read response", Cause: err}
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ai.ProviderError{Provider: o.name, Type: "response", Message: "malformed response", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, &ai.ProviderError{Provider: o.name, Type: "response", Message: msg}
	}
	if len(parsed.Choices) == 0 {
		return nil, &ai.ProviderError{Provider: o.name, Type: "response", Message: "no choices returned"}
	}

	return &ai.ChatResponse{
		Content:  parsed.Choices[0].Message.Content,
		Model:    model,
		Provider: o.name,
	}, nil
}
