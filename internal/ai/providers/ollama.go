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

// OllamaProvider implements ai.Provider against a local Ollama server.
type OllamaProvider struct {
	name         string
	client       *http.Client
	logger       *logrus.Logger
	baseURL      string
	defaultModel string
}

// NewOllamaProvider creates a new Ollama provider instance
func NewOllamaProvider(cfg config.AIProviderConfig, logger *logrus.Logger) *OllamaProvider {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.DefaultModel
	if model == "" {
		model = "llama3"
	}

	return &OllamaProvider{
		name:         "ollama",
		client:       &http.Client{Timeout: 120 * time.Second},
		logger:       logger,
		baseURL:      baseURL,
		defaultModel: model,
	}
}

// GetName returns the provider name
func (o *OllamaProvider) GetName() string { return o.name }

// IsAvailable reports whether the provider is configured
func (o *OllamaProvider) IsAvailable() bool { return o.baseURL != "" }

type ollamaChatRequest struct {
	Model    string           `json:"model"`
	Messages []ai.ChatMessage `json:"messages"`
	Stream   bool             `json:"stream"`
	Options  ollamaOptions    `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error,omitempty"`
}

// Chat performs a chat completion request
func (o *OllamaProvider) Chat(ctx context.Context, messages []ai.ChatMessage, opts ai.ChatOptions) (*ai.ChatResponse, error) {
	model := opts.Model
	if model == "" {
		model = o.defaultModel
	}

	payload, err := json.Marshal(ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	})
	if err != nil {
		return nil, &ai.ProviderError{Provider: o.name, Type: "response", Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, &ai.ProviderError{Provider: o.name, Type: "network", Message: "failed to build request", Cause: err}
	}
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

	var parsed ollamaChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &ai.ProviderError{Provider: o.name, Type: "response", Message: "malformed response", Cause: err}
	}
	if resp.StatusCode != http.StatusOK || parsed.Error != "" {
		msg := parsed.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, &ai.ProviderError{Provider: o.name, Type: "response", Message: msg}
	}

	return &ai.ChatResponse{
		Content:  parsed.Message.Content,
		Model:    model,
		Provider: o.name,
	}, nil
}
