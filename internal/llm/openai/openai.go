// Package openai implements the Completer interface against any
// OpenAI-compatible Chat Completions API. The default configuration points
// at OpenRouter.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/LovitraMehta/ChattyBot/internal/config"
	"github.com/LovitraMehta/ChattyBot/internal/llm"
)

// Completer uses an OpenAI-compatible chat completion endpoint.
type Completer struct {
	client    *goopenai.Client
	model     string
	maxTokens int
}

// New creates a completer from config. Referer and Title are sent as the
// HTTP-Referer and X-Title attribution headers OpenRouter expects.
func New(cfg config.OpenAILLMConfig) *Completer {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	headers := http.Header{}
	if cfg.Referer != "" {
		headers.Set("HTTP-Referer", cfg.Referer)
	}
	if cfg.Title != "" {
		headers.Set("X-Title", cfg.Title)
	}
	clientCfg.HTTPClient = &http.Client{
		Transport: &headerTransport{headers: headers, base: http.DefaultTransport},
	}

	return &Completer{
		client:    goopenai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Name returns the backend identifier.
func (c *Completer) Name() string { return "openai" }

// Complete sends the system and user messages and returns choices[0].
func (c *Completer) Complete(ctx context.Context, req llm.Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from chat API: %w", llm.ErrEmptyCompletion)
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", llm.ErrEmptyCompletion
	}
	slog.Debug("chat completion complete", "model", c.model, "text_length", len(content))
	return content, nil
}

// Close is a no-op for the OpenAI completer.
func (c *Completer) Close() error { return nil }

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	headers http.Header
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) > 0 {
		req = req.Clone(req.Context())
		for k, vs := range t.headers {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}
	}
	return t.base.RoundTrip(req)
}
