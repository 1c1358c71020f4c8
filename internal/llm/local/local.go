// Package local implements the Completer interface using a self-hosted model.
//
// It supports Ollama's /api/generate and any OpenAI-compatible chat endpoint
// (Ollama, vLLM, llama.cpp server).
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/LovitraMehta/ChattyBot/internal/config"
	"github.com/LovitraMehta/ChattyBot/internal/llm"
)

// Completer uses a self-hosted model for reply generation.
type Completer struct {
	endpoint  string
	model     string
	maxTokens int
	client    *http.Client
}

// New creates a new local completer from config.
func New(cfg config.LocalLLMConfig) *Completer {
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}
	return &Completer{
		endpoint:  cfg.Endpoint,
		model:     model,
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{},
	}
}

// Name returns the backend identifier.
func (c *Completer) Name() string { return "local" }

// Complete sends the prompt to the local LLM endpoint.
func (c *Completer) Complete(ctx context.Context, req llm.Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	// Ollama's native endpoint takes system/prompt; everything else gets the chat format.
	var reqBody map[string]any
	if strings.HasSuffix(c.endpoint, "/api/generate") {
		reqBody = map[string]any{
			"model":  c.model,
			"system": req.System,
			"prompt": req.User,
			"stream": false,
		}
		if maxTokens > 0 {
			reqBody["options"] = map[string]any{"num_predict": maxTokens}
		}
	} else {
		reqBody = map[string]any{
			"model": c.model,
			"messages": []map[string]string{
				{"role": "system", "content": req.System},
				{"role": "user", "content": req.User},
			},
			"stream": false,
		}
		if maxTokens > 0 {
			reqBody["max_tokens"] = maxTokens
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("local LLM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("local LLM failed (status %d): %s", resp.StatusCode, respBody)
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading LLM response: %w", err)
	}

	content, err := extractContent(respData)
	if err != nil {
		return "", err
	}

	slog.Debug("local completion complete", "model", c.model, "text_length", len(content))
	return content, nil
}

// Close is a no-op for the local completer.
func (c *Completer) Close() error { return nil }

// extractContent accepts either {"choices":[{"message":{"content":...}}]} or
// Ollama's {"response": ...}. Anything else is a malformed response.
func extractContent(data []byte) (string, error) {
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Response *string `json:"response"`
	}
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return "", fmt.Errorf("decoding LLM response: %w", err)
	}

	var content string
	switch {
	case len(chatResp.Choices) > 0:
		content = chatResp.Choices[0].Message.Content
	case chatResp.Response != nil:
		content = *chatResp.Response
	}
	if strings.TrimSpace(content) == "" {
		return "", llm.ErrEmptyCompletion
	}
	return content, nil
}
