package local

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LovitraMehta/ChattyBot/internal/config"
	"github.com/LovitraMehta/ChattyBot/internal/llm"
)

func TestCompleteOllamaGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"model":"llama3","response":"नमस्ते!","done":true}`)
	}))
	defer srv.Close()

	c := New(config.LocalLLMConfig{Endpoint: srv.URL + "/api/generate", MaxTokens: 150})
	text, err := c.Complete(context.Background(), llm.Request{System: "Respond in Hindi.", User: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "नमस्ते!", text)
	assert.Equal(t, "llama3", got["model"])
	assert.Equal(t, "Respond in Hindi.", got["system"])
	assert.Equal(t, "hello", got["prompt"])
	assert.Equal(t, false, got["stream"])
	assert.Equal(t, map[string]any{"num_predict": float64(150)}, got["options"])
}

func TestCompleteChatFormat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"Sure."}}]}`)
	}))
	defer srv.Close()

	c := New(config.LocalLLMConfig{Endpoint: srv.URL + "/v1/chat/completions", Model: "qwen2.5"})
	text, err := c.Complete(context.Background(), llm.Request{System: "s", User: "u", MaxTokens: 64})
	require.NoError(t, err)

	assert.Equal(t, "Sure.", text)
	assert.Equal(t, "qwen2.5", got["model"])
	assert.Equal(t, float64(64), got["max_tokens"])
	assert.Len(t, got["messages"], 2)
}

func TestExtractContent(t *testing.T) {
	_, err := extractContent([]byte(`not json`))
	assert.Error(t, err)

	_, err = extractContent([]byte(`{"choices":[]}`))
	assert.ErrorIs(t, err, llm.ErrEmptyCompletion)

	_, err = extractContent([]byte(`{"response":"   "}`))
	assert.ErrorIs(t, err, llm.ErrEmptyCompletion)

	text, err := extractContent([]byte(`{"response":"ok"}`))
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestCompleteStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(config.LocalLLMConfig{Endpoint: srv.URL + "/api/generate"})
	_, err := c.Complete(context.Background(), llm.Request{System: "s", User: "u"})
	assert.ErrorContains(t, err, "status 404")
}
