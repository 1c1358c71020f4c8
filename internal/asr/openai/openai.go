// Package openai implements the Recognizer interface using an
// OpenAI-compatible Audio Transcription API (Whisper / gpt-4o-transcribe).
package openai

import (
	"context"
	"fmt"
	"log/slog"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/LovitraMehta/ChattyBot/internal/asr"
	"github.com/LovitraMehta/ChattyBot/internal/config"
	"github.com/LovitraMehta/ChattyBot/internal/language"
)

// Recognizer uses the OpenAI Audio API for detection and transcription.
type Recognizer struct {
	client *goopenai.Client
	model  string
}

// New creates a new OpenAI recognizer from config.
func New(cfg config.OpenAIASRConfig) *Recognizer {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = goopenai.Whisper1
	}
	return &Recognizer{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// Name returns the backend identifier.
func (r *Recognizer) Name() string { return "openai" }

// DetectLanguage transcribes without a language hint and reports the language
// the API settled on. The API does not expose a full distribution, so the
// result holds a single entry.
func (r *Recognizer) DetectLanguage(ctx context.Context, audioPath string) (map[string]float64, error) {
	resp, err := r.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    r.model,
		FilePath: audioPath,
		Format:   goopenai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("detect language: %w", err)
	}
	// OpenAI returns full language names ("english"); normalise to ISO-639-1.
	code := language.FromName(resp.Language)
	if code == "" {
		return nil, fmt.Errorf("detect language: no language in response")
	}
	slog.Debug("openai language detected", "language", code)
	return map[string]float64{code: 1}, nil
}

// Transcribe sends audio to the transcription API with a forced language.
func (r *Recognizer) Transcribe(ctx context.Context, audioPath string, opts asr.TranscribeOpts) (string, error) {
	resp, err := r.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    r.model,
		FilePath: audioPath,
		Language: opts.Language,
		Prompt:   opts.Prompt,
		Format:   goopenai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	slog.Debug("openai transcription complete", "text_length", len(resp.Text))
	return resp.Text, nil
}

// Close is a no-op for the OpenAI recognizer.
func (r *Recognizer) Close() error { return nil }
