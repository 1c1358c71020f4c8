// Package openai implements the TTS Synthesizer using an OpenAI-compatible
// /audio/speech endpoint. Output is MP3.
package openai

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/LovitraMehta/ChattyBot/internal/config"
	"github.com/LovitraMehta/ChattyBot/internal/tts"
)

// maxAudioBytes caps how much of a speech response is buffered.
const maxAudioBytes = 20 << 20

// Synthesizer uses the OpenAI speech API. Its voices are multilingual, so the
// language only needs to be one the deployment is willing to speak.
type Synthesizer struct {
	client    *goopenai.Client
	model     string
	voice     string
	languages map[string]bool
}

// New creates a new OpenAI synthesizer from config. languages lists the codes
// it accepts; anything else fails with tts.ErrUnsupportedLanguage.
func New(cfg config.OpenAITTSConfig, languages []string) *Synthesizer {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = string(goopenai.TTSModel1)
	}
	voice := cfg.Voice
	if voice == "" {
		voice = string(goopenai.VoiceAlloy)
	}
	langs := make(map[string]bool, len(languages))
	for _, l := range languages {
		langs[l] = true
	}
	return &Synthesizer{
		client:    goopenai.NewClientWithConfig(clientCfg),
		model:     model,
		voice:     voice,
		languages: langs,
	}
}

// ContentType returns the MIME type of synthesized audio.
func (s *Synthesizer) ContentType() string { return "audio/mpeg" }

// Synthesize requests MP3 speech for text.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}
	if !s.languages[opts.Language] {
		return nil, fmt.Errorf("openai tts: %w %q", tts.ErrUnsupportedLanguage, opts.Language)
	}

	voice := opts.Voice
	if voice == "" {
		voice = s.voice
	}

	resp, err := s.client.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(s.model),
		Input:          text,
		Voice:          goopenai.SpeechVoice(voice),
		ResponseFormat: goopenai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(io.LimitReader(resp, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("reading speech: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech API returned no audio")
	}

	slog.Debug("openai speech complete", "language", opts.Language, "voice", voice, "audio_bytes", len(audio))
	return &tts.SynthesizeResult{Audio: audio, ContentType: s.ContentType()}, nil
}

// Close is a no-op for the OpenAI synthesizer.
func (s *Synthesizer) Close() error { return nil }
