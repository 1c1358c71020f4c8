package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/LovitraMehta/ChattyBot/internal/language"
	"github.com/LovitraMehta/ChattyBot/internal/tts"
)

// DefaultSynthesisTimeout bounds a single TTS attempt.
const DefaultSynthesisTimeout = 30 * time.Second

// SynthesizedAudio is a speech artifact on disk.
type SynthesizedAudio struct {
	Path        string
	ContentType string
	Duration    time.Duration // zero until probed
	Language    language.Code // language of the attempt that succeeded
}

// Synthesizer speaks text into an artifact, falling back to English once.
type Synthesizer struct {
	tts        tts.Synthesizer
	timeout    time.Duration
	onFallback func()
}

// NewSynthesizer wraps backend. onFallback, if set, runs whenever the English
// retry is taken.
func NewSynthesizer(backend tts.Synthesizer, timeout time.Duration, onFallback func()) *Synthesizer {
	if timeout <= 0 {
		timeout = DefaultSynthesisTimeout
	}
	if onFallback == nil {
		onFallback = func() {}
	}
	return &Synthesizer{tts: backend, timeout: timeout, onFallback: onFallback}
}

// Synthesize speaks text in lang and writes the audio to outPath.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, lang language.Code, outPath string, logger *slog.Logger) (*SynthesizedAudio, error) {
	res, used, err := s.synthesizeWithFallback(ctx, text, lang, logger)
	if err != nil {
		return nil, fail(ErrSynthesis, stageSynthesize, err)
	}
	if err := os.WriteFile(outPath, res.Audio, 0o644); err != nil {
		return nil, fail(ErrSynthesis, stageSynthesize, fmt.Errorf("writing output: %w", err))
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = s.tts.ContentType()
	}
	return &SynthesizedAudio{Path: outPath, ContentType: contentType, Language: used}, nil
}

// synthesizeWithFallback tries lang, then retries exactly once in English on
// any error. The retry happens even when lang is already English.
func (s *Synthesizer) synthesizeWithFallback(ctx context.Context, text string, lang language.Code, logger *slog.Logger) (*tts.SynthesizeResult, language.Code, error) {
	res, err := s.attempt(ctx, text, lang)
	if err == nil {
		return res, lang, nil
	}

	logger.Warn("synthesis failed, retrying in English", "language", lang, "error", err)
	s.onFallback()

	res, retryErr := s.attempt(ctx, text, language.English)
	if retryErr != nil {
		return nil, "", fmt.Errorf("english fallback: %w (first attempt in %s: %v)", retryErr, lang, err)
	}
	return res, language.English, nil
}

func (s *Synthesizer) attempt(ctx context.Context, text string, lang language.Code) (*tts.SynthesizeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.tts.Synthesize(ctx, text, tts.SynthesizeOpts{Language: lang.String()})
	if err != nil {
		return nil, err
	}
	if len(res.Audio) == 0 {
		return nil, fmt.Errorf("backend returned no audio")
	}
	return res, nil
}
