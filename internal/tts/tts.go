// Package tts defines the interface for text-to-speech synthesis.
//
// chattybot speaks replies in the language the user spoke. A backend must
// fail, not silently switch voices, when it cannot speak the requested
// language; the pipeline owns the fallback decision.
package tts

import (
	"context"
	"errors"
)

// ErrUnsupportedLanguage is returned when no voice is configured for a language.
var ErrUnsupportedLanguage = errors.New("no voice for language")

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the ISO-639-1 code (e.g., "en", "hi") to select the voice.
	Language string

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Synthesize generates a complete audio file from the given text.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// ContentType is the MIME type of every file this backend produces.
	ContentType() string

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is the synthesized audio as a complete file (WAV, MP3).
	Audio []byte

	// ContentType is the MIME type of the audio (e.g., "audio/wav").
	ContentType string
}
