// Package asr defines the interface for speech recognition backends.
//
// A recognizer works on normalized audio files (16 kHz mono WAV) and offers
// two operations: spoken-language identification and transcription with a
// forced language. chattybot ships with two backends: a self-hosted
// whisper-asr-webservice and any OpenAI-compatible Audio API.
package asr

import "context"

// TranscribeOpts controls transcription behavior.
type TranscribeOpts struct {
	// Language is the ISO-639-1 code to decode in. Recognizers must not
	// re-detect when it is set.
	Language string

	// Prompt provides context to improve recognition of domain-specific terms.
	Prompt string
}

// Recognizer is the interface for language detection and transcription.
type Recognizer interface {
	// Name returns the backend identifier (e.g., "whisper", "openai").
	Name() string

	// DetectLanguage returns a probability per ISO-639-1 code. Backends that
	// only report the winning language return a single entry.
	DetectLanguage(ctx context.Context, audioPath string) (map[string]float64, error)

	// Transcribe converts the audio file to raw, unsanitized text.
	Transcribe(ctx context.Context, audioPath string, opts TranscribeOpts) (string, error)

	// Close releases any resources held by the recognizer.
	Close() error
}
