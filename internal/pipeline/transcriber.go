package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/LovitraMehta/ChattyBot/internal/asr"
	"github.com/LovitraMehta/ChattyBot/internal/language"
)

// disallowed matches everything except word characters, whitespace and .,!?'-
// Combining marks count as word characters so Devanagari vowel signs survive.
var disallowed = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s.,!?'-]`)

// Transcriber turns normalized audio into a sanitized transcript.
type Transcriber struct {
	rec asr.Recognizer
}

// NewTranscriber creates a transcriber backed by rec.
func NewTranscriber(rec asr.Recognizer) *Transcriber {
	return &Transcriber{rec: rec}
}

// Transcribe decodes the audio at path in lang. An empty result after
// sanitization fails with ErrNoSpeech.
func (t *Transcriber) Transcribe(ctx context.Context, path string, lang language.Code) (string, error) {
	raw, err := t.rec.Transcribe(ctx, path, asr.TranscribeOpts{Language: lang.String()})
	if err != nil {
		return "", fail(ErrTranscription, stageTranscribe, fmt.Errorf("%s: %w", t.rec.Name(), err))
	}
	text := sanitize(raw)
	if text == "" {
		return "", fail(ErrNoSpeech, stageTranscribe, nil)
	}
	return text, nil
}

func sanitize(s string) string {
	return strings.TrimSpace(disallowed.ReplaceAllString(s, ""))
}
