package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is on any error returned by Process.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrConversion    = errors.New("conversion failure")
	ErrNoSpeech      = errors.New("no speech detected")
	ErrTranscription = errors.New("transcription failure")
	ErrUpstream      = errors.New("upstream error")
	ErrSynthesis     = errors.New("synthesis failure")

	// ErrProbe is never returned by Process; the duration guard logs it and
	// keeps the unprobed audio.
	ErrProbe = errors.New("probe failure")
)

var kindLabels = []struct {
	kind  error
	label string
}{
	{ErrInvalidInput, "invalid_input"},
	{ErrConversion, "conversion_failure"},
	{ErrNoSpeech, "no_speech_detected"},
	{ErrTranscription, "transcription_failure"},
	{ErrUpstream, "upstream_error"},
	{ErrSynthesis, "synthesis_failure"},
	{ErrProbe, "probe_failure"},
}

// Error is a pipeline failure tagged with its kind and the stage that raised it.
type Error struct {
	Kind  error
	Stage string
	Err   error
}

func fail(kind error, stage string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Is matches the error's kind sentinel.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// KindLabel returns a metric-friendly name for err's kind, or "internal" when
// err carries none.
func KindLabel(err error) string {
	for _, k := range kindLabels {
		if errors.Is(err, k.kind) {
			return k.label
		}
	}
	return "internal"
}
