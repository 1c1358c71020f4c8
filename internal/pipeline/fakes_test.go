package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LovitraMehta/ChattyBot/internal/asr"
	"github.com/LovitraMehta/ChattyBot/internal/audio"
	"github.com/LovitraMehta/ChattyBot/internal/llm"
	"github.com/LovitraMehta/ChattyBot/internal/tts"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeFFmpeg returns a normalizer whose ffmpeg writes a small WAV to the last
// argument, or fails with err. Like the real binary it refuses to write over
// its input.
func fakeFFmpeg(err error) *audio.Normalizer {
	run := func(_ context.Context, _ string, args ...string) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		out := args[len(args)-1]
		for i, a := range args[:len(args)-1] {
			if a == "-i" && i+1 < len(args) && args[i+1] == out {
				return []byte("Output same as Input #0 - exiting"), errors.New("exit status 1")
			}
		}
		return nil, os.WriteFile(out, []byte("RIFF....WAVE"), 0o644)
	}
	return audio.NewNormalizer("ffmpeg", audio.DefaultMinBytes, 0, run)
}

type fakeRecognizer struct {
	probs      map[string]float64
	detectErr  error
	transcript string
	err        error

	gotLanguage string
}

func (f *fakeRecognizer) Name() string { return "fake" }

func (f *fakeRecognizer) DetectLanguage(context.Context, string) (map[string]float64, error) {
	return f.probs, f.detectErr
}

func (f *fakeRecognizer) Transcribe(_ context.Context, _ string, opts asr.TranscribeOpts) (string, error) {
	f.gotLanguage = opts.Language
	return f.transcript, f.err
}

func (f *fakeRecognizer) Close() error { return nil }

type fakeCompleter struct {
	reply string
	err   error
	block bool // wait for the context to expire

	mu    sync.Mutex
	calls []llm.Request
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeCompleter) Close() error { return nil }

// fakeSpeech fails for languages in failFor and otherwise returns the text
// as the audio bytes.
type fakeSpeech struct {
	failFor map[string]bool

	calls []string // languages requested, in order
	texts []string
}

func (f *fakeSpeech) Synthesize(_ context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	f.calls = append(f.calls, opts.Language)
	f.texts = append(f.texts, text)
	if f.failFor[opts.Language] {
		return nil, errors.New("voice unavailable")
	}
	return &tts.SynthesizeResult{Audio: []byte("speech:" + text), ContentType: "audio/wav"}, nil
}

func (f *fakeSpeech) ContentType() string { return "audio/wav" }
func (f *fakeSpeech) Close() error        { return nil }

// fakeProber returns durations in order, repeating the last one.
type fakeProber struct {
	durations []time.Duration
	err       error
	calls     int
}

func (f *fakeProber) Duration(context.Context, string) (time.Duration, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	i := f.calls - 1
	if i >= len(f.durations) {
		i = len(f.durations) - 1
	}
	return f.durations[i], nil
}

// countFiles returns the number of entries in each directory.
func countFiles(t *testing.T, dirs ...string) int {
	t.Helper()
	n := 0
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		n += len(entries)
	}
	return n
}
