package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFFmpeg returns a Runner that writes body to the last argument (the
// output path) and records the invocation.
func fakeFFmpeg(body []byte, calls *[][]string) Runner {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, append([]string{name}, args...))
		if body != nil {
			if err := os.WriteFile(args[len(args)-1], body, 0o644); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

func TestNormalizeRejectsSmallPayload(t *testing.T) {
	dir := t.TempDir()
	var calls [][]string
	n := NewNormalizer("ffmpeg", 0, 0, fakeFFmpeg([]byte("wav"), &calls))

	for _, raw := range [][]byte{nil, bytes.Repeat([]byte{1}, DefaultMinBytes-1)} {
		err := n.Normalize(context.Background(), raw, filepath.Join(dir, "in.webm"), filepath.Join(dir, "in.wav"))
		assert.ErrorIs(t, err, ErrTooSmall)
	}
	assert.Empty(t, calls, "ffmpeg must not run for undersized input")

	_, err := os.Stat(filepath.Join(dir, "in.webm"))
	assert.True(t, os.IsNotExist(err))
}

func TestNormalizeInvokesFFmpegWithFixedFormat(t *testing.T) {
	dir := t.TempDir()
	upload := filepath.Join(dir, "input.webm")
	out := filepath.Join(dir, "input.wav")
	var calls [][]string
	n := NewNormalizer("/usr/bin/ffmpeg", 0, time.Second, fakeFFmpeg([]byte("RIFF...."), &calls))

	raw := bytes.Repeat([]byte{7}, DefaultMinBytes)
	require.NoError(t, n.Normalize(context.Background(), raw, upload, out))

	require.Len(t, calls, 1)
	assert.Equal(t, []string{
		"/usr/bin/ffmpeg", "-y", "-i", upload,
		"-ar", "16000", "-ac", "1", "-acodec", "pcm_s16le", out,
	}, calls[0])

	saved, err := os.ReadFile(upload)
	require.NoError(t, err)
	assert.Equal(t, raw, saved)
}

func TestNormalizeConversionFailures(t *testing.T) {
	raw := bytes.Repeat([]byte{7}, DefaultMinBytes)

	t.Run("non-zero exit", func(t *testing.T) {
		dir := t.TempDir()
		failing := func(context.Context, string, ...string) ([]byte, error) {
			return nil, errors.New("exit status 1")
		}
		n := NewNormalizer("ffmpeg", 0, 0, failing)
		err := n.Normalize(context.Background(), raw, filepath.Join(dir, "a.webm"), filepath.Join(dir, "a.wav"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exit status 1")
	})

	t.Run("no output file", func(t *testing.T) {
		dir := t.TempDir()
		var calls [][]string
		n := NewNormalizer("ffmpeg", 0, 0, fakeFFmpeg(nil, &calls))
		err := n.Normalize(context.Background(), raw, filepath.Join(dir, "a.webm"), filepath.Join(dir, "a.wav"))
		assert.ErrorIs(t, err, ErrNoOutput)
	})

	t.Run("empty output file", func(t *testing.T) {
		dir := t.TempDir()
		var calls [][]string
		n := NewNormalizer("ffmpeg", 0, 0, fakeFFmpeg([]byte{}, &calls))
		err := n.Normalize(context.Background(), raw, filepath.Join(dir, "a.webm"), filepath.Join(dir, "a.wav"))
		assert.ErrorIs(t, err, ErrNoOutput)
	})
}

func TestProberDuration(t *testing.T) {
	var gotArgs []string
	run := func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte("31.250000\n"), nil
	}
	p := NewProber("", run)

	d, err := p.Duration(context.Background(), "/tmp/out.mp3")
	require.NoError(t, err)
	assert.Equal(t, 31250*time.Millisecond, d)
	assert.Equal(t, []string{
		"ffprobe", "-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", "/tmp/out.mp3",
	}, gotArgs)
}

func TestProberFailures(t *testing.T) {
	for name, out := range map[string]string{
		"not a number": "N/A\n",
		"empty":        "",
		"negative":     "-1",
		"nan":          "NaN",
	} {
		t.Run(name, func(t *testing.T) {
			p := NewProber("", func(context.Context, string, ...string) ([]byte, error) {
				return []byte(out), nil
			})
			_, err := p.Duration(context.Background(), "x")
			assert.Error(t, err)
		})
	}

	p := NewProber("", func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exec: not found")
	})
	_, err := p.Duration(context.Background(), "x")
	assert.ErrorContains(t, err, "ffprobe")
}

func TestExtFromContentType(t *testing.T) {
	assert.Equal(t, ".webm", ExtFromContentType("audio/webm;codecs=opus"))
	assert.Equal(t, ".wav", ExtFromContentType("audio/wav"))
	assert.Equal(t, ".mp3", ExtFromContentType("audio/mpeg"))
	assert.Equal(t, ".ogg", ExtFromContentType("audio/ogg"))
	assert.Equal(t, ".webm", ExtFromContentType("application/octet-stream"))
	assert.Equal(t, "audio/mpeg", ContentTypeFromExt(".mp3"))
	assert.Equal(t, "audio/wav", ContentTypeFromExt(".wav"))
}
