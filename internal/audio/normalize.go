package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Fixed output format of the normalizer.
const (
	SampleRate = 16000
	Channels   = 1
	Codec      = "pcm_s16le"

	// DefaultMinBytes is the smallest upload considered a real recording.
	DefaultMinBytes = 2048
)

var (
	// ErrTooSmall is returned when the upload is missing or below the minimum size.
	ErrTooSmall = errors.New("audio payload too small")

	// ErrNoOutput is returned when ffmpeg exits cleanly but writes nothing.
	ErrNoOutput = errors.New("conversion produced no output")
)

// Normalizer converts uploaded audio into 16 kHz mono signed 16-bit PCM WAV.
type Normalizer struct {
	ffmpeg   string
	minBytes int
	timeout  time.Duration
	run      Runner
}

// NewNormalizer creates a normalizer that shells out to the ffmpeg binary at
// ffmpegPath. A nil run uses ExecRunner.
func NewNormalizer(ffmpegPath string, minBytes int, timeout time.Duration, run Runner) *Normalizer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if minBytes <= 0 {
		minBytes = DefaultMinBytes
	}
	if run == nil {
		run = ExecRunner
	}
	return &Normalizer{ffmpeg: ffmpegPath, minBytes: minBytes, timeout: timeout, run: run}
}

// Normalize writes raw to uploadPath and converts it into outPath. The caller
// owns both files. Size violations return ErrTooSmall before anything is
// written.
func (n *Normalizer) Normalize(ctx context.Context, raw []byte, uploadPath, outPath string) error {
	if len(raw) < n.minBytes {
		return fmt.Errorf("%w: %d bytes, need at least %d", ErrTooSmall, len(raw), n.minBytes)
	}

	if err := os.WriteFile(uploadPath, raw, 0o644); err != nil {
		return fmt.Errorf("saving upload: %w", err)
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	args := []string{
		"-y",
		"-i", uploadPath,
		"-ar", fmt.Sprint(SampleRate),
		"-ac", fmt.Sprint(Channels),
		"-acodec", Codec,
		outPath,
	}
	slog.Debug("ffmpeg normalize", "input", uploadPath, "output", outPath)
	if _, err := n.run(ctx, n.ffmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		return ErrNoOutput
	}
	return nil
}

// ExtFromContentType maps an audio MIME type to a file extension. Browsers
// record webm/opus by default, so unknown types are treated as webm.
func ExtFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "m4a"), strings.Contains(ct, "mp4"):
		return ".m4a"
	default:
		return ".webm"
	}
}

// ContentTypeFromExt is the inverse of ExtFromContentType for served output.
func ContentTypeFromExt(ext string) string {
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".webm":
		return "audio/webm"
	default:
		return "audio/wav"
	}
}
