package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/LovitraMehta/ChattyBot/internal/asr"
	"github.com/LovitraMehta/ChattyBot/internal/language"
)

var errEmptyDistribution = errors.New("empty language distribution")

// Detector identifies the spoken language of normalized audio. It never fails.
type Detector struct {
	rec asr.Recognizer
}

// NewDetector creates a detector backed by rec.
func NewDetector(rec asr.Recognizer) *Detector {
	return &Detector{rec: rec}
}

// Detect returns the clamped language of the audio at path.
func (d *Detector) Detect(ctx context.Context, path string, logger *slog.Logger) language.Code {
	probs, err := d.rec.DetectLanguage(ctx, path)
	code, raw, err := resolveLanguage(probs, err)
	switch {
	case err != nil:
		logger.Warn("language detection failed, defaulting", "language", code, "error", err)
	case raw != string(code):
		logger.Info("unsupported language, defaulting", "detected", raw, "language", code)
	default:
		logger.Debug("language detected", "language", code, "probability", probs[raw])
	}
	return code
}

// resolveLanguage picks the most probable language and clamps it to the
// supported set. Ties go to the lexicographically smaller code. A backend
// error or an empty distribution yields the default language together with
// the reason; raw is the unclamped winner.
func resolveLanguage(probs map[string]float64, err error) (code language.Code, raw string, reason error) {
	if err != nil {
		return language.Default, "", err
	}
	if len(probs) == 0 {
		return language.Default, "", errEmptyDistribution
	}

	codes := make([]string, 0, len(probs))
	for c := range probs {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	best := codes[0]
	for _, c := range codes[1:] {
		if probs[c] > probs[best] {
			best = c
		}
	}
	return language.Clamp(best), best, nil
}
