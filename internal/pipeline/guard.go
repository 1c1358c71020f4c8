package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/LovitraMehta/ChattyBot/internal/language"
)

// DefaultDurationBudget is the longest reply spoken as generated.
const DefaultDurationBudget = 30 * time.Second

// Prober measures the duration of a media file.
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Guard keeps spoken replies within the duration budget by replacing
// overlong ones with a short notice.
type Guard struct {
	prober    Prober
	synth     *Synthesizer
	budget    time.Duration
	notices   map[language.Code]string
	onOutcome func(result string)
}

// NewGuard creates a guard. notices overrides the built-in short notices per
// language code; onOutcome, if set, receives within_budget, replaced or
// probe_failed.
func NewGuard(prober Prober, synth *Synthesizer, budget time.Duration, notices map[string]string, onOutcome func(string)) *Guard {
	if budget <= 0 {
		budget = DefaultDurationBudget
	}
	if onOutcome == nil {
		onOutcome = func(string) {}
	}
	n := make(map[language.Code]string, len(notices))
	for code, text := range notices {
		if text != "" {
			n[language.Code(code)] = text
		}
	}
	return &Guard{prober: prober, synth: synth, budget: budget, notices: n, onOutcome: onOutcome}
}

func (g *Guard) notice(lang language.Code) string {
	if text, ok := g.notices[lang]; ok {
		return text
	}
	return lang.ShortNotice()
}

// Enforce probes audio. Within budget, or when probing fails, the inputs pass
// through unchanged. Over budget, the notice for audio.Language is spoken to
// the same path and returned with its text; that result is not re-probed.
func (g *Guard) Enforce(ctx context.Context, audio *SynthesizedAudio, text string, logger *slog.Logger) (*SynthesizedAudio, string, error) {
	d, err := g.prober.Duration(ctx, audio.Path)
	if err != nil {
		logger.Warn("duration probe failed, keeping reply", "error", fail(ErrProbe, stageGuard, err))
		g.onOutcome("probe_failed")
		return audio, text, nil
	}

	audio.Duration = d
	if d <= g.budget {
		g.onOutcome("within_budget")
		return audio, text, nil
	}

	notice := g.notice(audio.Language)
	logger.Info("reply over duration budget, replacing", "duration", d, "budget", g.budget, "language", audio.Language)
	replaced, err := g.synth.Synthesize(ctx, notice, audio.Language, audio.Path, logger)
	if err != nil {
		return nil, "", err
	}
	g.onOutcome("replaced")
	return replaced, notice, nil
}
