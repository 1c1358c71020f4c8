// Package pipeline implements the voice request pipeline.
//
// A request moves through normalization, language detection, transcription,
// reply generation, synthesis and the duration guard, strictly in that order.
// The first failing stage aborts the request and every artifact it created is
// removed. Completed requests leave their output on disk for retrieval until
// the retention sweep collects it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/LovitraMehta/ChattyBot/internal/asr"
	"github.com/LovitraMehta/ChattyBot/internal/audio"
	"github.com/LovitraMehta/ChattyBot/internal/language"
	"github.com/LovitraMehta/ChattyBot/internal/llm"
	"github.com/LovitraMehta/ChattyBot/internal/metrics"
	"github.com/LovitraMehta/ChattyBot/internal/store"
	"github.com/LovitraMehta/ChattyBot/internal/tts"
)

// Normalizer converts a raw upload into 16 kHz mono PCM WAV.
type Normalizer interface {
	Normalize(ctx context.Context, raw []byte, uploadPath, outPath string) error
}

// Deps are the collaborators a pipeline is built from. All are required
// except Metrics.
type Deps struct {
	Normalizer Normalizer
	Recognizer asr.Recognizer
	Completer  llm.Completer
	Speech     tts.Synthesizer
	Prober     Prober
	Store      *store.Store
	Metrics    *metrics.Metrics
}

// Options tune the pipeline. Zero values select the defaults.
type Options struct {
	MaxTokens         int
	CompletionTimeout time.Duration
	SynthesisTimeout  time.Duration
	DurationBudget    time.Duration
	Notices           map[string]string
}

// Result is the outcome of a completed request.
type Result struct {
	Token    string
	Text     string        // reply as spoken, possibly the short notice
	Language language.Code // language the reply was spoken in
	Audio    *SynthesizedAudio
}

// Pipeline runs voice requests end to end.
type Pipeline struct {
	normalizer  Normalizer
	detector    *Detector
	transcriber *Transcriber
	generator   *Generator
	synth       *Synthesizer
	guard       *Guard
	store       *store.Store
	metrics     *metrics.Metrics
}

// New wires a pipeline from deps.
func New(deps Deps, opts Options) *Pipeline {
	m := deps.Metrics
	if m == nil {
		m = metrics.New("chattybot", prometheus.NewRegistry())
	}

	synth := NewSynthesizer(deps.Speech, opts.SynthesisTimeout, m.TTSFallbacks.Inc)
	return &Pipeline{
		normalizer:  deps.Normalizer,
		detector:    NewDetector(deps.Recognizer),
		transcriber: NewTranscriber(deps.Recognizer),
		generator:   NewGenerator(deps.Completer, opts.MaxTokens, opts.CompletionTimeout),
		synth:       synth,
		guard: NewGuard(deps.Prober, synth, opts.DurationBudget, opts.Notices, func(result string) {
			m.DurationGuard.WithLabelValues(result).Inc()
		}),
		store:   deps.Store,
		metrics: m,
	}
}

// Process runs one request. raw is the uploaded audio and contentType its
// declared MIME type. Caller cancellation does not abort a started request.
func (p *Pipeline) Process(ctx context.Context, raw []byte, contentType string) (_ *Result, err error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	rc := p.store.NewRequest(audio.ExtFromContentType(contentType))
	logger := slog.With("request_id", rc.Token)
	logger.Info("request received", "content_type", contentType, "bytes", len(raw))

	state := StateReceived
	advance := func(next State) {
		logger.Debug("state transition", "from", state, "to", next)
		state = next
	}

	defer func() {
		if err == nil {
			p.metrics.Requests.WithLabelValues(StateCompleted.String()).Inc()
			return
		}
		failedIn := state
		advance(StateFailed)
		p.store.Discard(rc)
		p.metrics.Requests.WithLabelValues(KindLabel(err)).Inc()
		logger.Error("request failed", "after", failedIn, "error", err, "duration", time.Since(start))
	}()

	t := time.Now()
	if err := p.normalize(ctx, raw, rc); err != nil {
		return nil, err
	}
	p.metrics.ObserveStage(stageNormalize, time.Since(t))
	advance(StateNormalized)

	t = time.Now()
	lang := p.detector.Detect(ctx, rc.Normalized, logger)
	p.metrics.ObserveStage(stageDetect, time.Since(t))
	p.metrics.DetectedLanguage.WithLabelValues(lang.String()).Inc()
	advance(StateLanguageResolved)

	t = time.Now()
	transcript, err := p.transcriber.Transcribe(ctx, rc.Normalized, lang)
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveStage(stageTranscribe, time.Since(t))
	logger.Debug("transcribed", "language", lang, "text_length", len(transcript))
	advance(StateTranscribed)

	t = time.Now()
	reply, err := p.generator.Generate(ctx, transcript, lang)
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveStage(stageGenerate, time.Since(t))
	advance(StateReplyGenerated)

	t = time.Now()
	speech, err := p.synth.Synthesize(ctx, reply, lang, rc.Output, logger)
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveStage(stageSynthesize, time.Since(t))
	advance(StateSynthesized)

	t = time.Now()
	speech, reply, err = p.guard.Enforce(ctx, speech, reply, logger)
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveStage(stageGuard, time.Since(t))
	advance(StateDurationChecked)

	advance(StateCompleted)
	logger.Info("request completed",
		"language", lang,
		"spoken_language", speech.Language,
		"audio_duration", speech.Duration,
		"duration", time.Since(start),
	)
	return &Result{Token: rc.Token, Text: reply, Language: speech.Language, Audio: speech}, nil
}

func (p *Pipeline) normalize(ctx context.Context, raw []byte, rc *store.RequestContext) error {
	err := p.normalizer.Normalize(ctx, raw, rc.Upload, rc.Normalized)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, audio.ErrTooSmall):
		return fail(ErrInvalidInput, stageNormalize, err)
	default:
		return fail(ErrConversion, stageNormalize, fmt.Errorf("normalizing upload: %w", err))
	}
}
