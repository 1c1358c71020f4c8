// ChattyBot is a voice assistant daemon. It accepts a short recording,
// detects whether the speaker used English or Hindi, and answers with a
// spoken reply in the same language.
//
// Usage:
//
//	chattybot [flags]
//	chattybot --config /path/to/chattybot.yaml
//
// @title       ChattyBot API
// @version     1.0
// @description Voice assistant that replies in English or Hindi.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/LovitraMehta/ChattyBot/internal/asr"
	openaiasr "github.com/LovitraMehta/ChattyBot/internal/asr/openai"
	"github.com/LovitraMehta/ChattyBot/internal/asr/whisper"
	"github.com/LovitraMehta/ChattyBot/internal/audio"
	"github.com/LovitraMehta/ChattyBot/internal/config"
	"github.com/LovitraMehta/ChattyBot/internal/health"
	"github.com/LovitraMehta/ChattyBot/internal/language"
	"github.com/LovitraMehta/ChattyBot/internal/llm"
	localllm "github.com/LovitraMehta/ChattyBot/internal/llm/local"
	openaillm "github.com/LovitraMehta/ChattyBot/internal/llm/openai"
	"github.com/LovitraMehta/ChattyBot/internal/metrics"
	"github.com/LovitraMehta/ChattyBot/internal/pipeline"
	"github.com/LovitraMehta/ChattyBot/internal/store"
	"github.com/LovitraMehta/ChattyBot/internal/transport"
	grpctransport "github.com/LovitraMehta/ChattyBot/internal/transport/grpc"
	httptransport "github.com/LovitraMehta/ChattyBot/internal/transport/http"
	"github.com/LovitraMehta/ChattyBot/internal/tts"
	openaitts "github.com/LovitraMehta/ChattyBot/internal/tts/openai"
	"github.com/LovitraMehta/ChattyBot/internal/tts/piper"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/chattybot.yaml)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flag.Parse()

	if *showVersion {
		fmt.Printf("chattybot %s\n", version)
		os.Exit(0)
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load env file", "path", *envFile, "error", err)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	config.SetupLogging(cfg.Logging)
	slog.Info("chattybot starting", "version", version)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		slog.Error("chattybot failed", "error", err)
		os.Exit(1)
	}
	slog.Info("chattybot stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.Metrics.Namespace, reg)

	recognizer, err := newRecognizer(cfg.ASR)
	if err != nil {
		return err
	}
	defer recognizer.Close()

	completer, maxTokens, err := newCompleter(cfg.LLM)
	if err != nil {
		return err
	}
	defer completer.Close()

	speech, err := newSynthesizer(cfg.TTS)
	if err != nil {
		return err
	}
	defer speech.Close()

	outExt := ".wav"
	if speech.ContentType() == "audio/mpeg" {
		outExt = ".mp3"
	}
	st, err := store.New(cfg.Storage.UploadDir, cfg.Storage.OutputDir, outExt)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	sweeper := store.NewSweeper(st.Dirs(), cfg.Storage.Retention, cfg.Storage.SweepInterval, func(string) {
		m.SweptArtifacts.Inc()
	})
	sweeper.Start(ctx)
	defer sweeper.Stop()

	p := pipeline.New(pipeline.Deps{
		Normalizer: audio.NewNormalizer(cfg.Audio.FFmpegPath, cfg.Audio.MinUploadBytes, cfg.Audio.ConversionTimeout, nil),
		Recognizer: recognizer,
		Completer:  completer,
		Speech:     speech,
		Prober:     audio.NewProber(cfg.Audio.FFprobePath, nil),
		Store:      st,
		Metrics:    m,
	}, pipeline.Options{
		MaxTokens:         maxTokens,
		CompletionTimeout: cfg.LLM.Timeout,
		SynthesisTimeout:  cfg.TTS.Timeout,
		DurationBudget:    cfg.Pipeline.DurationBudget,
		Notices:           cfg.Pipeline.Notices,
	})

	transports := []transport.Transport{
		httptransport.New(cfg.HTTP.Port, cfg.HTTP.MaxUploadBytes, p, st),
	}
	var grpcHealth *grpctransport.Transport
	if cfg.Server.GRPCEnabled {
		grpcHealth = grpctransport.New(cfg.Server.GRPCPort)
		transports = append(transports, grpcHealth)
	}

	healthServer := health.New(cfg.Server.HealthPort, m.Handler())
	healthServer.AddCheck("storage", func(context.Context) error {
		for _, dir := range st.Dirs() {
			if _, err := os.Stat(dir); err != nil {
				return err
			}
		}
		return nil
	})
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	healthServer.SetReady(true)
	if grpcHealth != nil {
		grpcHealth.SetServing(true)
	}
	slog.Info("chattybot ready",
		"http_port", cfg.HTTP.Port,
		"health_port", cfg.Server.HealthPort,
		"asr", recognizer.Name(),
		"llm", completer.Name(),
		"tts", cfg.TTS.Backend,
	)

	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}
	wg.Wait()
	return nil
}

func newRecognizer(cfg config.ASRConfig) (asr.Recognizer, error) {
	switch cfg.Backend {
	case "whisper":
		slog.Info("using whisper asr", "endpoint", cfg.Whisper.Endpoint)
		return whisper.New(cfg.Whisper), nil
	case "openai":
		slog.Info("using openai asr", "model", cfg.OpenAI.Model)
		return openaiasr.New(cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("unknown asr backend %q", cfg.Backend)
	}
}

func newCompleter(cfg config.LLMConfig) (llm.Completer, int, error) {
	switch cfg.Backend {
	case "openai":
		slog.Info("using openai-compatible llm", "base_url", cfg.OpenAI.BaseURL, "model", cfg.OpenAI.Model)
		return openaillm.New(cfg.OpenAI), cfg.OpenAI.MaxTokens, nil
	case "local":
		slog.Info("using local llm", "endpoint", cfg.Local.Endpoint, "model", cfg.Local.Model)
		return localllm.New(cfg.Local), cfg.Local.MaxTokens, nil
	default:
		return nil, 0, fmt.Errorf("unknown llm backend %q", cfg.Backend)
	}
}

func newSynthesizer(cfg config.TTSConfig) (tts.Synthesizer, error) {
	switch cfg.Backend {
	case "piper":
		slog.Info("using piper tts", "endpoint", cfg.Piper.Endpoint, "per_language", len(cfg.Piper.Endpoints))
		return piper.New(cfg.Piper), nil
	case "openai":
		slog.Info("using openai tts", "model", cfg.OpenAI.Model, "voice", cfg.OpenAI.Voice)
		langs := make([]string, 0, 2)
		for _, c := range language.Supported() {
			langs = append(langs, c.String())
		}
		return openaitts.New(cfg.OpenAI, langs), nil
	default:
		return nil, fmt.Errorf("unknown tts backend %q", cfg.Backend)
	}
}
