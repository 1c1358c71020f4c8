// Package config handles loading and validating the chattybot configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the chattybot daemon.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Audio    AudioConfig    `mapstructure:"audio"`
	ASR      ASRConfig      `mapstructure:"asr"`
	LLM      LLMConfig      `mapstructure:"llm"`
	TTS      TTSConfig      `mapstructure:"tts"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds the health check and gRPC health server settings.
type ServerConfig struct {
	HealthPort  int  `mapstructure:"health_port"`
	GRPCEnabled bool `mapstructure:"grpc_enabled"`
	GRPCPort    int  `mapstructure:"grpc_port"`
}

// HTTPConfig configures the public HTTP API.
type HTTPConfig struct {
	Port           int   `mapstructure:"port"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// StorageConfig configures the artifact directories and the retention sweep.
type StorageConfig struct {
	UploadDir     string        `mapstructure:"upload_dir"`
	OutputDir     string        `mapstructure:"output_dir"`
	Retention     time.Duration `mapstructure:"retention"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// AudioConfig configures the external media tools.
type AudioConfig struct {
	FFmpegPath        string        `mapstructure:"ffmpeg_path"`
	FFprobePath       string        `mapstructure:"ffprobe_path"`
	MinUploadBytes    int           `mapstructure:"min_upload_bytes"`
	ConversionTimeout time.Duration `mapstructure:"conversion_timeout"`
}

// ASRConfig selects and configures the speech recognition backend.
type ASRConfig struct {
	Backend string          `mapstructure:"backend"` // "whisper" or "openai"
	Whisper WhisperConfig   `mapstructure:"whisper"`
	OpenAI  OpenAIASRConfig `mapstructure:"openai"`
}

// WhisperConfig holds settings for a whisper-asr-webservice instance.
type WhisperConfig struct {
	Endpoint  string `mapstructure:"endpoint"` // base URL, e.g. http://localhost:9000
	VADFilter bool   `mapstructure:"vad_filter"`
}

// OpenAIASRConfig holds settings for an OpenAI-compatible transcription API.
type OpenAIASRConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// LLMConfig selects and configures the reply generation backend.
type LLMConfig struct {
	Backend string          `mapstructure:"backend"` // "openai" or "local"
	Timeout time.Duration   `mapstructure:"timeout"`
	OpenAI  OpenAILLMConfig `mapstructure:"openai"`
	Local   LocalLLMConfig  `mapstructure:"local"`
}

// OpenAILLMConfig holds settings for an OpenAI-compatible chat completion API
// (OpenRouter by default).
type OpenAILLMConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
	Referer   string `mapstructure:"referer"` // sent as HTTP-Referer
	Title     string `mapstructure:"title"`   // sent as X-Title
}

// LocalLLMConfig holds self-hosted LLM settings.
type LocalLLMConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Model     string `mapstructure:"model"` // Ollama model name (e.g., "llama3.2:1b")
	MaxTokens int    `mapstructure:"max_tokens"`
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Backend string          `mapstructure:"backend"` // "piper" or "openai"
	Timeout time.Duration   `mapstructure:"timeout"`
	Piper   PiperConfig     `mapstructure:"piper"`
	OpenAI  OpenAITTSConfig `mapstructure:"openai"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// For a single Piper instance that serves all languages, set Endpoint.
// For per-language instances, set Endpoints which maps ISO-639-1 codes to
// individual Wyoming TCP endpoints. Endpoints takes precedence.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`
	Endpoints map[string]string `mapstructure:"endpoints"`
	Voices    map[string]string `mapstructure:"voices"`
}

// OpenAITTSConfig holds settings for an OpenAI-compatible speech API.
type OpenAITTSConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Voice   string `mapstructure:"voice"`
}

// PipelineConfig tunes the request pipeline.
type PipelineConfig struct {
	DurationBudget time.Duration     `mapstructure:"duration_budget"`
	Notices        map[string]string `mapstructure:"notices"` // language -> short notice override
}

// MetricsConfig configures Prometheus instrumentation.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./chattybot.yaml, ./configs/chattybot.yaml, /etc/chattybot/chattybot.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("chattybot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/chattybot")
	}

	// Environment variables: CHATTYBOT_HTTP_PORT, CHATTYBOT_LLM_OPENAI_API_KEY, etc.
	v.SetEnvPrefix("CHATTYBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional, env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENROUTER_API_KEY}")
	cfg.ASR.OpenAI.APIKey = resolveEnvRef(cfg.ASR.OpenAI.APIKey)
	cfg.LLM.OpenAI.APIKey = resolveEnvRef(cfg.LLM.OpenAI.APIKey)
	cfg.TTS.OpenAI.APIKey = resolveEnvRef(cfg.TTS.OpenAI.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.grpc_enabled", false)
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("http.port", 5000)
	v.SetDefault("http.max_upload_bytes", 25<<20)
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.output_dir", "static")
	v.SetDefault("storage.retention", time.Hour)
	v.SetDefault("storage.sweep_interval", time.Hour)
	v.SetDefault("audio.ffmpeg_path", "ffmpeg")
	v.SetDefault("audio.ffprobe_path", "ffprobe")
	v.SetDefault("audio.min_upload_bytes", 2048)
	v.SetDefault("audio.conversion_timeout", time.Minute)
	v.SetDefault("asr.backend", "whisper")
	v.SetDefault("asr.whisper.endpoint", "http://localhost:9000")
	v.SetDefault("asr.whisper.vad_filter", false)
	v.SetDefault("asr.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("asr.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("asr.openai.model", "whisper-1")
	v.SetDefault("llm.backend", "openai")
	v.SetDefault("llm.timeout", 15*time.Second)
	v.SetDefault("llm.openai.api_key", "${OPENROUTER_API_KEY}")
	v.SetDefault("llm.openai.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.openai.model", "google/gemma-3-4b-it")
	v.SetDefault("llm.openai.max_tokens", 150)
	v.SetDefault("llm.openai.referer", "http://localhost:5000")
	v.SetDefault("llm.openai.title", "Voice Assistant")
	v.SetDefault("llm.local.endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("llm.local.model", "llama3")
	v.SetDefault("llm.local.max_tokens", 150)
	v.SetDefault("tts.backend", "piper")
	v.SetDefault("tts.timeout", 30*time.Second)
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("tts.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("tts.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("tts.openai.model", "tts-1")
	v.SetDefault("tts.openai.voice", "alloy")
	v.SetDefault("pipeline.duration_budget", 30*time.Second)
	v.SetDefault("metrics.namespace", "chattybot")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate reports the first configuration problem that would prevent startup.
func (c *Config) Validate() error {
	switch c.ASR.Backend {
	case "whisper", "openai":
	default:
		return fmt.Errorf("unknown asr backend %q", c.ASR.Backend)
	}
	switch c.LLM.Backend {
	case "openai":
		if c.LLM.OpenAI.APIKey == "" || strings.HasPrefix(c.LLM.OpenAI.APIKey, "${") {
			return fmt.Errorf("llm.openai.api_key is required")
		}
	case "local":
	default:
		return fmt.Errorf("unknown llm backend %q", c.LLM.Backend)
	}
	switch c.TTS.Backend {
	case "piper", "openai":
	default:
		return fmt.Errorf("unknown tts backend %q", c.TTS.Backend)
	}
	if c.HTTP.Port <= 0 || c.Server.HealthPort <= 0 {
		return fmt.Errorf("ports must be positive")
	}
	if c.Server.GRPCEnabled && c.Server.GRPCPort <= 0 {
		return fmt.Errorf("server.grpc_port must be positive")
	}
	if c.Pipeline.DurationBudget <= 0 {
		return fmt.Errorf("pipeline.duration_budget must be positive")
	}
	if c.Storage.Retention <= 0 {
		return fmt.Errorf("storage.retention must be positive")
	}
	if c.Storage.SweepInterval <= 0 {
		return fmt.Errorf("storage.sweep_interval must be positive")
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
