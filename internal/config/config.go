package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every runtime setting of the relay.
type Config struct {
	Server     ServerConfig
	AI         AIConfig
	Transcribe TranscribeConfig
	Relay      RelayConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	transcribe, err := loadTranscribeConfig(ai)
	if err != nil {
		return nil, err
	}

	relay, err := loadRelayConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Transcribe: transcribe, Relay: relay}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// Allow ":3000" or "127.0.0.1:3000" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the upstream completion API.
type AIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Enabled reports whether the completion credential is present. When it
// is not, the gateway is skipped at startup and every AI request is
// answered with an upstream-unavailable error instead of crashing.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// NewChatModel constructs the completion model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("OPENAI_API_KEY is not configured")
	}

	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  c.APIKey,
		BaseURL: c.BaseURL,
		Model:   c.Model,
		Timeout: c.Timeout,
	})
}

func loadAIConfig() (AIConfig, error) {
	timeout, err := parseOptionalIntEnv("OPENAI_TIMEOUT")
	if err != nil {
		return AIConfig{}, err
	}
	timeoutSeconds := 60
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	return AIConfig{
		APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:   getEnvOrDefault("OPENAI_MODEL", "gpt-4"),
		BaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// TranscribeConfig describes the speech-to-text endpoint.
type TranscribeConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MaxUploadSize int64
}

// Enabled reports whether the transcription credential is present.
func (c TranscribeConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadTranscribeConfig(ai AIConfig) (TranscribeConfig, error) {
	timeout, err := parseOptionalIntEnv("TRANSCRIBE_TIMEOUT")
	if err != nil {
		return TranscribeConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	// The transcription endpoint shares the completion credential unless
	// a dedicated one is supplied.
	apiKey := strings.TrimSpace(os.Getenv("WHISPER_API_KEY"))
	if apiKey == "" {
		apiKey = ai.APIKey
	}

	return TranscribeConfig{
		APIKey:        apiKey,
		BaseURL:       getEnvOrDefault("WHISPER_BASE_URL", "https://api.openai.com/v1"),
		Model:         getEnvOrDefault("WHISPER_MODEL", "whisper-1"),
		Timeout:       time.Duration(timeoutSeconds) * time.Second,
		MaxUploadSize: 25 << 20,
	}, nil
}

// RelayConfig tunes the session router and the optional recordings watcher.
type RelayConfig struct {
	SessionIdleTTL time.Duration
	SweepInterval  time.Duration
	RecordingsDir  string
	ScribeWorkers  int
}

func loadRelayConfig() (RelayConfig, error) {
	idleTTL, err := parseOptionalIntEnv("SESSION_IDLE_TTL")
	if err != nil {
		return RelayConfig{}, err
	}
	idleSeconds := 1800
	if idleTTL != nil {
		idleSeconds = *idleTTL
	}

	sweep, err := parseOptionalIntEnv("SESSION_SWEEP_INTERVAL")
	if err != nil {
		return RelayConfig{}, err
	}
	sweepSeconds := 60
	if sweep != nil {
		sweepSeconds = *sweep
	}

	workers := 2
	if workersOverride, err := parseOptionalIntEnv("SCRIBE_WORKERS"); err != nil {
		return RelayConfig{}, err
	} else if workersOverride != nil && *workersOverride > 0 {
		workers = *workersOverride
	}

	return RelayConfig{
		SessionIdleTTL: time.Duration(idleSeconds) * time.Second,
		SweepInterval:  time.Duration(sweepSeconds) * time.Second,
		RecordingsDir:  strings.TrimSpace(os.Getenv("RECORDINGS_DIR")),
		ScribeWorkers:  workers,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
