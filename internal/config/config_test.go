package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "OPENAI_TIMEOUT",
		"WHISPER_API_KEY", "WHISPER_BASE_URL", "WHISPER_MODEL", "TRANSCRIBE_TIMEOUT",
		"SESSION_IDLE_TTL", "SESSION_SWEEP_INTERVAL", "RECORDINGS_DIR", "SCRIBE_WORKERS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":3000" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.AI.Enabled() {
		t.Fatal("AI must be disabled without a credential")
	}
	if cfg.AI.Model != "gpt-4" || cfg.AI.Timeout != 60*time.Second {
		t.Fatalf("unexpected AI defaults: %+v", cfg.AI)
	}
	if cfg.Transcribe.Model != "whisper-1" || cfg.Transcribe.Timeout != 30*time.Second {
		t.Fatalf("unexpected transcribe defaults: %+v", cfg.Transcribe)
	}
	if cfg.Relay.SessionIdleTTL != 30*time.Minute || cfg.Relay.SweepInterval != time.Minute {
		t.Fatalf("unexpected relay defaults: %+v", cfg.Relay)
	}
	if cfg.Relay.ScribeWorkers != 2 {
		t.Fatalf("unexpected worker default: %d", cfg.Relay.ScribeWorkers)
	}
}

func TestLoadPortForms(t *testing.T) {
	cases := []struct {
		value string
		want  string
	}{
		{"8080", ":8080"},
		{":9000", ":9000"},
		{"127.0.0.1:9000", "127.0.0.1:9000"},
	}

	for _, tc := range cases {
		t.Setenv("PORT", tc.value)
		cfg, err := loadServerConfig()
		if err != nil {
			t.Fatalf("loadServerConfig(%q) err: %v", tc.value, err)
		}
		if cfg.Addr != tc.want {
			t.Fatalf("PORT=%q: got %s, want %s", tc.value, cfg.Addr, tc.want)
		}
	}
}

func TestTranscribeSharesCompletionCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-shared")
	t.Setenv("WHISPER_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Transcribe.APIKey != "sk-shared" {
		t.Fatalf("expected shared credential, got %q", cfg.Transcribe.APIKey)
	}

	t.Setenv("WHISPER_API_KEY", "sk-dedicated")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Transcribe.APIKey != "sk-dedicated" {
		t.Fatalf("dedicated credential should win, got %q", cfg.Transcribe.APIKey)
	}
}

func TestLoadRejectsBadIntegers(t *testing.T) {
	t.Setenv("SESSION_IDLE_TTL", "half an hour")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric SESSION_IDLE_TTL")
	}
}
