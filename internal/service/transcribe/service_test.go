package transcribe_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pariharkamal9829/interview-copilot/internal/config"
	"github.com/pariharkamal9829/interview-copilot/internal/service/ai"
	"github.com/pariharkamal9829/interview-copilot/internal/service/transcribe"
)

func testConfig(baseURL string) config.TranscribeConfig {
	return config.TranscribeConfig{
		APIKey:        "test-key",
		BaseURL:       baseURL,
		Model:         "whisper-1",
		Timeout:       5 * time.Second,
		MaxUploadSize: 25 << 20,
	}
}

func TestTranscribeSuccess(t *testing.T) {
	var gotPath, gotAuth, gotModel, gotLanguage, gotFilename string
	var gotAudio []byte

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm err: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile err: %v", err)
		} else {
			gotFilename = header.Filename
			gotAudio, _ = io.ReadAll(file)
			file.Close()
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"tell me about goroutines","language":"english","duration":4.2}`))
	}))
	defer upstream.Close()

	svc := transcribe.NewService(testConfig(upstream.URL))

	result, err := svc.Transcribe(context.Background(), strings.NewReader("RIFF-audio-bytes"), "clip.wav", "en")
	if err != nil {
		t.Fatalf("Transcribe err: %v", err)
	}

	if result.Text != "tell me about goroutines" {
		t.Fatalf("unexpected text: %q", result.Text)
	}
	if result.Language != "english" || result.Duration != 4.2 {
		t.Fatalf("unexpected metadata: %+v", result)
	}

	if gotPath != "/audio/transcriptions" {
		t.Fatalf("unexpected upstream path: %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
	if gotModel != "whisper-1" || gotLanguage != "en" {
		t.Fatalf("form fields wrong: model=%q language=%q", gotModel, gotLanguage)
	}
	if gotFilename != "clip.wav" || string(gotAudio) != "RIFF-audio-bytes" {
		t.Fatalf("upload wrong: filename=%q audio=%q", gotFilename, gotAudio)
	}
}

func TestTranscribeUpstreamErrorSurfacesMessage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer upstream.Close()

	svc := transcribe.NewService(testConfig(upstream.URL))

	_, err := svc.Transcribe(context.Background(), strings.NewReader("x"), "clip.wav", "")
	if !errors.Is(err, ai.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "Incorrect API key provided") {
		t.Fatalf("upstream message lost: %v", err)
	}
}

func TestTranscribeMalformedResponse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<!DOCTYPE html><html>gateway error</html>"))
	}))
	defer upstream.Close()

	svc := transcribe.NewService(testConfig(upstream.URL))

	_, err := svc.Transcribe(context.Background(), strings.NewReader("x"), "clip.wav", "")

	var malformed *ai.MalformedCompletionError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedCompletionError, got %v", err)
	}
	if !strings.Contains(malformed.Raw, "gateway error") {
		t.Fatalf("raw body not preserved: %q", malformed.Raw)
	}
}

func TestTranscribeWithoutCredential(t *testing.T) {
	svc := transcribe.NewService(config.TranscribeConfig{Timeout: time.Second})

	_, err := svc.Transcribe(context.Background(), strings.NewReader("x"), "clip.wav", "")
	if !errors.Is(err, ai.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestTranscribeOmitsEmptyLanguage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm err: %v", err)
		}
		if _, ok := r.MultipartForm.Value["language"]; ok {
			t.Error("language field must be omitted when not requested")
		}
		w.Write([]byte(`{"text":"ok"}`))
	}))
	defer upstream.Close()

	svc := transcribe.NewService(testConfig(upstream.URL))

	if _, err := svc.Transcribe(context.Background(), strings.NewReader("x"), "clip.wav", ""); err != nil {
		t.Fatalf("Transcribe err: %v", err)
	}
}
