package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pariharkamal9829/interview-copilot/internal/config"
	"github.com/pariharkamal9829/interview-copilot/internal/service/ai"
)

// Result is a successful transcription.
type Result struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// Service uploads audio blobs to a speech-to-text endpoint. It is the
// second instance of the gateway pattern and shares the completion
// gateway's error taxonomy: upstream failures wrap
// ai.ErrUpstreamUnavailable with the upstream message intact.
type Service struct {
	cfg    config.TranscribeConfig
	client *http.Client
}

// NewService constructs the transcription gateway.
func NewService(cfg config.TranscribeConfig) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Transcribe posts the audio to the upstream transcription endpoint and
// returns the recognized text plus the detected language. The blob is
// consumed once and never kept.
func (s *Service) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (*Result, error) {
	if !s.cfg.Enabled() {
		return nil, fmt.Errorf("%w: transcription credential not configured", ai.ErrUpstreamUnavailable)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}

	if err := writer.WriteField("model", s.cfg.Model); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return nil, fmt.Errorf("failed to build upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ai.ErrUpstreamUnavailable, upstreamErrorMessage(raw, resp.StatusCode))
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &ai.MalformedCompletionError{Raw: string(raw)}
	}

	log.Printf("[transcribe] transcribed %s bytes=%d language=%s", filename, body.Len(), result.Language)
	return &result, nil
}

// upstreamErrorMessage pulls the human-readable message out of an OpenAI
// style error body, falling back to the raw body.
func upstreamErrorMessage(raw []byte, status int) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fmt.Sprintf("upstream returned status %d", status)
}
