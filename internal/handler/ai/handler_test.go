package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	aiservice "github.com/pariharkamal9829/interview-copilot/internal/service/ai"
)

type stubGateway struct {
	payload json.RawMessage
	err     error

	gotRequestType string
	gotData        json.RawMessage
}

func (g *stubGateway) Complete(_ context.Context, requestType string, data json.RawMessage) (json.RawMessage, error) {
	g.gotRequestType = requestType
	g.gotData = data
	return g.payload, g.err
}

func setupRouter(gateway CompletionGateway) *chi.Mux {
	r := chi.NewRouter()
	New(gateway).RegisterRoutes(r)
	return r
}

func TestGenerateQuestionsSuccess(t *testing.T) {
	gw := &stubGateway{payload: json.RawMessage(`[{"question":"Why Go?"}]`)}
	r := setupRouter(gw)

	body := `{"position":"backend","level":"senior","category":"technical"}`
	req := httptest.NewRequest(http.MethodPost, "/ai/generate-questions", strings.NewReader(body))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if gw.gotRequestType != aiservice.RequestGenerateQuestions {
		t.Fatalf("gateway saw requestType %q", gw.gotRequestType)
	}
	if string(gw.gotData) != body {
		t.Fatalf("gateway saw body %q", gw.gotData)
	}

	var parsed struct {
		Success     bool            `json:"success"`
		RequestType string          `json:"requestType"`
		Data        json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !parsed.Success || parsed.RequestType != aiservice.RequestGenerateQuestions {
		t.Fatalf("unexpected envelope: %+v", parsed)
	}
	if string(parsed.Data) != `[{"question":"Why Go?"}]` {
		t.Fatalf("payload not forwarded verbatim: %s", parsed.Data)
	}
}

func TestCompletionWithoutGateway(t *testing.T) {
	r := setupRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/ai/analyze-answer", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestCompletionMissingField(t *testing.T) {
	gw := &stubGateway{err: &aiservice.MissingFieldError{Field: "question"}}
	r := setupRouter(gw)

	req := httptest.NewRequest(http.MethodPost, "/ai/analyze-answer", strings.NewReader(`{"answer":"a"}`))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "question") {
		t.Fatalf("error should name the missing field: %s", resp.Body.String())
	}
}

func TestCompletionMalformedCarriesRaw(t *testing.T) {
	gw := &stubGateway{err: &aiservice.MalformedCompletionError{Raw: "I'd be happy to help!"}}
	r := setupRouter(gw)

	req := httptest.NewRequest(http.MethodPost, "/ai/get-feedback", strings.NewReader(`{"transcript":"t","position":"p"}`))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}

	var parsed struct {
		Success bool   `json:"success"`
		Raw     string `json:"raw"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if parsed.Success || parsed.Raw != "I'd be happy to help!" {
		t.Fatalf("raw upstream text missing: %+v", parsed)
	}
}

func TestCompletionUpstreamUnavailable(t *testing.T) {
	gw := &stubGateway{err: fmt.Errorf("%w: dial tcp: connection refused", aiservice.ErrUpstreamUnavailable)}
	r := setupRouter(gw)

	req := httptest.NewRequest(http.MethodPost, "/ai/suggest-followup", strings.NewReader(`{"previousQuestion":"q","answer":"a"}`))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}
