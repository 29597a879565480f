package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	aiservice "github.com/pariharkamal9829/interview-copilot/internal/service/ai"
	"github.com/pariharkamal9829/interview-copilot/pkg/utils"
)

// CompletionGateway mirrors the relay's gateway abstraction so the HTTP
// surface can be tested against stubs.
type CompletionGateway interface {
	Complete(ctx context.Context, requestType string, data json.RawMessage) (json.RawMessage, error)
}

// Handler exposes the completion gateway as request/response HTTP
// endpoints, mirroring the websocket ai-request path.
type Handler struct {
	gateway CompletionGateway
}

// New creates the AI handler. gateway may be nil when no credential is
// configured; every endpoint then answers 503.
func New(gateway CompletionGateway) *Handler {
	return &Handler{gateway: gateway}
}

// RegisterRoutes registers one endpoint per AI request type.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/ai", func(r chi.Router) {
		r.Post("/generate-questions", h.completion(aiservice.RequestGenerateQuestions))
		r.Post("/analyze-answer", h.completion(aiservice.RequestAnalyzeAnswer))
		r.Post("/get-feedback", h.completion(aiservice.RequestGetFeedback))
		r.Post("/suggest-followup", h.completion(aiservice.RequestSuggestFollowup))
		r.Post("/improve-transcription", h.completion(aiservice.RequestImproveTranscription))
	})
}

func (h *Handler) completion(requestType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.gateway == nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "AI service is not configured")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "failed to read request body")
			return
		}

		payload, err := h.gateway.Complete(r.Context(), requestType, json.RawMessage(body))
		if err != nil {
			h.respondGatewayError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"requestType": requestType,
			"data":        payload,
		})
	}
}

// respondGatewayError maps the gateway's error taxonomy onto HTTP codes.
// Malformed completions carry the raw upstream text so callers can show
// something rather than nothing.
func (h *Handler) respondGatewayError(w http.ResponseWriter, err error) {
	var missing *aiservice.MissingFieldError
	if errors.As(err, &missing) {
		utils.RespondError(w, http.StatusBadRequest, missing.Error())
		return
	}

	var malformed *aiservice.MalformedCompletionError
	if errors.As(err, &malformed) {
		utils.RespondJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"error":   malformed.Error(),
			"raw":     malformed.Raw,
		})
		return
	}

	if errors.Is(err, aiservice.ErrUpstreamUnavailable) {
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
