package sessions

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	sessionservice "github.com/pariharkamal9829/interview-copilot/internal/service/session"
	"github.com/pariharkamal9829/interview-copilot/pkg/utils"
)

// Handler exposes read-only session state over HTTP.
type Handler struct {
	store *sessionservice.Store
}

// New creates the sessions handler.
func New(store *sessionservice.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers the session listing endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions", h.handleList)
	r.Get("/sessions/{sessionID}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	summaries := h.store.List()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"totalSessions": len(summaries),
		"sessions":      summaries,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.store.Get(sessionID)
	if err != nil {
		if errors.Is(err, sessionservice.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"session": sess})
}
