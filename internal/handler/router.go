package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	aihandler "github.com/pariharkamal9829/interview-copilot/internal/handler/ai"
	sessionshandler "github.com/pariharkamal9829/interview-copilot/internal/handler/sessions"
	transcribehandler "github.com/pariharkamal9829/interview-copilot/internal/handler/transcribe"
	wshandler "github.com/pariharkamal9829/interview-copilot/internal/handler/ws"
	middlewarePkg "github.com/pariharkamal9829/interview-copilot/internal/middleware"
	"github.com/pariharkamal9829/interview-copilot/internal/relay"
	sessionservice "github.com/pariharkamal9829/interview-copilot/internal/service/session"
	"github.com/pariharkamal9829/interview-copilot/pkg/utils"
)

// NewRouter wires HTTP routes to core services. gateway and transcriber
// are nil when their credentials are absent; the affected endpoints
// degrade instead of the process refusing to start.
func NewRouter(store *sessionservice.Store, hub *relay.Hub, gateway aihandler.CompletionGateway, transcriber transcribehandler.Transcriber, maxUpload int64) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	startedAt := time.Now()

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":           "healthy",
			"connectedClients": hub.ClientCount(),
			"activeSessions":   store.Count(),
			"uptime":           time.Since(startedAt).Seconds(),
			"openaiConfigured": gateway != nil,
			"timestamp":        time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Route("/api", func(api chi.Router) {
		sessionshandler.New(store).RegisterRoutes(api)
		aihandler.New(gateway).RegisterRoutes(api)
		transcribehandler.New(transcriber, maxUpload).RegisterRoutes(api)
	})

	wshandler.New(hub).RegisterRoutes(r)

	return r
}
