package transcribe

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	aiservice "github.com/pariharkamal9829/interview-copilot/internal/service/ai"
	transcribesvc "github.com/pariharkamal9829/interview-copilot/internal/service/transcribe"
	"github.com/pariharkamal9829/interview-copilot/pkg/utils"
)

// Transcriber abstracts the speech-to-text gateway for testing.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, language string) (*transcribesvc.Result, error)
}

// Handler accepts multipart audio uploads and forwards them to the
// transcription gateway. Uploads are spooled to a scratch file and
// deleted as soon as the gateway call returns.
type Handler struct {
	transcriber Transcriber
	maxUpload   int64
}

// New creates the transcription handler.
func New(transcriber Transcriber, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}
	return &Handler{transcriber: transcriber, maxUpload: maxUpload}
}

// RegisterRoutes registers the upload endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/transcribe", h.handleTranscribe)
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if h.transcriber == nil {
		utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"success": false,
			"error":   "transcription service is not configured",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "failed to parse multipart form: " + err.Error(),
		})
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "No audio file provided",
		})
		return
	}
	defer file.Close()

	// Spool the blob to scratch space; it is gone again before the
	// response is written.
	scratch, err := os.CreateTemp("", "upload-*.audio")
	if err != nil {
		utils.RespondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "failed to buffer upload",
		})
		return
	}
	defer func() {
		scratch.Close()
		os.Remove(scratch.Name())
	}()

	if _, err := io.Copy(scratch, file); err != nil {
		utils.RespondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "failed to buffer upload",
		})
		return
	}
	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		utils.RespondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "failed to buffer upload",
		})
		return
	}

	language := r.FormValue("language")
	log.Printf("[transcribe] processing upload %s (%d bytes)", header.Filename, header.Size)

	result, err := h.transcriber.Transcribe(r.Context(), scratch, header.Filename, language)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, aiservice.ErrUpstreamUnavailable) {
			status = http.StatusServiceUnavailable
		}
		utils.RespondJSON(w, status, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"text":     result.Text,
		"language": result.Language,
		"duration": result.Duration,
	})
}
