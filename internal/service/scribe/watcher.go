package scribe

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pariharkamal9829/interview-copilot/internal/model/interview"
	transcribesvc "github.com/pariharkamal9829/interview-copilot/internal/service/transcribe"
)

// Transcriber is the slice of the speech-to-text gateway the watcher
// needs.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, language string) (*transcribesvc.Result, error)
}

// TranscriptSink receives finished transcripts; the relay hub implements
// it, feeding the entries through its serialized dispatch path.
type TranscriptSink interface {
	InjectTranscript(sessionID string, entry interview.TranscriptEntry)
}

// job is one WAV file queued for transcription.
type job struct {
	path      string
	sessionID string
	queuedAt  time.Time
}

// Watcher monitors a recordings directory for WAV files dropped by
// out-of-band capture tools. Files are named "<sessionID>_<anything>.wav";
// each one is transcribed, injected into the session transcript, and
// deleted.
type Watcher struct {
	dir         string
	transcriber Transcriber
	sink        TranscriptSink
	watcher     *fsnotify.Watcher
	queue       chan job
	workerCount int
	workers     sync.WaitGroup
}

// NewWatcher creates a watcher over the recordings directory, creating it
// if needed.
func NewWatcher(dir string, workers int, transcriber Transcriber, sink TranscriptSink) (*Watcher, error) {
	if workers <= 0 {
		workers = 2
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recordings directory: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		dir:         dir,
		transcriber: transcriber,
		sink:        sink,
		watcher:     fsWatcher,
		queue:       make(chan job, 100),
		workerCount: workers,
	}, nil
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	if err := w.watcher.Add(w.dir); err != nil {
		log.Printf("[scribe] failed to watch recordings directory %s: %v", w.dir, err)
		return
	}
	log.Printf("[scribe] watching recordings directory %s", w.dir)

	for i := 0; i < w.workerCount; i++ {
		w.workers.Add(1)
		go w.worker(ctx)
	}
	defer w.workers.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[scribe] watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == 0 {
		return
	}

	name := filepath.Base(event.Name)
	if strings.HasSuffix(name, ".tmp") || !strings.HasSuffix(name, ".wav") {
		return
	}

	sessionID, ok := sessionIDFromName(name)
	if !ok {
		log.Printf("[scribe] skipping %s: no session id in filename", name)
		return
	}

	select {
	case w.queue <- job{path: event.Name, sessionID: sessionID, queuedAt: time.Now().UTC()}:
		log.Printf("[scribe] queued %s for session %s", name, sessionID)
	default:
		log.Printf("[scribe] job queue full, dropping %s", name)
	}
}

// sessionIDFromName splits "<sessionID>_<rest>.wav".
func sessionIDFromName(name string) (string, bool) {
	base := strings.TrimSuffix(name, ".wav")
	idx := strings.Index(base, "_")
	if idx <= 0 {
		return "", false
	}
	return base[:idx], true
}
