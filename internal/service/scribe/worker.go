package scribe

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/youpy/go-wav"

	"github.com/pariharkamal9829/interview-copilot/internal/model/interview"
)

// minClipDuration filters out key-click length recordings; anything
// shorter is deleted without a gateway call.
const minClipDuration = time.Second

func (w *Watcher) worker(ctx context.Context) {
	defer w.workers.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-w.queue:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				log.Printf("[scribe] failed to process %s: %v", j.path, err)
			}
		}
	}
}

func (w *Watcher) process(ctx context.Context, j job) error {
	// The create event can fire before the recorder finishes writing;
	// give the file a moment to settle.
	if err := waitForStableSize(ctx, j.path); err != nil {
		return err
	}

	duration, err := clipDuration(j.path)
	if err != nil {
		return fmt.Errorf("unreadable WAV: %w", err)
	}
	if duration < minClipDuration {
		log.Printf("[scribe] dropping short clip %s (%.2fs)", filepath.Base(j.path), duration.Seconds())
		return os.Remove(j.path)
	}

	file, err := os.Open(j.path)
	if err != nil {
		return err
	}

	result, err := w.transcriber.Transcribe(ctx, file, filepath.Base(j.path), "")
	file.Close()
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	if result.Text != "" {
		w.sink.InjectTranscript(j.sessionID, interview.TranscriptEntry{
			Speaker:    "recording",
			Text:       result.Text,
			Confidence: 1.0,
			IsFinal:    true,
			Language:   result.Language,
			Timestamp:  j.queuedAt,
		})
		log.Printf("[scribe] transcribed %s for session %s", filepath.Base(j.path), j.sessionID)
	} else {
		log.Printf("[scribe] no transcribable content in %s", filepath.Base(j.path))
	}

	return os.Remove(j.path)
}

// clipDuration reads the WAV header to measure the clip length.
func clipDuration(path string) (time.Duration, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := wav.NewReader(file)
	return reader.Duration()
}

// waitForStableSize polls until the file size stops changing.
func waitForStableSize(ctx context.Context, path string) error {
	var lastSize int64 = -1
	for i := 0; i < 20; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize && info.Size() > 0 {
			return nil
		}
		lastSize = info.Size()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
	return fmt.Errorf("file %s did not stabilize", path)
}
