package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pariharkamal9829/interview-copilot/internal/config"
	"github.com/pariharkamal9829/interview-copilot/internal/handler"
	aihandler "github.com/pariharkamal9829/interview-copilot/internal/handler/ai"
	"github.com/pariharkamal9829/interview-copilot/internal/relay"
	"github.com/pariharkamal9829/interview-copilot/internal/service/ai"
	"github.com/pariharkamal9829/interview-copilot/internal/service/scribe"
	"github.com/pariharkamal9829/interview-copilot/internal/service/session"
	"github.com/pariharkamal9829/interview-copilot/internal/service/transcribe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store := session.NewStore()

	// AI completion gateway. A missing credential degrades AI traffic to
	// upstream-unavailable errors instead of refusing to start.
	var gateway *ai.Gateway
	if cfg.AI.Enabled() {
		gateway, err = ai.NewGateway(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI gateway: %v", err)
			log.Println("continuing without AI functionality")
			gateway = nil
		} else {
			log.Println("AI gateway initialized successfully")
		}
	} else {
		log.Println("OPENAI_API_KEY not configured, AI requests will be rejected as unavailable")
	}

	transcriber := transcribe.NewService(cfg.Transcribe)
	if !cfg.Transcribe.Enabled() {
		log.Println("transcription credential not configured, uploads will be rejected as unavailable")
	}

	var hubGateway relay.CompletionGateway
	var httpGateway aihandler.CompletionGateway
	if gateway != nil {
		hubGateway = gateway
		httpGateway = gateway
	}

	hub := relay.NewHub(store, hubGateway, cfg.Relay)
	go hub.Run(ctx)

	// Optional out-of-band recordings watcher.
	if cfg.Relay.RecordingsDir != "" {
		watcher, err := scribe.NewWatcher(cfg.Relay.RecordingsDir, cfg.Relay.ScribeWorkers, transcriber, hub)
		if err != nil {
			log.Printf("warning: failed to initialize recordings watcher: %v", err)
		} else {
			go watcher.Run(ctx)
			log.Printf("recordings watcher started on %s", cfg.Relay.RecordingsDir)
		}
	}

	router := handler.NewRouter(store, hub, httpGateway, transcriber, cfg.Transcribe.MaxUploadSize)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Interview Copilot relay listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
