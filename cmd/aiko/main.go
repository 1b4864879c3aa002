package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/teomanelik/aiko/internal/agents"
	"github.com/teomanelik/aiko/internal/brain"
	"github.com/teomanelik/aiko/internal/config"
	"github.com/teomanelik/aiko/internal/httpapi"
	"github.com/teomanelik/aiko/internal/observability"
	"github.com/teomanelik/aiko/internal/session"
	"github.com/teomanelik/aiko/internal/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	completer, brainLabel, err := brain.NewCompleter(ctx, brain.Config{
		Mode:   cfg.BrainProvider,
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.BrainModel,
	})
	if err != nil {
		log.Fatalf("brain init failed: %v", err)
	}
	log.Printf("brain provider: %s (%s)", brainLabel, cfg.BrainModel)

	provider, voiceLabel := buildVoiceProvider(cfg)
	log.Printf("voice provider: %s", voiceLabel)

	sessions := session.NewManager(cfg.SessionTimeout)
	sessions.SetExpireHook(func(_ *session.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	pipeline := agents.NewPipeline(completer, metrics,
		agents.WithFanout(cfg.ResearchFanout),
		agents.WithResearchTimeout(cfg.ResearchTimeout),
	)
	var orchOpts []voice.Option
	if cfg.AudioDebugDir != "" {
		orchOpts = append(orchOpts, voice.WithAudioDebugDir(cfg.AudioDebugDir))
	}
	orchestrator := voice.NewOrchestrator(provider, pipeline, metrics, orchOpts...)

	api := httpapi.New(cfg, sessions, orchestrator, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 5*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}

// buildVoiceProvider resolves the speech backend. Mode "auto" uses
// Google Speech when a key is present and the mock otherwise; asking
// for Google explicitly without a key is fatal.
func buildVoiceProvider(cfg config.Config) (voice.Provider, string) {
	mode := strings.ToLower(strings.TrimSpace(cfg.VoiceProvider))
	if mode == "" {
		mode = "auto"
	}

	newGoogle := func() voice.Provider {
		p, err := voice.NewGoogleProvider(voice.GoogleConfig{
			APIKey:     cfg.SpeechAPIKey,
			STTBaseURL: cfg.SpeechBaseURL,
			TTSBaseURL: cfg.TTSBaseURL,
			Language:   cfg.SpeechSTTLanguage,
			Voice:      cfg.SpeechTTSVoice,
		})
		if err != nil {
			log.Fatalf("google speech init failed: %v", err)
		}
		return p
	}

	switch mode {
	case "google":
		if strings.TrimSpace(cfg.SpeechAPIKey) == "" {
			log.Fatalf("VOICE_PROVIDER=google but GOOGLE_SPEECH_API_KEY is not set")
		}
		return newGoogle(), "google"
	case "mock":
		return voice.NewMockProvider(), "mock"
	case "auto":
		if strings.TrimSpace(cfg.SpeechAPIKey) != "" {
			return newGoogle(), "google"
		}
		return voice.NewMockProvider(), "mock (no google speech key)"
	default:
		log.Fatalf("invalid VOICE_PROVIDER: %q (expected auto|google|mock)", cfg.VoiceProvider)
		return nil, ""
	}
}
