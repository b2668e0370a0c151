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

	"github.com/tkavin/mind-mirror/backend/internal/config"
	"github.com/tkavin/mind-mirror/backend/internal/handler"
	"github.com/tkavin/mind-mirror/backend/internal/service/ai"
	"github.com/tkavin/mind-mirror/backend/internal/service/conversation"
	reportService "github.com/tkavin/mind-mirror/backend/internal/service/report"
	"github.com/tkavin/mind-mirror/backend/internal/service/session"
	"github.com/tkavin/mind-mirror/backend/internal/service/speech"
	"github.com/tkavin/mind-mirror/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store, err := storage.New(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}
	state := session.NewState(store)

	// Primary LLM provider; the chat surface stays up without it but answers
	// with an explicit configuration error.
	var primary ai.Responder
	if cfg.AI.Enabled() {
		primary = ai.NewGroqResponder(cfg.AI)
		log.Printf("AI provider initialized (model %s)", cfg.AI.Model)
	} else {
		log.Println("GROQ_API_KEY not set, chat endpoints will report the provider as unavailable")
	}
	fallback := ai.NewHuggingFaceResponder(cfg.Fallback.APIURL,
		time.Duration(cfg.Fallback.TimeoutSeconds)*time.Second)

	speechSvc := buildSpeechService(cfg.Speech)

	orchestrator := conversation.New(primary, fallback, state, synthesizerFor(speechSvc))
	reportSvc := reportService.NewService(cfg.Storage.ReportsDir)

	router := handler.NewRouter(orchestrator, state, store, reportSvc, speechSvc)

	startServer(ctx, cfg.Server, router)
}

// buildSpeechService assembles whichever speech engines have credentials.
// Tamil synthesis needs none, so it is always on.
func buildSpeechService(cfg config.SpeechConfig) *speech.Service {
	var recognizer speech.Transcriber
	if cfg.RecognizerEnabled() {
		recognizer = speech.NewGoogleRecognizer(cfg)
		log.Println("speech recognition enabled")
	} else {
		log.Println("GOOGLE_SPEECH_API_KEY not set, speech recognition disabled")
	}

	var englishTTS speech.SynthesizerEngine
	if cfg.EnglishTTSEnabled() {
		englishTTS = speech.NewVoiceRSS(cfg)
		log.Println("english speech synthesis enabled")
	} else {
		log.Println("VOICERSS_API_KEY not set, english speech synthesis disabled")
	}

	return speech.NewService(recognizer, speech.NewTranslateTTS(cfg), englishTTS)
}

// synthesizerFor adapts the speech service for the orchestrator, which only
// attaches audio when synthesis is actually available.
func synthesizerFor(svc *speech.Service) conversation.Synthesizer {
	if svc == nil || !svc.CanSynthesize() {
		return nil
	}
	return svc
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Mind Mirror backend listening on %s", addr)
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
