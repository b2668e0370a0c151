package speech

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tkavin/mind-mirror/backend/internal/analysis/emotion"
	"github.com/tkavin/mind-mirror/backend/internal/service/session"
	speechsvc "github.com/tkavin/mind-mirror/backend/internal/service/speech"
	"github.com/tkavin/mind-mirror/backend/pkg/utils"
)

// SpeechService abstracts the speech pipeline so tests can substitute a fake.
type SpeechService interface {
	Transcribe(ctx context.Context, audio []byte, format string) (speechsvc.Transcript, error)
	Synthesize(ctx context.Context, text, emotion string) ([]byte, string, error)
	CanTranscribe() bool
	CanSynthesize() bool
}

// Handler serves the speech endpoints.
type Handler struct {
	speechSvc SpeechService
	state     *session.State
}

// New creates the speech handler.
func New(speechSvc SpeechService, state *session.State) *Handler {
	return &Handler{speechSvc: speechSvc, state: state}
}

// RegisterRoutes mounts the speech routes. responder powers the websocket
// voice loop; when nil only the one-shot endpoints are served.
func (h *Handler) RegisterRoutes(r chi.Router, responder Responder) {
	r.Route("/speech", func(speechRouter chi.Router) {
		speechRouter.Post("/transcribe", h.handleTranscribe)
		speechRouter.Post("/synthesize", h.handleSynthesize)
		speechRouter.Get("/health", h.handleHealth)

		if responder != nil {
			wsHandler := NewWebSocketHandler(h.speechSvc, responder, h.state)
			wsHandler.RegisterWebSocketRoutes(speechRouter)
		} else {
			speechRouter.Get("/ws", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusNotImplemented, "voice loop not available")
			})
		}
	})
}

// handleTranscribe accepts a multipart audio upload, transcribes it and
// records the detected emotion like a typed message would.
func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if !h.speechSvc.CanTranscribe() {
		utils.RespondError(w, http.StatusServiceUnavailable,
			"speech recognition is not configured: set GOOGLE_SPEECH_API_KEY")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}

	transcript, err := h.speechSvc.Transcribe(r.Context(), audio, inferAudioFormat(header.Filename))
	if err != nil {
		if errors.Is(err, speechsvc.ErrNoSpeech) {
			utils.RespondError(w, http.StatusUnprocessableEntity, "no speech recognized")
			return
		}
		log.Printf("[speech] transcription error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "speech recognition failed")
		return
	}

	label := emotion.Classify(transcript.Text)
	if err := h.state.RecordEmotion(label, time.Now()); err != nil {
		log.Printf("[speech] warning: failed to record emotion: %v", err)
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"text":       transcript.Text,
		"language":   transcript.Language,
		"confidence": transcript.Confidence,
		"emotion":    string(label),
	})
}

// handleSynthesize renders text to audio and returns the raw bytes.
func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text    string `json:"text"`
		Emotion string `json:"emotion"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, format, err := h.speechSvc.Synthesize(r.Context(), payload.Text, payload.Emotion)
	if err != nil {
		if errors.Is(err, speechsvc.ErrNotConfigured) {
			utils.RespondError(w, http.StatusServiceUnavailable, "speech synthesis is not configured")
			return
		}
		log.Printf("[speech] synthesis error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/"+format)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("Content-Disposition", "attachment; filename=speech."+format)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		log.Printf("failed to write audio response: %v", err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"service":    "speech",
		"transcribe": h.speechSvc.CanTranscribe(),
		"synthesize": h.speechSvc.CanSynthesize(),
	})
}

// inferAudioFormat derives the audio container from the uploaded file name.
func inferAudioFormat(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mp3":
		return "mp3"
	case ".flac":
		return "flac"
	case ".webm":
		return "webm"
	case ".m4a":
		return "m4a"
	case ".aac":
		return "aac"
	default:
		return "wav"
	}
}
