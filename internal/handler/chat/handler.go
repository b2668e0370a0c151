package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tkavin/mind-mirror/backend/internal/service/conversation"
	"github.com/tkavin/mind-mirror/backend/internal/service/session"
	"github.com/tkavin/mind-mirror/backend/pkg/utils"
)

// Responder runs one conversation exchange. Satisfied by
// *conversation.Orchestrator; declared here so tests can substitute a fake.
type Responder interface {
	Respond(ctx context.Context, userText string) (conversation.Reply, error)
}

// Handler serves the chat endpoints.
type Handler struct {
	responder Responder
	state     *session.State
}

// New creates the chat handler.
func New(responder Responder, state *session.State) *Handler {
	return &Handler{responder: responder, state: state}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/messages", h.handleSendMessage)
	r.Get("/chat/history", h.handleGetHistory)
	r.Delete("/chat/history", h.handleClearHistory)
	r.Get("/chat/stream", h.handleStream)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.responder.Respond(r.Context(), payload.Message)
	if err != nil {
		h.respondChatError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	history := h.state.History()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"messages":       history,
		"total_messages": len(history),
	})
}

func (h *Handler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.state.ClearChat(); err != nil {
		log.Printf("[chat] failed to clear history: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to clear chat history")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleStream runs one exchange over Server-Sent Events so a frontend can
// show progress: start, message, emotion, end.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	message := r.URL.Query().Get("message")
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "start", map[string]string{"status": "thinking"})

	reply, err := h.responder.Respond(r.Context(), message)
	if err != nil {
		utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": err.Error()})
		return
	}

	utils.SendSSEEvent(w, flusher, "message", map[string]string{
		"text":   reply.Text,
		"source": reply.Source,
	})
	utils.SendSSEEvent(w, flusher, "emotion", map[string]string{"emotion": reply.Emotion})
	utils.SendSSEEvent(w, flusher, "end", map[string]bool{"finished": true})
}

func (h *Handler) respondChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, "message is required")
	case errors.Is(err, conversation.ErrProviderNotConfigured):
		utils.RespondError(w, http.StatusServiceUnavailable,
			"ai provider is not configured: set GROQ_API_KEY")
	default:
		log.Printf("[chat] exchange failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to generate reply")
	}
}
