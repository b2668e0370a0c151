package journal

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tkavin/mind-mirror/backend/internal/service/session"
	"github.com/tkavin/mind-mirror/backend/pkg/utils"
)

// Handler serves the journal endpoints.
type Handler struct {
	state *session.State
}

// New creates the journal handler.
func New(state *session.State) *Handler {
	return &Handler{state: state}
}

// RegisterRoutes mounts the journal routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/journal", h.handleAddEntry)
	r.Get("/journal", h.handleListEntries)
}

func (h *Handler) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Entry string `json:"entry"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text := strings.TrimSpace(payload.Entry)
	if text == "" {
		utils.RespondError(w, http.StatusBadRequest, "entry is required")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, h.state.AddJournalEntry(text))
}

func (h *Handler) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries := h.state.JournalEntries()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   len(entries),
	})
}
