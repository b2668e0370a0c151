package analytics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tkavin/mind-mirror/backend/internal/service/session"
	"github.com/tkavin/mind-mirror/backend/pkg/utils"
)

// Handler serves the aggregated emotion and chat analytics.
type Handler struct {
	state *session.State
}

// New creates the analytics handler.
func New(state *session.State) *Handler {
	return &Handler{state: state}
}

// RegisterRoutes mounts the analytics routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/analytics/emotions", h.handleEmotionSummary)
	r.Get("/analytics/trends", h.handleMoodTrends)
	r.Get("/analytics/chat", h.handleChatStatistics)
}

func (h *Handler) handleEmotionSummary(w http.ResponseWriter, r *http.Request) {
	days, ok := parseDays(r, 7)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "days must be a positive integer")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.state.SummarizeEmotions(days))
}

func (h *Handler) handleMoodTrends(w http.ResponseWriter, r *http.Request) {
	days, ok := parseDays(r, 30)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "days must be a positive integer")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"days":   days,
		"trends": h.state.MoodTrends(days),
	})
}

func (h *Handler) handleChatStatistics(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.state.ChatStatistics())
}

func parseDays(r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return fallback, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return 0, false
	}
	return days, true
}
