package mood

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	moodModel "github.com/tkavin/mind-mirror/backend/internal/model/mood"
	"github.com/tkavin/mind-mirror/backend/internal/service/session"
	"github.com/tkavin/mind-mirror/backend/pkg/utils"
)

// Handler serves mood check-in endpoints.
type Handler struct {
	state *session.State
}

// New creates the mood handler.
func New(state *session.State) *Handler {
	return &Handler{state: state}
}

// RegisterRoutes mounts the mood routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/moods", h.handleRecordMood)
	r.Get("/moods", h.handleListMoods)
	r.Get("/moods/trends", h.handleMoodTrends)
}

// handleRecordMood accepts either an explicit mood label from the fixed set
// or free text to scan for a mood word (the voice check-in path).
func (h *Handler) handleRecordMood(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Mood string `json:"mood"`
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	label := strings.TrimSpace(payload.Mood)
	method := moodModel.MethodManual
	if label == "" {
		if strings.TrimSpace(payload.Text) == "" {
			utils.RespondError(w, http.StatusBadRequest, "either mood or text is required")
			return
		}
		label = moodModel.DetectFromText(payload.Text)
		if label == "" {
			utils.RespondError(w, http.StatusBadRequest, "no mood word detected in text")
			return
		}
		method = moodModel.MethodVoice
	} else if !moodModel.Known(label) {
		utils.RespondError(w, http.StatusBadRequest, "unknown mood label")
		return
	}

	entry := h.state.RecordMood(label, method)
	utils.RespondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleListMoods(w http.ResponseWriter, r *http.Request) {
	moods := h.state.Moods()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"moods":  moods,
		"total":  len(moods),
		"labels": moodModel.Labels,
	})
}

func (h *Handler) handleMoodTrends(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"by_day": h.state.MoodHistoryByDay(),
	})
}
