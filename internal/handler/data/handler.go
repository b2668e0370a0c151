package data

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tkavin/mind-mirror/backend/internal/service/session"
	"github.com/tkavin/mind-mirror/backend/internal/storage"
	"github.com/tkavin/mind-mirror/backend/pkg/utils"
)

// Handler serves data maintenance and preference endpoints.
type Handler struct {
	store *storage.Store
	state *session.State
}

// New creates the data handler.
func New(store *storage.Store, state *session.State) *Handler {
	return &Handler{store: store, state: state}
}

// RegisterRoutes mounts the data and preference routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/data/validate", h.handleValidate)
	r.Post("/data/export", h.handleExport)
	r.Delete("/data", h.handleDeleteAll)
	r.Get("/preferences", h.handleGetPreferences)
	r.Put("/preferences", h.handlePutPreferences)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.ValidateIntegrity())
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filename, err := h.store.ExportAll()
	if err != nil {
		log.Printf("[data] export failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, map[string]string{"filename": filename})
}

func (h *Handler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearAll(); err != nil {
		log.Printf("[data] delete all failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete data")
		return
	}
	h.state.Reset()
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"preferences": h.state.Preferences(),
	})
}

func (h *Handler) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.state.ApplyPreferences(prefs); err != nil {
		log.Printf("[data] saving preferences failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"preferences": h.state.Preferences(),
	})
}
