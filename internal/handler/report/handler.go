package report

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	reportService "github.com/tkavin/mind-mirror/backend/internal/service/report"
	"github.com/tkavin/mind-mirror/backend/pkg/utils"
)

// Handler serves the issue report endpoint.
type Handler struct {
	svc *reportService.Service
}

// New creates the report handler.
func New(svc *reportService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the report routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/reports", h.handleSubmitReport)
}

func (h *Handler) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Type string `json:"type"`
		reportService.Report
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	filename, err := h.svc.Save(payload.Type, payload.Report)
	if err != nil {
		switch {
		case errors.Is(err, reportService.ErrMissingFields),
			errors.Is(err, reportService.ErrUnknownKind):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[report] save failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "failed to save report")
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{"filename": filename})
}
