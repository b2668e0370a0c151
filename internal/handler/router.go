package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tkavin/mind-mirror/backend/internal/handler/analytics"
	"github.com/tkavin/mind-mirror/backend/internal/handler/chat"
	"github.com/tkavin/mind-mirror/backend/internal/handler/data"
	"github.com/tkavin/mind-mirror/backend/internal/handler/journal"
	"github.com/tkavin/mind-mirror/backend/internal/handler/mood"
	"github.com/tkavin/mind-mirror/backend/internal/handler/report"
	speechHandler "github.com/tkavin/mind-mirror/backend/internal/handler/speech"
	middlewarePkg "github.com/tkavin/mind-mirror/backend/internal/middleware"
	"github.com/tkavin/mind-mirror/backend/internal/service/conversation"
	reportService "github.com/tkavin/mind-mirror/backend/internal/service/report"
	"github.com/tkavin/mind-mirror/backend/internal/service/session"
	"github.com/tkavin/mind-mirror/backend/internal/storage"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(
	orchestrator *conversation.Orchestrator,
	state *session.State,
	store *storage.Store,
	reportSvc *reportService.Service,
	speechSvc speechHandler.SpeechService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		chat.New(orchestrator, state).RegisterRoutes(api)
		analytics.New(state).RegisterRoutes(api)
		data.New(store, state).RegisterRoutes(api)
		mood.New(state).RegisterRoutes(api)
		journal.New(state).RegisterRoutes(api)
		report.New(reportSvc).RegisterRoutes(api)

		if speechSvc != nil {
			speechHandler.New(speechSvc, state).RegisterRoutes(api, orchestrator)
		}
	})

	return r
}
