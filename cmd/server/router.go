package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/danki/engine/internal/api"
	"github.com/danki/engine/internal/api/middleware"
	"github.com/danki/engine/internal/api/shared"
)

// newRouter wires the HTTP routes to their handlers.
func newRouter(service api.SchedulerService, appLogger *slog.Logger) http.Handler {
	deckHandler := api.NewDeckHandler(service, appLogger)
	noteHandler := api.NewNoteHandler(service, appLogger)
	sessionHandler := api.NewSessionHandler(service, appLogger)
	cardHandler := api.NewCardHandler(service, appLogger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TraceMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/decks", func(r chi.Router) {
			r.Post("/", deckHandler.CreateDeck)
			r.Get("/", deckHandler.ListDecks)
			r.Patch("/{id}/prefs", deckHandler.UpdatePrefs)
		})

		r.Post("/notes", noteHandler.CreateNote)
		r.Get("/session", sessionHandler.GetSession)
		r.Get("/stats", sessionHandler.GetStats)

		r.Route("/cards/{id}", func(r chi.Router) {
			r.Post("/review", cardHandler.Review)
			r.Post("/suspend", cardHandler.Suspend)
			r.Post("/unsuspend", cardHandler.Unsuspend)
			r.Post("/bury", cardHandler.Bury)
		})
	})

	return r
}
