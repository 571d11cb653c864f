package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danki/engine/internal/api/shared"
	"github.com/danki/engine/internal/domain"
	"github.com/danki/engine/internal/platform/logger"
)

// DeckHandler handles deck-related HTTP requests
type DeckHandler struct {
	service SchedulerService
	logger  *slog.Logger
}

// NewDeckHandler creates a new DeckHandler
func NewDeckHandler(service SchedulerService, log *slog.Logger) *DeckHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeckHandler")
	}
	return &DeckHandler{
		service: service,
		logger:  log.With(slog.String("component", "deck_handler")),
	}
}

// CreateDeck handles POST /decks requests
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateDeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	prefs := domain.DeckPrefs{}
	if req.Prefs != nil {
		prefs = *req.Prefs
	}

	deck, err := h.service.CreateDeck(r.Context(), req.Name, prefs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("deck created", slog.String("deck_id", deck.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, deckToResponse(deck))
}

// ListDecks handles GET /decks requests
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.service.ListDecks(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]DeckResponse, 0, len(decks))
	for _, deck := range decks {
		responses = append(responses, deckToResponse(deck))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// UpdatePrefs handles PATCH /decks/{id}/prefs requests
func (h *DeckHandler) UpdatePrefs(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID")
		return
	}

	var req UpdatePrefsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	prefs := domain.DeckPrefs{
		NewPerDay: req.NewPerDay,
		RevPerDay: req.RevPerDay,
		StepsMin:  req.StepsMin,
		Order:     req.Order,
		Reverse:   req.Reverse,
	}
	if err := h.service.UpdateDeckPrefs(r.Context(), deckID, prefs); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("deck prefs updated", slog.String("deck_id", deckID.String()))
	w.WriteHeader(http.StatusNoContent)
}
