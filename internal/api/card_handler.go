package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danki/engine/internal/api/shared"
	"github.com/danki/engine/internal/domain"
	"github.com/danki/engine/internal/platform/logger"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	service SchedulerService
	logger  *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(service SchedulerService, log *slog.Logger) *CardHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}
	return &CardHandler{
		service: service,
		logger:  log.With(slog.String("component", "card_handler")),
	}
}

// Review handles POST /cards/{id}/review requests
func (h *CardHandler) Review(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, ok := h.cardID(w, r)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	rating, err := domain.ParseRating(req.Rating)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid rating")
		return
	}

	result, err := h.service.Review(r.Context(), cardID, rating, req.AnswerMS, time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("card reviewed",
		slog.String("card_id", cardID.String()),
		slog.String("rating", rating.String()),
		slog.String("state", string(result.Card.State)))
	shared.RespondWithJSON(w, r, http.StatusOK, ReviewResponse{
		Card:   cardToResponse(result.Card),
		Lapsed: result.Lapsed,
		Leech:  result.Leech,
	})
}

// Suspend handles POST /cards/{id}/suspend requests
func (h *CardHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardID(w, r)
	if !ok {
		return
	}

	card, err := h.service.Suspend(r.Context(), cardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// Unsuspend handles POST /cards/{id}/unsuspend requests
func (h *CardHandler) Unsuspend(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardID(w, r)
	if !ok {
		return
	}

	card, err := h.service.Unsuspend(r.Context(), cardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// Bury handles POST /cards/{id}/bury requests
func (h *CardHandler) Bury(w http.ResponseWriter, r *http.Request) {
	cardID, ok := h.cardID(w, r)
	if !ok {
		return
	}

	var req BuryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	card, err := h.service.Bury(r.Context(), cardID, req.Until)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

func (h *CardHandler) cardID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID")
		return uuid.Nil, false
	}
	return id, true
}
