package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/api/shared"
	"github.com/danki/engine/internal/engine"
	"github.com/danki/engine/internal/platform/logger"
)

// SessionHandler handles session build and stats requests
type SessionHandler struct {
	service SchedulerService
	logger  *slog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(service SchedulerService, log *slog.Logger) *SessionHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}
	return &SessionHandler{
		service: service,
		logger:  log.With(slog.String("component", "session_handler")),
	}
}

// GetSession handles GET /session requests. Decks are selected with
// repeated deck_id query parameters; max_new and max_review override
// the per-deck daily limits when present.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckIDs, err := parseDeckIDs(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID")
		return
	}

	maxNew, err := parseLimit(r, "max_new")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid max_new")
		return
	}
	maxReview, err := parseLimit(r, "max_review")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid max_review")
		return
	}

	queue, err := h.service.BuildSession(r.Context(), deckIDs, time.Now().UTC(), maxNew, maxReview)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("session served",
		slog.Int("decks", len(deckIDs)),
		slog.Int("cards", len(queue)))
	shared.RespondWithJSON(w, r, http.StatusOK, queue)
}

// GetStats handles GET /stats requests.
func (h *SessionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	deckIDs, err := parseDeckIDs(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid deck ID")
		return
	}

	stats, err := h.service.TodayStats(r.Context(), deckIDs, time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

func parseDeckIDs(r *http.Request) ([]uuid.UUID, error) {
	values := r.URL.Query()["deck_id"]
	deckIDs := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		deckIDs = append(deckIDs, id)
	}
	return deckIDs, nil
}

func parseLimit(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return engine.UseDeckLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errInvalidLimit
	}
	return n, nil
}

var errInvalidLimit = errors.New("limit must be a non-negative integer")
