package api

import (
	"log/slog"
	"net/http"

	"github.com/danki/engine/internal/api/shared"
	"github.com/danki/engine/internal/platform/logger"
)

// NoteHandler handles note-related HTTP requests
type NoteHandler struct {
	service SchedulerService
	logger  *slog.Logger
}

// NewNoteHandler creates a new NoteHandler
func NewNoteHandler(service SchedulerService, log *slog.Logger) *NoteHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for NoteHandler")
	}
	return &NoteHandler{
		service: service,
		logger:  log.With(slog.String("component", "note_handler")),
	}
}

// CreateNote handles POST /notes requests. The note's card(s) are
// created with it and returned in the response.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateNoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	note, cards, err := h.service.AddNote(r.Context(), req.DeckID, req.Front, req.Back, req.Meta)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := NoteResponse{
		ID:     note.ID,
		DeckID: note.DeckID,
		Front:  note.Front,
		Back:   note.Back,
		Cards:  make([]CardResponse, 0, len(cards)),
	}
	for _, card := range cards {
		resp.Cards = append(resp.Cards, cardToResponse(card))
	}

	log.Debug("note created",
		slog.String("note_id", note.ID.String()),
		slog.Int("cards", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}
