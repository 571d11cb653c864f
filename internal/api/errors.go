package api

import (
	"errors"
	"net/http"

	"github.com/danki/engine/internal/domain"
	"github.com/danki/engine/internal/engine"
	"github.com/danki/engine/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, engine.ErrUnknownDeck),
		errors.Is(err, engine.ErrUnknownCard),
		errors.Is(err, store.ErrDeckNotFound),
		errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, store.ErrNoteNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, engine.ErrDuplicateNote),
		errors.Is(err, engine.ErrCardSuspended),
		errors.Is(err, engine.ErrCardNotSuspended),
		errors.Is(err, store.ErrDeckNameExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, engine.ErrUnknownDeck),
		errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"

	case errors.Is(err, engine.ErrUnknownCard),
		errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrNoteNotFound):
		return "Note not found"

	case errors.Is(err, engine.ErrDuplicateNote):
		return "An identical note already exists in this deck"

	case errors.Is(err, store.ErrDeckNameExists):
		return "A deck with this name already exists"

	case errors.Is(err, engine.ErrCardSuspended):
		return "Card is suspended"

	case errors.Is(err, engine.ErrCardNotSuspended):
		return "Card is not suspended"

	case errors.Is(err, domain.ErrInvalidRating):
		return "Invalid rating"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}
