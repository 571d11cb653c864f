package engine

import (
	"errors"
	"fmt"

	"github.com/danki/engine/internal/domain"
)

// Engine operation errors. These wrap the store sentinels into the
// vocabulary callers of the engine see.
var (
	// ErrUnknownDeck is returned when an operation references a deck
	// that does not exist.
	ErrUnknownDeck = errors.New("unknown deck")

	// ErrUnknownCard is returned when an operation references a card
	// that does not exist.
	ErrUnknownCard = errors.New("unknown card")

	// ErrDuplicateNote is returned when a note with an identical
	// (deck, front, back) triple already exists.
	ErrDuplicateNote = errors.New("duplicate note")

	// ErrCardSuspended is returned when grading or burying a suspended
	// card.
	ErrCardSuspended = errors.New("card is suspended")

	// ErrCardNotSuspended is returned when unsuspending a card that is
	// not suspended.
	ErrCardNotSuspended = errors.New("card is not suspended")

	// ErrInvalidRating re-exports the domain sentinel so engine
	// callers need only this package's errors.
	ErrInvalidRating = domain.ErrInvalidRating
)

// unknownDeck wraps ErrUnknownDeck with the offending ID.
func unknownDeck(id fmt.Stringer) error {
	return fmt.Errorf("%w: %s", ErrUnknownDeck, id)
}

// unknownCard wraps ErrUnknownCard with the offending ID.
func unknownCard(id fmt.Stringer) error {
	return fmt.Errorf("%w: %s", ErrUnknownCard, id)
}
