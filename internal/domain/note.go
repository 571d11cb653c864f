package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Note-specific validation errors
var (
	// ErrNoteIDEmpty is returned when a note ID is empty or nil.
	ErrNoteIDEmpty = fmt.Errorf("%w: note ID cannot be empty", ErrValidation)

	// ErrNoteDeckIDEmpty is returned when a note's deck ID is empty or nil.
	ErrNoteDeckIDEmpty = fmt.Errorf("%w: note deck ID cannot be empty", ErrValidation)

	// ErrNoteFrontEmpty is returned when a note's front text is empty.
	ErrNoteFrontEmpty = fmt.Errorf("%w: note front cannot be empty", ErrValidation)

	// ErrNoteBackEmpty is returned when a note's back text is empty.
	ErrNoteBackEmpty = fmt.Errorf("%w: note back cannot be empty", ErrValidation)

	// ErrNoteMetaInvalid is returned when a note's metadata is not valid JSON.
	ErrNoteMetaInvalid = fmt.Errorf("%w: note meta must be valid JSON", ErrValidation)
)

// Note is a prompt/answer pair owned by a deck. A note owns one or
// more cards (a forward card, plus a reverse card for reverse decks).
type Note struct {
	ID        uuid.UUID       `json:"id"`
	DeckID    uuid.UUID       `json:"deck_id"`
	Front     string          `json:"front"`
	Back      string          `json:"back"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewNote creates a note in the given deck. Meta may be nil.
// Returns an error if validation fails.
func NewNote(deckID uuid.UUID, front, back string, meta json.RawMessage) (*Note, error) {
	note := &Note{
		ID:        uuid.New(),
		DeckID:    deckID,
		Front:     front,
		Back:      back,
		Meta:      meta,
		CreatedAt: time.Now().UTC(),
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}

	return note, nil
}

// Validate checks if the Note has valid data.
func (n *Note) Validate() error {
	if n.ID == uuid.Nil {
		return ErrNoteIDEmpty
	}
	if n.DeckID == uuid.Nil {
		return ErrNoteDeckIDEmpty
	}
	if n.Front == "" {
		return ErrNoteFrontEmpty
	}
	if n.Back == "" {
		return ErrNoteBackEmpty
	}
	if len(n.Meta) > 0 {
		var js json.RawMessage
		if err := json.Unmarshal(n.Meta, &js); err != nil {
			return ErrNoteMetaInvalid
		}
	}
	return nil
}
