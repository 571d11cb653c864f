package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/domain"
)

// NoteStore defines the interface for note persistence.
type NoteStore interface {
	// Create saves a new note.
	// Returns ErrNoteExists when an identical (deck, front, back)
	// triple already exists, and ErrInvalidEntity when the owning deck
	// is missing.
	Create(ctx context.Context, note *domain.Note) error

	// GetByID retrieves a note by its unique ID.
	// Returns ErrNoteNotFound if the note does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error)

	// Exists reports whether an identical (deck, front, back) triple
	// is already stored.
	Exists(ctx context.Context, deckID uuid.UUID, front, back string) (bool, error)

	// WithTx returns a NoteStore bound to the given transaction.
	WithTx(tx *sql.Tx) NoteStore
}
