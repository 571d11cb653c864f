package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/domain"
)

// DeckStore defines the interface for deck persistence.
type DeckStore interface {
	// Create saves a new deck.
	// Returns ErrDeckNameExists when the name is already taken.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// List returns all decks, built-in decks first, then by name.
	List(ctx context.Context) ([]*domain.Deck, error)

	// UpdatePrefs replaces a deck's preference record.
	// Returns ErrDeckNotFound if the deck does not exist.
	UpdatePrefs(ctx context.Context, id uuid.UUID, prefs domain.DeckPrefs) error

	// Delete removes a deck. Notes and cards cascade at the schema
	// level. Returns ErrDeckNotFound if the deck does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a DeckStore bound to the given transaction.
	WithTx(tx *sql.Tx) DeckStore
}
