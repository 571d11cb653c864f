package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/domain"
)

// CardStore defines the interface for card persistence and the due
// queries that feed session builds. The three due queries return
// disjoint buckets; all of them exclude suspended cards and cards with
// an active bury mark.
type CardStore interface {
	// Create saves a new card.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// Update rewrites a card's scheduling columns. Cards are only
	// mutated by the state machine or an explicit suspend/bury
	// command, so this is a full-row update.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// DueLearning returns learning and relearning cards due at or
	// before now, ordered by due time ascending.
	DueLearning(ctx context.Context, deckIDs []uuid.UUID, now time.Time) ([]*domain.CardSummary, error)

	// DueReview returns review cards due at or before now, ordered by
	// due time ascending, capped at limit. A limit of 0 returns nothing.
	DueReview(ctx context.Context, deckIDs []uuid.UUID, now time.Time, limit int) ([]*domain.CardSummary, error)

	// DueNew returns new cards in creation order, capped at limit.
	// A limit of 0 returns nothing.
	DueNew(ctx context.Context, deckIDs []uuid.UUID, now time.Time, limit int) ([]*domain.CardSummary, error)

	// CountDue returns the number of due cards per state bucket,
	// keyed by state.
	CountDue(ctx context.Context, deckIDs []uuid.UUID, now time.Time) (map[domain.State]int, error)

	// WithTx returns a CardStore bound to the given transaction.
	WithTx(tx *sql.Tx) CardStore
}
