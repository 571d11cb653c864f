package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/domain"
)

// ReviewLogStore defines the interface for the append-only review
// ledger. Rows are never updated or deleted; a failed append must
// surface to the caller so the enclosing review transaction aborts.
type ReviewLogStore interface {
	// Append writes one ledger row and fills in its assigned ID.
	Append(ctx context.Context, rec *domain.ReviewRecord) error

	// ListByCard returns a card's ledger rows in append order.
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]*domain.ReviewRecord, error)

	// WithTx returns a ReviewLogStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewLogStore
}
