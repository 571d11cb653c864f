package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/domain"
	"github.com/danki/engine/internal/engine"
)

// SchedulerService is the slice of the engine the HTTP handlers use.
// Defined here so handler tests can substitute a mock.
type SchedulerService interface {
	CreateDeck(ctx context.Context, name string, prefs domain.DeckPrefs) (*domain.Deck, error)
	ListDecks(ctx context.Context) ([]*domain.Deck, error)
	UpdateDeckPrefs(ctx context.Context, id uuid.UUID, prefs domain.DeckPrefs) error

	AddNote(
		ctx context.Context,
		deckID uuid.UUID,
		front, back string,
		meta json.RawMessage,
	) (*domain.Note, []*domain.Card, error)

	BuildSession(
		ctx context.Context,
		deckIDs []uuid.UUID,
		now time.Time,
		maxNew, maxReview int,
	) ([]*domain.CardSummary, error)

	Review(
		ctx context.Context,
		cardID uuid.UUID,
		rating domain.Rating,
		answerMillis int64,
		now time.Time,
	) (*engine.ReviewResult, error)

	Suspend(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)
	Unsuspend(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)
	Bury(ctx context.Context, cardID uuid.UUID, until time.Time) (*domain.Card, error)

	TodayStats(ctx context.Context, deckIDs []uuid.UUID, now time.Time) (*engine.Stats, error)
}

// Ensure the engine satisfies the handler-facing interface.
var _ SchedulerService = (*engine.Engine)(nil)
