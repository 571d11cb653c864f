package engine_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danki/engine/internal/domain"
	"github.com/danki/engine/internal/domain/srs"
	"github.com/danki/engine/internal/engine"
	"github.com/danki/engine/internal/events"
	"github.com/danki/engine/internal/platform/sqlite"
	"github.com/danki/engine/internal/session"
	"github.com/danki/engine/internal/store"
)

type capturedEvents struct {
	events []*events.Event
}

func (c *capturedEvents) HandleEvent(_ context.Context, event *events.Event) error {
	c.events = append(c.events, event)
	return nil
}

type testEnv struct {
	engine  *engine.Engine
	db      *sql.DB
	cards   store.CardStore
	ledger  store.ReviewLogStore
	handler *capturedEvents
}

func newTestEnv(t *testing.T, params srs.Params) *testEnv {
	t.Helper()

	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := &capturedEvents{}
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(handler)

	cards := sqlite.NewCardStore(db, log)
	ledger := sqlite.NewReviewLogStore(db, log)

	eng, err := engine.New(engine.Config{
		DB:        db,
		Decks:     sqlite.NewDeckStore(db, log),
		Notes:     sqlite.NewNoteStore(db, log),
		Cards:     cards,
		ReviewLog: ledger,
		Scheduler: srs.NewService(params),
		Emitter:   emitter,
		Session:   session.Config{DisableJitter: true, Seed: 1},
		Logger:    log,
	})
	require.NoError(t, err)

	return &testEnv{engine: eng, db: db, cards: cards, ledger: ledger, handler: handler}
}

func (env *testEnv) createDeck(t *testing.T, prefs domain.DeckPrefs) *domain.Deck {
	t.Helper()
	deck, err := env.engine.CreateDeck(context.Background(), "test deck "+uuid.NewString(), prefs)
	require.NoError(t, err)
	return deck
}

func TestAddNoteCreatesCard(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())
	deck := env.createDeck(t, domain.DeckPrefs{})

	note, cards, err := env.engine.AddNote(context.Background(), deck.ID, "hola", "hello", nil)
	require.NoError(t, err)

	assert.Equal(t, deck.ID, note.DeckID)
	require.Len(t, cards, 1)
	assert.Equal(t, domain.TemplateFrontBack, cards[0].Template)
	assert.Equal(t, domain.StateNew, cards[0].State)
}

func TestAddNoteReverseDeckCreatesTwoCards(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())
	prefs := domain.DefaultDeckPrefs()
	prefs.Reverse = true
	deck := env.createDeck(t, prefs)

	_, cards, err := env.engine.AddNote(context.Background(), deck.ID, "hola", "hello", nil)
	require.NoError(t, err)

	require.Len(t, cards, 2)
	assert.Equal(t, domain.TemplateFrontBack, cards[0].Template)
	assert.Equal(t, domain.TemplateBackFront, cards[1].Template)
}

func TestAddNoteRejectsDuplicate(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())
	deck := env.createDeck(t, domain.DeckPrefs{})

	_, _, err := env.engine.AddNote(context.Background(), deck.ID, "hola", "hello", nil)
	require.NoError(t, err)

	_, _, err = env.engine.AddNote(context.Background(), deck.ID, "hola", "hello", nil)
	assert.ErrorIs(t, err, engine.ErrDuplicateNote)

	// A different back is a different note.
	_, _, err = env.engine.AddNote(context.Background(), deck.ID, "hola", "hi", nil)
	assert.NoError(t, err)
}

func TestAddNoteUnknownDeck(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())

	_, _, err := env.engine.AddNote(context.Background(), uuid.New(), "a", "b", nil)
	assert.ErrorIs(t, err, engine.ErrUnknownDeck)
}

func TestBuildSessionEmptyDeckSet(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())

	queue, err := env.engine.BuildSession(context.Background(), nil, time.Now(), engine.UseDeckLimit, engine.UseDeckLimit)
	require.NoError(t, err)
	assert.NotNil(t, queue)
	assert.Empty(t, queue)
}

func TestBuildSessionHonorsLimits(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())
	prefs := domain.DefaultDeckPrefs()
	prefs.NewPerDay = 2
	deck := env.createDeck(t, prefs)

	ctx := context.Background()
	for _, front := range []string{"a", "b", "c", "d"} {
		_, _, err := env.engine.AddNote(ctx, deck.ID, front, "back of "+front, nil)
		require.NoError(t, err)
	}

	now := time.Now().UTC().Add(time.Minute)

	// Per-deck preference caps new cards at 2.
	queue, err := env.engine.BuildSession(ctx, []uuid.UUID{deck.ID}, now, engine.UseDeckLimit, engine.UseDeckLimit)
	require.NoError(t, err)
	assert.Len(t, queue, 2)

	// An explicit override takes precedence.
	queue, err = env.engine.BuildSession(ctx, []uuid.UUID{deck.ID}, now, 3, engine.UseDeckLimit)
	require.NoError(t, err)
	assert.Len(t, queue, 3)

	// Zero excludes the bucket entirely.
	queue, err = env.engine.BuildSession(ctx, []uuid.UUID{deck.ID}, now, 0, engine.UseDeckLimit)
	require.NoError(t, err)
	assert.Empty(t, queue)

	// The override is a budget for the whole build, not per deck.
	deckB := env.createDeck(t, prefs)
	for _, front := range []string{"e", "f", "g", "h"} {
		_, _, err := env.engine.AddNote(ctx, deckB.ID, front, "back of "+front, nil)
		require.NoError(t, err)
	}

	queue, err = env.engine.BuildSession(ctx, []uuid.UUID{deck.ID, deckB.ID}, now, 3, engine.UseDeckLimit)
	require.NoError(t, err)
	assert.Len(t, queue, 3)

	// Per-deck preferences still apply deck by deck.
	queue, err = env.engine.BuildSession(ctx, []uuid.UUID{deck.ID, deckB.ID}, now, engine.UseDeckLimit, engine.UseDeckLimit)
	require.NoError(t, err)
	assert.Len(t, queue, 4)
}

func TestBuildSessionNewCardsInDueOrder(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())
	deck := env.createDeck(t, domain.DeckPrefs{})

	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	// Insert out of order; due timestamps decide the queue position.
	for i, front := range []string{"third", "first", "second"} {
		_, cards, err := env.engine.AddNote(ctx, deck.ID, front, "back", nil)
		require.NoError(t, err)

		card := cards[0]
		offsets := []time.Duration{3 * time.Minute, time.Minute, 2 * time.Minute}
		card.DueAt = base.Add(offsets[i])
		require.NoError(t, env.cards.Update(ctx, card))
	}

	queue, err := env.engine.BuildSession(ctx,
		[]uuid.UUID{deck.ID}, base.Add(time.Hour),
		engine.UseDeckLimit, engine.UseDeckLimit)
	require.NoError(t, err)

	require.Len(t, queue, 3)
	for i, front := range []string{"first", "second", "third"} {
		assert.Equal(t, front, queue[i].Front)
	}
}

func TestReviewAppendsLedgerRow(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())
	deck := env.createDeck(t, domain.DeckPrefs{})

	ctx := context.Background()
	_, cards, err := env.engine.AddNote(ctx, deck.ID, "hola", "hello", nil)
	require.NoError(t, err)
	cardID := cards[0].ID

	now := time.Now().UTC().Truncate(time.Second)
	result, err := env.engine.Review(ctx, cardID, domain.RatingGotIt, 3500, now)
	require.NoError(t, err)

	assert.Equal(t, domain.StateNew, result.Prior.State)
	assert.Equal(t, domain.StateLearning, result.Card.State)
	assert.False(t, result.Leech)

	records, err := env.ledger.ListByCard(ctx, cardID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.RatingGotIt, records[0].Rating)
	assert.Equal(t, int64(3500), records[0].AnswerMillis)
	assert.Equal(t, domain.StateNew, records[0].PrevState)
	assert.Equal(t, now, records[0].Timestamp)
	assert.NotZero(t, records[0].ID)

	// The persisted card matches the returned snapshot.
	stored, err := env.cards.GetByID(ctx, cardID)
	require.NoError(t, err)
	assert.Equal(t, result.Card.State, stored.State)
	assert.Equal(t, result.Card.StepIndex, stored.StepIndex)
}

func TestReviewUnknownCard(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())

	_, err := env.engine.Review(context.Background(), uuid.New(), domain.RatingGotIt, 0, time.Now())
	assert.ErrorIs(t, err, engine.ErrUnknownCard)
}

func TestReviewFailureWritesNothing(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())
	deck := env.createDeck(t, domain.DeckPrefs{})

	ctx := context.Background()
	_, cards, err := env.engine.AddNote(ctx, deck.ID, "hola", "hello", nil)
	require.NoError(t, err)
	cardID := cards[0].ID

	_, err = env.engine.Suspend(ctx, cardID)
	require.NoError(t, err)
	before, err := env.cards.GetByID(ctx, cardID)
	require.NoError(t, err)

	_, err = env.engine.Review(ctx, cardID, domain.RatingGotIt, 1000, time.Now().UTC())
	require.ErrorIs(t, err, engine.ErrCardSuspended)

	// A rejected grading leaves no ledger row and no card change.
	records, err := env.ledger.ListByCard(ctx, cardID)
	require.NoError(t, err)
	assert.Empty(t, records)

	after, err := env.cards.GetByID(ctx, cardID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSuspendAndUnsuspendRestoreState(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())
	deck := env.createDeck(t, domain.DeckPrefs{})

	ctx := context.Background()
	_, cards, err := env.engine.AddNote(ctx, deck.ID, "hola", "hello", nil)
	require.NoError(t, err)
	cardID := cards[0].ID

	// Move the card into learning first.
	_, err = env.engine.Review(ctx, cardID, domain.RatingGotIt, 0, time.Now().UTC())
	require.NoError(t, err)

	suspended, err := env.engine.Suspend(ctx, cardID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateSuspended, suspended.State)
	assert.Equal(t, domain.StateLearning, suspended.PriorState)

	// Grading and double suspension are rejected while suspended.
	_, err = env.engine.Review(ctx, cardID, domain.RatingGotIt, 0, time.Now().UTC())
	assert.ErrorIs(t, err, engine.ErrCardSuspended)
	_, err = env.engine.Suspend(ctx, cardID)
	assert.ErrorIs(t, err, engine.ErrCardSuspended)

	restored, err := env.engine.Unsuspend(ctx, cardID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateLearning, restored.State)
	assert.Empty(t, restored.PriorState)

	_, err = env.engine.Unsuspend(ctx, cardID)
	assert.ErrorIs(t, err, engine.ErrCardNotSuspended)
}

func TestBuryHidesCardFromSession(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())
	deck := env.createDeck(t, domain.DeckPrefs{})

	ctx := context.Background()
	_, cards, err := env.engine.AddNote(ctx, deck.ID, "hola", "hello", nil)
	require.NoError(t, err)
	cardID := cards[0].ID

	now := time.Now().UTC().Add(time.Minute)

	buried, err := env.engine.Bury(ctx, cardID, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, buried.BuriedUntil)

	queue, err := env.engine.BuildSession(ctx, []uuid.UUID{deck.ID}, now, engine.UseDeckLimit, engine.UseDeckLimit)
	require.NoError(t, err)
	assert.Empty(t, queue)

	// Once the mark expires the card reappears.
	queue, err = env.engine.BuildSession(ctx, []uuid.UUID{deck.ID}, now.Add(25*time.Hour), engine.UseDeckLimit, engine.UseDeckLimit)
	require.NoError(t, err)
	assert.Len(t, queue, 1)
}

func TestReviewClearsBuryMark(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())
	deck := env.createDeck(t, domain.DeckPrefs{})

	ctx := context.Background()
	_, cards, err := env.engine.AddNote(ctx, deck.ID, "hola", "hello", nil)
	require.NoError(t, err)
	cardID := cards[0].ID

	_, err = env.engine.Bury(ctx, cardID, time.Now().UTC().Add(24*time.Hour))
	require.NoError(t, err)

	result, err := env.engine.Review(ctx, cardID, domain.RatingGotIt, 0, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, result.Card.BuriedUntil)
}

func TestLeechEventEmittedOnThreshold(t *testing.T) {
	params := srs.DefaultParams()
	params.LeechThreshold = 1
	env := newTestEnv(t, params)
	deck := env.createDeck(t, domain.DeckPrefs{})

	ctx := context.Background()
	_, cards, err := env.engine.AddNote(ctx, deck.ID, "hola", "hello", nil)
	require.NoError(t, err)
	cardID := cards[0].ID

	// Force the card into review state by updating it directly.
	card, err := env.cards.GetByID(ctx, cardID)
	require.NoError(t, err)
	card.State = domain.StateReview
	card.IntervalDays = 10
	require.NoError(t, env.cards.Update(ctx, card))

	result, err := env.engine.Review(ctx, cardID, domain.RatingMissed, 0, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, result.Leech)
	assert.Equal(t, domain.StateRelearning, result.Card.State)

	require.Len(t, env.handler.events, 1)
	assert.Equal(t, events.EventTypeCardLeeched, env.handler.events[0].Type)

	var payload events.LeechPayload
	require.NoError(t, env.handler.events[0].UnmarshalPayload(&payload))
	assert.Equal(t, cardID, payload.CardID)
	assert.Equal(t, deck.ID, payload.DeckID)
	assert.Equal(t, 1, payload.Lapses)
}

func TestTodayStats(t *testing.T) {
	env := newTestEnv(t, srs.DefaultParams())
	deck := env.createDeck(t, domain.DeckPrefs{})

	ctx := context.Background()
	_, cardsA, err := env.engine.AddNote(ctx, deck.ID, "a", "1", nil)
	require.NoError(t, err)
	_, _, err = env.engine.AddNote(ctx, deck.ID, "b", "2", nil)
	require.NoError(t, err)

	// One card graded into learning, one still new.
	_, err = env.engine.Review(ctx, cardsA[0].ID, domain.RatingGotIt, 0, time.Now().UTC())
	require.NoError(t, err)

	stats, err := env.engine.TodayStats(ctx, []uuid.UUID{deck.ID}, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.New)
	assert.Equal(t, 1, stats.Learning)
	assert.Equal(t, 0, stats.Review)
}
