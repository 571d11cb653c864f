// Package engine coordinates the scheduling core: it owns the
// transaction boundaries around note creation, session builds, and
// grading, and translates store errors into caller-facing ones.
package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/domain"
	"github.com/danki/engine/internal/domain/srs"
	"github.com/danki/engine/internal/events"
	"github.com/danki/engine/internal/platform/logger"
	"github.com/danki/engine/internal/session"
	"github.com/danki/engine/internal/store"
)

// UseDeckLimit selects a deck's own per-day preference instead of an
// explicit session limit.
const UseDeckLimit = -1

// ReviewResult is the outcome of grading a card.
type ReviewResult struct {
	// Prior is the card snapshot before grading.
	Prior *domain.Card `json:"prior"`

	// Card is the card snapshot after grading.
	Card *domain.Card `json:"card"`

	// Lapsed reports whether the grading recorded a lapse.
	Lapsed bool `json:"lapsed"`

	// Leech reports whether the lapse counter crossed the leech
	// threshold on this grading.
	Leech bool `json:"leech"`

	// Record is the ledger row written for this grading.
	Record *domain.ReviewRecord `json:"record"`
}

// Stats holds due counts per state bucket for a set of decks.
type Stats struct {
	New      int `json:"new"`
	Learning int `json:"learning"`
	Review   int `json:"review"`
}

// Engine is the scheduling service. All mutating operations run in a
// single database transaction; events are emitted only after commit.
type Engine struct {
	db      *sql.DB
	decks   store.DeckStore
	notes   store.NoteStore
	cards   store.CardStore
	ledger  store.ReviewLogStore
	srs     srs.Service
	emitter events.EventEmitter
	session session.Config
	logger  *slog.Logger
}

// Config bundles the engine's collaborators.
type Config struct {
	DB        *sql.DB
	Decks     store.DeckStore
	Notes     store.NoteStore
	Cards     store.CardStore
	ReviewLog store.ReviewLogStore

	// Scheduler is the grading algorithm. Nil means the default
	// parameterization.
	Scheduler srs.Service

	// Emitter receives scheduler events. Nil disables emission.
	Emitter events.EventEmitter

	// Session configures queue building (jitter bounds, seeding).
	// The order preference comes from the decks at build time.
	Session session.Config

	Logger *slog.Logger
}

// New creates an Engine. DB and the four stores are required.
func New(cfg Config) (*Engine, error) {
	if cfg.DB == nil {
		return nil, errors.New("db is required")
	}
	if cfg.Decks == nil || cfg.Notes == nil || cfg.Cards == nil || cfg.ReviewLog == nil {
		return nil, errors.New("all stores are required")
	}

	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = srs.NewDefaultService()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		db:      cfg.DB,
		decks:   cfg.Decks,
		notes:   cfg.Notes,
		cards:   cfg.Cards,
		ledger:  cfg.ReviewLog,
		srs:     scheduler,
		emitter: cfg.Emitter,
		session: cfg.Session,
		logger:  log.With(slog.String("component", "engine")),
	}, nil
}

// CreateDeck creates a deck with the given name and preferences.
// Zero-valued prefs fall back to the defaults.
func (e *Engine) CreateDeck(
	ctx context.Context,
	name string,
	prefs domain.DeckPrefs,
) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name, prefs)
	if err != nil {
		return nil, err
	}
	if err := e.decks.Create(ctx, deck); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, e.logger).Info("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("name", deck.Name))
	return deck, nil
}

// GetDeck retrieves a deck by ID.
func (e *Engine) GetDeck(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	deck, err := e.decks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return nil, unknownDeck(id)
		}
		return nil, err
	}
	return deck, nil
}

// ListDecks returns all decks, built-in decks first.
func (e *Engine) ListDecks(ctx context.Context) ([]*domain.Deck, error) {
	return e.decks.List(ctx)
}

// UpdateDeckPrefs replaces a deck's preferences.
func (e *Engine) UpdateDeckPrefs(
	ctx context.Context,
	id uuid.UUID,
	prefs domain.DeckPrefs,
) error {
	if prefs.Order == "" {
		prefs.Order = domain.OrderNewFirst
	}
	if err := e.decks.UpdatePrefs(ctx, id, prefs); err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return unknownDeck(id)
		}
		return err
	}
	return nil
}

// AddNote creates a note and its card(s) atomically. When the owning
// deck's reverse preference is set, a second back->front card is
// created alongside the front->back one. Both cards enter the new
// state with their creation time as the due tiebreaker.
func (e *Engine) AddNote(
	ctx context.Context,
	deckID uuid.UUID,
	front, back string,
	meta json.RawMessage,
) (*domain.Note, []*domain.Card, error) {
	now := time.Now().UTC()

	var note *domain.Note
	var created []*domain.Card

	err := store.RunInTransaction(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
		decks := e.decks.WithTx(tx)
		notes := e.notes.WithTx(tx)
		cards := e.cards.WithTx(tx)

		deck, err := decks.GetByID(ctx, deckID)
		if err != nil {
			if errors.Is(err, store.ErrDeckNotFound) {
				return unknownDeck(deckID)
			}
			return err
		}

		exists, err := notes.Exists(ctx, deckID, front, back)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateNote
		}

		note, err = domain.NewNote(deckID, front, back, meta)
		if err != nil {
			return err
		}
		if err := notes.Create(ctx, note); err != nil {
			if errors.Is(err, store.ErrNoteExists) {
				return ErrDuplicateNote
			}
			return err
		}

		templates := []string{domain.TemplateFrontBack}
		if deck.Prefs.Reverse {
			templates = append(templates, domain.TemplateBackFront)
		}
		for _, tmpl := range templates {
			card, err := domain.NewCard(note.ID, tmpl, now)
			if err != nil {
				return err
			}
			if err := cards.Create(ctx, card); err != nil {
				return err
			}
			created = append(created, card)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logger.FromContextOrDefault(ctx, e.logger).Info("note added",
		slog.String("note_id", note.ID.String()),
		slog.String("deck_id", deckID.String()),
		slog.Int("cards", len(created)))
	return note, created, nil
}

// BuildSession assembles the ordered review queue for the given decks.
// maxNew and maxReview cap the new and review buckets across the whole
// build; pass UseDeckLimit to fall back to each deck's per-day
// preference. A limit of 0 excludes the bucket. An empty deck set
// yields an empty session.
func (e *Engine) BuildSession(
	ctx context.Context,
	deckIDs []uuid.UUID,
	now time.Time,
	maxNew, maxReview int,
) ([]*domain.CardSummary, error) {
	if len(deckIDs) == 0 {
		return []*domain.CardSummary{}, nil
	}

	var learning, review, fresh []*domain.CardSummary
	order := domain.OrderNewFirst

	// Explicit overrides are a budget for the whole build; the
	// per-deck preferences apply deck by deck.
	newBudget := maxNew
	revBudget := maxReview

	for i, deckID := range deckIDs {
		deck, err := e.decks.GetByID(ctx, deckID)
		if err != nil {
			if errors.Is(err, store.ErrDeckNotFound) {
				return nil, unknownDeck(deckID)
			}
			return nil, err
		}
		// Multi-deck builds follow the first deck's order preference.
		if i == 0 && deck.Prefs.Order != "" {
			order = deck.Prefs.Order
		}

		newLimit := deck.Prefs.NewPerDay
		if newBudget != UseDeckLimit {
			newLimit = newBudget
		}
		revLimit := deck.Prefs.RevPerDay
		if revBudget != UseDeckLimit {
			revLimit = revBudget
		}

		ids := []uuid.UUID{deckID}

		due, err := e.cards.DueLearning(ctx, ids, now)
		if err != nil {
			return nil, err
		}
		learning = append(learning, due...)

		due, err = e.cards.DueReview(ctx, ids, now, revLimit)
		if err != nil {
			return nil, err
		}
		review = append(review, due...)
		if revBudget != UseDeckLimit {
			revBudget -= len(due)
		}

		due, err = e.cards.DueNew(ctx, ids, now, newLimit)
		if err != nil {
			return nil, err
		}
		fresh = append(fresh, due...)
		if newBudget != UseDeckLimit {
			newBudget -= len(due)
		}
	}

	cfg := e.session
	cfg.Order = order
	queue := session.New(cfg).Build(learning, review, fresh)

	logger.FromContextOrDefault(ctx, e.logger).Debug("session built",
		slog.Int("decks", len(deckIDs)),
		slog.Int("learning", len(learning)),
		slog.Int("review", len(review)),
		slog.Int("new", len(fresh)),
		slog.Int("queue", len(queue)))
	return queue, nil
}

// Review grades a card. The card update and the ledger append commit
// in one transaction; a leech event, if any, is emitted only after the
// commit succeeds.
func (e *Engine) Review(
	ctx context.Context,
	cardID uuid.UUID,
	rating domain.Rating,
	answerMillis int64,
	now time.Time,
) (*ReviewResult, error) {
	var result *ReviewResult
	var deckID, noteID uuid.UUID

	err := store.RunInTransaction(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := e.cards.WithTx(tx)
		ledger := e.ledger.WithTx(tx)

		card, err := cards.GetByID(ctx, cardID)
		if err != nil {
			if errors.Is(err, store.ErrCardNotFound) {
				return unknownCard(cardID)
			}
			return err
		}

		note, err := e.notes.WithTx(tx).GetByID(ctx, card.NoteID)
		if err != nil {
			return err
		}
		deck, err := e.decks.WithTx(tx).GetByID(ctx, note.DeckID)
		if err != nil {
			return err
		}
		noteID, deckID = note.ID, deck.ID

		steps := srs.StepsFromMinutes(deck.Prefs.StepsMin)
		graded, err := e.srs.NextReview(card, rating, steps, now)
		if err != nil {
			if errors.Is(err, srs.ErrCardSuspended) {
				return fmt.Errorf("%w: %s", ErrCardSuspended, cardID)
			}
			return err
		}

		// A graded card re-enters scheduling regardless of any bury
		// mark left on it.
		graded.Card.BuriedUntil = nil

		if err := cards.Update(ctx, graded.Card); err != nil {
			return err
		}

		rec, err := domain.NewReviewRecord(card, graded.Card, rating, answerMillis, now)
		if err != nil {
			return err
		}
		if err := ledger.Append(ctx, rec); err != nil {
			return err
		}

		result = &ReviewResult{
			Prior:  card,
			Card:   graded.Card,
			Lapsed: graded.Lapsed,
			Leech:  graded.Leech,
			Record: rec,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Leech {
		e.emitLeech(ctx, cardID, noteID, deckID, result.Card.Lapses)
	}
	return result, nil
}

// Suspend takes a card out of scheduling, remembering its state so
// Unsuspend can restore it exactly.
func (e *Engine) Suspend(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	return e.updateCard(ctx, cardID, func(card *domain.Card) error {
		if card.State == domain.StateSuspended {
			return fmt.Errorf("%w: %s", ErrCardSuspended, cardID)
		}
		card.PriorState = card.State
		card.State = domain.StateSuspended
		return nil
	})
}

// Unsuspend restores a suspended card to the exact state it held when
// suspended. Its due timestamp is untouched; an overdue card is simply
// due again.
func (e *Engine) Unsuspend(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	return e.updateCard(ctx, cardID, func(card *domain.Card) error {
		if card.State != domain.StateSuspended {
			return fmt.Errorf("%w: %s", ErrCardNotSuspended, cardID)
		}
		restored := card.PriorState
		if restored == "" {
			restored = domain.StateNew
		}
		card.State = restored
		card.PriorState = ""
		return nil
	})
}

// Bury marks a card as hidden from session builds until the given
// time. Grading the card clears the mark early.
func (e *Engine) Bury(ctx context.Context, cardID uuid.UUID, until time.Time) (*domain.Card, error) {
	return e.updateCard(ctx, cardID, func(card *domain.Card) error {
		if card.State == domain.StateSuspended {
			return fmt.Errorf("%w: %s", ErrCardSuspended, cardID)
		}
		u := until.UTC()
		card.BuriedUntil = &u
		return nil
	})
}

// TodayStats returns due counts per state bucket for the given decks.
// Learning and relearning are folded into one bucket.
func (e *Engine) TodayStats(
	ctx context.Context,
	deckIDs []uuid.UUID,
	now time.Time,
) (*Stats, error) {
	counts, err := e.cards.CountDue(ctx, deckIDs, now)
	if err != nil {
		return nil, err
	}
	return &Stats{
		New:      counts[domain.StateNew],
		Learning: counts[domain.StateLearning] + counts[domain.StateRelearning],
		Review:   counts[domain.StateReview],
	}, nil
}

// updateCard applies a mutation to a card inside a transaction.
func (e *Engine) updateCard(
	ctx context.Context,
	cardID uuid.UUID,
	mutate func(*domain.Card) error,
) (*domain.Card, error) {
	var updated *domain.Card

	err := store.RunInTransaction(ctx, e.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := e.cards.WithTx(tx)

		card, err := cards.GetByID(ctx, cardID)
		if err != nil {
			if errors.Is(err, store.ErrCardNotFound) {
				return unknownCard(cardID)
			}
			return err
		}
		if err := mutate(card); err != nil {
			return err
		}
		if err := cards.Update(ctx, card); err != nil {
			return err
		}
		updated = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *Engine) emitLeech(ctx context.Context, cardID, noteID, deckID uuid.UUID, lapses int) {
	if e.emitter == nil {
		return
	}

	log := logger.FromContextOrDefault(ctx, e.logger)
	event, err := events.NewEvent(events.EventTypeCardLeeched, events.LeechPayload{
		CardID: cardID,
		NoteID: noteID,
		DeckID: deckID,
		Lapses: lapses,
	})
	if err != nil {
		log.Error("failed to build leech event",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return
	}
	if err := e.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit leech event",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
	}
}
