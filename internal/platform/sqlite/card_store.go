package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/domain"
	"github.com/danki/engine/internal/platform/logger"
	"github.com/danki/engine/internal/store"
)

// CardStore implements the store.CardStore interface using a SQLite
// database as the storage backend.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a new SQLite implementation of the CardStore
// interface. If logger is nil, a default logger is used.
func NewCardStore(db store.DBTX, log *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &CardStore{
		db:     db,
		logger: log.With(slog.String("component", "card_store")),
	}
}

// Ensure CardStore implements store.CardStore
var _ store.CardStore = (*CardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{db: tx, logger: s.logger}
}

// Create implements store.CardStore.Create
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (
			id, note_id, template, state, due_ts, interval_days,
			ease, lapses, step_index, last_review_ts, prior_state, buried_until
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		card.ID, card.NoteID, card.Template, string(card.State),
		card.DueAt.Unix(), card.IntervalDays, card.Ease,
		card.Lapses, card.StepIndex,
		nullUnix(card.LastReviewAt), nullState(card.PriorState), nullUnix(card.BuriedUntil))
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: note %s not found", store.ErrInvalidEntity, card.NoteID)
		}
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `
		SELECT id, note_id, template, state, due_ts, interval_days,
		       ease, lapses, step_index, last_review_ts, prior_state, buried_until
		FROM cards
		WHERE id = ?
	`

	var card domain.Card
	var state string
	var dueTS int64
	var lastReview, buriedUntil sql.NullInt64
	var priorState sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&card.ID, &card.NoteID, &card.Template, &state, &dueTS,
		&card.IntervalDays, &card.Ease, &card.Lapses, &card.StepIndex,
		&lastReview, &priorState, &buriedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, err
	}

	card.State = domain.State(state)
	card.DueAt = time.Unix(dueTS, 0).UTC()
	card.LastReviewAt = unixPtr(lastReview)
	card.BuriedUntil = unixPtr(buriedUntil)
	if priorState.Valid {
		card.PriorState = domain.State(priorState.String)
	}
	return &card, nil
}

// Update implements store.CardStore.Update
func (s *CardStore) Update(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE cards
		SET state = ?, due_ts = ?, interval_days = ?, ease = ?,
		    lapses = ?, step_index = ?, last_review_ts = ?,
		    prior_state = ?, buried_until = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		string(card.State), card.DueAt.Unix(), card.IntervalDays, card.Ease,
		card.Lapses, card.StepIndex, nullUnix(card.LastReviewAt),
		nullState(card.PriorState), nullUnix(card.BuriedUntil), card.ID)
	if err != nil {
		return err
	}
	return requireRow(result, store.ErrCardNotFound)
}

// summaryColumns is the join used by every due query.
const summaryColumns = `
	SELECT c.id, c.note_id, n.deck_id, d.name, n.front, n.back, n.meta,
	       c.template, c.state, c.due_ts
	FROM cards c
	JOIN notes n ON c.note_id = n.id
	JOIN decks d ON n.deck_id = d.id
`

// DueLearning implements store.CardStore.DueLearning
func (s *CardStore) DueLearning(
	ctx context.Context,
	deckIDs []uuid.UUID,
	now time.Time,
) ([]*domain.CardSummary, error) {
	if len(deckIDs) == 0 {
		return nil, nil
	}

	query := summaryColumns + fmt.Sprintf(`
		WHERE n.deck_id IN (%s)
		  AND c.state IN ('learning', 'relearning')
		  AND c.due_ts <= ?
		  AND (c.buried_until IS NULL OR c.buried_until <= ?)
		ORDER BY c.due_ts
	`, placeholders(len(deckIDs)))

	args := deckArgs(deckIDs)
	args = append(args, now.Unix(), now.Unix())
	return s.querySummaries(ctx, query, args...)
}

// DueReview implements store.CardStore.DueReview
func (s *CardStore) DueReview(
	ctx context.Context,
	deckIDs []uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.CardSummary, error) {
	if len(deckIDs) == 0 || limit <= 0 {
		return nil, nil
	}

	query := summaryColumns + fmt.Sprintf(`
		WHERE n.deck_id IN (%s)
		  AND c.state = 'review'
		  AND c.due_ts <= ?
		  AND (c.buried_until IS NULL OR c.buried_until <= ?)
		ORDER BY c.due_ts
		LIMIT ?
	`, placeholders(len(deckIDs)))

	args := deckArgs(deckIDs)
	args = append(args, now.Unix(), now.Unix(), limit)
	return s.querySummaries(ctx, query, args...)
}

// DueNew implements store.CardStore.DueNew
// New cards carry their creation time in due_ts, so due order is
// creation order.
func (s *CardStore) DueNew(
	ctx context.Context,
	deckIDs []uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.CardSummary, error) {
	if len(deckIDs) == 0 || limit <= 0 {
		return nil, nil
	}

	query := summaryColumns + fmt.Sprintf(`
		WHERE n.deck_id IN (%s)
		  AND c.state = 'new'
		  AND (c.buried_until IS NULL OR c.buried_until <= ?)
		ORDER BY c.due_ts
		LIMIT ?
	`, placeholders(len(deckIDs)))

	args := deckArgs(deckIDs)
	args = append(args, now.Unix(), limit)
	return s.querySummaries(ctx, query, args...)
}

// CountDue implements store.CardStore.CountDue
func (s *CardStore) CountDue(
	ctx context.Context,
	deckIDs []uuid.UUID,
	now time.Time,
) (map[domain.State]int, error) {
	counts := make(map[domain.State]int)
	if len(deckIDs) == 0 {
		return counts, nil
	}

	query := fmt.Sprintf(`
		SELECT c.state, COUNT(*)
		FROM cards c
		JOIN notes n ON c.note_id = n.id
		WHERE n.deck_id IN (%s)
		  AND c.due_ts <= ?
		  AND c.state != 'suspended'
		  AND (c.buried_until IS NULL OR c.buried_until <= ?)
		GROUP BY c.state
	`, placeholders(len(deckIDs)))

	args := deckArgs(deckIDs)
	args = append(args, now.Unix(), now.Unix())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		counts[domain.State(state)] = count
	}
	return counts, rows.Err()
}

func (s *CardStore) querySummaries(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.CardSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var summaries []*domain.CardSummary
	for rows.Next() {
		var sum domain.CardSummary
		var meta sql.NullString
		var state string
		var dueTS int64

		err := rows.Scan(
			&sum.CardID, &sum.NoteID, &sum.DeckID, &sum.DeckName,
			&sum.Front, &sum.Back, &meta, &sum.Template, &state, &dueTS)
		if err != nil {
			return nil, err
		}

		if meta.Valid {
			sum.Meta = []byte(meta.String)
		}
		sum.State = domain.State(state)
		sum.DueAt = time.Unix(dueTS, 0).UTC()
		summaries = append(summaries, &sum)
	}
	return summaries, rows.Err()
}

// deckArgs widens a deck ID slice into query arguments.
func deckArgs(deckIDs []uuid.UUID) []any {
	args := make([]any, 0, len(deckIDs)+3)
	for _, id := range deckIDs {
		args = append(args, id)
	}
	return args
}
