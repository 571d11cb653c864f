package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/domain"
	"github.com/danki/engine/internal/platform/logger"
	"github.com/danki/engine/internal/store"
)

// ReviewLogStore implements the store.ReviewLogStore interface using a
// SQLite database as the storage backend.
type ReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewLogStore creates a new SQLite implementation of the
// ReviewLogStore interface. If logger is nil, a default logger is used.
func NewReviewLogStore(db store.DBTX, log *slog.Logger) *ReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ReviewLogStore{
		db:     db,
		logger: log.With(slog.String("component", "review_log_store")),
	}
}

// Ensure ReviewLogStore implements store.ReviewLogStore
var _ store.ReviewLogStore = (*ReviewLogStore)(nil)

// WithTx implements store.ReviewLogStore.WithTx
func (s *ReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &ReviewLogStore{db: tx, logger: s.logger}
}

// Append implements store.ReviewLogStore.Append
func (s *ReviewLogStore) Append(ctx context.Context, rec *domain.ReviewRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_log (
			card_id, ts, rating, answer_ms, prev_state, prev_interval, next_interval
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		rec.CardID, rec.Timestamp.Unix(), int(rec.Rating), rec.AnswerMillis,
		string(rec.PrevState), rec.PrevInterval, rec.NextInterval)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: card %s not found", store.ErrInvalidEntity, rec.CardID)
		}
		log.Error("failed to append review record",
			slog.String("error", err.Error()),
			slog.String("card_id", rec.CardID.String()))
		return err
	}

	rec.ID, err = result.LastInsertId()
	return err
}

// ListByCard implements store.ReviewLogStore.ListByCard
func (s *ReviewLogStore) ListByCard(
	ctx context.Context,
	cardID uuid.UUID,
) ([]*domain.ReviewRecord, error) {
	query := `
		SELECT id, card_id, ts, rating, answer_ms, prev_state, prev_interval, next_interval
		FROM review_log
		WHERE card_id = ?
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, cardID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.ReviewRecord
	for rows.Next() {
		var rec domain.ReviewRecord
		var ts int64
		var rating int
		var prevState string

		err := rows.Scan(&rec.ID, &rec.CardID, &ts, &rating, &rec.AnswerMillis,
			&prevState, &rec.PrevInterval, &rec.NextInterval)
		if err != nil {
			return nil, err
		}

		rec.Timestamp = time.Unix(ts, 0).UTC()
		rec.Rating = domain.Rating(rating)
		rec.PrevState = domain.State(prevState)
		records = append(records, &rec)
	}
	return records, rows.Err()
}
