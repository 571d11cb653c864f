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

// NoteStore implements the store.NoteStore interface using a SQLite
// database as the storage backend.
type NoteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewNoteStore creates a new SQLite implementation of the NoteStore
// interface. If logger is nil, a default logger is used.
func NewNoteStore(db store.DBTX, log *slog.Logger) *NoteStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &NoteStore{
		db:     db,
		logger: log.With(slog.String("component", "note_store")),
	}
}

// Ensure NoteStore implements store.NoteStore
var _ store.NoteStore = (*NoteStore)(nil)

// WithTx implements store.NoteStore.WithTx
func (s *NoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return &NoteStore{db: tx, logger: s.logger}
}

// Create implements store.NoteStore.Create
func (s *NoteStore) Create(ctx context.Context, note *domain.Note) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		log.Warn("note validation failed during create",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	var meta any
	if len(note.Meta) > 0 {
		meta = string(note.Meta)
	}

	query := `
		INSERT INTO notes (id, deck_id, front, back, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		note.ID, note.DeckID, note.Front, note.Back, meta, note.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err, "notes.deck_id") {
			return store.ErrNoteExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: deck %s not found", store.ErrInvalidEntity, note.DeckID)
		}
		log.Error("failed to create note",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return err
	}

	return nil
}

// GetByID implements store.NoteStore.GetByID
func (s *NoteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	query := `
		SELECT id, deck_id, front, back, meta, created_at
		FROM notes
		WHERE id = ?
	`

	var note domain.Note
	var meta sql.NullString
	var createdAt int64

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID, &note.DeckID, &note.Front, &note.Back, &meta, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNoteNotFound
		}
		return nil, err
	}

	if meta.Valid {
		note.Meta = []byte(meta.String)
	}
	note.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &note, nil
}

// Exists implements store.NoteStore.Exists
func (s *NoteStore) Exists(ctx context.Context, deckID uuid.UUID, front, back string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notes
			WHERE deck_id = ? AND front = ? AND back = ?
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, deckID, front, back).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
