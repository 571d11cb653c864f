package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/domain"
	"github.com/danki/engine/internal/platform/logger"
	"github.com/danki/engine/internal/store"
)

// DeckStore implements the store.DeckStore interface using a SQLite
// database as the storage backend.
type DeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewDeckStore creates a new SQLite implementation of the DeckStore
// interface. If logger is nil, a default logger is used.
func NewDeckStore(db store.DBTX, log *slog.Logger) *DeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &DeckStore{
		db:     db,
		logger: log.With(slog.String("component", "deck_store")),
	}
}

// Ensure DeckStore implements store.DeckStore
var _ store.DeckStore = (*DeckStore)(nil)

// WithTx implements store.DeckStore.WithTx
func (s *DeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &DeckStore{db: tx, logger: s.logger}
}

// Create implements store.DeckStore.Create
func (s *DeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during create",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	prefs, err := json.Marshal(deck.Prefs)
	if err != nil {
		return fmt.Errorf("failed to encode deck prefs: %w", err)
	}

	query := `
		INSERT INTO decks (id, name, is_builtin, prefs)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, deck.ID, deck.Name, deck.Builtin, string(prefs)); err != nil {
		if isUniqueViolation(err, "decks.name") {
			return store.ErrDeckNameExists
		}
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	log.Debug("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("name", deck.Name))
	return nil
}

// GetByID implements store.DeckStore.GetByID
func (s *DeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	query := `
		SELECT id, name, is_builtin, prefs
		FROM decks
		WHERE id = ?
	`
	return s.scanDeck(s.db.QueryRowContext(ctx, query, id))
}

// List implements store.DeckStore.List
func (s *DeckStore) List(ctx context.Context) ([]*domain.Deck, error) {
	query := `
		SELECT id, name, is_builtin, prefs
		FROM decks
		ORDER BY is_builtin DESC, name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var decks []*domain.Deck
	for rows.Next() {
		deck, err := s.scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, deck)
	}
	return decks, rows.Err()
}

// UpdatePrefs implements store.DeckStore.UpdatePrefs
func (s *DeckStore) UpdatePrefs(ctx context.Context, id uuid.UUID, prefs domain.DeckPrefs) error {
	if err := prefs.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	encoded, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode deck prefs: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE decks SET prefs = ? WHERE id = ?`, string(encoded), id)
	if err != nil {
		return err
	}
	return requireRow(result, store.ErrDeckNotFound)
}

// Delete implements store.DeckStore.Delete
// Notes and cards are removed by ON DELETE CASCADE at the schema level.
func (s *DeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, store.ErrDeckNotFound)
}

func (s *DeckStore) scanDeck(row rowScanner) (*domain.Deck, error) {
	var deck domain.Deck
	var prefs []byte

	if err := row.Scan(&deck.ID, &deck.Name, &deck.Builtin, &prefs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeckNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(prefs, &deck.Prefs); err != nil {
		return nil, fmt.Errorf("failed to decode deck prefs: %w", err)
	}
	return &deck, nil
}
