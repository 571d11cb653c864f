package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// schema is applied on every Open. All statements are idempotent so an
// existing database file is left untouched. Timestamps are stored as
// epoch seconds to keep the two backends row-compatible.
const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS decks (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL UNIQUE,
	is_builtin INTEGER NOT NULL DEFAULT 0,
	prefs TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	deck_id    TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
	front      TEXT NOT NULL,
	back       TEXT NOT NULL,
	meta       TEXT,
	created_at INTEGER NOT NULL,
	UNIQUE (deck_id, front, back)
);

CREATE TABLE IF NOT EXISTS cards (
	id             TEXT PRIMARY KEY,
	note_id        TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	template       TEXT NOT NULL,
	state          TEXT NOT NULL,
	due_ts         INTEGER NOT NULL,
	interval_days  REAL NOT NULL DEFAULT 0,
	ease           REAL NOT NULL,
	lapses         INTEGER NOT NULL DEFAULT 0,
	step_index     INTEGER NOT NULL DEFAULT 0,
	last_review_ts INTEGER,
	prior_state    TEXT,
	buried_until   INTEGER,
	UNIQUE (note_id, template)
);

CREATE INDEX IF NOT EXISTS idx_cards_state_due ON cards(state, due_ts);
CREATE INDEX IF NOT EXISTS idx_notes_deck ON notes(deck_id);

CREATE TABLE IF NOT EXISTS review_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	card_id       TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
	ts            INTEGER NOT NULL,
	rating        INTEGER NOT NULL,
	answer_ms     INTEGER NOT NULL,
	prev_state    TEXT NOT NULL,
	prev_interval REAL NOT NULL,
	next_interval REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_review_log_card ON review_log(card_id, ts);
`

// Open opens (and if needed initializes) a SQLite database at the
// given DSN. Connections are capped at one because the driver
// serializes writes per connection anyway and :memory: databases are
// scoped to a single connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return db, nil
}
