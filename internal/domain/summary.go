package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CardSummary is a card joined with the note and deck fields a caller
// needs to present it. Session builds return summaries, not live
// cards: the sequence is a value snapshot, and later state changes do
// not retroactively reorder it.
type CardSummary struct {
	CardID   uuid.UUID       `json:"card_id"`
	NoteID   uuid.UUID       `json:"note_id"`
	DeckID   uuid.UUID       `json:"deck_id"`
	DeckName string          `json:"deck_name"`
	Front    string          `json:"front"`
	Back     string          `json:"back"`
	Meta     json.RawMessage `json:"meta,omitempty"`
	Template string          `json:"template"`
	State    State           `json:"state"`
	DueAt    time.Time       `json:"due_at"`
}
