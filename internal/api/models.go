package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/danki/engine/internal/domain"
)

// Common request/response structures

// CreateDeckRequest defines the payload for deck creation.
type CreateDeckRequest struct {
	Name  string            `json:"name" validate:"required,min=1,max=200"`
	Prefs *domain.DeckPrefs `json:"prefs,omitempty"`
}

// UpdatePrefsRequest defines the payload for deck preference updates.
type UpdatePrefsRequest struct {
	NewPerDay int                 `json:"new_per_day" validate:"gte=0"`
	RevPerDay int                 `json:"rev_per_day" validate:"gte=0"`
	StepsMin  []int               `json:"steps_min" validate:"required,min=1,dive,gt=0"`
	Order     domain.SessionOrder `json:"order,omitempty" validate:"omitempty,oneof=new_first alternate"`
	Reverse   bool                `json:"reverse,omitempty"`
}

// DeckResponse represents the response data for a deck.
type DeckResponse struct {
	ID      uuid.UUID        `json:"id"`
	Name    string           `json:"name"`
	Builtin bool             `json:"builtin"`
	Prefs   domain.DeckPrefs `json:"prefs"`
}

func deckToResponse(deck *domain.Deck) DeckResponse {
	return DeckResponse{
		ID:      deck.ID,
		Name:    deck.Name,
		Builtin: deck.Builtin,
		Prefs:   deck.Prefs,
	}
}

// CreateNoteRequest defines the payload for note creation.
type CreateNoteRequest struct {
	DeckID uuid.UUID       `json:"deck_id" validate:"required"`
	Front  string          `json:"front" validate:"required"`
	Back   string          `json:"back" validate:"required"`
	Meta   json.RawMessage `json:"meta,omitempty"`
}

// NoteResponse represents the response data for a created note.
type NoteResponse struct {
	ID     uuid.UUID      `json:"id"`
	DeckID uuid.UUID      `json:"deck_id"`
	Front  string         `json:"front"`
	Back   string         `json:"back"`
	Cards  []CardResponse `json:"cards"`
}

// CardResponse represents the response data for a card.
type CardResponse struct {
	ID           uuid.UUID    `json:"id"`
	NoteID       uuid.UUID    `json:"note_id"`
	Template     string       `json:"template"`
	State        domain.State `json:"state"`
	DueAt        time.Time    `json:"due_at"`
	IntervalDays float64      `json:"interval_days"`
	Ease         float64      `json:"ease"`
	Lapses       int          `json:"lapses"`
	BuriedUntil  *time.Time   `json:"buried_until,omitempty"`
}

func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:           card.ID,
		NoteID:       card.NoteID,
		Template:     card.Template,
		State:        card.State,
		DueAt:        card.DueAt,
		IntervalDays: card.IntervalDays,
		Ease:         card.Ease,
		Lapses:       card.Lapses,
		BuriedUntil:  card.BuriedUntil,
	}
}

// ReviewRequest defines the payload for grading a card.
type ReviewRequest struct {
	Rating   string `json:"rating" validate:"required,oneof=missed almost got_it"`
	AnswerMS int64  `json:"answer_ms" validate:"gte=0"`
}

// ReviewResponse represents the outcome of grading a card.
type ReviewResponse struct {
	Card   CardResponse `json:"card"`
	Lapsed bool         `json:"lapsed"`
	Leech  bool         `json:"leech"`
}

// BuryRequest defines the payload for burying a card.
type BuryRequest struct {
	// Until is when the card re-enters session builds, RFC 3339.
	Until time.Time `json:"until" validate:"required"`
}
