package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = fmt.Errorf("%w: card ID cannot be empty", ErrValidation)

	// ErrCardNoteIDEmpty is returned when a card's note ID is empty or nil.
	ErrCardNoteIDEmpty = fmt.Errorf("%w: card note ID cannot be empty", ErrValidation)

	// ErrCardTemplateEmpty is returned when a card's template tag is empty.
	ErrCardTemplateEmpty = fmt.Errorf("%w: card template cannot be empty", ErrValidation)

	// ErrCardIntervalNegative is returned when a card's interval is below zero.
	ErrCardIntervalNegative = fmt.Errorf("%w: interval must be >= 0", ErrValidation)

	// ErrCardEaseTooLow is returned when a card's ease factor is below the 1.3 floor.
	ErrCardEaseTooLow = fmt.Errorf("%w: ease factor must be >= 1.3", ErrValidation)

	// ErrCardLapsesNegative is returned when a card's lapse counter is below zero.
	ErrCardLapsesNegative = fmt.Errorf("%w: lapse counter must be >= 0", ErrValidation)

	// ErrCardStepNegative is returned when a card's learning step index is below zero.
	ErrCardStepNegative = fmt.Errorf("%w: step index must be >= 0", ErrValidation)
)

// State is a card's position in the review lifecycle.
type State string

// Card lifecycle states.
const (
	StateNew        State = "new"
	StateLearning   State = "learning"
	StateReview     State = "review"
	StateRelearning State = "relearning"
	StateSuspended  State = "suspended"
)

// Valid reports whether s is a defined lifecycle state.
func (s State) Valid() bool {
	switch s {
	case StateNew, StateLearning, StateReview, StateRelearning, StateSuspended:
		return true
	default:
		return false
	}
}

// Card template tags. A note has exactly one card per template.
const (
	TemplateFrontBack = "front->back"
	TemplateBackFront = "back->front"
)

// DefaultEase is the ease factor assigned to freshly created cards.
const DefaultEase = 2.5

// EaseFloor is the hard lower bound on ease factors. No transition may
// produce a value below it.
const EaseFloor = 1.3

// Card is the schedulable unit. For new cards DueAt is a creation-order
// tiebreaker; for all other states it is the absolute due instant.
// IntervalDays stays 0 until the card's first graduation, which is how
// the scheduler recognizes a first-ever Learning->Review transition.
type Card struct {
	ID           uuid.UUID  `json:"id"`
	NoteID       uuid.UUID  `json:"note_id"`
	Template     string     `json:"template"`
	State        State      `json:"state"`
	DueAt        time.Time  `json:"due_at"`
	IntervalDays float64    `json:"interval_days"`
	Ease         float64    `json:"ease"`
	Lapses       int        `json:"lapses"`
	StepIndex    int        `json:"step_index"`
	LastReviewAt *time.Time `json:"last_review_at,omitempty"`
	PriorState   State      `json:"prior_state,omitempty"`
	BuriedUntil  *time.Time `json:"buried_until,omitempty"`
}

// NewCard creates a new-state card for the given note and template.
// The due timestamp is set to now so new cards order by creation.
// Returns an error if validation fails.
func NewCard(noteID uuid.UUID, template string, now time.Time) (*Card, error) {
	card := &Card{
		ID:       uuid.New(),
		NoteID:   noteID,
		Template: template,
		State:    StateNew,
		DueAt:    now.UTC(),
		Ease:     DefaultEase,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}
	if c.NoteID == uuid.Nil {
		return ErrCardNoteIDEmpty
	}
	if c.Template == "" {
		return ErrCardTemplateEmpty
	}
	if !c.State.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidState, c.State)
	}
	if c.IntervalDays < 0 {
		return ErrCardIntervalNegative
	}
	if c.Ease < EaseFloor {
		return ErrCardEaseTooLow
	}
	if c.Lapses < 0 {
		return ErrCardLapsesNegative
	}
	if c.StepIndex < 0 {
		return ErrCardStepNegative
	}
	return nil
}

// Clone returns a deep copy of the card. Scheduler transitions operate
// on copies so a failed persistence step never leaves a mutated card.
func (c *Card) Clone() *Card {
	clone := *c
	if c.LastReviewAt != nil {
		t := *c.LastReviewAt
		clone.LastReviewAt = &t
	}
	if c.BuriedUntil != nil {
		t := *c.BuriedUntil
		clone.BuriedUntil = &t
	}
	return &clone
}

// Buried reports whether the card carries a bury mark that is still in
// effect at the given instant.
func (c *Card) Buried(now time.Time) bool {
	return c.BuriedUntil != nil && c.BuriedUntil.After(now)
}
