package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Deck-specific validation errors
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty or nil.
	ErrDeckIDEmpty = fmt.Errorf("%w: deck ID cannot be empty", ErrValidation)

	// ErrDeckNameEmpty is returned when a deck name is empty.
	ErrDeckNameEmpty = fmt.Errorf("%w: deck name cannot be empty", ErrValidation)

	// ErrDeckStepsEmpty is returned when a deck has no learning steps configured.
	ErrDeckStepsEmpty = fmt.Errorf("%w: deck must have at least one learning step", ErrValidation)

	// ErrDeckStepTooShort is returned when a learning step is below one minute.
	ErrDeckStepTooShort = fmt.Errorf("%w: learning steps must be at least 1 minute", ErrValidation)

	// ErrDeckLimitNegative is returned when a daily limit is negative.
	ErrDeckLimitNegative = fmt.Errorf("%w: daily limits must be non-negative", ErrValidation)

	// ErrDeckOrderInvalid is returned when the session order preference is unknown.
	ErrDeckOrderInvalid = fmt.Errorf("%w: unknown session order", ErrValidation)
)

// SessionOrder selects how new and review cards are interleaved in a
// built session. Learning cards always come first regardless of order.
type SessionOrder string

const (
	// OrderNewFirst presents all new cards before review cards.
	OrderNewFirst SessionOrder = "new_first"

	// OrderAlternate alternates new and review cards one-for-one,
	// preserving each bucket's internal order.
	OrderAlternate SessionOrder = "alternate"
)

// DeckPrefs holds the per-deck scheduling configuration. A daily limit
// of 0 disables the corresponding bucket entirely.
type DeckPrefs struct {
	NewPerDay int          `json:"new_per_day"`
	RevPerDay int          `json:"rev_per_day"`
	StepsMin  []int        `json:"steps_min"`
	Order     SessionOrder `json:"order,omitempty"`
	Reverse   bool         `json:"reverse,omitempty"`
}

// DefaultDeckPrefs returns the preferences applied to newly created
// decks: 10 new and 100 review cards per day, learning steps of
// 10 minutes and 1 day, new cards before reviews.
func DefaultDeckPrefs() DeckPrefs {
	return DeckPrefs{
		NewPerDay: 10,
		RevPerDay: 100,
		StepsMin:  []int{10, 1440},
		Order:     OrderNewFirst,
	}
}

// Validate checks the preference record. It rejects malformed
// configuration before it can reach the scheduler.
func (p DeckPrefs) Validate() error {
	if p.NewPerDay < 0 || p.RevPerDay < 0 {
		return ErrDeckLimitNegative
	}
	if len(p.StepsMin) == 0 {
		return ErrDeckStepsEmpty
	}
	for _, step := range p.StepsMin {
		if step < 1 {
			return ErrDeckStepTooShort
		}
	}
	switch p.Order {
	case "", OrderNewFirst, OrderAlternate:
	default:
		return ErrDeckOrderInvalid
	}
	return nil
}

// Deck groups notes and carries the scheduling preferences that apply
// to all of its cards.
type Deck struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Builtin bool      `json:"is_builtin"`
	Prefs   DeckPrefs `json:"prefs"`
}

// NewDeck creates a deck with the given name and preferences.
// Zero-value prefs are replaced with DefaultDeckPrefs.
// Returns an error if validation fails.
func NewDeck(name string, prefs DeckPrefs) (*Deck, error) {
	if len(prefs.StepsMin) == 0 && prefs.NewPerDay == 0 && prefs.RevPerDay == 0 {
		prefs = DefaultDeckPrefs()
	}
	if prefs.Order == "" {
		prefs.Order = OrderNewFirst
	}

	deck := &Deck{
		ID:    uuid.New(),
		Name:  name,
		Prefs: prefs,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}
	if d.Name == "" {
		return ErrDeckNameEmpty
	}
	return d.Prefs.Validate()
}

// IsValidationError reports whether err is a domain validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
