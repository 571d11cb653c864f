package domain

import "errors"

// Shared validation errors used across domain entities.
var (
	// ErrValidation is the base error for all domain validation failures.
	// Entity-specific errors below can be matched individually or as a
	// group via errors.Is(err, ErrValidation).
	ErrValidation = errors.New("invalid domain entity")

	// ErrInvalidState is returned when a card carries an unknown lifecycle state.
	ErrInvalidState = errors.New("invalid card state")

	// ErrInvalidRating is returned when a rating is outside {Missed, Almost, GotIt}.
	ErrInvalidRating = errors.New("invalid rating")
)
