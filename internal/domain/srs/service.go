package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/danki/engine/internal/domain"
)

// Common errors
var (
	ErrNilCard       = errors.New("card cannot be nil")
	ErrNoSteps       = errors.New("deck has no learning steps")
	ErrCardSuspended = errors.New("cannot grade a suspended card")
)

// Result is the outcome of grading a card.
type Result struct {
	// Card is the posterior snapshot. The input card is never mutated.
	Card *domain.Card

	// Lapsed reports whether this grading recorded a lapse.
	Lapsed bool

	// Leech reports whether the lapse counter crossed the leech
	// threshold on this grading. Callers decide what to do with it;
	// the scheduler never suspends a card itself.
	Leech bool
}

// Service defines the scheduling algorithm operations. Transitions are
// deterministic given (state, rating, steps, params); presentation
// jitter belongs to the session builder, not here.
type Service interface {
	// NextReview computes the card snapshot resulting from a graded
	// review. steps are the owning deck's learning steps in order.
	NextReview(
		card *domain.Card,
		rating domain.Rating,
		steps []time.Duration,
		now time.Time,
	) (*Result, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params Params
}

// NewDefaultService creates a scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: DefaultParams()}
}

// NewService creates a scheduling service with custom parameters.
// Zero-valued fields fall back to their defaults.
func NewService(params Params) Service {
	return &defaultService{params: params.normalize()}
}

// NextReview implements the Service interface.
func (s *defaultService) NextReview(
	card *domain.Card,
	rating domain.Rating,
	steps []time.Duration,
	now time.Time,
) (*Result, error) {
	if card == nil {
		return nil, ErrNilCard
	}
	if !rating.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}
	if card.State == domain.StateSuspended {
		return nil, ErrCardSuspended
	}
	if !card.State.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidState, card.State)
	}
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}

	next, lapsed := nextCard(card, rating, steps, now, &s.params)

	leech := lapsed &&
		s.params.LeechThreshold > 0 &&
		next.Lapses >= s.params.LeechThreshold &&
		card.Lapses < s.params.LeechThreshold

	return &Result{Card: next, Lapsed: lapsed, Leech: leech}, nil
}

// StepsFromMinutes converts a deck's configured learning steps, in
// minutes, into durations for the scheduler.
func StepsFromMinutes(minutes []int) []time.Duration {
	steps := make([]time.Duration, len(minutes))
	for i, m := range minutes {
		steps[i] = time.Duration(m) * time.Minute
	}
	return steps
}
