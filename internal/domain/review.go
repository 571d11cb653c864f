package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Review record validation errors
var (
	// ErrReviewCardIDEmpty is returned when a review record has no card reference.
	ErrReviewCardIDEmpty = fmt.Errorf("%w: review card ID cannot be empty", ErrValidation)

	// ErrReviewDurationNegative is returned when the answer duration is below zero.
	ErrReviewDurationNegative = fmt.Errorf("%w: answer duration must be >= 0", ErrValidation)
)

// ReviewRecord is one immutable row of the review ledger. Rows are only
// ever appended; downstream analytics and algorithm recalibration
// depend on the exact field set, so it mirrors the persisted columns.
type ReviewRecord struct {
	ID           int64     `json:"id"`
	CardID       uuid.UUID `json:"card_id"`
	Timestamp    time.Time `json:"ts"`
	Rating       Rating    `json:"rating"`
	AnswerMillis int64     `json:"answer_ms"`
	PrevState    State     `json:"prev_state"`
	PrevInterval float64   `json:"prev_interval"`
	NextInterval float64   `json:"next_interval"`
}

// NewReviewRecord builds a ledger row from the prior and posterior card
// snapshots of a grading event. The ID is assigned by the store.
func NewReviewRecord(
	prior, posterior *Card,
	rating Rating,
	answerMillis int64,
	ts time.Time,
) (*ReviewRecord, error) {
	rec := &ReviewRecord{
		CardID:       prior.ID,
		Timestamp:    ts.UTC(),
		Rating:       rating,
		AnswerMillis: answerMillis,
		PrevState:    prior.State,
		PrevInterval: prior.IntervalDays,
		NextInterval: posterior.IntervalDays,
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	return rec, nil
}

// Validate checks if the ReviewRecord has valid data.
func (r *ReviewRecord) Validate() error {
	if r.CardID == uuid.Nil {
		return ErrReviewCardIDEmpty
	}
	if !r.Rating.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRating, int(r.Rating))
	}
	if r.AnswerMillis < 0 {
		return ErrReviewDurationNegative
	}
	return nil
}
