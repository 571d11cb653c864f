package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReviewRecordCapturesTransition(t *testing.T) {
	ts := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	prior := &Card{
		ID:           uuid.New(),
		NoteID:       uuid.New(),
		Template:     TemplateFrontBack,
		State:        StateReview,
		IntervalDays: 10,
		Ease:         DefaultEase,
	}
	posterior := prior.Clone()
	posterior.State = StateRelearning
	posterior.IntervalDays = 10
	posterior.Ease = 1.7

	rec, err := NewReviewRecord(prior, posterior, RatingMissed, 4200, ts)
	require.NoError(t, err)

	assert.Equal(t, prior.ID, rec.CardID)
	assert.Equal(t, ts, rec.Timestamp)
	assert.Equal(t, RatingMissed, rec.Rating)
	assert.Equal(t, int64(4200), rec.AnswerMillis)
	assert.Equal(t, StateReview, rec.PrevState)
	assert.Equal(t, 10.0, rec.PrevInterval)
	assert.Equal(t, 10.0, rec.NextInterval)
	assert.Zero(t, rec.ID, "the store assigns the row ID")
}

func TestNewReviewRecordValidation(t *testing.T) {
	ts := time.Now()
	prior := &Card{ID: uuid.New(), State: StateReview}
	posterior := prior.Clone()

	_, err := NewReviewRecord(prior, posterior, Rating(9), 0, ts)
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = NewReviewRecord(prior, posterior, RatingGotIt, -1, ts)
	assert.ErrorIs(t, err, ErrReviewDurationNegative)
}
