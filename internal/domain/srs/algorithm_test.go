package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danki/engine/internal/domain"
)

var testNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

// defaultSteps mirror the default deck configuration: 10 minutes, then
// one day.
func defaultSteps() []time.Duration {
	return []time.Duration{10 * time.Minute, 24 * time.Hour}
}

func newTestCard(state domain.State) *domain.Card {
	return &domain.Card{
		ID:       uuid.New(),
		NoteID:   uuid.New(),
		Template: domain.TemplateFrontBack,
		State:    state,
		DueAt:    testNow,
		Ease:     domain.DefaultEase,
	}
}

func gradeCard(t *testing.T, card *domain.Card, rating domain.Rating, steps []time.Duration) *Result {
	t.Helper()
	result, err := NewDefaultService().NextReview(card, rating, steps, testNow)
	require.NoError(t, err)
	return result
}

func TestNewCardEntersLearning(t *testing.T) {
	for _, rating := range []domain.Rating{
		domain.RatingMissed, domain.RatingAlmost, domain.RatingGotIt,
	} {
		t.Run(rating.String(), func(t *testing.T) {
			card := newTestCard(domain.StateNew)

			result := gradeCard(t, card, rating, defaultSteps())

			assert.Equal(t, domain.StateLearning, result.Card.State)
			assert.Equal(t, 0, result.Card.StepIndex)
			assert.Equal(t, testNow.Add(10*time.Minute), result.Card.DueAt)
			assert.False(t, result.Lapsed)
		})
	}
}

func TestLearningGotItAdvancesStep(t *testing.T) {
	card := newTestCard(domain.StateLearning)

	result := gradeCard(t, card, domain.RatingGotIt, defaultSteps())

	assert.Equal(t, domain.StateLearning, result.Card.State)
	assert.Equal(t, 1, result.Card.StepIndex)
	assert.Equal(t, testNow.Add(24*time.Hour), result.Card.DueAt)
}

func TestFirstGraduationGetsLongInterval(t *testing.T) {
	card := newTestCard(domain.StateLearning)
	card.StepIndex = 1 // last step

	result := gradeCard(t, card, domain.RatingGotIt, defaultSteps())

	assert.Equal(t, domain.StateReview, result.Card.State)
	assert.Equal(t, 6.0, result.Card.IntervalDays)
	assert.Equal(t, testNow.Add(6*24*time.Hour), result.Card.DueAt)
	assert.Equal(t, 0, result.Card.StepIndex)
}

func TestRegraduationAfterLapseGetsShortInterval(t *testing.T) {
	card := newTestCard(domain.StateRelearning)
	card.StepIndex = 1
	card.IntervalDays = 20 // graduated before, interval survives the lapse
	card.Lapses = 1

	result := gradeCard(t, card, domain.RatingGotIt, defaultSteps())

	assert.Equal(t, domain.StateReview, result.Card.State)
	assert.Equal(t, 1.0, result.Card.IntervalDays)
	assert.Equal(t, testNow.Add(24*time.Hour), result.Card.DueAt)
}

func TestSingleStepDeckGraduatesImmediately(t *testing.T) {
	card := newTestCard(domain.StateLearning)

	result := gradeCard(t, card, domain.RatingGotIt, []time.Duration{10 * time.Minute})

	assert.Equal(t, domain.StateReview, result.Card.State)
	assert.Equal(t, 6.0, result.Card.IntervalDays)
}

func TestLearningAlmostRepeatsStepWithFloor(t *testing.T) {
	card := newTestCard(domain.StateLearning)

	// A one-minute step repeats with the ten-minute floor applied.
	result := gradeCard(t, card, domain.RatingAlmost, []time.Duration{time.Minute, 24 * time.Hour})

	assert.Equal(t, domain.StateLearning, result.Card.State)
	assert.Equal(t, 0, result.Card.StepIndex)
	assert.Equal(t, testNow.Add(10*time.Minute), result.Card.DueAt)
}

func TestLearningAlmostRepeatsLongStepUnchanged(t *testing.T) {
	card := newTestCard(domain.StateLearning)
	card.StepIndex = 1

	result := gradeCard(t, card, domain.RatingAlmost, defaultSteps())

	assert.Equal(t, 1, result.Card.StepIndex)
	assert.Equal(t, testNow.Add(24*time.Hour), result.Card.DueAt)
}

func TestLearningMissedResetsWithoutLapse(t *testing.T) {
	card := newTestCard(domain.StateLearning)
	card.StepIndex = 1

	result := gradeCard(t, card, domain.RatingMissed, defaultSteps())

	assert.Equal(t, domain.StateLearning, result.Card.State)
	assert.Equal(t, 0, result.Card.StepIndex)
	assert.Equal(t, 0, result.Card.Lapses)
	assert.False(t, result.Lapsed)
}

func TestRelearningMissedCountsLapse(t *testing.T) {
	card := newTestCard(domain.StateRelearning)
	card.StepIndex = 1
	card.Lapses = 2

	result := gradeCard(t, card, domain.RatingMissed, defaultSteps())

	assert.Equal(t, domain.StateRelearning, result.Card.State)
	assert.Equal(t, 0, result.Card.StepIndex)
	assert.Equal(t, 3, result.Card.Lapses)
	assert.True(t, result.Lapsed)
}

func TestReviewGotItCompoundsInterval(t *testing.T) {
	card := newTestCard(domain.StateReview)
	card.IntervalDays = 10

	result := gradeCard(t, card, domain.RatingGotIt, defaultSteps())

	assert.Equal(t, domain.StateReview, result.Card.State)
	assert.InDelta(t, 25.0, result.Card.IntervalDays, 1e-9)
	assert.Equal(t, domain.DefaultEase, result.Card.Ease)
	assert.Equal(t, testNow.Add(25*24*time.Hour), result.Card.DueAt)
}

func TestReviewGotItNeverShrinksInterval(t *testing.T) {
	// Ease is floored at 1.3, so a correct answer always grows the
	// interval.
	card := newTestCard(domain.StateReview)
	card.IntervalDays = 10
	card.Ease = domain.EaseFloor

	result := gradeCard(t, card, domain.RatingGotIt, defaultSteps())

	assert.Greater(t, result.Card.IntervalDays, 10.0)
}

func TestReviewAlmostReducesEaseThenMultiplies(t *testing.T) {
	card := newTestCard(domain.StateReview)
	card.IntervalDays = 10

	result := gradeCard(t, card, domain.RatingAlmost, defaultSteps())

	assert.InDelta(t, 2.35, result.Card.Ease, 1e-9)
	assert.InDelta(t, 23.5, result.Card.IntervalDays, 1e-9)
	assert.False(t, result.Lapsed)
}

func TestReviewAlmostFixedPolicy(t *testing.T) {
	svc := NewService(Params{HardPolicy: HardIntervalFixed})
	card := newTestCard(domain.StateReview)
	card.IntervalDays = 10

	result, err := svc.NextReview(card, domain.RatingAlmost, defaultSteps(), testNow)
	require.NoError(t, err)

	// Ease still drops, but the interval grows by the fixed factor.
	assert.InDelta(t, 2.35, result.Card.Ease, 1e-9)
	assert.InDelta(t, 12.0, result.Card.IntervalDays, 1e-9)
}

func TestReviewMissedLapsesToRelearning(t *testing.T) {
	card := newTestCard(domain.StateReview)
	card.IntervalDays = 14

	result := gradeCard(t, card, domain.RatingMissed, defaultSteps())

	assert.Equal(t, domain.StateRelearning, result.Card.State)
	assert.InDelta(t, 1.7, result.Card.Ease, 1e-9)
	assert.Equal(t, 1, result.Card.Lapses)
	assert.Equal(t, testNow.Add(10*time.Minute), result.Card.DueAt)
	assert.True(t, result.Lapsed)

	// The prior interval survives the lapse so re-graduation knows the
	// card has graduated before.
	assert.Equal(t, 14.0, result.Card.IntervalDays)
}

func TestEaseNeverDropsBelowFloor(t *testing.T) {
	card := newTestCard(domain.StateReview)
	card.IntervalDays = 5
	card.Ease = 1.4

	result := gradeCard(t, card, domain.RatingMissed, defaultSteps())
	assert.Equal(t, domain.EaseFloor, result.Card.Ease)

	// Already at the floor: Almost cannot push it lower.
	card = newTestCard(domain.StateReview)
	card.IntervalDays = 5
	card.Ease = domain.EaseFloor

	result = gradeCard(t, card, domain.RatingAlmost, defaultSteps())
	assert.Equal(t, domain.EaseFloor, result.Card.Ease)
}

func TestIntervalClampedAtMaximum(t *testing.T) {
	card := newTestCard(domain.StateReview)
	card.IntervalDays = 30000

	result := gradeCard(t, card, domain.RatingGotIt, defaultSteps())

	assert.Equal(t, 36500.0, result.Card.IntervalDays)
}

func TestStepIndexPastEndTreatedAsLast(t *testing.T) {
	// A deck's steps were shortened while this card sat at a higher
	// index; it graduates instead of reading out of range.
	card := newTestCard(domain.StateLearning)
	card.StepIndex = 5

	result := gradeCard(t, card, domain.RatingGotIt, defaultSteps())

	assert.Equal(t, domain.StateReview, result.Card.State)
}

func TestGraduationRestoresEaseFromBelowFloor(t *testing.T) {
	card := newTestCard(domain.StateLearning)
	card.StepIndex = 1
	card.Ease = 0 // never initialized

	result := gradeCard(t, card, domain.RatingGotIt, defaultSteps())

	assert.Equal(t, domain.DefaultEase, result.Card.Ease)
}

func TestLastReviewTimestampRecorded(t *testing.T) {
	card := newTestCard(domain.StateNew)

	result := gradeCard(t, card, domain.RatingGotIt, defaultSteps())

	require.NotNil(t, result.Card.LastReviewAt)
	assert.Equal(t, testNow, *result.Card.LastReviewAt)
}
