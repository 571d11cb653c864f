package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCard(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	noteID := uuid.New()

	card, err := NewCard(noteID, TemplateFrontBack, now)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, card.ID)
	assert.Equal(t, noteID, card.NoteID)
	assert.Equal(t, StateNew, card.State)
	assert.Equal(t, now, card.DueAt)
	assert.Equal(t, DefaultEase, card.Ease)
	assert.Zero(t, card.IntervalDays)
	assert.Zero(t, card.Lapses)
}

func TestNewCardRequiresNote(t *testing.T) {
	_, err := NewCard(uuid.Nil, TemplateFrontBack, time.Now())
	assert.ErrorIs(t, err, ErrCardNoteIDEmpty)
	assert.True(t, IsValidationError(err))
}

func TestCardValidate(t *testing.T) {
	valid := func() *Card {
		return &Card{
			ID:       uuid.New(),
			NoteID:   uuid.New(),
			Template: TemplateFrontBack,
			State:    StateReview,
			Ease:     DefaultEase,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Card)
		wantErr error
	}{
		{"valid", func(c *Card) {}, nil},
		{"missing template", func(c *Card) { c.Template = "" }, ErrCardTemplateEmpty},
		{"unknown state", func(c *Card) { c.State = "limbo" }, ErrInvalidState},
		{"negative interval", func(c *Card) { c.IntervalDays = -1 }, ErrCardIntervalNegative},
		{"ease below floor", func(c *Card) { c.Ease = 1.2 }, ErrCardEaseTooLow},
		{"negative lapses", func(c *Card) { c.Lapses = -1 }, ErrCardLapsesNegative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := valid()
			tt.mutate(card)
			err := card.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCardCloneIsDeep(t *testing.T) {
	reviewed := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	buried := reviewed.Add(24 * time.Hour)
	card := &Card{
		ID:           uuid.New(),
		NoteID:       uuid.New(),
		Template:     TemplateFrontBack,
		State:        StateReview,
		Ease:         DefaultEase,
		LastReviewAt: &reviewed,
		BuriedUntil:  &buried,
	}

	clone := card.Clone()
	*clone.LastReviewAt = clone.LastReviewAt.Add(time.Hour)
	*clone.BuriedUntil = clone.BuriedUntil.Add(time.Hour)

	assert.Equal(t, reviewed, *card.LastReviewAt)
	assert.Equal(t, buried, *card.BuriedUntil)
}

func TestCardBuried(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	until := now.Add(time.Hour)
	card := &Card{BuriedUntil: &until}

	assert.True(t, card.Buried(now))
	assert.False(t, card.Buried(now.Add(2*time.Hour)))
	assert.False(t, (&Card{}).Buried(now))
}
