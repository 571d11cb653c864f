package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckAppliesDefaults(t *testing.T) {
	deck, err := NewDeck("Spanish", DeckPrefs{})
	require.NoError(t, err)

	assert.Equal(t, "Spanish", deck.Name)
	assert.Equal(t, DefaultDeckPrefs(), deck.Prefs)
	assert.False(t, deck.Builtin)
}

func TestNewDeckKeepsCustomPrefs(t *testing.T) {
	prefs := DeckPrefs{
		NewPerDay: 5,
		RevPerDay: 50,
		StepsMin:  []int{1, 10},
		Order:     OrderAlternate,
		Reverse:   true,
	}

	deck, err := NewDeck("Kanji", prefs)
	require.NoError(t, err)
	assert.Equal(t, prefs, deck.Prefs)
}

func TestNewDeckRejectsEmptyName(t *testing.T) {
	_, err := NewDeck("", DeckPrefs{})
	assert.ErrorIs(t, err, ErrDeckNameEmpty)
}

func TestDeckPrefsValidate(t *testing.T) {
	tests := []struct {
		name    string
		prefs   DeckPrefs
		wantErr error
	}{
		{
			name:  "defaults are valid",
			prefs: DefaultDeckPrefs(),
		},
		{
			name:    "negative limit",
			prefs:   DeckPrefs{NewPerDay: -1, StepsMin: []int{10}},
			wantErr: ErrDeckLimitNegative,
		},
		{
			name:    "no steps",
			prefs:   DeckPrefs{NewPerDay: 10, RevPerDay: 100},
			wantErr: ErrDeckStepsEmpty,
		},
		{
			name:    "zero-minute step",
			prefs:   DeckPrefs{StepsMin: []int{10, 0}},
			wantErr: ErrDeckStepTooShort,
		},
		{
			name:    "unknown order",
			prefs:   DeckPrefs{StepsMin: []int{10}, Order: "shuffled"},
			wantErr: ErrDeckOrderInvalid,
		},
		{
			name:  "zero limits disable buckets",
			prefs: DeckPrefs{NewPerDay: 0, RevPerDay: 0, StepsMin: []int{10}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prefs.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidationError(err))
		})
	}
}
