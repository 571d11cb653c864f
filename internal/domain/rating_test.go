package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingValid(t *testing.T) {
	assert.True(t, RatingMissed.Valid())
	assert.True(t, RatingAlmost.Valid())
	assert.True(t, RatingGotIt.Valid())
	assert.False(t, Rating(-1).Valid())
	assert.False(t, Rating(3).Valid())
}

func TestParseRating(t *testing.T) {
	for _, want := range []Rating{RatingMissed, RatingAlmost, RatingGotIt} {
		got, err := ParseRating(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseRating("easy")
	assert.ErrorIs(t, err, ErrInvalidRating)
}
