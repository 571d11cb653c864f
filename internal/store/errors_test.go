package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(ErrDeckNotFound))
	assert.True(t, IsNotFoundError(ErrNoteNotFound))
	assert.True(t, IsNotFoundError(ErrCardNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", ErrCardNotFound)))

	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsNotFoundError(ErrDuplicate))
	assert.False(t, IsNotFoundError(errors.New("card not found")))
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(ErrDeckNameExists))
	assert.True(t, IsDuplicateError(ErrNoteExists))
	assert.True(t, IsDuplicateError(fmt.Errorf("insert: %w", ErrNoteExists)))

	assert.False(t, IsDuplicateError(nil))
	assert.False(t, IsDuplicateError(ErrNotFound))
}
