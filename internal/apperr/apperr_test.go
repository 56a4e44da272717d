package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := Conflict("department code %q already exists", "D1")
	wrapped := fmt.Errorf("update department: %w", base)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindConflict))
	assert.Equal(t, `update department: department code "D1" already exists`, wrapped.Error())
}

func TestPlainErrorIsUnknown(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindUnknown))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("record not found")
	err := Wrap(KindNotFound, cause, "request not found")

	assert.Equal(t, "request not found", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "not_found", KindOf(err).String())
}
