package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViolate(t *testing.T) {
	defer func() {
		r := recover()
		assert.True(t, IsInvariantViolation(r))
		v := r.(InvariantViolation)
		assert.Equal(t, "DeleteDevice", v.Op)
		assert.Equal(t, `invariant violation in DeleteDevice for "alice": last device`, v.Error())
	}()
	Violate("DeleteDevice", "alice", "last device")
}

func TestIsInvariantViolation(t *testing.T) {
	assert.False(t, IsInvariantViolation(nil))
	assert.False(t, IsInvariantViolation("boom"))
	assert.True(t, IsInvariantViolation(InvariantViolation{}))
}

func TestRequireNonEmpty(t *testing.T) {
	assert.NoError(t, RequireNonEmpty("alias", "laptop", "public_key", "pk"))
	err := RequireNonEmpty("alias", "laptop", "public_key", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "public_key")
}

func TestCheckNoteSize(t *testing.T) {
	assert.NoError(t, CheckNoteSize("abcdef", 0))
	assert.NoError(t, CheckNoteSize("abc", 3))
	assert.ErrorIs(t, CheckNoteSize("abcd", 3), ErrNoteTooLarge)
}
