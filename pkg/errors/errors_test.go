package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelMatching(t *testing.T) {
	wrapped := Wrap(CodeAlreadyExists, "already friends", stderrors.New("db detail"))
	assert.True(t, stderrors.Is(wrapped, ErrAlreadyFriends))

	// Distinct conflict kinds stay distinct.
	assert.False(t, stderrors.Is(ErrAlreadyFriends, ErrRequestPending))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Wrap(CodeInternal, "failed to create chat", cause)
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeFailedPrecondition, CodeOf(ErrNotFriends))
	assert.Equal(t, CodePermissionDenied, CodeOf(ErrNotParticipant))
	assert.Equal(t, CodeUnknown, CodeOf(stderrors.New("plain")))
}
