package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageFormatting(t *testing.T) {
	base := New("TEST", "something failed", http.StatusBadRequest)
	require.Equal(t, "something failed", base.Error())

	wrapped := base.WithInternal(errors.New("disk full"))
	require.Equal(t, "something failed: disk full", wrapped.Error())
	require.Equal(t, base.Code, wrapped.Code)

	// The original must stay untouched.
	require.Nil(t, base.Internal)
}

func TestWithMessageCopies(t *testing.T) {
	specific := ErrInvalidState.WithMessage("invitation already accepted")
	require.Equal(t, "invitation already accepted", specific.Message)
	require.Equal(t, ErrInvalidState.Code, specific.Code)
	require.Equal(t, "Operation is not valid for the current state", ErrInvalidState.Message)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	appErr := FromError(ErrConflict)
	require.Equal(t, ErrConflict.Code, appErr.Code)

	wrapped := FromError(fmt.Errorf("outer: %w", ErrAlreadyAffiliated))
	require.Equal(t, ErrAlreadyAffiliated.Code, wrapped.Code)

	generic := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, generic.Code)
	require.EqualError(t, generic.Internal, "boom")
}

func TestUnwrapSupportsErrorsIs(t *testing.T) {
	inner := errors.New("row locked")
	err := ErrOperationFailed.WithInternal(inner)
	require.ErrorIs(t, err, inner)
}
