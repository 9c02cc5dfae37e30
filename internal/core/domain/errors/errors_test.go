package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPersistenceErrorUnwraps(t *testing.T) {
	err := NewPersistenceError("issue", context.DeadlineExceeded)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Contains(t, err.Error(), "issue")

	var persistenceErr *PersistenceError
	require.True(t, errors.As(error(err), &persistenceErr))
	require.Equal(t, "issue", persistenceErr.Op)
}

func TestDeliveryErrorUnwraps(t *testing.T) {
	cause := errors.New("smtp: connection refused")
	err := NewDeliveryError(cause)

	require.ErrorIs(t, err, cause)

	var deliveryErr *DeliveryError
	require.True(t, errors.As(error(err), &deliveryErr))
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("password", "must be at least 8 characters long")
	require.Equal(t, "password: must be at least 8 characters long", err.Error())
}
