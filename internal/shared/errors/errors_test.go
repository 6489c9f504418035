package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "stashbox/internal/shared/errors"

	"github.com/stretchr/testify/assert"
)

func TestConstructors_HTTPMapping(t *testing.T) {
	cases := []struct {
		err      *apperrors.AppError
		wantType apperrors.ErrorType
		wantCode int
	}{
		{apperrors.NewValidationError("bad"), apperrors.ErrorTypeValidation, http.StatusBadRequest},
		{apperrors.NewAuthenticationError("nope"), apperrors.ErrorTypeAuthentication, http.StatusUnauthorized},
		{apperrors.NewCSRFMismatchError("forged"), apperrors.ErrorTypeCSRFMismatch, http.StatusForbidden},
		{apperrors.NewNotFoundError("gone"), apperrors.ErrorTypeNotFound, http.StatusNotFound},
		{apperrors.NewConflictError("taken"), apperrors.ErrorTypeConflict, http.StatusConflict},
		{apperrors.NewCycleDetectedError("loop"), apperrors.ErrorTypeCycleDetected, http.StatusBadRequest},
		{apperrors.NewInternalError("boom"), apperrors.ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.wantType, tc.err.Type)
		assert.Equal(t, tc.wantCode, tc.err.HTTPCode)
		assert.Equal(t, tc.wantCode, apperrors.HTTPCodeFor(tc.err))
	}
}

func TestAppError_WrapsCause(t *testing.T) {
	cause := stderrors.New("root cause")
	appErr := apperrors.NewInternalError("wrapper").WithCause(cause)

	assert.ErrorIs(t, appErr, cause)
	assert.Contains(t, appErr.Error(), "root cause")
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("outer: %w", apperrors.NewConflictError("taken"))

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.False(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.False(t, apperrors.IsType(stderrors.New("plain"), apperrors.ErrorTypeConflict))
}

func TestHTTPCodeFor_PlainErrorDefaultsTo500(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPCodeFor(stderrors.New("plain")))
}
