package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/bolsillo-claro/cli/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestResponseErrorIs(t *testing.T) {
	preRecovery := &ResponseError{StatusCode: http.StatusUnauthorized}
	assert.ErrorIs(t, preRecovery, ErrUnauthorized)
	assert.NotErrorIs(t, preRecovery, ErrSessionExpired)

	refreshFailure := &ResponseError{StatusCode: http.StatusUnauthorized, Recovery: RecoveryNone}
	postRecovery := &ResponseError{
		StatusCode: http.StatusUnauthorized,
		Recovery:   RecoveryFailed,
		Cause:      refreshFailure,
	}
	assert.ErrorIs(t, postRecovery, ErrSessionExpired)
	assert.NotErrorIs(t, postRecovery, ErrUnauthorized)

	forbidden := &ResponseError{StatusCode: http.StatusForbidden}
	assert.NotErrorIs(t, forbidden, ErrUnauthorized)
	assert.NotErrorIs(t, forbidden, ErrSessionExpired)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
		{
			name: "backend message",
			err: fmt.Errorf("login: %w", &ResponseError{
				StatusCode: http.StatusConflict,
				Body:       models.ErrorBody{Message: "email already registered"},
			}),
			expected: "email already registered",
		},
		{
			name:     "response without message",
			err:      &ResponseError{StatusCode: http.StatusInternalServerError},
			expected: GenericErrorMessage,
		},
		{
			name:     "validation",
			err:      &models.ValidationError{Fields: []models.FieldError{{Field: "email", Message: "invalid email"}}},
			expected: "invalid email",
		},
		{
			name:     "expired",
			err:      &ResponseError{StatusCode: http.StatusUnauthorized, Recovery: RecoveryExhausted},
			expected: "Your session has expired. Please log in again.",
		},
		{
			name:     "unknown",
			err:      errors.New("boom"),
			expected: GenericErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserMessage(tt.err))
		})
	}
}
