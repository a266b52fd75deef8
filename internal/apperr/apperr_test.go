package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseMapsKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", Validation("invalid_input", "bad"), http.StatusBadRequest, "invalid_input"},
		{"unauthenticated", Unauthenticated("invalid_credentials", "nope"), http.StatusUnauthorized, "invalid_credentials"},
		{"forbidden", Forbidden("forbidden", "no"), http.StatusForbidden, "forbidden"},
		{"not found", NotFound("listing_not_found", "gone"), http.StatusNotFound, "listing_not_found"},
		{"conflict", Conflict("duplicate_review", "again"), http.StatusConflict, "duplicate_review"},
		{"rate limited", RateLimited("too_many_attempts", "slow down"), http.StatusTooManyRequests, "too_many_attempts"},
		{"wrapped", fmt.Errorf("service: %w", Forbidden("forbidden", "no")), http.StatusForbidden, "forbidden"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal_server_error"},
		{"internal", Internal(errors.New("db down")), http.StatusInternalServerError, "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := Response(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Error)
		})
	}
}

func TestInternalDoesNotLeakCause(t *testing.T) {
	_, body := Response(Internal(errors.New("password=hunter2")))
	assert.NotContains(t, body.Message, "hunter2")
}

func TestFieldErrorsCollect(t *testing.T) {
	var fe FieldErrors
	require.NoError(t, fe.Err("invalid_input", "x"))

	fe.Add("username", "too short")
	fe.Add("email", "invalid")
	err := fe.Err("invalid_input", "registration rejected")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, body := Response(err)
	require.Len(t, body.Fields, 2)
	assert.Equal(t, "username", body.Fields[0].Field)
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	sentinel := Unauthenticated("invalid_credentials", "invalid credentials")
	err := fmt.Errorf("login: %w", Unauthenticated("invalid_credentials", "other text"))
	assert.ErrorIs(t, err, sentinel)
	assert.NotErrorIs(t, err, Unauthenticated("token_expired", ""))
}
