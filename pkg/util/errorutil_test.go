package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewDuplicateUsername(), "DUPLICATE_USERNAME", http.StatusBadRequest},
		{NewInvalidCredentials(), "INVALID_CREDENTIALS", http.StatusBadRequest},
		{NewUnauthenticated("no"), "UNAUTHENTICATED", http.StatusUnauthorized},
		{NewTokenExpired(), "TOKEN_EXPIRED", http.StatusUnauthorized},
		{NewForbidden("no"), "FORBIDDEN", http.StatusForbidden},
		{NewNotFound("ticket"), "NOT_FOUND", http.StatusNotFound},
		{NewInternalError(errors.New("db down")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		de := ToDomainError(tc.err)
		require.NotNil(t, de)
		assert.Equal(t, tc.code, de.Code)
		assert.Equal(t, tc.status, de.HTTPStatus)
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	de := ToDomainError(pgx.ErrNoRows)
	require.NotNil(t, de)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("socket closed")
	de := ToDomainError(cause)
	require.NotNil(t, de)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.ErrorIs(t, de, cause)

	assert.Nil(t, ToDomainError(nil))
}
