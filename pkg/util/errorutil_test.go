package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreUnavailableWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStoreUnavailable("create_ticket", cause)

	assert.True(t, IsStoreUnavailable(err))
	assert.ErrorIs(t, err, cause)

	domainErr := ToDomainError(err)
	assert.Equal(t, "STORE_UNAVAILABLE", domainErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, domainErr.HTTPStatus)
	assert.Equal(t, "create_ticket", domainErr.Details["operation"])
}

func TestIsStoreUnavailableThroughWrapping(t *testing.T) {
	err := fmt.Errorf("scan: %w", NewStoreUnavailable("list_open_tickets", errors.New("timeout")))
	assert.True(t, IsStoreUnavailable(err))
	assert.False(t, IsStoreUnavailable(errors.New("timeout")))
}

func TestToDomainErrorFallsBackToInternal(t *testing.T) {
	domainErr := ToDomainError(errors.New("boom"))
	require.NotNil(t, domainErr)
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)

	assert.Nil(t, ToDomainError(nil))
}

func TestValidationError(t *testing.T) {
	domainErr := ToDomainError(NewValidationError("title required", map[string]any{"field": "title"}))
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
}
