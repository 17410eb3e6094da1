package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/triage-service/pkg/util"
)

func TestCallStoreRetriesOnce(t *testing.T) {
	calls := 0
	err := callStore(context.Background(), time.Second, "create_ticket", nil, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("store down")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCallStoreSecondFailureSurfaces(t *testing.T) {
	cause := errors.New("store down")
	retries := 0
	err := callStore(context.Background(), time.Second, "create_ticket", func() { retries++ }, func(ctx context.Context) error {
		return cause
	})
	require.Error(t, err)
	assert.True(t, util.IsStoreUnavailable(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, retries)
}

func TestStringPreview(t *testing.T) {
	assert.Equal(t, "short", stringPreview("  short  ", 20))
	assert.Equal(t, "abcde...", stringPreview("abcdefghij", 8))
	assert.Equal(t, "ab", stringPreview("abcdefghij", 2))
}

func TestStringPreviewRespectsRuneBoundaries(t *testing.T) {
	// Truncation must never split a multi-byte rune.
	preview := stringPreview("das Passwort zurücksetzen geht nicht mehr ü ü ü", 20)
	assert.Equal(t, "das Passwort zurü...", preview)

	preview = stringPreview("日本語のテキストです", 5)
	assert.Equal(t, "日本...", preview)
}
