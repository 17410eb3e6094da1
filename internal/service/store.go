package service

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// callStore runs one store operation with a bounded timeout, retrying once
// synchronously. A second failure surfaces as STORE_UNAVAILABLE; store
// problems are never silently swallowed.
func callStore(ctx context.Context, timeout time.Duration, operation string, onRetry func(), fn func(context.Context) error) error {
	attempt := func() error {
		callCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return fn(callCtx)
	}

	err := attempt()
	if err == nil {
		return nil
	}
	if onRetry != nil {
		onRetry()
	}
	if err = attempt(); err != nil {
		return apperrors.NewStoreUnavailable(operation, err)
	}
	return nil
}

// stringPreview truncates on rune boundaries so multi-byte text is never cut
// mid-sequence.
func stringPreview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= max {
		return string(runes)
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
