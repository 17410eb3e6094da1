package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
)

type fakeScanner struct {
	mu       sync.Mutex
	breaches []domain.BreachEvent
	failures int
	calls    []time.Time
	notify   chan struct{}
}

func newFakeScanner(breaches []domain.BreachEvent) *fakeScanner {
	return &fakeScanner{breaches: breaches, notify: make(chan struct{}, 16)}
}

func (f *fakeScanner) Scan(ctx context.Context) ([]domain.BreachEvent, error) {
	f.mu.Lock()
	f.calls = append(f.calls, time.Now())
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	breaches := f.breaches
	f.mu.Unlock()

	select {
	case f.notify <- struct{}{}:
	default:
	}
	if fail {
		return nil, errors.New("store down")
	}
	return breaches, nil
}

func (f *fakeScanner) callTimes() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.calls...)
}

type fakeBreachHandler struct {
	mu      sync.Mutex
	handled []domain.BreachEvent
	err     error
}

func (f *fakeBreachHandler) HandleBreach(ctx context.Context, breach domain.BreachEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handled = append(f.handled, breach)
	return f.err
}

func (f *fakeBreachHandler) handledIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.handled))
	for _, breach := range f.handled {
		ids = append(ids, breach.TicketID)
	}
	return ids
}

func waitScan(t *testing.T, scanner *fakeScanner) {
	t.Helper()
	select {
	case <-scanner.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a scan tick")
	}
}

func TestWorkerRoutesBreachesToHandler(t *testing.T) {
	scanner := newFakeScanner([]domain.BreachEvent{
		{TicketID: "ticket-1", Priority: domain.TicketPriorityHigh},
		{TicketID: "ticket-2", Priority: domain.TicketPriorityLow},
	})
	handler := &fakeBreachHandler{}
	w := NewSLAWorker(scanner, handler, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitScan(t, scanner)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	assert.Contains(t, handler.handledIDs(), "ticket-1")
	assert.Contains(t, handler.handledIDs(), "ticket-2")
}

func TestWorkerKeepsRunningWhenHandlerFails(t *testing.T) {
	scanner := newFakeScanner([]domain.BreachEvent{{TicketID: "ticket-1"}})
	handler := &fakeBreachHandler{err: errors.New("store down")}
	w := NewSLAWorker(scanner, handler, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitScan(t, scanner)
	waitScan(t, scanner)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	assert.GreaterOrEqual(t, len(handler.handledIDs()), 2)
}

func TestWorkerDoublesIntervalAfterFailedScan(t *testing.T) {
	const interval = 20 * time.Millisecond
	scanner := newFakeScanner(nil)
	scanner.failures = 1
	w := NewSLAWorker(scanner, &fakeBreachHandler{}, interval, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitScan(t, scanner)
	waitScan(t, scanner)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	calls := scanner.callTimes()
	require.GreaterOrEqual(t, len(calls), 2)
	assert.GreaterOrEqual(t, calls[1].Sub(calls[0]), 2*interval)
}

func TestWorkerCancellationStopsPromptly(t *testing.T) {
	scanner := newFakeScanner(nil)
	w := NewSLAWorker(scanner, &fakeBreachHandler{}, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancellation")
	}

	assert.Empty(t, scanner.callTimes())
}

func TestWorkerDefaultsInterval(t *testing.T) {
	w := NewSLAWorker(newFakeScanner(nil), &fakeBreachHandler{}, 0, zap.NewNop())
	assert.Equal(t, time.Minute, w.interval)
}
