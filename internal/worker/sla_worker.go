package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
)

// BreachScanner finds tickets that crossed their deadline since the last run.
type BreachScanner interface {
	Scan(ctx context.Context) ([]domain.BreachEvent, error)
}

// BreachHandler applies the escalation side of a breach.
type BreachHandler interface {
	HandleBreach(ctx context.Context, breach domain.BreachEvent) error
}

// SLAWorker periodically runs the SLA breach scan and routes every breach
// through the escalation service. One worker per process is expected;
// running more is safe because the violated flag flips at most once.
type SLAWorker struct {
	scanner  BreachScanner
	handler  BreachHandler
	logger   *zap.Logger
	interval time.Duration
}

// NewSLAWorker constructs the worker.
func NewSLAWorker(scanner BreachScanner, handler BreachHandler, interval time.Duration, logger *zap.Logger) *SLAWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SLAWorker{
		scanner:  scanner,
		handler:  handler,
		logger:   logger,
		interval: interval,
	}
}

// Run loops until the context is cancelled. A failed scan is logged and the
// next tick waits double the interval, so a flapping store does not produce a
// tight error loop.
func (w *SLAWorker) Run(ctx context.Context) error {
	w.logger.Info("sla worker started", zap.Duration("interval", w.interval))
	timer := time.NewTimer(w.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sla worker stopping")
			return ctx.Err()
		case <-timer.C:
		}

		next := w.interval
		if err := w.runOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("sla scan failed", zap.Error(err))
			next = 2 * w.interval
		}
		timer.Reset(next)
	}
}

func (w *SLAWorker) runOnce(ctx context.Context) error {
	breaches, err := w.scanner.Scan(ctx)
	if err != nil {
		return err
	}
	for _, breach := range breaches {
		if err := w.handler.HandleBreach(ctx, breach); err != nil {
			// The breach event is already out; a failed priority bump is not
			// retried by later scans, so log loudly.
			w.logger.Error("breach escalation failed",
				zap.String("ticket_id", breach.TicketID), zap.Error(err))
		}
	}
	if len(breaches) > 0 {
		w.logger.Info("sla scan completed", zap.Int("breaches", len(breaches)))
	}
	return nil
}
