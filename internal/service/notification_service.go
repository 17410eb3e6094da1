package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/events"
)

// NotificationService is an in-process subscriber that turns stream events
// into operator notifications. Delivery is currently structured logging; the
// consume loop is where a mail or pager integration would hang off.
type NotificationService struct {
	broadcaster *events.Broadcaster
	logger      *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(broadcaster *events.Broadcaster, logger *zap.Logger) *NotificationService {
	return &NotificationService{broadcaster: broadcaster, logger: logger}
}

// Run consumes the event stream until the context is cancelled or the
// broadcaster closes. It is meant to run in its own goroutine.
func (s *NotificationService) Run(ctx context.Context) error {
	sub := s.broadcaster.Subscribe()
	if sub == nil {
		return nil
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			s.notify(event)
		}
	}
}

func (s *NotificationService) notify(event events.Event) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		s.logger.Error("failed to encode notification payload",
			zap.String("event_id", event.ID), zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.ByteString("payload", payload),
	}
	switch event.Type {
	case events.EventSLABreach, events.EventAlertRaised:
		s.logger.Warn("notification", fields...)
	default:
		s.logger.Info("notification", fields...)
	}
}
