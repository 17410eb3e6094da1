package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/events"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// EventsHandler streams the real-time event feed over server-sent events.
type EventsHandler struct {
	broadcaster *events.Broadcaster
	logger      *zap.Logger
}

// NewEventsHandler constructs handler.
func NewEventsHandler(broadcaster *events.Broadcaster, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{broadcaster: broadcaster, logger: logger}
}

// Stream GET /events/stream. Each subscriber gets its own bounded queue; a
// consumer that stops reading loses oldest events rather than stalling the
// publishers.
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	sub := h.broadcaster.Subscribe()
	if sub == nil {
		return apperrors.NewInternalError(nil)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	done := c.Context().Done()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		for {
			select {
			case <-done:
				return
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				body, err := json.Marshal(event)
				if err != nil {
					h.logger.Error("failed to encode stream event",
						zap.String("event_id", event.ID), zap.Error(err))
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, body); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					// Client went away.
					return
				}
			}
		}
	})
	return nil
}
