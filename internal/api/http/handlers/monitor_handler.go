package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/dto"
	"github.com/spec-kit/triage-service/internal/service"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// MonitorHandler exposes metric sample ingestion and alert state queries.
type MonitorHandler struct {
	monitorService *service.MonitorService
}

// NewMonitorHandler constructs handler.
func NewMonitorHandler(monitorService *service.MonitorService) *MonitorHandler {
	return &MonitorHandler{monitorService: monitorService}
}

// IngestSample POST /monitor/samples.
func (h *MonitorHandler) IngestSample(c *fiber.Ctx) error {
	var req dto.MetricSampleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Metric) == "" {
		return apperrors.NewValidationError("metric required", nil)
	}

	ts := time.Now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}
	transition := h.monitorService.IngestSample(req.Metric, req.Value, ts)
	if transition == nil {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"transition": nil}})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{
		"transition": dto.AlertTransitionResponse{
			MetricKey: transition.MetricKey,
			OldLevel:  string(transition.OldLevel),
			NewLevel:  string(transition.NewLevel),
			Value:     transition.Value,
		},
	}})
}

// ListAlertStates GET /monitor/alerts.
func (h *MonitorHandler) ListAlertStates(c *fiber.Ctx) error {
	states := h.monitorService.States()
	items := make([]dto.AlertStateResponse, 0, len(states))
	for _, state := range states {
		items = append(items, dto.AlertStateResponse{
			MetricKey:    state.MetricKey,
			CurrentLevel: string(state.CurrentLevel),
			LastValue:    state.LastValue,
			LastRaisedAt: state.LastRaisedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
