package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/dto"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/service"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// TriageHandler exposes the classification and ticket intake endpoints.
type TriageHandler struct {
	triageService *service.TriageService
	slaService    *service.SLAService
}

// NewTriageHandler constructs handler.
func NewTriageHandler(triageService *service.TriageService, slaService *service.SLAService) *TriageHandler {
	return &TriageHandler{triageService: triageService, slaService: slaService}
}

// Classify POST /triage/classify. Dry-run classification, nothing is stored.
func (h *TriageHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperrors.NewValidationError("text required", nil)
	}

	result := h.triageService.Classify(req.Text)
	return c.JSON(fiber.Map{"data": dto.ClassificationResponse{
		Category:        string(result.Category),
		Priority:        string(result.Priority),
		Confidence:      result.Confidence,
		MatchedKeywords: result.MatchedKeywords,
	}})
}

// CreateTicket POST /tickets.
func (h *TriageHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.triageService.CreateTicket(c.UserContext(), service.TicketIntakeInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TriageHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.triageService.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// SLAMetrics GET /sla/metrics?window=24h.
func (h *TriageHandler) SLAMetrics(c *fiber.Ctx) error {
	window := 24 * time.Hour
	if raw := c.Query("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return apperrors.NewValidationError("invalid window", nil)
		}
		window = parsed
	}

	summary, err := h.slaService.Metrics(c.UserContext(), window)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:              ticket.ID,
		Title:           ticket.Title,
		Category:        string(ticket.Category),
		Priority:        string(ticket.Priority),
		Status:          string(ticket.Status),
		Confidence:      ticket.ConfidenceScore,
		AutoCategorized: ticket.AutoCategorized,
		SLADeadline:     ticket.SLADeadline,
		SLAViolated:     ticket.SLAViolated,
		CreatedAt:       ticket.CreatedAt,
	}
}
