package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/dto"
	"github.com/spec-kit/triage-service/internal/service"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// ChatHandler exposes the chatbot turn endpoint.
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// HandleTurn POST /chat/turns.
func (h *ChatHandler) HandleTurn(c *fiber.Ctx) error {
	var req dto.ChatTurnRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.chatService.HandleChatTurn(c.UserContext(), service.ChatTurnInput{
		SessionID:  req.SessionID,
		ExchangeID: req.ExchangeID,
		Query:      req.Query,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ChatTurnResponse{
		ExchangeID: result.ExchangeID,
		Response:   result.Response,
		Confidence: result.Confidence,
		Escalated:  result.Escalated,
		TicketID:   result.TicketID,
	}})
}
