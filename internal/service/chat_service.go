package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/pkg/util"
)

// faqEntry is one keyword-matched canned answer.
type faqEntry struct {
	keyword string
	answer  string
}

// faqKnowledgeBase is checked in order; the first keyword present in the
// query wins.
var faqKnowledgeBase = []faqEntry{
	{"password", "To reset your password, go to the login page and click 'Forgot Password'. You'll receive an email with reset instructions."},
	{"login", "If you're having trouble logging in, make sure you're using the correct username and password. Check if Caps Lock is on."},
	{"email", "For email issues, check your internet connection and try refreshing the page. If problems persist, contact IT support."},
	{"network", "Network issues can be resolved by checking your internet connection, restarting your router, or contacting your ISP."},
	{"software", "For software installation issues, ensure you have administrator privileges and sufficient disk space."},
	{"hardware", "Hardware problems should be reported immediately. Include details about the device and error messages."},
	{"printer", "Check that the printer is powered on and connected. Reinstalling the driver resolves most printing problems."},
	{"vpn", "For VPN problems, disconnect and reconnect first. If the tunnel still fails, verify your credentials with IT."},
	{"access", "If you're having access issues, verify your permissions with your manager or IT support."},
	{"backup", "Regular backups are automatically performed. For manual backup requests, contact IT support."},
}

const (
	faqConfidence       = 0.85
	unmatchedConfidence = 0.2
	fallbackResponse    = "I couldn't find an answer for that. Let me hand this over to our support team."
)

// ChatService answers chat queries from the FAQ knowledge base, records the
// exchange, and routes low-confidence turns through the escalation service.
type ChatService struct {
	exchanges  repository.ChatExchangeRepository
	escalation *EscalationService
	logger     *zap.Logger

	storeTimeout time.Duration
}

// ChatTurnInput is one user query inside a session.
type ChatTurnInput struct {
	SessionID  string
	ExchangeID string
	Query      string
}

// ChatTurnResult is the bot's reply plus the escalation outcome.
type ChatTurnResult struct {
	ExchangeID string
	Response   string
	Confidence float64
	Escalated  bool
	TicketID   *string
}

// NewChatService constructs the service.
func NewChatService(cfg config.SLAConfig, exchanges repository.ChatExchangeRepository, escalation *EscalationService, logger *zap.Logger) *ChatService {
	return &ChatService{
		exchanges:    exchanges,
		escalation:   escalation,
		logger:       logger,
		storeTimeout: cfg.StoreTimeout,
	}
}

// HandleChatTurn answers the query, persists the exchange, and escalates it
// when the answer's confidence is below the router's threshold. Re-invoking
// with an existing exchange id replays the stored outcome instead of
// answering again.
func (s *ChatService) HandleChatTurn(ctx context.Context, input ChatTurnInput) (ChatTurnResult, error) {
	query := strings.TrimSpace(input.Query)
	if input.SessionID == "" || query == "" {
		return ChatTurnResult{}, util.NewValidationError("session_id and query required", nil)
	}

	exchange, err := s.loadOrCreateExchange(ctx, input, query)
	if err != nil {
		return ChatTurnResult{}, err
	}

	outcome, err := s.escalation.HandleChatTurn(ctx, exchange)
	if err != nil {
		// The caller must know the handoff failed; the answer alone does
		// not resolve a query the bot could not handle.
		return ChatTurnResult{
			ExchangeID: exchange.ID,
			Response:   exchange.BotResponse,
			Confidence: exchange.ConfidenceScore,
		}, err
	}

	return ChatTurnResult{
		ExchangeID: exchange.ID,
		Response:   exchange.BotResponse,
		Confidence: exchange.ConfidenceScore,
		Escalated:  outcome.Escalated,
		TicketID:   outcome.TicketID,
	}, nil
}

func (s *ChatService) loadOrCreateExchange(ctx context.Context, input ChatTurnInput, query string) (*domain.ChatExchange, error) {
	if input.ExchangeID != "" {
		var existing *domain.ChatExchange
		err := callStore(ctx, s.storeTimeout, "get_chat_exchange", nil, func(callCtx context.Context) error {
			var getErr error
			existing, getErr = s.exchanges.GetByID(callCtx, input.ExchangeID)
			return getErr
		})
		if err == nil {
			return existing, nil
		}
		// Unknown ids are answered fresh under that id.
		if !errors.Is(err, repository.ErrExchangeNotFound) && !util.IsStoreUnavailable(err) {
			return nil, err
		}
	}

	response, confidence := answerFromFAQ(query)
	exchange := &domain.ChatExchange{
		ID:              input.ExchangeID,
		SessionID:       input.SessionID,
		UserQuery:       query,
		BotResponse:     response,
		ConfidenceScore: confidence,
	}
	if exchange.ID == "" {
		exchange.ID = uuid.NewString()
	}

	if err := callStore(ctx, s.storeTimeout, "save_chat_exchange", nil, func(callCtx context.Context) error {
		return s.exchanges.Save(callCtx, exchange)
	}); err != nil {
		return nil, err
	}
	s.logger.Debug("chat turn answered",
		zap.String("session_id", exchange.SessionID),
		zap.String("exchange_id", exchange.ID),
		zap.Float64("confidence", confidence))
	return exchange, nil
}

// answerFromFAQ returns the first matching canned answer with a fixed
// confidence, or the low-confidence fallback that triggers escalation.
func answerFromFAQ(query string) (string, float64) {
	lowered := strings.ToLower(query)
	for _, entry := range faqKnowledgeBase {
		if strings.Contains(lowered, entry.keyword) {
			return entry.answer, faqConfidence
		}
	}
	return fallbackResponse, unmatchedConfidence
}
