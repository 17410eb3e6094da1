package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/triage"
	"github.com/spec-kit/triage-service/pkg/util"
)

// EscalationService converts low-confidence chat turns and SLA breaches into
// ticket changes. Chat escalation is at-most-once per exchange; breach
// escalation never creates tickets, it only raises priority.
type EscalationService struct {
	classifier  *triage.Classifier
	tickets     repository.TicketRepository
	exchanges   repository.ChatExchangeRepository
	slaService  *SLAService
	broadcaster *events.Broadcaster
	metrics     *observability.Metrics
	logger      *zap.Logger

	threshold    float64
	storeTimeout time.Duration
	group        singleflight.Group
	ticketLocks  *util.KeyedMutex
}

// EscalationDependencies bundles collaborators for the escalation service.
type EscalationDependencies struct {
	Classifier   *triage.Classifier
	TicketRepo   repository.TicketRepository
	ExchangeRepo repository.ChatExchangeRepository
	SLAService   *SLAService
	Broadcaster  *events.Broadcaster
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// ChatTurnOutcome reports whether a chat turn was handed to a human.
type ChatTurnOutcome struct {
	Escalated bool
	TicketID  *string
}

// NewEscalationService constructs the service.
func NewEscalationService(cfg config.ChatbotConfig, slaCfg config.SLAConfig, deps EscalationDependencies) *EscalationService {
	return &EscalationService{
		classifier:   deps.Classifier,
		tickets:      deps.TicketRepo,
		exchanges:    deps.ExchangeRepo,
		slaService:   deps.SLAService,
		broadcaster:  deps.Broadcaster,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		threshold:    cfg.EscalationThreshold,
		storeTimeout: slaCfg.StoreTimeout,
		ticketLocks:  util.NewKeyedMutex(),
	}
}

// HandleChatTurn escalates the exchange when the bot's confidence is below
// the configured threshold. Re-invoking with an already-escalated exchange
// returns the existing ticket without creating another; concurrent calls on
// the same exchange id collapse into one escalation.
func (s *EscalationService) HandleChatTurn(ctx context.Context, exchange *domain.ChatExchange) (ChatTurnOutcome, error) {
	if exchange.WasEscalated {
		return ChatTurnOutcome{Escalated: true, TicketID: exchange.LinkedTicketID}, nil
	}
	if exchange.ConfidenceScore >= s.threshold {
		return ChatTurnOutcome{}, nil
	}

	result, err, _ := s.group.Do(exchange.ID, func() (any, error) {
		// Escalation outlives any one caller's request context.
		return s.escalateExchange(context.WithoutCancel(ctx), exchange)
	})
	if err != nil {
		return ChatTurnOutcome{}, err
	}
	return result.(ChatTurnOutcome), nil
}

func (s *EscalationService) escalateExchange(ctx context.Context, exchange *domain.ChatExchange) (ChatTurnOutcome, error) {
	// Re-read the exchange: another process may have escalated it already.
	var current *domain.ChatExchange
	err := callStore(ctx, s.storeTimeout, "get_chat_exchange", s.recordRetry, func(callCtx context.Context) error {
		var getErr error
		current, getErr = s.exchanges.GetByID(callCtx, exchange.ID)
		return getErr
	})
	if err != nil {
		return ChatTurnOutcome{}, err
	}
	if current.WasEscalated {
		return ChatTurnOutcome{Escalated: true, TicketID: current.LinkedTicketID}, nil
	}

	var claimed bool
	err = callStore(ctx, s.storeTimeout, "claim_escalation", s.recordRetry, func(callCtx context.Context) error {
		var claimErr error
		claimed, claimErr = s.exchanges.ClaimEscalation(callCtx, exchange.ID)
		return claimErr
	})
	if err != nil {
		return ChatTurnOutcome{}, err
	}
	if !claimed {
		// Claimed elsewhere; report whatever outcome is recorded so far.
		if refreshed, getErr := s.exchanges.GetByID(ctx, exchange.ID); getErr == nil {
			return ChatTurnOutcome{Escalated: true, TicketID: refreshed.LinkedTicketID}, nil
		}
		return ChatTurnOutcome{Escalated: true}, nil
	}

	ticket, err := s.createEscalationTicket(ctx, current)
	if err != nil {
		// Give the claim back so a later turn can retry the handoff. The
		// chat flow must know this failed.
		if releaseErr := s.exchanges.ReleaseEscalation(ctx, exchange.ID); releaseErr != nil {
			s.logger.Error("failed to release escalation claim",
				zap.String("exchange_id", exchange.ID), zap.Error(releaseErr))
		}
		s.logger.Error("chat escalation failed",
			zap.String("exchange_id", exchange.ID), zap.Error(err))
		return ChatTurnOutcome{}, err
	}

	if err := callStore(ctx, s.storeTimeout, "link_ticket", s.recordRetry, func(callCtx context.Context) error {
		return s.exchanges.LinkTicket(callCtx, exchange.ID, ticket.ID)
	}); err != nil {
		// The ticket exists; losing the back-link is recoverable from logs.
		s.logger.Error("failed to link ticket to exchange",
			zap.String("exchange_id", exchange.ID),
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	exchange.WasEscalated = true
	exchange.LinkedTicketID = &ticket.ID

	if s.metrics != nil {
		s.metrics.Escalations.WithLabelValues(string(events.EscalationSourceChat)).Inc()
	}
	s.publishChatEscalation(exchange, ticket)
	s.logger.Info("chat turn escalated",
		zap.String("exchange_id", exchange.ID),
		zap.String("ticket_id", ticket.ID),
		zap.Float64("confidence", current.ConfidenceScore))
	return ChatTurnOutcome{Escalated: true, TicketID: &ticket.ID}, nil
}

func (s *EscalationService) createEscalationTicket(ctx context.Context, exchange *domain.ChatExchange) (*domain.Ticket, error) {
	classification := s.classifier.Classify(exchange.UserQuery)
	ticket := &domain.Ticket{
		Title:           "Chat escalation: " + stringPreview(exchange.UserQuery, 80),
		Description:     fmt.Sprintf("Escalated from chat session %s:\n\n%s", exchange.SessionID, exchange.UserQuery),
		Category:        classification.Category,
		Priority:        classification.Priority,
		Status:          domain.TicketStatusOpen,
		ConfidenceScore: classification.Confidence,
		AutoCategorized: true,
	}
	s.slaService.AttachSLA(ticket)

	if err := callStore(ctx, s.storeTimeout, "create_ticket", s.recordRetry, func(callCtx context.Context) error {
		return s.tickets.Create(callCtx, ticket)
	}); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.TicketsCreated.Inc()
		s.metrics.Classifications.WithLabelValues(string(classification.Category)).Inc()
	}
	return ticket, nil
}

// HandleBreach raises the breached ticket's priority by one level. Critical
// tickets stay critical. Category and auto_categorized are untouched.
func (s *EscalationService) HandleBreach(ctx context.Context, breach domain.BreachEvent) error {
	s.ticketLocks.Lock(breach.TicketID)
	defer s.ticketLocks.Unlock(breach.TicketID)

	var ticket *domain.Ticket
	err := callStore(ctx, s.storeTimeout, "get_ticket", s.recordRetry, func(callCtx context.Context) error {
		var getErr error
		ticket, getErr = s.tickets.GetByID(callCtx, breach.TicketID)
		return getErr
	})
	if err != nil {
		return err
	}

	escalated := ticket.Priority.Escalated()
	if escalated == ticket.Priority {
		return nil
	}

	if err := callStore(ctx, s.storeTimeout, "update_priority", s.recordRetry, func(callCtx context.Context) error {
		return s.tickets.UpdatePriority(callCtx, ticket.ID, escalated)
	}); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.Escalations.WithLabelValues(string(events.EscalationSourceSLA)).Inc()
	}
	if s.broadcaster != nil {
		s.broadcaster.Publish(events.Event{
			Type: events.EventTicketEscalated,
			Payload: events.TicketEscalatedPayload{
				TicketID:    ticket.ID,
				OldPriority: ticket.Priority,
				NewPriority: escalated,
				Source:      events.EscalationSourceSLA,
			},
		})
	}
	s.logger.Warn("ticket escalated after sla breach",
		zap.String("ticket_id", ticket.ID),
		zap.String("old_priority", string(ticket.Priority)),
		zap.String("new_priority", string(escalated)))
	return nil
}

func (s *EscalationService) publishChatEscalation(exchange *domain.ChatExchange, ticket *domain.Ticket) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(events.Event{
		Type: events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{
			TicketID:        ticket.ID,
			Category:        ticket.Category,
			Priority:        ticket.Priority,
			Confidence:      ticket.ConfidenceScore,
			AutoCategorized: ticket.AutoCategorized,
			SLADeadline:     ticket.SLADeadline,
			Source:          events.EscalationSourceChat,
		},
	})
	s.broadcaster.Publish(events.Event{
		Type: events.EventTicketEscalated,
		Payload: events.TicketEscalatedPayload{
			TicketID:    ticket.ID,
			OldPriority: ticket.Priority,
			NewPriority: ticket.Priority,
			Source:      events.EscalationSourceChat,
			ExchangeID:  &exchange.ID,
		},
	})
}

func (s *EscalationService) recordRetry() {
	if s.metrics != nil {
		s.metrics.StoreRetries.Inc()
	}
}
