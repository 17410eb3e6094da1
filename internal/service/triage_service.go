package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/triage"
	"github.com/spec-kit/triage-service/pkg/util"
)

// TriageService is the ticket intake path: classify the report, attach the
// SLA deadline, hand the ticket to the external store, announce it.
type TriageService struct {
	classifier  *triage.Classifier
	slaService  *SLAService
	tickets     repository.TicketRepository
	broadcaster *events.Broadcaster
	metrics     *observability.Metrics
	logger      *zap.Logger

	storeTimeout time.Duration
}

// TriageDependencies bundles collaborators for the triage service.
type TriageDependencies struct {
	Classifier  *triage.Classifier
	SLAService  *SLAService
	TicketRepo  repository.TicketRepository
	Broadcaster *events.Broadcaster
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// TicketIntakeInput describes an incoming incident report.
type TicketIntakeInput struct {
	Title       string
	Description string
}

// NewTriageService constructs the service.
func NewTriageService(cfg config.SLAConfig, deps TriageDependencies) *TriageService {
	return &TriageService{
		classifier:   deps.Classifier,
		slaService:   deps.SLAService,
		tickets:      deps.TicketRepo,
		broadcaster:  deps.Broadcaster,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		storeTimeout: cfg.StoreTimeout,
	}
}

// Classify runs the keyword classifier over free text.
func (s *TriageService) Classify(text string) domain.ClassificationResult {
	result := s.classifier.Classify(text)
	if s.metrics != nil {
		s.metrics.Classifications.WithLabelValues(string(result.Category)).Inc()
	}
	return result
}

// CreateTicket triages an incident report into a new ticket. Title and
// description are classified together, the SLA deadline is attached at
// creation, and the ticket is written through to the external store.
func (s *TriageService) CreateTicket(ctx context.Context, input TicketIntakeInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, util.NewValidationError("title and description required", nil)
	}

	classification := s.Classify(title + " " + description)
	ticket := &domain.Ticket{
		Title:           title,
		Description:     description,
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
	}
	if s.broadcaster != nil {
		s.broadcaster.Publish(events.Event{
			Type: events.EventTicketCreated,
			Payload: events.TicketCreatedPayload{
				TicketID:        ticket.ID,
				Category:        ticket.Category,
				Priority:        ticket.Priority,
				Confidence:      ticket.ConfidenceScore,
				AutoCategorized: ticket.AutoCategorized,
				SLADeadline:     ticket.SLADeadline,
			},
		})
	}
	s.logger.Info("ticket triaged",
		zap.String("ticket_id", ticket.ID),
		zap.String("category", string(ticket.Category)),
		zap.String("priority", string(ticket.Priority)),
		zap.Float64("confidence", ticket.ConfidenceScore))
	return ticket, nil
}

// GetTicket reads one ticket from the external store.
func (s *TriageService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := callStore(ctx, s.storeTimeout, "get_ticket", s.recordRetry, func(callCtx context.Context) error {
		var getErr error
		ticket, getErr = s.tickets.GetByID(callCtx, id)
		return getErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TriageService) recordRetry() {
	if s.metrics != nil {
		s.metrics.StoreRetries.Inc()
	}
}
