package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/sla"
	"github.com/spec-kit/triage-service/pkg/util"
)

// SLAService owns the deadline lifecycle: it attaches deadlines at creation
// and scans for breaches on a timer. It holds a per-ticket lock only while
// flipping a single ticket's violated flag.
type SLAService struct {
	policy      *sla.Policy
	tickets     repository.TicketRepository
	broadcaster *events.Broadcaster
	metrics     *observability.Metrics
	logger      *zap.Logger
	locks       *util.KeyedMutex

	storeTimeout time.Duration
	now          func() time.Time
}

// SLADependencies bundles collaborators for the SLA service.
type SLADependencies struct {
	Policy      *sla.Policy
	TicketRepo  repository.TicketRepository
	Broadcaster *events.Broadcaster
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// SLAMetricsSummary aggregates SLA performance over a window.
type SLAMetricsSummary struct {
	TotalTickets       int     `json:"total_tickets"`
	Violations         int     `json:"sla_violations"`
	CompliancePct      float64 `json:"sla_compliance"`
	AvgResolutionHours float64 `json:"avg_resolution_time_hours"`
}

// NewSLAService constructs the service.
func NewSLAService(cfg config.SLAConfig, deps SLADependencies) *SLAService {
	return &SLAService{
		policy:       deps.Policy,
		tickets:      deps.TicketRepo,
		broadcaster:  deps.Broadcaster,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		locks:        util.NewKeyedMutex(),
		storeTimeout: cfg.StoreTimeout,
		now:          time.Now,
	}
}

// AttachSLA computes and attaches the deadline at creation time only. A
// deadline already present is returned unchanged; recomputation on later
// edits is disallowed to keep the SLA contract stable.
func (s *SLAService) AttachSLA(ticket *domain.Ticket) time.Time {
	if ticket.SLADeadline != nil {
		return *ticket.SLADeadline
	}
	createdAt := ticket.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	deadline := s.policy.DeadlineFor(ticket.Category, ticket.Priority, createdAt)
	ticket.SLADeadline = &deadline
	return deadline
}

// Scan finds active tickets past their deadline, marks them violated with a
// write-through conditional update, and emits one BreachEvent per first
// crossing. Re-scanning an already-violated ticket emits nothing, so the
// scan is safe to re-run after a crash.
func (s *SLAService) Scan(ctx context.Context) ([]domain.BreachEvent, error) {
	var open []domain.Ticket
	err := callStore(ctx, s.storeTimeout, "list_open_tickets", s.recordRetry, func(callCtx context.Context) error {
		var listErr error
		open, listErr = s.tickets.ListOpen(callCtx)
		return listErr
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	var breaches []domain.BreachEvent
	for i := range open {
		ticket := &open[i]
		if !ticket.Status.CountsAgainstSLA() || ticket.SLAViolated {
			continue
		}
		if ticket.SLADeadline == nil || now.Before(*ticket.SLADeadline) {
			continue
		}

		flipped, err := s.markViolated(ctx, ticket.ID)
		if err != nil {
			s.logger.Error("failed to mark sla violation",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		if !flipped {
			// A concurrent or earlier scan already recorded this breach.
			continue
		}

		breach := domain.BreachEvent{
			TicketID:  ticket.ID,
			Category:  ticket.Category,
			Priority:  ticket.Priority,
			Deadline:  *ticket.SLADeadline,
			OverdueBy: now.Sub(*ticket.SLADeadline),
		}
		breaches = append(breaches, breach)
		if s.metrics != nil {
			s.metrics.SLABreaches.WithLabelValues(string(ticket.Priority)).Inc()
		}
		s.publishBreach(breach)
		s.logger.Warn("sla breached",
			zap.String("ticket_id", breach.TicketID),
			zap.String("priority", string(breach.Priority)),
			zap.Duration("overdue_by", breach.OverdueBy))
	}
	return breaches, nil
}

// Metrics summarizes SLA performance for tickets created inside the window.
func (s *SLAService) Metrics(ctx context.Context, window time.Duration) (SLAMetricsSummary, error) {
	var tickets []domain.Ticket
	err := callStore(ctx, s.storeTimeout, "list_tickets_since", s.recordRetry, func(callCtx context.Context) error {
		var listErr error
		tickets, listErr = s.tickets.ListCreatedSince(callCtx, s.now().Add(-window))
		return listErr
	})
	if err != nil {
		return SLAMetricsSummary{}, err
	}

	summary := SLAMetricsSummary{TotalTickets: len(tickets), CompliancePct: 100}
	var resolutionHours float64
	var resolved int
	for _, ticket := range tickets {
		if ticket.SLAViolated {
			summary.Violations++
		} else if ticket.ResolvedAt != nil && ticket.SLADeadline != nil && ticket.ResolvedAt.After(*ticket.SLADeadline) {
			summary.Violations++
		}
		if ticket.ResolvedAt != nil {
			resolved++
			resolutionHours += ticket.ResolvedAt.Sub(ticket.CreatedAt).Hours()
		}
	}
	if summary.TotalTickets > 0 {
		summary.CompliancePct = float64(summary.TotalTickets-summary.Violations) / float64(summary.TotalTickets) * 100
	}
	if resolved > 0 {
		summary.AvgResolutionHours = resolutionHours / float64(resolved)
	}
	return summary, nil
}

func (s *SLAService) markViolated(ctx context.Context, ticketID string) (bool, error) {
	s.locks.Lock(ticketID)
	defer s.locks.Unlock(ticketID)

	var flipped bool
	err := callStore(ctx, s.storeTimeout, "mark_sla_violated", s.recordRetry, func(callCtx context.Context) error {
		var markErr error
		flipped, markErr = s.tickets.MarkSLAViolated(callCtx, ticketID)
		return markErr
	})
	return flipped, err
}

func (s *SLAService) publishBreach(breach domain.BreachEvent) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(events.Event{
		Type: events.EventSLABreach,
		Payload: events.SLABreachPayload{
			TicketID:         breach.TicketID,
			Category:         breach.Category,
			Priority:         breach.Priority,
			Deadline:         breach.Deadline,
			OverdueBySeconds: int64(breach.OverdueBy.Seconds()),
		},
	})
}

func (s *SLAService) recordRetry() {
	if s.metrics != nil {
		s.metrics.StoreRetries.Inc()
	}
}
