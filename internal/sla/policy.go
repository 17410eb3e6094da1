package sla

import (
	"time"

	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/domain"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// Policy maps (category, priority) to a response duration. It is a pure
// lookup table, total over both enums; totality is checked once by Validate
// at startup rather than discovered lazily at scan time.
type Policy struct {
	responseByPriority   map[domain.TicketPriority]time.Duration
	multiplierByCategory map[domain.TicketCategory]float64
}

// NewPolicy builds the policy from configuration. Call Validate before use.
func NewPolicy(cfg config.SLAConfig) *Policy {
	multipliers := make(map[domain.TicketCategory]float64, len(domain.Categories()))
	for _, category := range domain.Categories() {
		multipliers[category] = 1
	}
	multipliers[domain.CategorySystemDown] = cfg.SystemDownMultiplier

	return &Policy{
		responseByPriority: map[domain.TicketPriority]time.Duration{
			domain.TicketPriorityCritical: cfg.CriticalResponse,
			domain.TicketPriorityHigh:     cfg.HighResponse,
			domain.TicketPriorityMedium:   cfg.MediumResponse,
			domain.TicketPriorityLow:      cfg.LowResponse,
		},
		multiplierByCategory: multipliers,
	}
}

// Validate checks the table is total and that response times strictly
// decrease as severity increases. Any violation is a configuration error and
// must abort startup.
func (p *Policy) Validate() error {
	for _, priority := range domain.Priorities() {
		duration, ok := p.responseByPriority[priority]
		if !ok || duration <= 0 {
			return apperrors.NewConfigError("sla response duration missing", map[string]any{
				"priority": string(priority),
			})
		}
	}
	priorities := domain.Priorities()
	for i := 1; i < len(priorities); i++ {
		if p.responseByPriority[priorities[i]] >= p.responseByPriority[priorities[i-1]] {
			return apperrors.NewConfigError("sla response durations must strictly decrease with severity", map[string]any{
				"priority": string(priorities[i]),
			})
		}
	}
	for _, category := range domain.Categories() {
		multiplier, ok := p.multiplierByCategory[category]
		if !ok || multiplier <= 0 {
			return apperrors.NewConfigError("sla category multiplier missing", map[string]any{
				"category": string(category),
			})
		}
	}
	return nil
}

// ResponseDuration returns the response window for the pair. The table is
// total after Validate, so lookups cannot miss at runtime.
func (p *Policy) ResponseDuration(category domain.TicketCategory, priority domain.TicketPriority) time.Duration {
	base := p.responseByPriority[priority]
	multiplier, ok := p.multiplierByCategory[category]
	if !ok {
		multiplier = 1
	}
	return time.Duration(float64(base) * multiplier)
}

// DeadlineFor computes the SLA deadline for a ticket created at createdAt.
func (p *Policy) DeadlineFor(category domain.TicketCategory, priority domain.TicketPriority, createdAt time.Time) time.Time {
	return createdAt.Add(p.ResponseDuration(category, priority))
}
