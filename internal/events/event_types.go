package events

import (
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketEscalated EventType = "ticket_escalated"
	EventSLABreach       EventType = "sla_breach"
	EventAlertRaised     EventType = "alert_raised"
	EventAlertCleared    EventType = "alert_cleared"
)

// EscalationSource identifies what triggered an escalation.
type EscalationSource string

const (
	EscalationSourceChat EscalationSource = "chat"
	EscalationSourceSLA  EscalationSource = "sla"
)

// Event is one entry on the real-time stream handed to the external
// transport.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID        string                `json:"ticket_id"`
	Category        domain.TicketCategory `json:"category"`
	Priority        domain.TicketPriority `json:"priority"`
	Confidence      float64               `json:"confidence"`
	AutoCategorized bool                  `json:"auto_categorized"`
	SLADeadline     *time.Time            `json:"sla_deadline,omitempty"`
	Source          EscalationSource      `json:"source,omitempty"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	TicketID    string                `json:"ticket_id"`
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
	Source      EscalationSource      `json:"source"`
	ExchangeID  *string               `json:"exchange_id,omitempty"`
}

// SLABreachPayload payload.
type SLABreachPayload struct {
	TicketID         string                `json:"ticket_id"`
	Category         domain.TicketCategory `json:"category"`
	Priority         domain.TicketPriority `json:"priority"`
	Deadline         time.Time             `json:"deadline"`
	OverdueBySeconds int64                 `json:"overdue_by_seconds"`
}

// AlertTransitionPayload payload for alert_raised and alert_cleared.
type AlertTransitionPayload struct {
	MetricKey string            `json:"metric_key"`
	OldLevel  domain.AlertLevel `json:"old_level"`
	NewLevel  domain.AlertLevel `json:"new_level"`
	Value     float64           `json:"value"`
}
