package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed || s == TicketStatusCancelled
}

// CountsAgainstSLA reports whether the ticket is still waiting on a response
// and therefore subject to breach scanning.
func (s TicketStatus) CountsAgainstSLA() bool {
	return s == TicketStatusOpen || s == TicketStatusInProgress
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// Priorities lists all priorities from least to most severe.
func Priorities() []TicketPriority {
	return []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical}
}

var priorityRank = map[TicketPriority]int{
	TicketPriorityLow:      0,
	TicketPriorityMedium:   1,
	TicketPriorityHigh:     2,
	TicketPriorityCritical: 3,
}

// Rank returns the severity order of the priority, low first. Unknown values
// rank below low.
func (p TicketPriority) Rank() int {
	if rank, ok := priorityRank[p]; ok {
		return rank
	}
	return -1
}

// Escalated returns the next more severe priority. Critical stays critical.
func (p TicketPriority) Escalated() TicketPriority {
	switch p {
	case TicketPriorityLow:
		return TicketPriorityMedium
	case TicketPriorityMedium:
		return TicketPriorityHigh
	case TicketPriorityHigh, TicketPriorityCritical:
		return TicketPriorityCritical
	default:
		return p
	}
}

// TicketCategory enumerates triage categories.
type TicketCategory string

const (
	CategorySystemDown           TicketCategory = "system_down"
	CategoryPerformanceIssue     TicketCategory = "performance_issue"
	CategoryPasswordReset        TicketCategory = "password_reset"
	CategorySoftwareInstallation TicketCategory = "software_installation"
	CategoryHardwareIssue        TicketCategory = "hardware_issue"
	CategoryNetworkIssue         TicketCategory = "network_issue"
	CategoryOther                TicketCategory = "other"
)

// Categories lists all triage categories.
func Categories() []TicketCategory {
	return []TicketCategory{
		CategorySystemDown,
		CategoryPerformanceIssue,
		CategoryPasswordReset,
		CategorySoftwareInstallation,
		CategoryHardwareIssue,
		CategoryNetworkIssue,
		CategoryOther,
	}
}

// Ticket is the projection of the externally owned ticket record that the
// triage engine reads and writes.
type Ticket struct {
	ID              string
	Title           string
	Description     string
	Category        TicketCategory
	Priority        TicketPriority
	Status          TicketStatus
	ConfidenceScore float64
	AutoCategorized bool
	SLADeadline     *time.Time
	SLAViolated     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
}

// BreachEvent records the first deadline crossing observed for a ticket.
type BreachEvent struct {
	TicketID  string
	Category  TicketCategory
	Priority  TicketPriority
	Deadline  time.Time
	OverdueBy time.Duration
}
