package dto

import "time"

// ClassifyRequest asks for a dry-run classification of free text.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// ClassificationResponse reports the classifier's decision.
type ClassificationResponse struct {
	Category        string   `json:"category"`
	Priority        string   `json:"priority"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// CreateTicketRequest submits an incident report for triage.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TicketResponse is the external view of a triaged ticket.
type TicketResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Category        string     `json:"category"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	Confidence      float64    `json:"confidence"`
	AutoCategorized bool       `json:"auto_categorized"`
	SLADeadline     *time.Time `json:"sla_deadline,omitempty"`
	SLAViolated     bool       `json:"sla_violated"`
	CreatedAt       time.Time  `json:"created_at"`
}
