package domain

import "time"

// ChatExchange is one chatbot turn: the user query and the bot's answer.
// Immutable after creation except for the escalation fields, which are set
// at most once.
type ChatExchange struct {
	ID              string
	SessionID       string
	UserQuery       string
	BotResponse     string
	ConfidenceScore float64
	WasEscalated    bool
	LinkedTicketID  *string
	CreatedAt       time.Time
}
