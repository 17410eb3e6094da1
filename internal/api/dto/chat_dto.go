package dto

// ChatTurnRequest is one user query in a chat session. ExchangeID is optional;
// passing the id of an earlier turn replays its stored outcome.
type ChatTurnRequest struct {
	SessionID  string `json:"session_id"`
	ExchangeID string `json:"exchange_id,omitempty"`
	Query      string `json:"query"`
}

// ChatTurnResponse is the bot's reply plus the escalation outcome.
type ChatTurnResponse struct {
	ExchangeID string  `json:"exchange_id"`
	Response   string  `json:"response"`
	Confidence float64 `json:"confidence"`
	Escalated  bool    `json:"escalated"`
	TicketID   *string `json:"ticket_id,omitempty"`
}
