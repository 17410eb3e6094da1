package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/triage-service/internal/domain"
)

// ErrExchangeNotFound is returned when no exchange exists for the id.
var ErrExchangeNotFound = errors.New("chat exchange not found")

// ChatExchangeRepository stores chat turns for the lifetime of a session.
// Exchanges are immutable after creation except for the escalation fields,
// which are set at most once through ClaimEscalation/LinkTicket.
type ChatExchangeRepository interface {
	Save(ctx context.Context, exchange *domain.ChatExchange) error
	GetByID(ctx context.Context, id string) (*domain.ChatExchange, error)
	// ClaimEscalation reserves the right to escalate the exchange. Exactly
	// one caller across the process (and across processes sharing the
	// store) gets true.
	ClaimEscalation(ctx context.Context, id string) (bool, error)
	// ReleaseEscalation undoes a claim whose ticket creation failed so a
	// later retry can escalate.
	ReleaseEscalation(ctx context.Context, id string) error
	// LinkTicket records the escalation outcome on the exchange.
	LinkTicket(ctx context.Context, id, ticketID string) error
}

const exchangeTTL = 24 * time.Hour

type chatExchangeRepository struct {
	client *redis.Client
}

// NewChatExchangeRepository instantiates the Redis-backed store.
func NewChatExchangeRepository(client *redis.Client) ChatExchangeRepository {
	return &chatExchangeRepository{client: client}
}

func exchangeKey(id string) string {
	return "chat:exchange:" + id
}

func escalationKey(id string) string {
	return "chat:escalated:" + id
}

func (r *chatExchangeRepository) Save(ctx context.Context, exchange *domain.ChatExchange) error {
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now()
	}
	fields := map[string]any{
		"session_id":       exchange.SessionID,
		"user_query":       exchange.UserQuery,
		"bot_response":     exchange.BotResponse,
		"confidence_score": strconv.FormatFloat(exchange.ConfidenceScore, 'f', -1, 64),
		"was_escalated":    strconv.FormatBool(exchange.WasEscalated),
		"created_at":       exchange.CreatedAt.Format(time.RFC3339Nano),
	}
	if exchange.LinkedTicketID != nil {
		fields["linked_ticket_id"] = *exchange.LinkedTicketID
	}
	key := exchangeKey(exchange.ID)
	if err := r.client.HSet(ctx, key, fields).Err(); err != nil {
		return err
	}
	return r.client.Expire(ctx, key, exchangeTTL).Err()
}

func (r *chatExchangeRepository) GetByID(ctx context.Context, id string) (*domain.ChatExchange, error) {
	values, err := r.client.HGetAll(ctx, exchangeKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrExchangeNotFound
	}

	exchange := &domain.ChatExchange{
		ID:          id,
		SessionID:   values["session_id"],
		UserQuery:   values["user_query"],
		BotResponse: values["bot_response"],
	}
	if raw, ok := values["confidence_score"]; ok {
		exchange.ConfidenceScore, _ = strconv.ParseFloat(raw, 64)
	}
	if raw, ok := values["was_escalated"]; ok {
		exchange.WasEscalated, _ = strconv.ParseBool(raw)
	}
	if raw, ok := values["linked_ticket_id"]; ok && raw != "" {
		ticketID := raw
		exchange.LinkedTicketID = &ticketID
	}
	if raw, ok := values["created_at"]; ok {
		exchange.CreatedAt, _ = time.Parse(time.RFC3339Nano, raw)
	}
	return exchange, nil
}

func (r *chatExchangeRepository) ClaimEscalation(ctx context.Context, id string) (bool, error) {
	return r.client.SetNX(ctx, escalationKey(id), "1", exchangeTTL).Result()
}

func (r *chatExchangeRepository) ReleaseEscalation(ctx context.Context, id string) error {
	return r.client.Del(ctx, escalationKey(id)).Err()
}

func (r *chatExchangeRepository) LinkTicket(ctx context.Context, id, ticketID string) error {
	return r.client.HSet(ctx, exchangeKey(id), map[string]any{
		"was_escalated":    "true",
		"linked_ticket_id": ticketID,
	}).Err()
}
