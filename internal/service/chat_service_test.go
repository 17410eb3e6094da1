package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestChatService(t *testing.T, tickets *fakeTicketRepo, exchanges *fakeExchangeRepo) *ChatService {
	t.Helper()
	escalation := newTestEscalationService(t, tickets, exchanges, nil)
	return NewChatService(testSLAConfig(), exchanges, escalation, zap.NewNop())
}

func TestAnswerFromFAQ(t *testing.T) {
	response, confidence := answerFromFAQ("I forgot my PASSWORD again")
	assert.Contains(t, response, "Forgot Password")
	assert.Equal(t, faqConfidence, confidence)

	response, confidence = answerFromFAQ("qwerty asdf zxcv")
	assert.Equal(t, fallbackResponse, response)
	assert.Equal(t, unmatchedConfidence, confidence)
}

func TestHandleChatTurnAnswersKnownTopic(t *testing.T) {
	tickets := newFakeTicketRepo()
	exchanges := newFakeExchangeRepo()
	svc := newTestChatService(t, tickets, exchanges)

	result, err := svc.HandleChatTurn(context.Background(), ChatTurnInput{
		SessionID: "session-1",
		Query:     "how do I reset my password?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ExchangeID)
	assert.Contains(t, result.Response, "Forgot Password")
	assert.False(t, result.Escalated)
	assert.Nil(t, result.TicketID)
	assert.Zero(t, tickets.count())

	stored := exchanges.get(result.ExchangeID)
	require.NotNil(t, stored)
	assert.Equal(t, "session-1", stored.SessionID)
}

func TestHandleChatTurnEscalatesUnknownTopic(t *testing.T) {
	tickets := newFakeTicketRepo()
	exchanges := newFakeExchangeRepo()
	svc := newTestChatService(t, tickets, exchanges)

	result, err := svc.HandleChatTurn(context.Background(), ChatTurnInput{
		SessionID: "session-1",
		Query:     "everything exploded and nothing works",
	})
	require.NoError(t, err)
	assert.True(t, result.Escalated)
	require.NotNil(t, result.TicketID)
	assert.Equal(t, 1, tickets.count())

	stored := exchanges.get(result.ExchangeID)
	require.NotNil(t, stored)
	assert.True(t, stored.WasEscalated)
}

func TestHandleChatTurnReplaysStoredExchange(t *testing.T) {
	tickets := newFakeTicketRepo()
	exchanges := newFakeExchangeRepo()
	svc := newTestChatService(t, tickets, exchanges)

	first, err := svc.HandleChatTurn(context.Background(), ChatTurnInput{
		SessionID: "session-1",
		Query:     "everything exploded and nothing works",
	})
	require.NoError(t, err)
	require.True(t, first.Escalated)

	second, err := svc.HandleChatTurn(context.Background(), ChatTurnInput{
		SessionID:  "session-1",
		ExchangeID: first.ExchangeID,
		Query:      "everything exploded and nothing works",
	})
	require.NoError(t, err)
	assert.Equal(t, first.TicketID, second.TicketID)
	assert.Equal(t, 1, tickets.count())
}

func TestHandleChatTurnValidatesInput(t *testing.T) {
	svc := newTestChatService(t, newFakeTicketRepo(), newFakeExchangeRepo())

	_, err := svc.HandleChatTurn(context.Background(), ChatTurnInput{SessionID: "", Query: "hi"})
	require.Error(t, err)

	_, err = svc.HandleChatTurn(context.Background(), ChatTurnInput{SessionID: "s", Query: "   "})
	require.Error(t, err)
}
