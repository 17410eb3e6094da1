package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/triage"
	"github.com/spec-kit/triage-service/pkg/util"
)

func newTestTriageService(t *testing.T, repo *fakeTicketRepo, broadcaster *events.Broadcaster) *TriageService {
	t.Helper()
	return NewTriageService(testSLAConfig(), TriageDependencies{
		Classifier:  triage.NewClassifier(config.TriageConfig{MinScore: 1}),
		SLAService:  newTestSLAService(t, repo, broadcaster),
		TicketRepo:  repo,
		Broadcaster: broadcaster,
		Logger:      zap.NewNop(),
	})
}

func TestCreateTicketTriagesReport(t *testing.T) {
	repo := newFakeTicketRepo()
	broadcaster := events.NewBroadcaster(8, nil)
	defer broadcaster.Close()
	sub := broadcaster.Subscribe()
	require.NotNil(t, sub)

	svc := newTestTriageService(t, repo, broadcaster)

	ticket, err := svc.CreateTicket(context.Background(), TicketIntakeInput{
		Title:       "Complete outage",
		Description: "The whole system is down for every user",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, domain.CategorySystemDown, ticket.Category)
	assert.Equal(t, domain.TicketPriorityCritical, ticket.Priority)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.True(t, ticket.AutoCategorized)
	assert.Greater(t, ticket.ConfidenceScore, 0.0)
	require.NotNil(t, ticket.SLADeadline)

	event := <-sub.Events()
	assert.Equal(t, events.EventTicketCreated, event.Type)
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, ticket.ID, payload.TicketID)
}

func TestCreateTicketValidatesInput(t *testing.T) {
	svc := newTestTriageService(t, newFakeTicketRepo(), nil)

	_, err := svc.CreateTicket(context.Background(), TicketIntakeInput{Title: " ", Description: "x"})
	require.Error(t, err)
	_, err = svc.CreateTicket(context.Background(), TicketIntakeInput{Title: "x", Description: ""})
	require.Error(t, err)
}

func TestCreateTicketRetriesStoreOnce(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTestTriageService(t, repo, nil)

	repo.createFailures = 1
	ticket, err := svc.CreateTicket(context.Background(), TicketIntakeInput{
		Title:       "Printer broken",
		Description: "The office printer shows physical damage",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, 2, repo.createCalls)

	repo.createFailures = 2
	_, err = svc.CreateTicket(context.Background(), TicketIntakeInput{
		Title:       "Another printer",
		Description: "Also broken",
	})
	require.Error(t, err)
	assert.True(t, util.IsStoreUnavailable(err))
}

func TestGetTicket(t *testing.T) {
	repo := newFakeTicketRepo()
	svc := newTestTriageService(t, repo, nil)
	repo.add(domain.Ticket{ID: "ticket-1", Title: "Printer broken", Status: domain.TicketStatusOpen})

	ticket, err := svc.GetTicket(context.Background(), "ticket-1")
	require.NoError(t, err)
	assert.Equal(t, "Printer broken", ticket.Title)
}

func TestGetTicketNotFound(t *testing.T) {
	svc := newTestTriageService(t, newFakeTicketRepo(), nil)

	_, err := svc.GetTicket(context.Background(), "missing")
	require.Error(t, err)
	domainErr := util.ToDomainError(err)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.Equal(t, "missing", domainErr.Details["id"])
}

func TestClassifyDryRun(t *testing.T) {
	svc := newTestTriageService(t, newFakeTicketRepo(), nil)

	result := svc.Classify("cannot connect to the vpn")
	assert.Equal(t, domain.CategoryNetworkIssue, result.Category)
	assert.Equal(t, domain.TicketPriorityHigh, result.Priority)
}
