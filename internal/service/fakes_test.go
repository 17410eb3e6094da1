package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/repository"
)

// fakeTicketRepo is an in-memory TicketRepository with injectable failures.
type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	nextID  int

	createFailures int
	listFailures   int
	getFailures    int
	updateFailures int

	createCalls         int
	updatePriorityCalls int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createFailures > 0 {
		f.createFailures--
		return errors.New("store down")
	}
	f.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", f.nextID)
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[ticket.ID]; !ok {
		return errors.New("ticket missing")
	}
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getFailures > 0 {
		f.getFailures--
		return nil, errors.New("store down")
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listFailures > 0 {
		f.listFailures--
		return nil, errors.New("store down")
	}
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.Status.CountsAgainstSLA() {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		if !ticket.CreatedAt.Before(since) {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (f *fakeTicketRepo) MarkSLAViolated(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateFailures > 0 {
		f.updateFailures--
		return false, errors.New("store down")
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return false, errors.New("ticket missing")
	}
	if ticket.SLAViolated {
		return false, nil
	}
	ticket.SLAViolated = true
	return true, nil
}

func (f *fakeTicketRepo) UpdatePriority(ctx context.Context, id string, priority domain.TicketPriority) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatePriorityCalls++
	if f.updateFailures > 0 {
		f.updateFailures--
		return errors.New("store down")
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return errors.New("ticket missing")
	}
	ticket.Priority = priority
	return nil
}

func (f *fakeTicketRepo) get(id string) *domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket := f.tickets[id]
	if ticket == nil {
		return nil
	}
	copied := *ticket
	return &copied
}

func (f *fakeTicketRepo) add(ticket domain.Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets[ticket.ID] = &ticket
}

func (f *fakeTicketRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickets)
}

var _ repository.TicketRepository = (*fakeTicketRepo)(nil)

// fakeExchangeRepo is an in-memory ChatExchangeRepository.
type fakeExchangeRepo struct {
	mu        sync.Mutex
	exchanges map[string]*domain.ChatExchange
	claims    map[string]bool

	saveFailures int
	getFailures  int

	claimCalls int
}

func newFakeExchangeRepo() *fakeExchangeRepo {
	return &fakeExchangeRepo{
		exchanges: make(map[string]*domain.ChatExchange),
		claims:    make(map[string]bool),
	}
}

func (f *fakeExchangeRepo) Save(ctx context.Context, exchange *domain.ChatExchange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveFailures > 0 {
		f.saveFailures--
		return errors.New("store down")
	}
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now()
	}
	copied := *exchange
	f.exchanges[exchange.ID] = &copied
	return nil
}

func (f *fakeExchangeRepo) GetByID(ctx context.Context, id string) (*domain.ChatExchange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getFailures > 0 {
		f.getFailures--
		return nil, errors.New("store down")
	}
	exchange, ok := f.exchanges[id]
	if !ok {
		return nil, repository.ErrExchangeNotFound
	}
	copied := *exchange
	return &copied, nil
}

func (f *fakeExchangeRepo) ClaimEscalation(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claimCalls++
	if f.claims[id] {
		return false, nil
	}
	f.claims[id] = true
	return true, nil
}

func (f *fakeExchangeRepo) ReleaseEscalation(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.claims, id)
	return nil
}

func (f *fakeExchangeRepo) LinkTicket(ctx context.Context, id, ticketID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	exchange, ok := f.exchanges[id]
	if !ok {
		return repository.ErrExchangeNotFound
	}
	exchange.WasEscalated = true
	exchange.LinkedTicketID = &ticketID
	return nil
}

func (f *fakeExchangeRepo) get(id string) *domain.ChatExchange {
	f.mu.Lock()
	defer f.mu.Unlock()
	exchange := f.exchanges[id]
	if exchange == nil {
		return nil
	}
	copied := *exchange
	return &copied
}

var _ repository.ChatExchangeRepository = (*fakeExchangeRepo)(nil)
