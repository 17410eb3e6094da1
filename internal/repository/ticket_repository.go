package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/triage-service/internal/domain"
)

// TicketRepository is the external ticket store boundary. The triage engine
// never owns the canonical ticket collection; everything goes through here.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// ListOpen returns tickets whose status still counts against the SLA.
	ListOpen(ctx context.Context) ([]domain.Ticket, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]domain.Ticket, error)
	// MarkSLAViolated flips sla_violated for the ticket and reports whether
	// this call performed the flip. A false return means another scan got
	// there first, which keeps breach events exactly-once.
	MarkSLAViolated(ctx context.Context, id string) (bool, error)
	UpdatePriority(ctx context.Context, id string, priority domain.TicketPriority) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, category, priority, status, confidence_score,
               auto_categorized, sla_deadline, sla_violated, created_at, updated_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, category, priority, status, confidence_score, auto_categorized, sla_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.ConfidenceScore,
		ticket.AutoCategorized,
		ticket.SLADeadline,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category=$3, priority=$4, status=$5,
            confidence_score=$6, auto_categorized=$7, sla_deadline=$8, sla_violated=$9,
            resolved_at=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.ConfidenceScore,
		ticket.AutoCategorized,
		ticket.SLADeadline,
		ticket.SLAViolated,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.ConfidenceScore,
		&ticket.AutoCategorized,
		&ticket.SLADeadline,
		&ticket.SLAViolated,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE status IN ('open','in_progress')
        ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE created_at >= $1
        ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) MarkSLAViolated(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE tickets SET sla_violated=TRUE, updated_at=NOW()
        WHERE id=$1 AND sla_violated=FALSE`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) UpdatePriority(ctx context.Context, id string, priority domain.TicketPriority) error {
	const query = `UPDATE tickets SET priority=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, priority, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Category,
			&ticket.Priority,
			&ticket.Status,
			&ticket.ConfidenceScore,
			&ticket.AutoCategorized,
			&ticket.SLADeadline,
			&ticket.SLAViolated,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
