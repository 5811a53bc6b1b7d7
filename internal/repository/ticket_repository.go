package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helli-it/support-tracker/internal/access"
	"github.com/helli-it/support-tracker/internal/domain"
)

// TicketFilter is the composed listing predicate: the actor's scope plus
// the optional admin criteria. Absent criteria are no-ops. The same
// filter feeds the listing view, the export and the report range.
type TicketFilter struct {
	Scope        access.Scope
	DepartmentID *string
	CreatorID    *string
	Status       *domain.TicketStatus
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	HelliCode    *string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db Querier
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(db Querier) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, title, description, status, department_id, creator_id, student_id, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, department_id, creator_id, student_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.DepartmentID,
		ticket.CreatorID,
		ticket.StudentID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

// Update persists mutable fields. The updated_at bump is applied by the
// statement itself, not by caller intent; the resolution-time KPI relies
// on it.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, department_id=$4, student_id=$5,
            updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.DepartmentID,
		ticket.StudentID,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
}

// Delete removes a ticket; its comments go with it via ON DELETE CASCADE.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.DepartmentID,
		&ticket.CreatorID,
		&ticket.StudentID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := buildTicketWhere(filter)
	query := fmt.Sprintf(
		`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC, id DESC`,
		ticketColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// buildTicketWhere compiles the filter into a WHERE clause. The scope
// clause comes first; an empty scope compiles to FALSE so unknown roles
// match nothing.
func buildTicketWhere(filter TicketFilter) (string, []any) {
	clauses := []string{}
	args := []any{}

	switch filter.Scope.Kind {
	case access.ScopeAll:
		clauses = append(clauses, "TRUE")
	case access.ScopeDepartment:
		args = append(args, filter.Scope.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	case access.ScopeCreator:
		args = append(args, filter.Scope.CreatorID)
		clauses = append(clauses, fmt.Sprintf("creator_id=$%d", len(args)))
	default:
		clauses = append(clauses, "FALSE")
	}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		clauses = append(clauses, fmt.Sprintf("creator_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.HelliCode != nil {
		args = append(args, *filter.HelliCode)
		clauses = append(clauses, fmt.Sprintf("student_id IN (SELECT id FROM students WHERE helli_code=$%d)", len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.DepartmentID,
			&ticket.CreatorID,
			&ticket.StudentID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
