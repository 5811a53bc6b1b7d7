package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx operations repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so the same repository code runs
// inside and outside transactions. Begin on a transaction-bound Querier
// opens a nested transaction (SAVEPOINT), which lets a repository absorb
// a failed statement without poisoning the surrounding transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store bundles the repositories over one Querier.
type Store struct {
	Users       UserRepository
	Departments DepartmentRepository
	Students    StudentRepository
	Tickets     TicketRepository
	Comments    CommentRepository
}

// NewStore builds repositories bound to db.
func NewStore(db Querier) Store {
	return Store{
		Users:       NewUserRepository(db),
		Departments: NewDepartmentRepository(db),
		Students:    NewStudentRepository(db),
		Tickets:     NewTicketRepository(db),
		Comments:    NewCommentRepository(db),
	}
}

// Transactor runs a function against a transaction-bound Store, committing
// on success and rolling back on any error. Multi-step writes such as
// student resolution plus ticket creation go through it so they persist
// all-or-nothing.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

type pgxTransactor struct {
	pool *pgxpool.Pool
}

// NewTransactor wraps a pgx pool.
func NewTransactor(pool *pgxpool.Pool) Transactor {
	return &pgxTransactor{pool: pool}
}

func (t *pgxTransactor) InTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, NewStore(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
