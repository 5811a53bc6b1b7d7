package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helli-it/support-tracker/internal/domain"
)

type stubRow struct {
	err error
}

func (r stubRow) Scan(dest ...any) error { return r.err }

// stubQuerier records the statements it receives and hands out a
// scripted row and nested transaction.
type stubQuerier struct {
	lastSQL string
	row     pgx.Row
	tx      *stubTx
}

func (q *stubQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	q.lastSQL = sql
	return pgconn.CommandTag{}, nil
}

func (q *stubQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.lastSQL = sql
	return nil, errors.New("not scripted")
}

func (q *stubQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	q.lastSQL = sql
	return q.row
}

func (q *stubQuerier) Begin(_ context.Context) (pgx.Tx, error) {
	if q.tx == nil {
		return nil, errors.New("not scripted")
	}
	return q.tx, nil
}

// stubTx is the nested-transaction double; only Exec, Commit and
// Rollback carry behavior.
type stubTx struct {
	execTag    pgconn.CommandTag
	execErr    error
	committed  bool
	rolledBack bool
}

func (t *stubTx) Begin(context.Context) (pgx.Tx, error) { return nil, errors.New("not scripted") }
func (t *stubTx) Commit(context.Context) error          { t.committed = true; return nil }
func (t *stubTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}
func (t *stubTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not scripted")
}
func (t *stubTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *stubTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *stubTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not scripted")
}
func (t *stubTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return t.execTag, t.execErr
}
func (t *stubTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not scripted")
}
func (t *stubTx) QueryRow(context.Context, string, ...any) pgx.Row { return stubRow{err: pgx.ErrNoRows} }
func (t *stubTx) Conn() *pgx.Conn                                  { return nil }

// A concurrent insert of the same natural key must surface as
// ErrDuplicateKey without erroring the statement, so the surrounding
// transaction stays usable for the attach-to-existing lookup. The
// insert does that via ON CONFLICT DO NOTHING: the conflicting row
// simply yields no RETURNING row.
func TestStudentCreateConflictKeepsTransactionUsable(t *testing.T) {
	db := &stubQuerier{row: stubRow{err: pgx.ErrNoRows}}
	repo := NewStudentRepository(db)

	err := repo.Create(context.Background(), &domain.Student{FirstName: "a", LastName: "b"})
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, db.lastSQL, "ON CONFLICT DO NOTHING")
}

func TestStudentUpdateDuplicateKeyRollsBackSavepoint(t *testing.T) {
	tx := &stubTx{execErr: &pgconn.PgError{Code: "23505"}}
	repo := NewStudentRepository(&stubQuerier{tx: tx})

	err := repo.Update(context.Background(), &domain.Student{ID: "stu-1"})
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, tx.rolledBack, "the nested transaction must roll back to its savepoint")
	assert.False(t, tx.committed)
}

func TestStudentUpdateCommitsSavepoint(t *testing.T) {
	tx := &stubTx{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repo := NewStudentRepository(&stubQuerier{tx: tx})

	require.NoError(t, repo.Update(context.Background(), &domain.Student{ID: "stu-1"}))
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestStudentUpdateMissingRow(t *testing.T) {
	tx := &stubTx{execTag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewStudentRepository(&stubQuerier{tx: tx})

	err := repo.Update(context.Background(), &domain.Student{ID: "stu-gone"})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
