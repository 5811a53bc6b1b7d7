package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/helli-it/support-tracker/internal/domain"
)

// ErrDuplicateKey signals a unique-constraint violation on one of the
// student natural keys. The resolver catches it and re-resolves to the
// existing row instead of surfacing it to the caller.
var ErrDuplicateKey = errors.New("duplicate natural key")

// IsUniqueViolation reports whether err is a Postgres unique violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, ErrDuplicateKey)
}

// StudentRepository defines persistence access for student identities.
type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	Update(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id string) (*domain.Student, error)
	FindByHelliCode(ctx context.Context, code string) (*domain.Student, error)
	FindByNationalID(ctx context.Context, nationalID string) (*domain.Student, error)
	FindByMobile(ctx context.Context, mobile string) (*domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
}

type studentRepository struct {
	db Querier
}

// NewStudentRepository returns a Postgres-backed implementation.
func NewStudentRepository(db Querier) StudentRepository {
	return &studentRepository{db: db}
}

const studentColumns = `id, helli_code, national_id, student_mobile, first_name, last_name,
               gender, grade, province, parent_mobile, emergency_mobile, created_at, updated_at`

// Create inserts a student. A natural-key conflict is absorbed by
// ON CONFLICT DO NOTHING, so the caller gets ErrDuplicateKey while the
// surrounding transaction stays usable for the re-resolution lookup.
func (r *studentRepository) Create(ctx context.Context, student *domain.Student) error {
	const query = `
        INSERT INTO students (helli_code, national_id, student_mobile, first_name, last_name,
            gender, grade, province, parent_mobile, emergency_mobile)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT DO NOTHING
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		student.HelliCode,
		student.NationalID,
		student.StudentMobile,
		student.FirstName,
		student.LastName,
		student.Gender,
		student.Grade,
		student.Province,
		student.ParentMobile,
		student.EmergencyMobile,
	).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || IsUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

// Update runs inside a nested transaction (SAVEPOINT when already in a
// transaction) so a unique violation on a filled-in natural key rolls
// back to the savepoint instead of aborting the outer transaction.
func (r *studentRepository) Update(ctx context.Context, student *domain.Student) error {
	sp, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer sp.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE students SET helli_code=$1, national_id=$2, student_mobile=$3, first_name=$4,
            last_name=$5, gender=$6, grade=$7, province=$8, parent_mobile=$9,
            emergency_mobile=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := sp.Exec(ctx, query,
		student.HelliCode,
		student.NationalID,
		student.StudentMobile,
		student.FirstName,
		student.LastName,
		student.Gender,
		student.Grade,
		student.Province,
		student.ParentMobile,
		student.EmergencyMobile,
		student.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return sp.Commit(ctx)
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	return r.fetchSingle(ctx, `SELECT `+studentColumns+` FROM students WHERE id=$1`, id)
}

func (r *studentRepository) FindByHelliCode(ctx context.Context, code string) (*domain.Student, error) {
	return r.fetchSingle(ctx, `SELECT `+studentColumns+` FROM students WHERE helli_code=$1`, code)
}

func (r *studentRepository) FindByNationalID(ctx context.Context, nationalID string) (*domain.Student, error) {
	return r.fetchSingle(ctx, `SELECT `+studentColumns+` FROM students WHERE national_id=$1`, nationalID)
}

func (r *studentRepository) FindByMobile(ctx context.Context, mobile string) (*domain.Student, error) {
	return r.fetchSingle(ctx, `SELECT `+studentColumns+` FROM students WHERE student_mobile=$1`, mobile)
}

func (r *studentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Student, error) {
	var student domain.Student
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&student.ID,
		&student.HelliCode,
		&student.NationalID,
		&student.StudentMobile,
		&student.FirstName,
		&student.LastName,
		&student.Gender,
		&student.Grade,
		&student.Province,
		&student.ParentMobile,
		&student.EmergencyMobile,
		&student.CreatedAt,
		&student.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) List(ctx context.Context) ([]domain.Student, error) {
	rows, err := r.db.Query(ctx, `SELECT `+studentColumns+` FROM students ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Student
	for rows.Next() {
		var student domain.Student
		if err := rows.Scan(
			&student.ID,
			&student.HelliCode,
			&student.NationalID,
			&student.StudentMobile,
			&student.FirstName,
			&student.LastName,
			&student.Gender,
			&student.Grade,
			&student.Province,
			&student.ParentMobile,
			&student.EmergencyMobile,
			&student.CreatedAt,
			&student.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, student)
	}
	return result, rows.Err()
}
