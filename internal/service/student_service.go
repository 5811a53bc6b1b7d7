package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helli-it/support-tracker/internal/access"
	"github.com/helli-it/support-tracker/internal/domain"
	"github.com/helli-it/support-tracker/internal/events"
	"github.com/helli-it/support-tracker/internal/repository"
	apperrors "github.com/helli-it/support-tracker/pkg/util"
)

// StudentInput carries candidate identifiers and demographic fields for
// resolution. Empty natural keys are treated as absent.
type StudentInput struct {
	HelliCode       string
	NationalID      string
	StudentMobile   string
	FirstName       string
	LastName        string
	Gender          string
	Grade           string
	Province        string
	ParentMobile    string
	EmergencyMobile string
}

// ImportResult reports the outcome of a bulk CSV import.
type ImportResult struct {
	BatchID string
	Created int
	Updated int
	Failed  int
}

// StudentService manages student identities and bulk import/export.
type StudentService struct {
	store      repository.Store
	tx         repository.Transactor
	dispatcher events.Dispatcher
}

// NewStudentService constructs the service.
func NewStudentService(store repository.Store, tx repository.Transactor, dispatcher events.Dispatcher) *StudentService {
	return &StudentService{store: store, tx: tx, dispatcher: dispatcher}
}

// resolveStudent finds-or-creates a student by the fixed resolution
// order: internal id, then helli code, then national id, then mobile,
// then create. A match overwrites the mutable demographic fields
// (intentional upsert). A duplicate-key conflict is retried as
// attach-to-existing, so two concurrent resolutions of the same new key
// converge on one row. The repository reports conflicts as
// ErrDuplicateKey without aborting the surrounding transaction, which
// is what keeps the retry lookups valid mid-transaction.
func resolveStudent(ctx context.Context, students repository.StudentRepository, candidateID string, input StudentInput) (*domain.Student, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		student, err := lookupStudent(ctx, students, candidateID, input)
		if err != nil {
			return nil, false, err
		}

		if student != nil {
			applyStudentFields(student, input)
			if err := students.Update(ctx, student); err != nil {
				if errors.Is(err, repository.ErrDuplicateKey) {
					// another row owns one of the incoming keys; keep the
					// matched row's keys and overwrite demographics only
					fresh, lookupErr := students.GetByID(ctx, student.ID)
					if lookupErr != nil {
						return nil, false, lookupErr
					}
					applyDemographics(fresh, input)
					if updateErr := students.Update(ctx, fresh); updateErr != nil {
						return nil, false, updateErr
					}
					return fresh, false, nil
				}
				return nil, false, err
			}
			return student, false, nil
		}

		created := &domain.Student{}
		applyStudentFields(created, input)
		err = students.Create(ctx, created)
		if err == nil {
			return created, true, nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return nil, false, err
		}
		// lost the read-then-create race; re-resolve to the winning row
	}
	return nil, false, apperrors.NewConflict("student natural key conflict", nil)
}

func lookupStudent(ctx context.Context, students repository.StudentRepository, candidateID string, input StudentInput) (*domain.Student, error) {
	if candidateID != "" {
		student, err := students.GetByID(ctx, candidateID)
		if err == nil {
			return student, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	if input.HelliCode != "" {
		student, err := students.FindByHelliCode(ctx, input.HelliCode)
		if err == nil {
			return student, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	if input.NationalID != "" {
		student, err := students.FindByNationalID(ctx, input.NationalID)
		if err == nil {
			return student, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	if input.StudentMobile != "" {
		student, err := students.FindByMobile(ctx, input.StudentMobile)
		if err == nil {
			return student, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	return nil, nil
}

// applyStudentFields overwrites demographics and fills natural keys the
// record does not have yet. Existing keys are never replaced.
func applyStudentFields(student *domain.Student, input StudentInput) {
	applyDemographics(student, input)
	if student.HelliCode == nil && input.HelliCode != "" {
		code := input.HelliCode
		student.HelliCode = &code
	}
	if student.NationalID == nil && input.NationalID != "" {
		nid := input.NationalID
		student.NationalID = &nid
	}
	if student.StudentMobile == nil && input.StudentMobile != "" {
		mobile := input.StudentMobile
		student.StudentMobile = &mobile
	}
}

func applyDemographics(student *domain.Student, input StudentInput) {
	student.FirstName = input.FirstName
	student.LastName = input.LastName
	student.Gender = input.Gender
	student.Grade = input.Grade
	student.Province = input.Province
	student.ParentMobile = input.ParentMobile
	student.EmergencyMobile = input.EmergencyMobile
}

// ResolveOrCreate exposes single-student resolution for admin tooling.
func (s *StudentService) ResolveOrCreate(ctx context.Context, actor *domain.User, candidateID string, input StudentInput) (*domain.Student, error) {
	if !access.CanManageUsers(actor) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, apperrors.NewFieldValidationError("first_name", "student name required")
	}
	var resolved *domain.Student
	err := s.tx.InTx(ctx, func(ctx context.Context, store repository.Store) error {
		student, _, err := resolveStudent(ctx, store.Students, candidateID, input)
		if err != nil {
			return err
		}
		resolved = student
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// importColumns is the fixed CSV schema; only the name columns are
// required per row.
var importColumns = []string{
	"helli_code", "national_id", "first_name", "last_name", "gender",
	"grade", "province", "student_mobile", "parent_mobile", "emergency_mobile",
}

// ImportCSV bulk-loads students. Each row runs through the same
// resolution order as ticket creation. Malformed rows are skipped and
// counted; only unrecoverable storage errors roll the batch back.
func (s *StudentService) ImportCSV(ctx context.Context, actor *domain.User, r io.Reader) (*ImportResult, error) {
	if !access.CanManageUsers(actor) {
		return nil, apperrors.NewForbidden("admin role required")
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewValidationError("empty or unreadable CSV", nil)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := columns["first_name"]; !ok {
		return nil, apperrors.NewFieldValidationError("first_name", "missing required column")
	}
	if _, ok := columns["last_name"]; !ok {
		return nil, apperrors.NewFieldValidationError("last_name", "missing required column")
	}

	result := &ImportResult{BatchID: uuid.NewString()}
	err = s.tx.InTx(ctx, func(ctx context.Context, store repository.Store) error {
		for {
			record, readErr := reader.Read()
			if readErr == io.EOF {
				return nil
			}
			if readErr != nil {
				result.Failed++
				continue
			}

			input := rowToInput(record, columns)
			if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
				result.Failed++
				continue
			}

			_, created, resolveErr := resolveStudent(ctx, store.Students, "", input)
			if resolveErr != nil {
				return resolveErr
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.Event{
		Type: events.EventStudentsImported,
		Payload: events.StudentsImportedPayload{
			BatchID: result.BatchID,
			Created: result.Created,
			Updated: result.Updated,
			Failed:  result.Failed,
		},
	})
	return result, nil
}

// ExportCSV writes the full student table in the import schema.
func (s *StudentService) ExportCSV(ctx context.Context, actor *domain.User, w io.Writer) error {
	if !access.CanManageUsers(actor) {
		return apperrors.NewForbidden("admin role required")
	}

	students, err := s.store.Students.List(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(importColumns); err != nil {
		return err
	}
	for i := range students {
		student := &students[i]
		row := []string{
			deref(student.HelliCode),
			deref(student.NationalID),
			student.FirstName,
			student.LastName,
			student.Gender,
			student.Grade,
			student.Province,
			deref(student.StudentMobile),
			student.ParentMobile,
			student.EmergencyMobile,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func rowToInput(record []string, columns map[string]int) StudentInput {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	return StudentInput{
		HelliCode:       field("helli_code"),
		NationalID:      field("national_id"),
		StudentMobile:   field("student_mobile"),
		FirstName:       field("first_name"),
		LastName:        field("last_name"),
		Gender:          field("gender"),
		Grade:           field("grade"),
		Province:        field("province"),
		ParentMobile:    field("parent_mobile"),
		EmergencyMobile: field("emergency_mobile"),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *StudentService) publish(ctx context.Context, actor *domain.User, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if actor != nil {
		event.Actor = events.Actor{UserID: actor.ID, Role: actor.Role}
	}
	_ = s.dispatcher.Publish(ctx, event)
}
