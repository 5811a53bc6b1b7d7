package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helli-it/support-tracker/internal/domain"
	"github.com/helli-it/support-tracker/internal/repository"
)

// In-memory repository fakes mirroring the Postgres semantics the
// services rely on: generated ids, NOW() timestamp bumps, unique
// natural keys and the listing order.

type fakeUserRepo struct {
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return repository.ErrDuplicateKey
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%03d", r.seq)
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	clone.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	all, _ := r.List(ctx)
	result := make([]domain.User, 0, len(all))
	for _, user := range all {
		if user.Role == role {
			result = append(result, user)
		}
	}
	return result, nil
}

type fakeDepartmentRepo struct {
	seq   int
	depts map[string]*domain.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{depts: map[string]*domain.Department{}}
}

func (r *fakeDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	for _, existing := range r.depts {
		if existing.Name == dept.Name {
			return repository.ErrDuplicateKey
		}
	}
	r.seq++
	dept.ID = fmt.Sprintf("dept-%03d", r.seq)
	dept.CreatedAt = time.Now().UTC()
	dept.UpdatedAt = dept.CreatedAt
	clone := *dept
	r.depts[dept.ID] = &clone
	return nil
}

func (r *fakeDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	if _, ok := r.depts[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *dept
	r.depts[dept.ID] = &clone
	return nil
}

func (r *fakeDepartmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.depts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.depts, id)
	return nil
}

func (r *fakeDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	dept, ok := r.depts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *dept
	return &clone, nil
}

func (r *fakeDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	result := make([]domain.Department, 0, len(r.depts))
	for _, dept := range r.depts {
		result = append(result, *dept)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type fakeStudentRepo struct {
	seq      int
	students map[string]*domain.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: map[string]*domain.Student{}}
}

func (r *fakeStudentRepo) violates(candidate *domain.Student) bool {
	for id, existing := range r.students {
		if id == candidate.ID {
			continue
		}
		if matchPtr(existing.HelliCode, candidate.HelliCode) ||
			matchPtr(existing.NationalID, candidate.NationalID) ||
			matchPtr(existing.StudentMobile, candidate.StudentMobile) {
			return true
		}
	}
	return false
}

func matchPtr(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

func (r *fakeStudentRepo) Create(_ context.Context, student *domain.Student) error {
	if r.violates(student) {
		return repository.ErrDuplicateKey
	}
	r.seq++
	student.ID = fmt.Sprintf("stu-%03d", r.seq)
	student.CreatedAt = time.Now().UTC()
	student.UpdatedAt = student.CreatedAt
	clone := *student
	r.students[student.ID] = &clone
	return nil
}

func (r *fakeStudentRepo) Update(_ context.Context, student *domain.Student) error {
	if _, ok := r.students[student.ID]; !ok {
		return pgx.ErrNoRows
	}
	if r.violates(student) {
		return repository.ErrDuplicateKey
	}
	clone := *student
	clone.UpdatedAt = time.Now().UTC()
	r.students[student.ID] = &clone
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id string) (*domain.Student, error) {
	student, ok := r.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *student
	return &clone, nil
}

func (r *fakeStudentRepo) findBy(match func(*domain.Student) bool) (*domain.Student, error) {
	for _, student := range r.students {
		if match(student) {
			clone := *student
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeStudentRepo) FindByHelliCode(_ context.Context, code string) (*domain.Student, error) {
	return r.findBy(func(s *domain.Student) bool { return s.HelliCode != nil && *s.HelliCode == code })
}

func (r *fakeStudentRepo) FindByNationalID(_ context.Context, nationalID string) (*domain.Student, error) {
	return r.findBy(func(s *domain.Student) bool { return s.NationalID != nil && *s.NationalID == nationalID })
}

func (r *fakeStudentRepo) FindByMobile(_ context.Context, mobile string) (*domain.Student, error) {
	return r.findBy(func(s *domain.Student) bool { return s.StudentMobile != nil && *s.StudentMobile == mobile })
}

func (r *fakeStudentRepo) List(_ context.Context) ([]domain.Student, error) {
	result := make([]domain.Student, 0, len(r.students))
	for _, student := range r.students {
		result = append(result, *student)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeTicketRepo struct {
	seq     int
	tickets map[string]*domain.Ticket
	clock   func() time.Time
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}, clock: func() time.Time { return time.Now().UTC() }}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.seq++
	ticket.ID = fmt.Sprintf("tkt-%03d", r.seq)
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = r.clock()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	// updated_at bump happens in storage, as in the SQL statement
	ticket.UpdatedAt = r.clock()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if !filter.Scope.Allows(ticket) {
			continue
		}
		if filter.DepartmentID != nil && ticket.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.CreatorID != nil && ticket.CreatorID != *filter.CreatorID {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

type fakeCommentRepo struct {
	seq      int
	comments map[string]*domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[string]*domain.Comment{}}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.seq++
	comment.ID = fmt.Sprintf("cmt-%03d", r.seq)
	comment.CreatedAt = time.Now().UTC()
	clone := *comment
	r.comments[comment.ID] = &clone
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, *comment)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// fakeTransactor runs the function against the shared fake store; the
// fakes have no rollback, tests only rely on error propagation.
type fakeTransactor struct {
	store repository.Store
}

func (t *fakeTransactor) InTx(ctx context.Context, fn func(ctx context.Context, store repository.Store) error) error {
	return fn(ctx, t.store)
}

type fixture struct {
	users    *fakeUserRepo
	depts    *fakeDepartmentRepo
	students *fakeStudentRepo
	tickets  *fakeTicketRepo
	comments *fakeCommentRepo
	store    repository.Store
	tx       repository.Transactor
}

func newFixture() *fixture {
	f := &fixture{
		users:    newFakeUserRepo(),
		depts:    newFakeDepartmentRepo(),
		students: newFakeStudentRepo(),
		tickets:  newFakeTicketRepo(),
		comments: newFakeCommentRepo(),
	}
	f.store = repository.Store{
		Users:       f.users,
		Departments: f.depts,
		Students:    f.students,
		Tickets:     f.tickets,
		Comments:    f.comments,
	}
	f.tx = &fakeTransactor{store: f.store}
	return f
}

func (f *fixture) addDepartment(name string) *domain.Department {
	dept := &domain.Department{Name: name}
	if err := f.depts.Create(context.Background(), dept); err != nil {
		panic(err)
	}
	return dept
}

func (f *fixture) addUser(username string, role domain.Role, departmentID *string) *domain.User {
	user := &domain.User{
		Username:     username,
		PasswordHash: "x",
		FirstName:    username,
		LastName:     "test",
		Role:         role,
		DepartmentID: departmentID,
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}

func (f *fixture) addTicket(dept, creator, student string, status domain.TicketStatus, createdAt time.Time) *domain.Ticket {
	ticket := &domain.Ticket{
		Title:        "ticket",
		Description:  "desc",
		Status:       status,
		DepartmentID: dept,
		CreatorID:    creator,
		StudentID:    student,
		CreatedAt:    createdAt,
	}
	if err := f.tickets.Create(context.Background(), ticket); err != nil {
		panic(err)
	}
	if status != domain.TicketStatusNew {
		stored := f.tickets.tickets[ticket.ID]
		stored.Status = status
	}
	return ticket
}
