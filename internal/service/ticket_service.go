package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/helli-it/support-tracker/internal/access"
	"github.com/helli-it/support-tracker/internal/domain"
	"github.com/helli-it/support-tracker/internal/events"
	"github.com/helli-it/support-tracker/internal/jalali"
	"github.com/helli-it/support-tracker/internal/repository"
	apperrors "github.com/helli-it/support-tracker/pkg/util"
)

// TicketService coordinates the ticket lifecycle. Every operation
// evaluates its authorization predicate before touching storage;
// failures surface as forbidden with no observable effect.
type TicketService struct {
	store      repository.Store
	tx         repository.Transactor
	dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(store repository.Store, tx repository.Transactor, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{store: store, tx: tx, dispatcher: dispatcher}
}

// TicketCreateInput describes the ticket creation payload. StudentID is
// the optional candidate internal id for resolution.
type TicketCreateInput struct {
	Title        string
	Description  string
	DepartmentID string
	StudentID    string
	Student      StudentInput
}

// TicketEditInput carries the fields an admin or the creator may edit.
type TicketEditInput struct {
	Title        string
	Description  string
	DepartmentID string
}

// TicketListQuery carries raw optional filter criteria as received from
// the transport layer. Only admins get these applied; other roles'
// listings are pre-scoped and the criteria are ignored.
type TicketListQuery struct {
	DepartmentID string
	CreatorID    string
	Status       string
	StartDate    string
	EndDate      string
	HelliCode    string
}

// Create resolves the student and creates the ticket in one
// transaction; if either step fails neither is persisted.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if actor == nil || !actor.Role.Valid() {
		return nil, apperrors.NewForbidden("authenticated staff required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewFieldValidationError("title", "title required")
	}
	if input.DepartmentID == "" {
		return nil, apperrors.NewFieldValidationError("department", "department required")
	}
	if strings.TrimSpace(input.Student.FirstName) == "" || strings.TrimSpace(input.Student.LastName) == "" {
		return nil, apperrors.NewFieldValidationError("student", "student name required")
	}
	// operators may only open tickets inside their own department
	if actor.Role == domain.RoleOperator &&
		(actor.DepartmentID == nil || *actor.DepartmentID != input.DepartmentID) {
		return nil, apperrors.NewForbidden("operators create tickets in their own department only")
	}

	if _, err := s.store.Departments.GetByID(ctx, input.DepartmentID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("department")
		}
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.TicketStatusNew,
		DepartmentID: input.DepartmentID,
		CreatorID:    actor.ID,
	}
	err := s.tx.InTx(ctx, func(ctx context.Context, store repository.Store) error {
		student, _, err := resolveStudent(ctx, store.Students, input.StudentID, input.Student)
		if err != nil {
			return err
		}
		ticket.StudentID = student.ID
		return store.Tickets.Create(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			DepartmentID: ticket.DepartmentID,
			StudentID:    ticket.StudentID,
			Title:        ticket.Title,
		},
	})
	return ticket, nil
}

// List returns the actor's visible tickets, newest first. Admin criteria
// narrow the scope; malformed dates are rejected rather than ignored.
func (s *TicketService) List(ctx context.Context, actor *domain.User, query TicketListQuery) ([]domain.Ticket, error) {
	filter, err := s.buildFilter(actor, query)
	if err != nil {
		return nil, err
	}
	return s.store.Tickets.ListWithFilter(ctx, filter)
}

func (s *TicketService) buildFilter(actor *domain.User, query TicketListQuery) (repository.TicketFilter, error) {
	filter := repository.TicketFilter{Scope: access.ScopeFor(actor)}
	if !access.CanFilter(actor) {
		return filter, nil
	}

	if query.DepartmentID != "" {
		dept := query.DepartmentID
		filter.DepartmentID = &dept
	}
	if query.CreatorID != "" {
		creator := query.CreatorID
		filter.CreatorID = &creator
	}
	if query.Status != "" {
		status := domain.TicketStatus(query.Status)
		if !status.Valid() {
			return filter, apperrors.NewFieldValidationError("status", "unrecognized status value")
		}
		filter.Status = &status
	}
	if query.StartDate != "" {
		from, err := jalali.ParseDate(query.StartDate)
		if err != nil {
			return filter, apperrors.NewFieldValidationError("start_date", err.Error())
		}
		filter.CreatedFrom = &from
	}
	if query.EndDate != "" {
		to, err := jalali.ParseEndOfDay(query.EndDate)
		if err != nil {
			return filter, apperrors.NewFieldValidationError("end_date", err.Error())
		}
		filter.CreatedTo = &to
	}
	if query.HelliCode != "" {
		code := query.HelliCode
		filter.HelliCode = &code
	}
	return filter, nil
}

// Get fetches a ticket with its comments, enforcing view access.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.store.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanView(actor, ticket) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	comments, err := s.store.Comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, comments, nil
}

// Edit updates title, description and department.
func (s *TicketService) Edit(ctx context.Context, actor *domain.User, ticketID string, input TicketEditInput) (*domain.Ticket, error) {
	ticket, err := s.store.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanEdit(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewFieldValidationError("title", "title required")
	}
	if input.DepartmentID != "" && input.DepartmentID != ticket.DepartmentID {
		if _, err := s.store.Departments.GetByID(ctx, input.DepartmentID); err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.NewNotFound("department")
			}
			return nil, err
		}
		ticket.DepartmentID = input.DepartmentID
	}
	ticket.Title = strings.TrimSpace(input.Title)
	ticket.Description = strings.TrimSpace(input.Description)
	if err := s.store.Tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.Event{Type: events.EventTicketUpdated, TicketID: ticket.ID})
	return ticket, nil
}

// UpdateStatus sets any defined status value; the lifecycle carries no
// enforced transition graph.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewFieldValidationError("status", "unrecognized status value")
	}
	ticket, err := s.store.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanUpdateStatus(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if err := s.store.Tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// Reassign moves the ticket to another department. Admin only.
func (s *TicketService) Reassign(ctx context.Context, actor *domain.User, ticketID, departmentID string) (*domain.Ticket, error) {
	ticket, err := s.store.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanReassign(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if _, err := s.store.Departments.GetByID(ctx, departmentID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("department")
		}
		return nil, err
	}

	oldDepartment := ticket.DepartmentID
	ticket.DepartmentID = departmentID
	if err := s.store.Tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketReassigned,
		TicketID: ticket.ID,
		Payload: events.TicketReassignedPayload{
			OldDepartmentID: oldDepartment,
			NewDepartmentID: departmentID,
		},
	})
	return ticket, nil
}

// AddComment appends a comment. The authorization rule matches status
// updates: admin or an operator of the ticket's department.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewFieldValidationError("content", "content required")
	}
	ticket, err := s.store.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanComment(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Content:  strings.TrimSpace(content),
	}
	if err := s.store.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketCommented,
		TicketID: ticket.ID,
		Payload:  events.TicketCommentedPayload{CommentID: comment.ID},
	})
	return comment, nil
}

// Delete physically removes a ticket and its comments. Admin only.
func (s *TicketService) Delete(ctx context.Context, actor *domain.User, ticketID string) error {
	ticket, err := s.store.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if !access.CanDelete(actor, ticket) {
		return apperrors.NewForbidden("access denied")
	}
	if err := s.store.Tickets.Delete(ctx, ticket.ID); err != nil {
		return err
	}
	s.publish(ctx, actor, events.Event{Type: events.EventTicketDeleted, TicketID: ticket.ID})
	return nil
}

// ExportRow is one line of the admin spreadsheet export.
type ExportRow struct {
	ID            string
	Title         string
	HelliCode     string
	Description   string
	StatusLabel   string
	Department    string
	CreatorName   string
	CreatedShamsi string
}

// ExportHeader lists the localized column titles, in row order.
var ExportHeader = []string{
	"شناسه", "عنوان", "حلی کد", "شرح مشکل", "وضعیت", "بخش", "ایجاد کننده", "تاریخ ایجاد (شمسی)",
}

// Export produces the spreadsheet rows through the same filter path as
// the listing. Admin only.
func (s *TicketService) Export(ctx context.Context, actor *domain.User, query TicketListQuery) ([]ExportRow, error) {
	if !access.CanViewReports(actor) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	filter, err := s.buildFilter(actor, query)
	if err != nil {
		return nil, err
	}
	tickets, err := s.store.Tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	departments, err := s.store.Departments.List(ctx)
	if err != nil {
		return nil, err
	}
	deptNames := make(map[string]string, len(departments))
	for _, dept := range departments {
		deptNames[dept.ID] = dept.Name
	}

	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	userNames := make(map[string]string, len(users))
	for i := range users {
		userNames[users[i].ID] = users[i].FullName()
	}

	students, err := s.store.Students.List(ctx)
	if err != nil {
		return nil, err
	}
	helliCodes := make(map[string]string, len(students))
	for i := range students {
		helliCodes[students[i].ID] = deref(students[i].HelliCode)
	}

	rows := make([]ExportRow, 0, len(tickets))
	for i := range tickets {
		ticket := &tickets[i]
		rows = append(rows, ExportRow{
			ID:            ticket.ID,
			Title:         ticket.Title,
			HelliCode:     helliCodes[ticket.StudentID],
			Description:   ticket.Description,
			StatusLabel:   ticket.Status.Label(),
			Department:    deptNames[ticket.DepartmentID],
			CreatorName:   userNames[ticket.CreatorID],
			CreatedShamsi: jalali.FormatDateTime(ticket.CreatedAt),
		})
	}
	return rows, nil
}

func (s *TicketService) publish(ctx context.Context, actor *domain.User, event events.Event) {
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
