package events

import (
	"time"

	"github.com/helli-it/support-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketReassigned    EventType = "ticket_reassigned"
	EventTicketCommented     EventType = "ticket_commented"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventStudentsImported    EventType = "students_imported"
)

// Actor identifies the user behind an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id,omitempty"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	DepartmentID string `json:"department_id"`
	StudentID    string `json:"student_id"`
	Title        string `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketReassignedPayload payload.
type TicketReassignedPayload struct {
	OldDepartmentID string `json:"old_department_id"`
	NewDepartmentID string `json:"new_department_id"`
}

// TicketCommentedPayload payload.
type TicketCommentedPayload struct {
	CommentID string `json:"comment_id"`
}

// StudentsImportedPayload payload.
type StudentsImportedPayload struct {
	BatchID string `json:"batch_id"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Failed  int    `json:"failed"`
}
