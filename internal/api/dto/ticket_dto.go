package dto

import (
	"time"

	"github.com/helli-it/support-tracker/internal/domain"
)

// CreateTicketRequest payload. The student block is resolved against the
// registry before the ticket is stored.
type CreateTicketRequest struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	DepartmentID string         `json:"department_id"`
	StudentID    string         `json:"student_id,omitempty"`
	Student      StudentRequest `json:"student"`
}

// EditTicketRequest payload.
type EditTicketRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	DepartmentID string `json:"department_id,omitempty"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ReassignRequest payload.
type ReassignRequest struct {
	DepartmentID string `json:"department_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// TicketSummary is the listing row.
type TicketSummary struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Status        domain.TicketStatus `json:"status"`
	StatusLabel   string              `json:"status_label"`
	DepartmentID  string              `json:"department_id"`
	CreatorID     string              `json:"creator_id"`
	StudentID     string              `json:"student_id"`
	CreatedAt     time.Time           `json:"created_at"`
	CreatedShamsi string              `json:"created_shamsi"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info with its comments.
type TicketDetailResponse struct {
	TicketSummary
	Description string            `json:"description"`
	Comments    []CommentResponse `json:"comments"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
