package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The lifecycle is
// ordered but transitions are not enforced; any authorized actor may set
// any status.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Valid reports whether the status is one of the defined values.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

var statusLabels = map[TicketStatus]string{
	TicketStatusNew:        "جدید",
	TicketStatusInProgress: "در حال بررسی",
	TicketStatusClosed:     "بسته شده",
}

// Label returns the localized display label. Unknown values pass
// through unchanged.
func (s TicketStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Ticket is the aggregate for support requests. Every ticket references
// exactly one department, one creator and one student. Timestamps are
// stored in UTC.
type Ticket struct {
	ID           string
	Title        string
	Description  string
	Status       TicketStatus
	DepartmentID string
	CreatorID    string
	StudentID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
