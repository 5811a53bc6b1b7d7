package domain

import "time"

// Comment is a message on a ticket thread. Comments are cascade-deleted
// with their ticket.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}
