package domain

import "time"

// Department is an organizational unit tickets are routed to.
type Department struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
