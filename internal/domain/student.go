package domain

import "time"

// Student is a deduplicated student identity. The three natural keys
// (helli code, national id, student mobile) are each optional but
// globally unique when present; resolution attaches tickets to an
// existing row instead of creating duplicates.
type Student struct {
	ID              string
	HelliCode       *string
	NationalID      *string
	StudentMobile   *string
	FirstName       string
	LastName        string
	Gender          string
	Grade           string
	Province        string
	ParentMobile    string
	EmergencyMobile string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FullName joins the display name parts.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
