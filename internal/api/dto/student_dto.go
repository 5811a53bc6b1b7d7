package dto

import "time"

// StudentRequest carries student identification and demographics as
// submitted with a ticket or through the admin registry.
type StudentRequest struct {
	HelliCode       string `json:"helli_code,omitempty"`
	NationalID      string `json:"national_id,omitempty"`
	StudentMobile   string `json:"student_mobile,omitempty"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Gender          string `json:"gender,omitempty"`
	Grade           string `json:"grade,omitempty"`
	Province        string `json:"province,omitempty"`
	ParentMobile    string `json:"parent_mobile,omitempty"`
	EmergencyMobile string `json:"emergency_mobile,omitempty"`
}

// StudentResponse is the registry view of one student.
type StudentResponse struct {
	ID              string    `json:"id"`
	HelliCode       string    `json:"helli_code,omitempty"`
	NationalID      string    `json:"national_id,omitempty"`
	StudentMobile   string    `json:"student_mobile,omitempty"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Gender          string    `json:"gender,omitempty"`
	Grade           string    `json:"grade,omitempty"`
	Province        string    `json:"province,omitempty"`
	ParentMobile    string    `json:"parent_mobile,omitempty"`
	EmergencyMobile string    `json:"emergency_mobile,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ImportResponse reports the outcome of a bulk CSV import.
type ImportResponse struct {
	BatchID string `json:"batch_id"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Failed  int    `json:"failed"`
}
