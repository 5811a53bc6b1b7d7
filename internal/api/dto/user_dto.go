package dto

import (
	"time"

	"github.com/helli-it/support-tracker/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the issued token and the acting user.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// CreateUserRequest payload for admin user creation.
type CreateUserRequest struct {
	Username     string      `json:"username"`
	Password     string      `json:"password"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Role         domain.Role `json:"role"`
	DepartmentID string      `json:"department_id,omitempty"`
}

// UserResponse is the public view of a staff account.
type UserResponse struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Role         domain.Role `json:"role"`
	DepartmentID *string     `json:"department_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name string `json:"name"`
}

// DepartmentResponse is the public view of a department.
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
