package service

import (
	"context"
	"strings"

	"github.com/helli-it/support-tracker/internal/access"
	"github.com/helli-it/support-tracker/internal/auth"
	"github.com/helli-it/support-tracker/internal/domain"
	"github.com/helli-it/support-tracker/internal/repository"
	apperrors "github.com/helli-it/support-tracker/pkg/util"
)

// UserService covers admin-only user and department management.
type UserService struct {
	store      repository.Store
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(store repository.Store, bcryptCost int) *UserService {
	return &UserService{store: store, bcryptCost: bcryptCost}
}

// UserCreateInput describes a new staff account.
type UserCreateInput struct {
	Username     string
	Password     string
	FirstName    string
	LastName     string
	Role         domain.Role
	DepartmentID string
}

// CreateUser creates a staff account. The department is required for
// operators and rejected for every other role.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.User, input UserCreateInput) (*domain.User, error) {
	if !access.CanManageUsers(actor) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if strings.TrimSpace(input.Username) == "" {
		return nil, apperrors.NewFieldValidationError("username", "username required")
	}
	if input.Password == "" {
		return nil, apperrors.NewFieldValidationError("password", "password required")
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewFieldValidationError("role", "unrecognized role")
	}

	var departmentID *string
	switch input.Role {
	case domain.RoleOperator:
		if input.DepartmentID == "" {
			return nil, apperrors.NewFieldValidationError("department", "operators require a department")
		}
		if _, err := s.store.Departments.GetByID(ctx, input.DepartmentID); err != nil {
			if apperrors.IsNotFound(err) {
				return nil, apperrors.NewNotFound("department")
			}
			return nil, err
		}
		dept := input.DepartmentID
		departmentID = &dept
	default:
		if input.DepartmentID != "" {
			return nil, apperrors.NewFieldValidationError("department", "only operators carry a department")
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         input.Role,
		DepartmentID: departmentID,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("username already taken", map[string]any{"field": "username"})
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user; their tickets and comments cascade.
func (s *UserService) DeleteUser(ctx context.Context, actor *domain.User, userID string) error {
	if !access.CanManageUsers(actor) {
		return apperrors.NewForbidden("admin role required")
	}
	if actor.ID == userID {
		return apperrors.NewValidationError("cannot delete own account", nil)
	}
	return s.store.Users.Delete(ctx, userID)
}

// ListUsers returns all staff accounts.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if !access.CanManageUsers(actor) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	return s.store.Users.List(ctx)
}

// CreateDepartment adds a department.
func (s *UserService) CreateDepartment(ctx context.Context, actor *domain.User, name string) (*domain.Department, error) {
	if !access.CanManageUsers(actor) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewFieldValidationError("name", "name required")
	}
	dept := &domain.Department{Name: strings.TrimSpace(name)}
	if err := s.store.Departments.Create(ctx, dept); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("department name already taken", map[string]any{"field": "name"})
		}
		return nil, err
	}
	return dept, nil
}

// ListDepartments is available to every authenticated actor; the ticket
// form needs it.
func (s *UserService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return s.store.Departments.List(ctx)
}
