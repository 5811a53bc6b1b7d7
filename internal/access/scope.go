package access

import "github.com/helli-it/support-tracker/internal/domain"

// ScopeKind selects the baseline ticket visibility of an actor.
type ScopeKind int

const (
	// ScopeNone matches no tickets. Unrecognized roles fail closed.
	ScopeNone ScopeKind = iota
	// ScopeAll matches every ticket (admins).
	ScopeAll
	// ScopeDepartment matches tickets of one department (operators).
	ScopeDepartment
	// ScopeCreator matches tickets created by one user (counselors).
	ScopeCreator
)

// Scope is an actor's baseline visibility predicate over tickets,
// evaluated before any optional listing filters.
type Scope struct {
	Kind         ScopeKind
	DepartmentID string
	CreatorID    string
}

// ScopeFor computes the visibility scope for an actor. An operator
// without a department, or an actor with an unknown role, gets the
// empty scope.
func ScopeFor(actor *domain.User) Scope {
	if actor == nil {
		return Scope{Kind: ScopeNone}
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return Scope{Kind: ScopeAll}
	case domain.RoleOperator:
		if actor.DepartmentID == nil {
			return Scope{Kind: ScopeNone}
		}
		return Scope{Kind: ScopeDepartment, DepartmentID: *actor.DepartmentID}
	case domain.RoleCounselor:
		return Scope{Kind: ScopeCreator, CreatorID: actor.ID}
	}
	return Scope{Kind: ScopeNone}
}

// Allows reports whether the ticket falls inside the scope.
func (s Scope) Allows(ticket *domain.Ticket) bool {
	if ticket == nil {
		return false
	}
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeDepartment:
		return ticket.DepartmentID == s.DepartmentID
	case ScopeCreator:
		return ticket.CreatorID == s.CreatorID
	}
	return false
}

// CanView reports whether the actor may read the ticket: admin, the
// creator, or an operator of the ticket's department.
func CanView(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	if actor.Role == domain.RoleAdmin {
		return true
	}
	if ticket.CreatorID == actor.ID {
		return true
	}
	return isDepartmentOperator(actor, ticket)
}

// CanEdit covers title/description/department/student field edits:
// admin or the creator.
func CanEdit(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	return actor.Role == domain.RoleAdmin || ticket.CreatorID == actor.ID
}

// CanUpdateStatus covers status changes: admin or an operator of the
// ticket's department.
func CanUpdateStatus(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || ticket == nil {
		return false
	}
	return actor.Role == domain.RoleAdmin || isDepartmentOperator(actor, ticket)
}

// CanComment follows the same rule as status updates.
func CanComment(actor *domain.User, ticket *domain.Ticket) bool {
	return CanUpdateStatus(actor, ticket)
}

// CanDelete covers physical ticket deletion: admin only.
func CanDelete(actor *domain.User, ticket *domain.Ticket) bool {
	return actor != nil && ticket != nil && actor.Role == domain.RoleAdmin
}

// CanReassign covers moving a ticket between departments: admin only.
func CanReassign(actor *domain.User, ticket *domain.Ticket) bool {
	return CanDelete(actor, ticket)
}

// CanManageUsers covers user and department administration.
func CanManageUsers(actor *domain.User) bool {
	return actor != nil && actor.Role == domain.RoleAdmin
}

// CanFilter reports whether the actor's listing accepts user-supplied
// filter criteria. Non-admin result sets are pre-scoped and ignore
// query filters.
func CanFilter(actor *domain.User) bool {
	return actor != nil && actor.Role == domain.RoleAdmin
}

// CanViewReports covers the reporting dashboard and exports.
func CanViewReports(actor *domain.User) bool {
	return actor != nil && actor.Role == domain.RoleAdmin
}

func isDepartmentOperator(actor *domain.User, ticket *domain.Ticket) bool {
	return actor.Role == domain.RoleOperator &&
		actor.DepartmentID != nil &&
		*actor.DepartmentID == ticket.DepartmentID
}
