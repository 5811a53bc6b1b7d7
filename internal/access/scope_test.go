package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helli-it/support-tracker/internal/domain"
)

func TestScopeFor(t *testing.T) {
	deptA := "dept-a"

	tests := []struct {
		name  string
		actor *domain.User
		want  Scope
	}{
		{"admin sees everything", &domain.User{ID: "u1", Role: domain.RoleAdmin}, Scope{Kind: ScopeAll}},
		{"operator scoped to department", &domain.User{ID: "u2", Role: domain.RoleOperator, DepartmentID: &deptA}, Scope{Kind: ScopeDepartment, DepartmentID: deptA}},
		{"counselor scoped to own tickets", &domain.User{ID: "u3", Role: domain.RoleCounselor}, Scope{Kind: ScopeCreator, CreatorID: "u3"}},
		{"operator without department fails closed", &domain.User{ID: "u4", Role: domain.RoleOperator}, Scope{Kind: ScopeNone}},
		{"unknown role fails closed", &domain.User{ID: "u5", Role: domain.Role("INTERN")}, Scope{Kind: ScopeNone}},
		{"nil actor fails closed", nil, Scope{Kind: ScopeNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScopeFor(tt.actor))
		})
	}
}

func TestScopeAllows(t *testing.T) {
	ticket := &domain.Ticket{ID: "t1", DepartmentID: "dept-a", CreatorID: "u9"}

	assert.True(t, Scope{Kind: ScopeAll}.Allows(ticket))
	assert.True(t, Scope{Kind: ScopeDepartment, DepartmentID: "dept-a"}.Allows(ticket))
	assert.False(t, Scope{Kind: ScopeDepartment, DepartmentID: "dept-b"}.Allows(ticket))
	assert.True(t, Scope{Kind: ScopeCreator, CreatorID: "u9"}.Allows(ticket))
	assert.False(t, Scope{Kind: ScopeCreator, CreatorID: "u1"}.Allows(ticket))
	assert.False(t, Scope{Kind: ScopeNone}.Allows(ticket))
	assert.False(t, Scope{Kind: ScopeAll}.Allows(nil))
}

// TestCanViewMatrix checks the full role x ownership x department matrix:
// view access iff admin, creator, or operator of the ticket's department.
func TestCanViewMatrix(t *testing.T) {
	roles := []domain.Role{domain.RoleAdmin, domain.RoleOperator, domain.RoleCounselor, domain.Role("INTERN")}
	departments := []string{"dept-a", "dept-b"}

	for _, role := range roles {
		for _, actorDept := range departments {
			for _, ticketDept := range departments {
				for _, isCreator := range []bool{true, false} {
					actor := &domain.User{ID: "actor", Role: role}
					if role == domain.RoleOperator {
						d := actorDept
						actor.DepartmentID = &d
					}
					ticket := &domain.Ticket{ID: "t", DepartmentID: ticketDept, CreatorID: "other"}
					if isCreator {
						ticket.CreatorID = actor.ID
					}

					want := role == domain.RoleAdmin ||
						isCreator ||
						(role == domain.RoleOperator && actorDept == ticketDept)
					got := CanView(actor, ticket)
					assert.Equalf(t, want, got,
						"role=%s actorDept=%s ticketDept=%s creator=%v", role, actorDept, ticketDept, isCreator)
				}
			}
		}
	}
}

func TestPerOperationChecks(t *testing.T) {
	deptA, deptB := "dept-a", "dept-b"
	admin := &domain.User{ID: "admin", Role: domain.RoleAdmin}
	operatorA := &domain.User{ID: "op-a", Role: domain.RoleOperator, DepartmentID: &deptA}
	operatorB := &domain.User{ID: "op-b", Role: domain.RoleOperator, DepartmentID: &deptB}
	counselor := &domain.User{ID: "coun", Role: domain.RoleCounselor}

	own := &domain.Ticket{ID: "t1", DepartmentID: deptA, CreatorID: counselor.ID}
	foreign := &domain.Ticket{ID: "t2", DepartmentID: deptA, CreatorID: "someone-else"}

	// edit: admin or creator
	assert.True(t, CanEdit(admin, foreign))
	assert.True(t, CanEdit(counselor, own))
	assert.False(t, CanEdit(counselor, foreign))
	assert.False(t, CanEdit(operatorA, foreign))

	// status / comment: admin or same-department operator
	assert.True(t, CanUpdateStatus(admin, foreign))
	assert.True(t, CanUpdateStatus(operatorA, foreign))
	assert.False(t, CanUpdateStatus(operatorB, foreign))
	assert.False(t, CanUpdateStatus(counselor, own))
	assert.Equal(t, CanUpdateStatus(operatorA, own), CanComment(operatorA, own))
	assert.Equal(t, CanUpdateStatus(counselor, own), CanComment(counselor, own))

	// delete / reassign / user management: admin only
	assert.True(t, CanDelete(admin, own))
	assert.False(t, CanDelete(operatorA, own))
	assert.False(t, CanDelete(counselor, own))
	assert.True(t, CanReassign(admin, own))
	assert.False(t, CanReassign(operatorA, own))
	assert.True(t, CanManageUsers(admin))
	assert.False(t, CanManageUsers(operatorA))

	// filters and reports: admin only
	assert.True(t, CanFilter(admin))
	assert.False(t, CanFilter(operatorA))
	assert.False(t, CanFilter(counselor))
	assert.True(t, CanViewReports(admin))
	assert.False(t, CanViewReports(counselor))
}
