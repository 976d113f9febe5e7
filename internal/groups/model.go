// Package groups implements CRUD for the Group entity, its subgroup
// edges (with cycle rejection), and user membership, including an
// upward-traversal cycle check over the subgroup hierarchy table.
package groups

// Group is a named collection of users and/or subgroups.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// CreateRequest is the explicit request struct for creating a group.
type CreateRequest struct {
	Name string `validate:"required,min=1,max=120"`
}

// UpdateRequest carries only the fields being changed.
type UpdateRequest struct {
	Name *string `validate:"omitempty,min=1,max=120"`
}

// ContextRoleAssignment is a grant of a role to a group within a
// context (nil ContextID means the Global Context).
type ContextRoleAssignment struct {
	GroupID   int64  `json:"group_id"`
	ContextID *int64 `json:"context_id,omitempty"`
	RoleID    int64  `json:"role_id"`
}
