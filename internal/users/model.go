// Package users implements CRUD for the User entity and its
// context-role assignment sub-resource, following the catalog CRUD
// shape used elsewhere in this codebase plus the login/email
// uniqueness handling used for user lookups.
package users

// User is an identity that can be a direct member of groups and can
// hold direct role assignments. FirstName and LastName are optional.
type User struct {
	ID        int64   `json:"id"`
	Login     string  `json:"login" validate:"required,min=1,max=120"`
	Email     string  `json:"email" validate:"required,email,max=254"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// CreateRequest is the explicit request struct for creating a user.
type CreateRequest struct {
	Login     string  `validate:"required,min=1,max=120"`
	Email     string  `validate:"required,email,max=254"`
	Password  string  `validate:"required,min=8"`
	FirstName *string `validate:"omitempty,max=120"`
	LastName  *string `validate:"omitempty,max=120"`
}

// UpdateRequest carries only the fields being changed. ClearFirstName
// and ClearLastName null out the respective column; FirstName/LastName
// set a new value.
type UpdateRequest struct {
	Login          *string `validate:"omitempty,min=1,max=120"`
	Email          *string `validate:"omitempty,email,max=254"`
	FirstName      *string `validate:"omitempty,max=120"`
	LastName       *string `validate:"omitempty,max=120"`
	ClearFirstName bool
	ClearLastName  bool
}

// ContextRoleAssignment is a direct grant of a role to a user within a
// context (nil ContextID means the Global Context).
type ContextRoleAssignment struct {
	UserID    int64  `json:"user_id"`
	ContextID *int64 `json:"context_id,omitempty"`
	RoleID    int64  `json:"role_id"`
}
