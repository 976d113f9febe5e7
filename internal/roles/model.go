// Package roles implements CRUD for the Role entity and its
// role_rights sub-resource: the pairing of a role with a right and,
// for range-typed rights, a bounded numeric ceiling.
package roles

// Role is a named bundle of right grants.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// CreateRequest is the explicit request struct for creating a role.
type CreateRequest struct {
	Name string `validate:"required,min=1,max=120"`
}

// UpdateRequest carries only the fields being changed.
type UpdateRequest struct {
	Name *string `validate:"omitempty,min=1,max=120"`
}

// RoleRight is one right granted by a role. RangeValue is set iff the
// underlying right is range-typed.
type RoleRight struct {
	RoleID     int64    `json:"role_id"`
	RightID    int64    `json:"right_id"`
	RangeValue *float64 `json:"range_value,omitempty"`
}

// SetRoleRightRequest is the explicit request struct for granting or
// updating a right on a role.
type SetRoleRightRequest struct {
	RightID    int64 `validate:"required"`
	RangeValue *float64
}
