// Package contexts implements CRUD for the Context entity: a named
// scope role assignments are evaluated within. This is routine
// persistence code, same shape as internal/rightgroups.
package contexts

// Context is a named evaluation scope. The null context (id == 0 is
// never a valid persisted id; callers use a nil *int64 to mean Global)
// is handled entirely inside internal/rbac, not here.
type Context struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

// CreateRequest is the explicit request struct for creating a context.
type CreateRequest struct {
	Name        string `validate:"required,min=1,max=120"`
	Description string `validate:"max=500"`
}

// UpdateRequest carries only the fields being changed; nil means "leave
// as is" for pointer fields.
type UpdateRequest struct {
	Name        *string `validate:"omitempty,min=1,max=120"`
	Description *string `validate:"omitempty,max=500"`
}
