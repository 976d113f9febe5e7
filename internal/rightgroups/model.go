// Package rightgroups implements CRUD for the RightGroup entity: a
// named bucket rights are organized under for presentation and bulk
// management, same shape as internal/contexts.
package rightgroups

// RightGroup is a named bucket of rights.
type RightGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// CreateRequest is the explicit request struct for creating a right group.
type CreateRequest struct {
	Name string `validate:"required,min=1,max=120"`
}

// UpdateRequest carries only the fields being changed.
type UpdateRequest struct {
	Name *string `validate:"omitempty,min=1,max=120"`
}
