// Package righttypes implements CRUD for the RightTypeRange entity: a
// named [min, max] interval that range-typed rights are bound to.
package righttypes

// RightTypeRange is a named numeric interval used to bound range-typed
// rights.
type RightTypeRange struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name" validate:"required,min=1,max=120"`
	MinValue float64 `json:"min_value"`
	MaxValue float64 `json:"max_value"`
}

// CreateRequest is the explicit request struct for creating a range.
// MaxGteMin is enforced in the service, not by a struct tag, since it
// is a cross-field rule.
type CreateRequest struct {
	Name     string `validate:"required,min=1,max=120"`
	MinValue float64
	MaxValue float64
}

// UpdateRequest carries only the fields being changed.
type UpdateRequest struct {
	Name     *string  `validate:"omitempty,min=1,max=120"`
	MinValue *float64 `validate:"omitempty"`
	MaxValue *float64 `validate:"omitempty"`
}
