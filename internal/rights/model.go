// Package rights implements CRUD for the Right entity: a named
// permission of either boolean or range type, optionally grouped
// under a RightGroup and, for range rights, bound to a RightTypeRange.
package rights

// Type distinguishes a boolean right (grant/deny) from a range right
// (numeric ceiling, e.g. an approval limit).
type Type string

const (
	TypeBoolean Type = "boolean"
	TypeRange   Type = "range"
)

// Right is a named permission.
type Right struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Type             Type   `json:"type"`
	RightGroupID     *int64 `json:"rightgroup_id,omitempty"`
	RightTypeRangeID *int64 `json:"righttype_range_id,omitempty"`
}

// CreateRequest is the explicit request struct for creating a right.
// RightTypeRangeID must be set iff Type is TypeRange; the service
// enforces this cross-field rule.
type CreateRequest struct {
	Name             string `validate:"required,min=1,max=120"`
	Type             Type   `validate:"required,oneof=boolean range"`
	RightGroupID     *int64
	RightTypeRangeID *int64
}

// UpdateRequest carries only the fields being changed.
type UpdateRequest struct {
	Name             *string `validate:"omitempty,min=1,max=120"`
	Type             *Type   `validate:"omitempty,oneof=boolean range"`
	RightGroupID     *int64
	RightTypeRangeID *int64
	ClearRightGroup  bool
	ClearRangeType   bool
}
