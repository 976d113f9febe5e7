package roles

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rolemanager/rbac-engine/internal/apperr"
	"github.com/rolemanager/rbac-engine/internal/rights"
)

var validate = validator.New()

// Service wraps Repository with request validation, in particular the
// range-value bound check against the right's RightTypeRange.
type Service struct {
	repo Repository
}

// NewService constructs a Service over repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Role, error) {
	if err := validate.Struct(req); err != nil {
		return Role{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Role, error) {
	if err := validate.Struct(req); err != nil {
		return Role{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListRights(ctx context.Context, roleID int64) ([]RoleRight, error) {
	return s.repo.ListRights(ctx, roleID)
}

// SetRight grants (or updates) a right on a role. For a range-typed
// right, RangeValue must fall within the right's bound
// RightTypeRange interval inclusive; the error names the offending
// value and the interval to two decimal places.
func (s *Service) SetRight(ctx context.Context, roleID int64, req SetRoleRightRequest) (RoleRight, error) {
	if err := validate.Struct(req); err != nil {
		return RoleRight{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	bounds, err := s.repo.RightBounds(ctx, req.RightID)
	if err != nil {
		return RoleRight{}, err
	}
	switch bounds.Type {
	case rights.TypeBoolean:
		if req.RangeValue != nil {
			return RoleRight{}, fmt.Errorf("%w: right %d is boolean and cannot take a range value", apperr.ErrValidation, req.RightID)
		}
	case rights.TypeRange:
		if req.RangeValue == nil {
			return RoleRight{}, fmt.Errorf("%w: right %d is range-typed and requires a range value", apperr.ErrValidation, req.RightID)
		}
		if !bounds.HasRange {
			return RoleRight{}, fmt.Errorf("%w: right %d has no bound range configured", apperr.ErrInfrastructure, req.RightID)
		}
		v := *req.RangeValue
		if v < bounds.Min || v > bounds.Max {
			return RoleRight{}, fmt.Errorf("%w: range value %.2f is outside the allowed interval [%.2f, %.2f]",
				apperr.ErrValidation, v, bounds.Min, bounds.Max)
		}
	}
	return s.repo.SetRight(ctx, roleID, req)
}

func (s *Service) RemoveRight(ctx context.Context, roleID, rightID int64) error {
	return s.repo.RemoveRight(ctx, roleID, rightID)
}
