package righttypes

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rolemanager/rbac-engine/internal/apperr"
)

var validate = validator.New()

// Service wraps Repository with request validation. Right-type-range
// mutations never bump permissions_version on their own; only role-right writes that use a range do.
type Service struct {
	repo Repository
}

// NewService constructs a Service over repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]RightTypeRange, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (RightTypeRange, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (RightTypeRange, error) {
	if err := validate.Struct(req); err != nil {
		return RightTypeRange{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if req.MinValue > req.MaxValue {
		return RightTypeRange{}, fmt.Errorf("%w: min_value %.2f exceeds max_value %.2f", apperr.ErrValidation, req.MinValue, req.MaxValue)
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (RightTypeRange, error) {
	if err := validate.Struct(req); err != nil {
		return RightTypeRange{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return RightTypeRange{}, err
	}
	min, max := current.MinValue, current.MaxValue
	if req.MinValue != nil {
		min = *req.MinValue
	}
	if req.MaxValue != nil {
		max = *req.MaxValue
	}
	if min > max {
		return RightTypeRange{}, fmt.Errorf("%w: min_value %.2f exceeds max_value %.2f", apperr.ErrValidation, min, max)
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
