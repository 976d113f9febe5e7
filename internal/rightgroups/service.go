package rightgroups

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rolemanager/rbac-engine/internal/apperr"
)

var validate = validator.New()

// Service wraps Repository with request validation. Right-group
// mutations never bump permissions_version: a right group has no
// resolution effect on its own.
type Service struct {
	repo Repository
}

// NewService constructs a Service over repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]RightGroup, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (RightGroup, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (RightGroup, error) {
	if err := validate.Struct(req); err != nil {
		return RightGroup{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (RightGroup, error) {
	if err := validate.Struct(req); err != nil {
		return RightGroup{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
