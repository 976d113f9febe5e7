package contexts

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rolemanager/rbac-engine/internal/apperr"
)

var validate = validator.New()

// Service wraps Repository with request validation. Context mutations
// never bump permissions_version; deletion is still dependency-checked because a
// removed context could otherwise orphan live assignments.
type Service struct {
	repo Repository
}

// NewService constructs a Service over repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Context, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Context, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Context, error) {
	if err := validate.Struct(req); err != nil {
		return Context{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Context, error) {
	if err := validate.Struct(req); err != nil {
		return Context{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
