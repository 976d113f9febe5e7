package groups

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rolemanager/rbac-engine/internal/apperr"
)

var validate = validator.New()

// Service wraps Repository with request validation.
type Service struct {
	repo Repository
}

// NewService constructs a Service over repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Group, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Group, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Group, error) {
	if err := validate.Struct(req); err != nil {
		return Group{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Group, error) {
	if err := validate.Struct(req); err != nil {
		return Group{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddSubgroup(ctx context.Context, parentID, childID int64) error {
	return s.repo.AddSubgroup(ctx, parentID, childID)
}

func (s *Service) RemoveSubgroup(ctx context.Context, parentID, childID int64) error {
	return s.repo.RemoveSubgroup(ctx, parentID, childID)
}

func (s *Service) AddMember(ctx context.Context, groupID, userID int64) error {
	return s.repo.AddMember(ctx, groupID, userID)
}

func (s *Service) RemoveMember(ctx context.Context, groupID, userID int64) error {
	return s.repo.RemoveMember(ctx, groupID, userID)
}

func (s *Service) AssignRole(ctx context.Context, a ContextRoleAssignment) error {
	return s.repo.AssignRole(ctx, a)
}

func (s *Service) RevokeRole(ctx context.Context, a ContextRoleAssignment) error {
	return s.repo.RevokeRole(ctx, a)
}
