package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rolemanager/rbac-engine/internal/apperr"
	"github.com/rolemanager/rbac-engine/internal/authn"
)

var validate = validator.New()

// Service wraps Repository with request validation and password
// verification.
type Service struct {
	repo Repository
}

// NewService constructs a Service over repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (User, error) {
	if err := validate.Struct(req); err != nil {
		return User{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (User, error) {
	if err := validate.Struct(req); err != nil {
		return User{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Authenticate verifies login/password and returns the matching user.
// It reports the same error regardless of whether the login or the
// password was wrong.
func (s *Service) Authenticate(ctx context.Context, login, password string) (User, error) {
	u, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, apperr.ErrInfrastructure) {
			return User{}, err
		}
		return User{}, fmt.Errorf("%w: authentication failed", apperr.ErrValidation)
	}
	hash, err := s.repo.PasswordHash(ctx, u.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrInfrastructure) {
			return User{}, err
		}
		return User{}, fmt.Errorf("%w: authentication failed", apperr.ErrValidation)
	}
	if !authn.Verify(hash, password) {
		return User{}, fmt.Errorf("%w: authentication failed", apperr.ErrValidation)
	}
	return u, nil
}

func (s *Service) AssignRole(ctx context.Context, a ContextRoleAssignment) error {
	return s.repo.AssignRole(ctx, a)
}

func (s *Service) RevokeRole(ctx context.Context, a ContextRoleAssignment) error {
	return s.repo.RevokeRole(ctx, a)
}
