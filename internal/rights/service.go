package rights

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rolemanager/rbac-engine/internal/apperr"
)

var validate = validator.New()

// Service wraps Repository with request validation, in particular the
// boolean/range type-consistency rule.
type Service struct {
	repo Repository
}

// NewService constructs a Service over repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Right, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Right, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Right, error) {
	if err := validate.Struct(req); err != nil {
		return Right{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if err := checkTypeConsistency(req.Type, req.RightTypeRangeID); err != nil {
		return Right{}, err
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Right, error) {
	if err := validate.Struct(req); err != nil {
		return Right{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Right{}, err
	}
	resultType := current.Type
	if req.Type != nil {
		resultType = *req.Type
	}
	resultRangeID := current.RightTypeRangeID
	if req.ClearRangeType {
		resultRangeID = nil
	} else if req.RightTypeRangeID != nil {
		resultRangeID = req.RightTypeRangeID
	}
	if err := checkTypeConsistency(resultType, resultRangeID); err != nil {
		return Right{}, err
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// checkTypeConsistency enforces "righttype_range_id NULL iff boolean".
func checkTypeConsistency(t Type, rangeID *int64) error {
	switch t {
	case TypeBoolean:
		if rangeID != nil {
			return fmt.Errorf("%w: boolean right must not carry a righttype_range_id", apperr.ErrValidation)
		}
	case TypeRange:
		if rangeID == nil {
			return fmt.Errorf("%w: range right requires a righttype_range_id", apperr.ErrValidation)
		}
	}
	return nil
}
