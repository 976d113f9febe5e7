package righttypes

import (
	"context"
	"fmt"

	"github.com/rolemanager/rbac-engine/internal/apperr"
	"github.com/rolemanager/rbac-engine/internal/store"
)

// Repository is the store-backed CRUD surface for right-type ranges.
type Repository interface {
	List(ctx context.Context) ([]RightTypeRange, error)
	Get(ctx context.Context, id int64) (RightTypeRange, error)
	Create(ctx context.Context, req CreateRequest) (RightTypeRange, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (RightTypeRange, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	store store.Port
}

// NewRepository builds a Repository over the caller-owned store adapter.
func NewRepository(s store.Port) Repository {
	return &repository{store: s}
}

func (r *repository) List(ctx context.Context) ([]RightTypeRange, error) {
	rows, err := r.store.QueryRows(ctx, `SELECT id, name, min_value, max_value FROM role_manager_righttype_ranges ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("righttypes: list: %w", err)
	}
	defer rows.Close()

	var out []RightTypeRange
	for rows.Next() {
		var rt RightTypeRange
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.MinValue, &rt.MaxValue); err != nil {
			return nil, fmt.Errorf("righttypes: list scan: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (RightTypeRange, error) {
	var rt RightTypeRange
	err := r.store.QueryRow(ctx, `SELECT id, name, min_value, max_value FROM role_manager_righttype_ranges WHERE id = $1`, id).
		Scan(&rt.ID, &rt.Name, &rt.MinValue, &rt.MaxValue)
	if err != nil {
		if store.IsNoRows(err) {
			return RightTypeRange{}, fmt.Errorf("%w: right type range %d", apperr.ErrNotFound, id)
		}
		return RightTypeRange{}, fmt.Errorf("%w: right type range %d: %v", apperr.ErrInfrastructure, id, err)
	}
	return rt, nil
}

func (r *repository) Create(ctx context.Context, req CreateRequest) (RightTypeRange, error) {
	var rt RightTypeRange
	err := r.store.QueryRow(ctx,
		`INSERT INTO role_manager_righttype_ranges (name, min_value, max_value) VALUES ($1, $2, $3)
		 RETURNING id, name, min_value, max_value`,
		req.Name, req.MinValue, req.MaxValue,
	).Scan(&rt.ID, &rt.Name, &rt.MinValue, &rt.MaxValue)
	if err != nil {
		return RightTypeRange{}, fmt.Errorf("%w: right type range %q: %v", apperr.ErrConflict, req.Name, err)
	}
	return rt, nil
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateRequest) (RightTypeRange, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return RightTypeRange{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.MinValue != nil {
		current.MinValue = *req.MinValue
	}
	if req.MaxValue != nil {
		current.MaxValue = *req.MaxValue
	}
	_, err = r.store.Execute(ctx,
		`UPDATE role_manager_righttype_ranges SET name = $1, min_value = $2, max_value = $3 WHERE id = $4`,
		current.Name, current.MinValue, current.MaxValue, id,
	)
	if err != nil {
		return RightTypeRange{}, fmt.Errorf("%w: right type range %q: %v", apperr.ErrConflict, current.Name, err)
	}
	return current, nil
}

// Delete removes a right-type range, refusing if any right still
// references it.
func (r *repository) Delete(ctx context.Context, id int64) error {
	var refs int64
	err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM role_manager_rights WHERE righttype_range_id = $1`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("%w: right type range %d dependency check: %v", apperr.ErrInfrastructure, id, err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: right type range %d is referenced by %d right(s)", apperr.ErrDependency, id, refs)
	}

	n, err := r.store.Execute(ctx, `DELETE FROM role_manager_righttype_ranges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: right type range %d: %v", apperr.ErrInfrastructure, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: right type range %d", apperr.ErrNotFound, id)
	}
	return nil
}
