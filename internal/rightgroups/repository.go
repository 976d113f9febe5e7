package rightgroups

import (
	"context"
	"fmt"

	"github.com/rolemanager/rbac-engine/internal/apperr"
	"github.com/rolemanager/rbac-engine/internal/store"
)

// Repository is the store-backed CRUD surface for right groups.
type Repository interface {
	List(ctx context.Context) ([]RightGroup, error)
	Get(ctx context.Context, id int64) (RightGroup, error)
	Create(ctx context.Context, req CreateRequest) (RightGroup, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (RightGroup, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	store store.Port
}

// NewRepository builds a Repository over the caller-owned store adapter.
func NewRepository(s store.Port) Repository {
	return &repository{store: s}
}

func (r *repository) List(ctx context.Context) ([]RightGroup, error) {
	rows, err := r.store.QueryRows(ctx, `SELECT id, name FROM role_manager_rightgroups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("rightgroups: list: %w", err)
	}
	defer rows.Close()

	var out []RightGroup
	for rows.Next() {
		var g RightGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("rightgroups: list scan: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (RightGroup, error) {
	var g RightGroup
	err := r.store.QueryRow(ctx, `SELECT id, name FROM role_manager_rightgroups WHERE id = $1`, id).Scan(&g.ID, &g.Name)
	if err != nil {
		if store.IsNoRows(err) {
			return RightGroup{}, fmt.Errorf("%w: right group %d", apperr.ErrNotFound, id)
		}
		return RightGroup{}, fmt.Errorf("%w: right group %d: %v", apperr.ErrInfrastructure, id, err)
	}
	return g, nil
}

func (r *repository) Create(ctx context.Context, req CreateRequest) (RightGroup, error) {
	var g RightGroup
	err := r.store.QueryRow(ctx,
		`INSERT INTO role_manager_rightgroups (name) VALUES ($1) RETURNING id, name`,
		req.Name,
	).Scan(&g.ID, &g.Name)
	if err != nil {
		return RightGroup{}, fmt.Errorf("%w: right group %q: %v", apperr.ErrConflict, req.Name, err)
	}
	return g, nil
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateRequest) (RightGroup, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return RightGroup{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	_, err = r.store.Execute(ctx, `UPDATE role_manager_rightgroups SET name = $1 WHERE id = $2`, current.Name, id)
	if err != nil {
		return RightGroup{}, fmt.Errorf("%w: right group %q: %v", apperr.ErrConflict, current.Name, err)
	}
	return current, nil
}

// Delete removes a right group, refusing if any right still references it.
func (r *repository) Delete(ctx context.Context, id int64) error {
	var refs int64
	err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM role_manager_rights WHERE rightgroup_id = $1`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("%w: right group %d dependency check: %v", apperr.ErrInfrastructure, id, err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: right group %d is referenced by %d right(s)", apperr.ErrDependency, id, refs)
	}

	n, err := r.store.Execute(ctx, `DELETE FROM role_manager_rightgroups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: right group %d: %v", apperr.ErrInfrastructure, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: right group %d", apperr.ErrNotFound, id)
	}
	return nil
}
