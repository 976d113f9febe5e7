package contexts

import (
	"context"
	"fmt"

	"github.com/rolemanager/rbac-engine/internal/apperr"
	"github.com/rolemanager/rbac-engine/internal/store"
)

// Repository is the store-backed CRUD surface for contexts.
type Repository interface {
	List(ctx context.Context) ([]Context, error)
	Get(ctx context.Context, id int64) (Context, error)
	GetByName(ctx context.Context, name string) (Context, error)
	Create(ctx context.Context, req CreateRequest) (Context, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (Context, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	store store.Port
}

// NewRepository builds a Repository over the caller-owned store adapter.
func NewRepository(s store.Port) Repository {
	return &repository{store: s}
}

func (r *repository) List(ctx context.Context) ([]Context, error) {
	rows, err := r.store.QueryRows(ctx, `SELECT id, name, COALESCE(description, '') FROM role_manager_contexts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("contexts: list: %w", err)
	}
	defer rows.Close()

	var out []Context
	for rows.Next() {
		var c Context
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("contexts: list scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Context, error) {
	var c Context
	err := r.store.QueryRow(ctx, `SELECT id, name, COALESCE(description, '') FROM role_manager_contexts WHERE id = $1`, id).Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		if store.IsNoRows(err) {
			return Context{}, fmt.Errorf("%w: context %d", apperr.ErrNotFound, id)
		}
		return Context{}, fmt.Errorf("%w: context %d: %v", apperr.ErrInfrastructure, id, err)
	}
	return c, nil
}

func (r *repository) GetByName(ctx context.Context, name string) (Context, error) {
	var c Context
	err := r.store.QueryRow(ctx, `SELECT id, name, COALESCE(description, '') FROM role_manager_contexts WHERE name = $1`, name).Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		if store.IsNoRows(err) {
			return Context{}, fmt.Errorf("%w: context %q", apperr.ErrNotFound, name)
		}
		return Context{}, fmt.Errorf("%w: context %q: %v", apperr.ErrInfrastructure, name, err)
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, req CreateRequest) (Context, error) {
	var c Context
	err := r.store.QueryRow(ctx,
		`INSERT INTO role_manager_contexts (name, description) VALUES ($1, $2) RETURNING id, name, COALESCE(description, '')`,
		req.Name, req.Description,
	).Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		return Context{}, fmt.Errorf("%w: context %q: %v", apperr.ErrConflict, req.Name, err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateRequest) (Context, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return Context{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	_, err = r.store.Execute(ctx,
		`UPDATE role_manager_contexts SET name = $1, description = $2 WHERE id = $3`,
		current.Name, current.Description, id,
	)
	if err != nil {
		return Context{}, fmt.Errorf("%w: context %q: %v", apperr.ErrConflict, current.Name, err)
	}
	return current, nil
}

// Delete removes a context, refusing if any assignment still references
// it.
func (r *repository) Delete(ctx context.Context, id int64) error {
	var refs int64
	err := r.store.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM role_manager_user_context_roles WHERE context_id = $1) +
			(SELECT COUNT(*) FROM role_manager_group_context_roles WHERE context_id = $1)
	`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("%w: context %d dependency check: %v", apperr.ErrInfrastructure, id, err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: context %d is referenced by %d assignment(s)", apperr.ErrDependency, id, refs)
	}

	n, err := r.store.Execute(ctx, `DELETE FROM role_manager_contexts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: context %d: %v", apperr.ErrInfrastructure, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: context %d", apperr.ErrNotFound, id)
	}
	return nil
}
