package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/rolemanager/rbac-engine/internal/apperr"
	"github.com/rolemanager/rbac-engine/internal/rights"
	"github.com/rolemanager/rbac-engine/internal/store"
	"github.com/rolemanager/rbac-engine/internal/version"
)

// rightBounds is what the role-right validator needs to know about the
// right being granted: whether it is range-typed and, if so, the
// interval it must fall within.
type rightBounds struct {
	Type     rights.Type
	HasRange bool
	Min      float64
	Max      float64
}

// Repository is the store-backed CRUD surface for roles and their
// role-right pairings.
type Repository interface {
	List(ctx context.Context) ([]Role, error)
	Get(ctx context.Context, id int64) (Role, error)
	Create(ctx context.Context, req CreateRequest) (Role, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (Role, error)
	Delete(ctx context.Context, id int64) error

	ListRights(ctx context.Context, roleID int64) ([]RoleRight, error)
	RightBounds(ctx context.Context, rightID int64) (rightBounds, error)
	SetRight(ctx context.Context, roleID int64, req SetRoleRightRequest) (RoleRight, error)
	RemoveRight(ctx context.Context, roleID, rightID int64) error
}

type repository struct {
	store store.Port
}

// NewRepository builds a Repository over the caller-owned store adapter.
// Every role and role-right mutation bumps permissions_version: roles
// are only ever reachable through an assignment, so any change to
// their shape or their rights can change a resolution outcome.
func NewRepository(s store.Port) Repository {
	return &repository{store: s}
}

func (r *repository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.store.QueryRows(ctx, `SELECT id, name FROM role_manager_roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("roles: list scan: %w", err)
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Role, error) {
	var role Role
	err := r.store.QueryRow(ctx, `SELECT id, name FROM role_manager_roles WHERE id = $1`, id).Scan(&role.ID, &role.Name)
	if err != nil {
		if store.IsNoRows(err) {
			return Role{}, fmt.Errorf("%w: role %d", apperr.ErrNotFound, id)
		}
		return Role{}, fmt.Errorf("%w: role %d: %v", apperr.ErrInfrastructure, id, err)
	}
	return role, nil
}

func (r *repository) Create(ctx context.Context, req CreateRequest) (Role, error) {
	var role Role
	err := r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO role_manager_roles (name) VALUES ($1) RETURNING id, name`, req.Name,
		).Scan(&role.ID, &role.Name); err != nil {
			return err
		}
		_, err := version.Bump(ctx, tx)
		return err
	})
	if err != nil {
		return Role{}, fmt.Errorf("%w: role %q: %v", apperr.ErrConflict, req.Name, err)
	}
	return role, nil
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateRequest) (Role, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return Role{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	err = r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		_, err := tx.Execute(ctx, `UPDATE role_manager_roles SET name = $1 WHERE id = $2`, current.Name, id)
		if err != nil {
			return err
		}
		_, err = version.Bump(ctx, tx)
		return err
	})
	if err != nil {
		return Role{}, fmt.Errorf("%w: role %q: %v", apperr.ErrConflict, current.Name, err)
	}
	return current, nil
}

// Delete removes a role, refusing if any user or group assignment
// still references it.
func (r *repository) Delete(ctx context.Context, id int64) error {
	var refs int64
	err := r.store.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM role_manager_user_context_roles WHERE role_id = $1) +
			(SELECT COUNT(*) FROM role_manager_group_context_roles WHERE role_id = $1)
	`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("%w: role %d dependency check: %v", apperr.ErrInfrastructure, id, err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: role %d is referenced by %d assignment(s)", apperr.ErrDependency, id, refs)
	}

	err = r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		n, err := tx.Execute(ctx, `DELETE FROM role_manager_roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.ErrNotFound
		}
		_, err = version.Bump(ctx, tx)
		return err
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("%w: role %d", apperr.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("%w: role %d: %v", apperr.ErrInfrastructure, id, err)
	}
	return nil
}

func (r *repository) ListRights(ctx context.Context, roleID int64) ([]RoleRight, error) {
	rows, err := r.store.QueryRows(ctx,
		`SELECT role_id, right_id, range_value FROM role_manager_role_rights WHERE role_id = $1 ORDER BY right_id`, roleID)
	if err != nil {
		return nil, fmt.Errorf("roles: list rights: %w", err)
	}
	defer rows.Close()

	var out []RoleRight
	for rows.Next() {
		var rr RoleRight
		if err := rows.Scan(&rr.RoleID, &rr.RightID, &rr.RangeValue); err != nil {
			return nil, fmt.Errorf("roles: list rights scan: %w", err)
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *repository) RightBounds(ctx context.Context, rightID int64) (rightBounds, error) {
	var b rightBounds
	var minVal, maxVal *float64
	err := r.store.QueryRow(ctx, `
		SELECT r.type, t.min_value, t.max_value
		FROM role_manager_rights r
		LEFT JOIN role_manager_righttype_ranges t ON t.id = r.righttype_range_id
		WHERE r.id = $1
	`, rightID).Scan(&b.Type, &minVal, &maxVal)
	if err != nil {
		if store.IsNoRows(err) {
			return rightBounds{}, fmt.Errorf("%w: right %d", apperr.ErrNotFound, rightID)
		}
		return rightBounds{}, fmt.Errorf("%w: right %d: %v", apperr.ErrInfrastructure, rightID, err)
	}
	if minVal != nil && maxVal != nil {
		b.HasRange = true
		b.Min = *minVal
		b.Max = *maxVal
	}
	return b, nil
}

func (r *repository) SetRight(ctx context.Context, roleID int64, req SetRoleRightRequest) (RoleRight, error) {
	rr := RoleRight{RoleID: roleID, RightID: req.RightID, RangeValue: req.RangeValue}
	err := r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		_, err := tx.Execute(ctx, `
			INSERT INTO role_manager_role_rights (role_id, right_id, range_value)
			VALUES ($1, $2, $3)
			ON CONFLICT (role_id, right_id) DO UPDATE SET range_value = EXCLUDED.range_value
		`, roleID, req.RightID, req.RangeValue)
		if err != nil {
			return err
		}
		_, err = version.Bump(ctx, tx)
		return err
	})
	if err != nil {
		return RoleRight{}, fmt.Errorf("%w: role %d right %d: %v", apperr.ErrConflict, roleID, req.RightID, err)
	}
	return rr, nil
}

func (r *repository) RemoveRight(ctx context.Context, roleID, rightID int64) error {
	err := r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		n, err := tx.Execute(ctx, `DELETE FROM role_manager_role_rights WHERE role_id = $1 AND right_id = $2`, roleID, rightID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.ErrNotFound
		}
		_, err = version.Bump(ctx, tx)
		return err
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("%w: role %d right %d", apperr.ErrNotFound, roleID, rightID)
	}
	if err != nil {
		return fmt.Errorf("%w: role %d right %d: %v", apperr.ErrInfrastructure, roleID, rightID, err)
	}
	return nil
}
