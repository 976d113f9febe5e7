package rights

import (
	"context"
	"errors"
	"fmt"

	"github.com/rolemanager/rbac-engine/internal/apperr"
	"github.com/rolemanager/rbac-engine/internal/store"
	"github.com/rolemanager/rbac-engine/internal/version"
)

// Repository is the store-backed CRUD surface for rights.
type Repository interface {
	List(ctx context.Context) ([]Right, error)
	Get(ctx context.Context, id int64) (Right, error)
	GetByName(ctx context.Context, name string) (Right, error)
	Create(ctx context.Context, req CreateRequest) (Right, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (Right, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	store store.Port
}

// NewRepository builds a Repository over the caller-owned store adapter.
// Updates and deletes bump permissions_version, since they can change
// an existing role-right pairing's resolvable type;
// bare creation of an unreferenced right cannot affect any existing
// resolution and so does not bump.
func NewRepository(s store.Port) Repository {
	return &repository{store: s}
}

func scanRight(row store.Row) (Right, error) {
	var r Right
	if err := row.Scan(&r.ID, &r.Name, &r.Type, &r.RightGroupID, &r.RightTypeRangeID); err != nil {
		return Right{}, err
	}
	return r, nil
}

func (r *repository) List(ctx context.Context) ([]Right, error) {
	rows, err := r.store.QueryRows(ctx, `SELECT id, name, type, rightgroup_id, righttype_range_id FROM role_manager_rights ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("rights: list: %w", err)
	}
	defer rows.Close()

	var out []Right
	for rows.Next() {
		var right Right
		if err := rows.Scan(&right.ID, &right.Name, &right.Type, &right.RightGroupID, &right.RightTypeRangeID); err != nil {
			return nil, fmt.Errorf("rights: list scan: %w", err)
		}
		out = append(out, right)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Right, error) {
	right, err := scanRight(r.store.QueryRow(ctx, `SELECT id, name, type, rightgroup_id, righttype_range_id FROM role_manager_rights WHERE id = $1`, id))
	if err != nil {
		if store.IsNoRows(err) {
			return Right{}, fmt.Errorf("%w: right %d", apperr.ErrNotFound, id)
		}
		return Right{}, fmt.Errorf("%w: right %d: %v", apperr.ErrInfrastructure, id, err)
	}
	return right, nil
}

func (r *repository) GetByName(ctx context.Context, name string) (Right, error) {
	right, err := scanRight(r.store.QueryRow(ctx, `SELECT id, name, type, rightgroup_id, righttype_range_id FROM role_manager_rights WHERE name = $1`, name))
	if err != nil {
		if store.IsNoRows(err) {
			return Right{}, fmt.Errorf("%w: right %q", apperr.ErrNotFound, name)
		}
		return Right{}, fmt.Errorf("%w: right %q: %v", apperr.ErrInfrastructure, name, err)
	}
	return right, nil
}

func (r *repository) Create(ctx context.Context, req CreateRequest) (Right, error) {
	right, err := scanRight(r.store.QueryRow(ctx,
		`INSERT INTO role_manager_rights (name, type, rightgroup_id, righttype_range_id) VALUES ($1, $2, $3, $4)
		 RETURNING id, name, type, rightgroup_id, righttype_range_id`,
		req.Name, req.Type, req.RightGroupID, req.RightTypeRangeID,
	))
	if err != nil {
		return Right{}, fmt.Errorf("%w: right %q: %v", apperr.ErrConflict, req.Name, err)
	}
	return right, nil
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateRequest) (Right, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return Right{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Type != nil {
		current.Type = *req.Type
	}
	if req.ClearRightGroup {
		current.RightGroupID = nil
	} else if req.RightGroupID != nil {
		current.RightGroupID = req.RightGroupID
	}
	if req.ClearRangeType {
		current.RightTypeRangeID = nil
	} else if req.RightTypeRangeID != nil {
		current.RightTypeRangeID = req.RightTypeRangeID
	}

	err = r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		_, err := tx.Execute(ctx,
			`UPDATE role_manager_rights SET name = $1, type = $2, rightgroup_id = $3, righttype_range_id = $4 WHERE id = $5`,
			current.Name, current.Type, current.RightGroupID, current.RightTypeRangeID, id,
		)
		if err != nil {
			return err
		}
		_, err = version.Bump(ctx, tx)
		return err
	})
	if err != nil {
		return Right{}, fmt.Errorf("%w: right %q: %v", apperr.ErrConflict, current.Name, err)
	}
	return current, nil
}

// Delete removes a right, refusing if any role still references it.
func (r *repository) Delete(ctx context.Context, id int64) error {
	var refs int64
	err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM role_manager_role_rights WHERE right_id = $1`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("%w: right %d dependency check: %v", apperr.ErrInfrastructure, id, err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: right %d is referenced by %d role(s)", apperr.ErrDependency, id, refs)
	}

	err = r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		n, err := tx.Execute(ctx, `DELETE FROM role_manager_rights WHERE id = $1`, id)
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
		return fmt.Errorf("%w: right %d", apperr.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("%w: right %d: %v", apperr.ErrInfrastructure, id, err)
	}
	return nil
}
