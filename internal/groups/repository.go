package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/rolemanager/rbac-engine/internal/apperr"
	"github.com/rolemanager/rbac-engine/internal/store"
	"github.com/rolemanager/rbac-engine/internal/version"
)

// errCycle is an internal sentinel distinguishing a rejected subgroup
// edge from any other transaction failure; AddSubgroup translates it
// into apperr.ErrValidation before returning, so it never escapes this
// package.
var errCycle = errors.New("groups: subgroup edge would create a cycle")

// Repository is the store-backed CRUD surface for groups, subgroup
// edges, and user membership.
type Repository interface {
	List(ctx context.Context) ([]Group, error)
	Get(ctx context.Context, id int64) (Group, error)
	Create(ctx context.Context, req CreateRequest) (Group, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (Group, error)
	Delete(ctx context.Context, id int64) error

	AddSubgroup(ctx context.Context, parentID, childID int64) error
	RemoveSubgroup(ctx context.Context, parentID, childID int64) error
	AddMember(ctx context.Context, groupID, userID int64) error
	RemoveMember(ctx context.Context, groupID, userID int64) error

	AssignRole(ctx context.Context, a ContextRoleAssignment) error
	RevokeRole(ctx context.Context, a ContextRoleAssignment) error
}

type repository struct {
	store store.Port
}

// NewRepository builds a Repository over the caller-owned store adapter.
func NewRepository(s store.Port) Repository {
	return &repository{store: s}
}

func (r *repository) List(ctx context.Context) ([]Group, error) {
	rows, err := r.store.QueryRows(ctx, `SELECT id, name FROM role_manager_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("groups: list: %w", err)
	}
	defer rows.Close()

	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("groups: list scan: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Group, error) {
	var g Group
	err := r.store.QueryRow(ctx, `SELECT id, name FROM role_manager_groups WHERE id = $1`, id).Scan(&g.ID, &g.Name)
	if err != nil {
		if store.IsNoRows(err) {
			return Group{}, fmt.Errorf("%w: group %d", apperr.ErrNotFound, id)
		}
		return Group{}, fmt.Errorf("%w: group %d: %v", apperr.ErrInfrastructure, id, err)
	}
	return g, nil
}

// Create does not bump permissions_version: an empty new group cannot
// change any existing resolution.
func (r *repository) Create(ctx context.Context, req CreateRequest) (Group, error) {
	var g Group
	err := r.store.QueryRow(ctx,
		`INSERT INTO role_manager_groups (name) VALUES ($1) RETURNING id, name`, req.Name,
	).Scan(&g.ID, &g.Name)
	if err != nil {
		return Group{}, fmt.Errorf("%w: group %q: %v", apperr.ErrConflict, req.Name, err)
	}
	return g, nil
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateRequest) (Group, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return Group{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	_, err = r.store.Execute(ctx, `UPDATE role_manager_groups SET name = $1 WHERE id = $2`, current.Name, id)
	if err != nil {
		return Group{}, fmt.Errorf("%w: group %q: %v", apperr.ErrConflict, current.Name, err)
	}
	return current, nil
}

// Delete removes a group, refusing if it still has members, subgroup
// edges (as parent or child), or role assignments.
func (r *repository) Delete(ctx context.Context, id int64) error {
	var refs int64
	err := r.store.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM role_manager_user_groups WHERE group_id = $1) +
			(SELECT COUNT(*) FROM role_manager_group_subgroups WHERE parent_group_id = $1 OR child_group_id = $1) +
			(SELECT COUNT(*) FROM role_manager_group_context_roles WHERE group_id = $1)
	`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("%w: group %d dependency check: %v", apperr.ErrInfrastructure, id, err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: group %d is referenced by %d membership/edge/assignment row(s)", apperr.ErrDependency, id, refs)
	}

	n, err := r.store.Execute(ctx, `DELETE FROM role_manager_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: group %d: %v", apperr.ErrInfrastructure, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: group %d", apperr.ErrNotFound, id)
	}
	return nil
}

// wouldCycleSQL climbs from parentID through its existing ancestor
// edges; if childID appears, childID is already an ancestor of
// parentID and making it a subgroup of parentID would close a loop.
const wouldCycleSQL = `
WITH RECURSIVE up(parent_group_id) AS (
	SELECT parent_group_id FROM role_manager_group_subgroups WHERE child_group_id = $1
	UNION
	SELECT gs.parent_group_id
	FROM role_manager_group_subgroups gs
	JOIN up ON gs.child_group_id = up.parent_group_id
)
SELECT COUNT(*) FROM up WHERE parent_group_id = $2
`

// AddSubgroup makes childID a subgroup of parentID: members of
// childID transitively become members of parentID for closure
// purposes. The check-then-insert runs at Serializable isolation
// so two concurrent edge insertions cannot both pass the
// cycle check and jointly create a cycle.
func (r *repository) AddSubgroup(ctx context.Context, parentID, childID int64) error {
	if parentID == childID {
		return fmt.Errorf("%w: a group cannot be its own subgroup", apperr.ErrValidation)
	}
	err := r.store.WithTx(ctx, store.Serializable, func(tx store.Tx) error {
		var cycles int64
		if err := tx.QueryRow(ctx, wouldCycleSQL, parentID, childID).Scan(&cycles); err != nil {
			return err
		}
		if cycles > 0 {
			return errCycle
		}
		if _, err := tx.Execute(ctx,
			`INSERT INTO role_manager_group_subgroups (parent_group_id, child_group_id) VALUES ($1, $2)
			 ON CONFLICT (parent_group_id, child_group_id) DO NOTHING`,
			parentID, childID,
		); err != nil {
			return err
		}
		_, err := version.Bump(ctx, tx)
		return err
	})
	if errors.Is(err, errCycle) {
		return fmt.Errorf("%w: group %d is already an ancestor of group %d", apperr.ErrValidation, childID, parentID)
	}
	if err != nil {
		return fmt.Errorf("%w: subgroup edge %d -> %d: %v", apperr.ErrInfrastructure, parentID, childID, err)
	}
	return nil
}

func (r *repository) RemoveSubgroup(ctx context.Context, parentID, childID int64) error {
	err := r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		_, err := tx.Execute(ctx,
			`DELETE FROM role_manager_group_subgroups WHERE parent_group_id = $1 AND child_group_id = $2`,
			parentID, childID,
		)
		if err != nil {
			return err
		}
		_, err = version.Bump(ctx, tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: subgroup edge %d -> %d: %v", apperr.ErrInfrastructure, parentID, childID, err)
	}
	return nil
}

func (r *repository) AddMember(ctx context.Context, groupID, userID int64) error {
	err := r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		_, err := tx.Execute(ctx,
			`INSERT INTO role_manager_user_groups (group_id, user_id) VALUES ($1, $2)
			 ON CONFLICT (group_id, user_id) DO NOTHING`,
			groupID, userID,
		)
		if err != nil {
			return err
		}
		_, err = version.Bump(ctx, tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: membership group %d user %d: %v", apperr.ErrInfrastructure, groupID, userID, err)
	}
	return nil
}

// AssignRole grants a group a role within a context, bumping
// permissions_version in the same transaction.
func (r *repository) AssignRole(ctx context.Context, a ContextRoleAssignment) error {
	err := r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		// A NULL context_id never conflicts under the UNIQUE constraint,
		// so a Global assignment is made idempotent by delete-then-insert.
		if a.ContextID == nil {
			if _, err := tx.Execute(ctx,
				`DELETE FROM role_manager_group_context_roles WHERE group_id = $1 AND context_id IS NULL AND role_id = $2`,
				a.GroupID, a.RoleID); err != nil {
				return err
			}
		}
		_, err := tx.Execute(ctx, `
			INSERT INTO role_manager_group_context_roles (group_id, context_id, role_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (group_id, context_id, role_id) DO NOTHING
		`, a.GroupID, a.ContextID, a.RoleID)
		if err != nil {
			return err
		}
		_, err = version.Bump(ctx, tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: assign role %d to group %d: %v", apperr.ErrInfrastructure, a.RoleID, a.GroupID, err)
	}
	return nil
}

func (r *repository) RevokeRole(ctx context.Context, a ContextRoleAssignment) error {
	err := r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		var err error
		if a.ContextID == nil {
			_, err = tx.Execute(ctx,
				`DELETE FROM role_manager_group_context_roles WHERE group_id = $1 AND context_id IS NULL AND role_id = $2`,
				a.GroupID, a.RoleID)
		} else {
			_, err = tx.Execute(ctx,
				`DELETE FROM role_manager_group_context_roles WHERE group_id = $1 AND context_id = $2 AND role_id = $3`,
				a.GroupID, a.ContextID, a.RoleID)
		}
		if err != nil {
			return err
		}
		_, err = version.Bump(ctx, tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: revoke role %d from group %d: %v", apperr.ErrInfrastructure, a.RoleID, a.GroupID, err)
	}
	return nil
}

func (r *repository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	err := r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		_, err := tx.Execute(ctx, `DELETE FROM role_manager_user_groups WHERE group_id = $1 AND user_id = $2`, groupID, userID)
		if err != nil {
			return err
		}
		_, err = version.Bump(ctx, tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: membership group %d user %d: %v", apperr.ErrInfrastructure, groupID, userID, err)
	}
	return nil
}
