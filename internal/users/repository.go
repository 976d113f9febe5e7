package users

import (
	"context"
	"fmt"

	"github.com/rolemanager/rbac-engine/internal/apperr"
	"github.com/rolemanager/rbac-engine/internal/authn"
	"github.com/rolemanager/rbac-engine/internal/store"
	"github.com/rolemanager/rbac-engine/internal/version"
)

// Repository is the store-backed CRUD surface for users and their
// direct context-role assignments.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	GetByLogin(ctx context.Context, login string) (User, error)
	PasswordHash(ctx context.Context, id int64) (string, error)
	Create(ctx context.Context, req CreateRequest) (User, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (User, error)
	Delete(ctx context.Context, id int64) error

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

const userColumns = `id, login, email, first_name, last_name`

func scanUser(row store.Row) (User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Login, &u.Email, &u.FirstName, &u.LastName); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.store.QueryRows(ctx, `SELECT `+userColumns+` FROM role_manager_users ORDER BY login`)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Login, &u.Email, &u.FirstName, &u.LastName); err != nil {
			return nil, fmt.Errorf("users: list scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.store.QueryRow(ctx, `SELECT `+userColumns+` FROM role_manager_users WHERE id = $1`, id))
	if err != nil {
		if store.IsNoRows(err) {
			return User{}, fmt.Errorf("%w: user %d", apperr.ErrNotFound, id)
		}
		return User{}, fmt.Errorf("%w: user %d: %v", apperr.ErrInfrastructure, id, err)
	}
	return u, nil
}

func (r *repository) GetByLogin(ctx context.Context, login string) (User, error) {
	u, err := scanUser(r.store.QueryRow(ctx, `SELECT `+userColumns+` FROM role_manager_users WHERE login = $1`, login))
	if err != nil {
		if store.IsNoRows(err) {
			return User{}, fmt.Errorf("%w: user %q", apperr.ErrNotFound, login)
		}
		return User{}, fmt.Errorf("%w: user %q: %v", apperr.ErrInfrastructure, login, err)
	}
	return u, nil
}

func (r *repository) PasswordHash(ctx context.Context, id int64) (string, error) {
	var hash string
	err := r.store.QueryRow(ctx, `SELECT password_hash FROM role_manager_users WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if store.IsNoRows(err) {
			return "", fmt.Errorf("%w: user %d", apperr.ErrNotFound, id)
		}
		return "", fmt.Errorf("%w: user %d: %v", apperr.ErrInfrastructure, id, err)
	}
	return hash, nil
}

// Create does not bump permissions_version: a freshly created user
// holds no assignments and cannot yet affect any resolution.
func (r *repository) Create(ctx context.Context, req CreateRequest) (User, error) {
	hash, err := authn.Hash(req.Password)
	if err != nil {
		return User{}, fmt.Errorf("%w: hashing password: %v", apperr.ErrInfrastructure, err)
	}
	u, err := scanUser(r.store.QueryRow(ctx,
		`INSERT INTO role_manager_users (login, email, first_name, last_name, password_hash) VALUES ($1, $2, $3, $4, $5) RETURNING `+userColumns,
		req.Login, req.Email, req.FirstName, req.LastName, hash,
	))
	if err != nil {
		return User{}, fmt.Errorf("%w: user %q: %v", apperr.ErrConflict, req.Login, err)
	}
	return u, nil
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateRequest) (User, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if req.Login != nil {
		current.Login = *req.Login
	}
	if req.Email != nil {
		current.Email = *req.Email
	}
	if req.ClearFirstName {
		current.FirstName = nil
	} else if req.FirstName != nil {
		current.FirstName = req.FirstName
	}
	if req.ClearLastName {
		current.LastName = nil
	} else if req.LastName != nil {
		current.LastName = req.LastName
	}
	_, err = r.store.Execute(ctx,
		`UPDATE role_manager_users SET login = $1, email = $2, first_name = $3, last_name = $4 WHERE id = $5`,
		current.Login, current.Email, current.FirstName, current.LastName, id,
	)
	if err != nil {
		return User{}, fmt.Errorf("%w: user %q: %v", apperr.ErrConflict, current.Login, err)
	}
	return current, nil
}

// Delete removes a user, refusing if any group membership or role
// assignment still references it.
func (r *repository) Delete(ctx context.Context, id int64) error {
	var refs int64
	err := r.store.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM role_manager_user_context_roles WHERE user_id = $1) +
			(SELECT COUNT(*) FROM role_manager_user_groups WHERE user_id = $1)
	`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("%w: user %d dependency check: %v", apperr.ErrInfrastructure, id, err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: user %d is referenced by %d assignment/membership row(s)", apperr.ErrDependency, id, refs)
	}

	n, err := r.store.Execute(ctx, `DELETE FROM role_manager_users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: user %d: %v", apperr.ErrInfrastructure, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user %d", apperr.ErrNotFound, id)
	}
	return nil
}

// AssignRole grants a user a role within a context, bumping
// permissions_version in the same transaction.
func (r *repository) AssignRole(ctx context.Context, a ContextRoleAssignment) error {
	err := r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		// A NULL context_id never conflicts under the UNIQUE constraint,
		// so a Global assignment is made idempotent by delete-then-insert.
		if a.ContextID == nil {
			if _, err := tx.Execute(ctx,
				`DELETE FROM role_manager_user_context_roles WHERE user_id = $1 AND context_id IS NULL AND role_id = $2`,
				a.UserID, a.RoleID); err != nil {
				return err
			}
		}
		_, err := tx.Execute(ctx, `
			INSERT INTO role_manager_user_context_roles (user_id, context_id, role_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, context_id, role_id) DO NOTHING
		`, a.UserID, a.ContextID, a.RoleID)
		if err != nil {
			return err
		}
		_, err = version.Bump(ctx, tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: assign role %d to user %d: %v", apperr.ErrInfrastructure, a.RoleID, a.UserID, err)
	}
	return nil
}

func (r *repository) RevokeRole(ctx context.Context, a ContextRoleAssignment) error {
	err := r.store.WithTx(ctx, store.ReadCommitted, func(tx store.Tx) error {
		var err error
		if a.ContextID == nil {
			_, err = tx.Execute(ctx,
				`DELETE FROM role_manager_user_context_roles WHERE user_id = $1 AND context_id IS NULL AND role_id = $2`,
				a.UserID, a.RoleID)
		} else {
			_, err = tx.Execute(ctx,
				`DELETE FROM role_manager_user_context_roles WHERE user_id = $1 AND context_id = $2 AND role_id = $3`,
				a.UserID, a.ContextID, a.RoleID)
		}
		if err != nil {
			return err
		}
		_, err = version.Bump(ctx, tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: revoke role %d from user %d: %v", apperr.ErrInfrastructure, a.RoleID, a.UserID, err)
	}
	return nil
}
