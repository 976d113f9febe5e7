// Package version implements the single global permissions_version
// counter: an atomic read and increment over the role_manager_config
// row, wide enough (bigint, 63-bit) to never realistically wrap.
package version

import (
	"context"
	"fmt"

	"github.com/rolemanager/rbac-engine/internal/store"
)

const configKey = "permissions_version"

// OnBump, when non-nil, is called after every successful Bump with the
// new version value. The root engine wires this to its version-bump
// counter so this package doesn't need to import internal/metrics.
var OnBump func(newVersion int64)

// Counter reads and bumps the shared version token.
type Counter struct {
	s store.Port
}

// New builds a Counter over the given store.
func New(s store.Port) *Counter {
	return &Counter{s: s}
}

// Current returns the current version, initializing it to 1 if the config
// row is somehow missing (it is seeded by the schema, so this is a
// defensive fallback, not the primary path).
func (c *Counter) Current(ctx context.Context) (int64, error) {
	v, err := currentTx(ctx, c.s)
	if err != nil && store.IsNoRows(err) {
		if _, err := c.s.Execute(ctx,
			`INSERT INTO role_manager_config (key, value) VALUES ($1, 1) ON CONFLICT (key) DO NOTHING`, configKey,
		); err != nil {
			return 0, fmt.Errorf("version: initialize: %w", err)
		}
		return currentTx(ctx, c.s)
	}
	return v, err
}

func currentTx(ctx context.Context, q store.Tx) (int64, error) {
	var v int64
	err := q.QueryRow(ctx,
		`SELECT value FROM role_manager_config WHERE key = $1`, configKey,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("version: read current: %w", err)
	}
	return v, nil
}

// Bump atomically increments the version and returns the new value. Must be
// called from inside the same transaction as the structural mutation that
// requires invalidation.
func Bump(ctx context.Context, tx store.Tx) (int64, error) {
	var v int64
	err := tx.QueryRow(ctx,
		`UPDATE role_manager_config SET value = value + 1 WHERE key = $1 RETURNING value`, configKey,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("version: bump: %w", err)
	}
	if OnBump != nil {
		OnBump(v)
	}
	return v, nil
}
