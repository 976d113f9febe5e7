package rbac

import (
	"context"
	"fmt"

	"github.com/rolemanager/rbac-engine/internal/logging"
	"github.com/rolemanager/rbac-engine/internal/store"
)

// closureSQL computes G(u) in a single recursive query: start
// from the user's direct memberships at distance 0, then walk child→parent
// subgroup edges, growing distance by one hop at a time. It is deliberately
// allowed to overrun the bound by one step so Closure can detect and warn
// about truncation instead of silently dropping rows with no trace.
const closureSQL = `
WITH RECURSIVE closure(group_id, group_name, distance) AS (
	SELECT g.id, g.name, 0
	FROM role_manager_groups g
	JOIN role_manager_user_groups ug ON ug.group_id = g.id
	WHERE ug.user_id = $1

	UNION ALL

	SELECT p.id, p.name, c.distance + 1
	FROM role_manager_group_subgroups e
	JOIN role_manager_groups p ON p.id = e.parent_group_id
	JOIN closure c ON c.group_id = e.child_group_id
	WHERE c.distance < $2
)
SELECT group_id, group_name, MIN(distance) AS distance
FROM closure
GROUP BY group_id, group_name
ORDER BY distance, group_id
`

// Closure computes every group reachable upward from the user's
// direct memberships, deduplicated by id and tagged with the minimum
// hop distance. depthBound caps traversal; candidates beyond it are
// dropped with a warning-level log event rather than surfaced as an
// error.
func Closure(ctx context.Context, q store.Tx, logger *logging.Logger, userID int64, depthBound int) ([]Group, error) {
	if depthBound <= 0 {
		depthBound = GroupDepthBound
	}

	rows, err := q.QueryRows(ctx, closureSQL, userID, depthBound+1)
	if err != nil {
		return nil, fmt.Errorf("rbac: closure query: %w", err)
	}
	defer rows.Close()

	var kept []Group
	var truncated int
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Distance); err != nil {
			return nil, fmt.Errorf("rbac: closure scan: %w", err)
		}
		if g.Distance > depthBound {
			truncated++
			continue
		}
		kept = append(kept, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rbac: closure rows: %w", err)
	}

	if truncated > 0 {
		if logger != nil {
			logger.Warning(ctx, "group closure truncated at depth bound", map[string]any{
				"user_id":     userID,
				"depth_bound": depthBound,
				"dropped":     truncated,
			})
		}
		if OnTruncate != nil {
			OnTruncate(truncated)
		}
	}

	return kept, nil
}
