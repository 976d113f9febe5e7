package rbac

import (
	"context"
	"fmt"

	"github.com/rolemanager/rbac-engine/internal/logging"
	"github.com/rolemanager/rbac-engine/internal/store"
)

// enumerateSQL is the single recursive query that does the whole
// candidate sweep: it walks the group closure inline (so the
// group-source half needs no second round trip) and unions it with the
// direct user-source assignments, joined through role -> role_rights ->
// right.
// $1 = user_id, $2 = context_id (may be NULL), $3 = right_name filter (may
// be NULL), $4 = depth_bound+1 (see the comment on closureSQL).
//
// The correlated NOT EXISTS repeated in both branches implements the
// per-user context override decided in DESIGN.md: once a user has been
// personally assigned a role at the exact context being queried, that
// assignment fully supersedes the Global Context for this query (for
// every source, not just the user's own row) rather than merging with
// it right-by-right. Absent such a personal assignment, Global merges in
// as usual and loses only to a more specific candidate for the same
// right.
const enumerateSQL = `
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
	WHERE c.distance < $4
),
group_closure AS (
	SELECT group_id, group_name, MIN(distance) AS distance
	FROM closure
	GROUP BY group_id, group_name
)
SELECT 'user' AS source_kind, u.id AS source_id, u.login AS source_name,
       r.name AS role_name, ucr.context_id,
       COALESCE(ctx.name, 'Global') AS context_name,
       rt.name AS right_name, rt.type AS right_type, rr.range_value,
       0 AS distance
FROM role_manager_user_context_roles ucr
JOIN role_manager_users u ON u.id = ucr.user_id
JOIN role_manager_roles r ON r.id = ucr.role_id
JOIN role_manager_role_rights rr ON rr.role_id = r.id
JOIN role_manager_rights rt ON rt.id = rr.right_id
LEFT JOIN role_manager_contexts ctx ON ctx.id = ucr.context_id
WHERE ucr.user_id = $1
  AND ($3::text IS NULL OR rt.name = $3)
  AND (
        ucr.context_id = $2
        OR (
             ucr.context_id IS NULL
             AND NOT EXISTS (
               SELECT 1 FROM role_manager_user_context_roles x
               WHERE x.user_id = $1 AND x.context_id = $2
             )
           )
      )

UNION ALL

SELECT 'group', gc.group_id, gc.group_name,
       r.name, gcr.context_id,
       COALESCE(ctx.name, 'Global'),
       rt.name, rt.type, rr.range_value,
       gc.distance
FROM group_closure gc
JOIN role_manager_group_context_roles gcr ON gcr.group_id = gc.group_id
JOIN role_manager_roles r ON r.id = gcr.role_id
JOIN role_manager_role_rights rr ON rr.role_id = r.id
JOIN role_manager_rights rt ON rt.id = rr.right_id
LEFT JOIN role_manager_contexts ctx ON ctx.id = gcr.context_id
WHERE ($3::text IS NULL OR rt.name = $3)
  AND (
        gcr.context_id = $2
        OR (
             gcr.context_id IS NULL
             AND NOT EXISTS (
               SELECT 1 FROM role_manager_user_context_roles x
               WHERE x.user_id = $1 AND x.context_id = $2
             )
           )
      )
`

// Enumerate yields every candidate rule that might grant a right to
// userID in contextID (or Global, under the null-context semantics
// above). rightName narrows to a single right for the explain path;
// pass "" for the fast path's unrestricted sweep.
func Enumerate(ctx context.Context, q store.Tx, logger *logging.Logger, userID int64, contextID *int64, rightName string, depthBound int) ([]Candidate, error) {
	if depthBound <= 0 {
		depthBound = GroupDepthBound
	}

	var rightFilter any
	if rightName != "" {
		rightFilter = rightName
	}

	rows, err := q.QueryRows(ctx, enumerateSQL, userID, contextID, rightFilter, depthBound+1)
	if err != nil {
		return nil, fmt.Errorf("rbac: enumerate query: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	var truncated int
	for rows.Next() {
		var c Candidate
		var sourceKind string
		var contextIDScan *int64
		var rangeValue *float64
		if err := rows.Scan(
			&sourceKind, &c.SourceID, &c.SourceName,
			&c.RoleName, &contextIDScan, &c.ContextName,
			&c.RightName, &c.RightType, &rangeValue,
			&c.Distance,
		); err != nil {
			return nil, fmt.Errorf("rbac: enumerate scan: %w", err)
		}
		if c.Distance > depthBound {
			truncated++
			continue
		}
		c.SourceKind = SourceKind(sourceKind)
		if contextIDScan == nil {
			c.ContextKind = ContextGlobal
		} else {
			c.ContextKind = ContextSpecific
		}
		c.RangeValue = rangeValue
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rbac: enumerate rows: %w", err)
	}

	if truncated > 0 {
		if logger != nil {
			logger.Warning(ctx, "candidate enumeration truncated at group depth bound", map[string]any{
				"user_id":     userID,
				"depth_bound": depthBound,
				"dropped":     truncated,
			})
		}
		if OnTruncate != nil {
			OnTruncate(truncated)
		}
	}

	return out, nil
}
