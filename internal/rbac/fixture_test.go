package rbac

import (
	"context"
	"fmt"

	"github.com/rolemanager/rbac-engine/internal/store"
)

// fixtureStore is a hand-written fake of store.Tx: it answers
// enumerateSQL (whose group-closure walk closureOf mirrors) by
// evaluating the same in-memory graph the real recursive query would
// walk, rather than parsing SQL. closureSQL is not answered. It exists purely to exercise Enumerate,
// RankAll, Resolve and Explain against a hand-built scenario.
type fixtureStore struct {
	users  map[int64]string // id -> login
	groups map[int64]string // id -> name

	memberships map[int64][]int64 // user_id -> group_id (direct)
	subgroups   map[int64]int64   // child_group_id -> parent_group_id

	contexts map[int64]string // id -> name

	roleRights map[string][]roleRight // role_name -> rights it grants

	userRoles  []assignment // user-context-role rows
	groupRoles []assignment // group-context-role rows
}

type roleRight struct {
	rightName  string
	rightType  RightType
	rangeValue *float64
}

type assignment struct {
	subjectID int64 // user_id or group_id
	contextID *int64
	roleName  string
}

func f64(v float64) *float64 { return &v }

func (f *fixtureStore) Execute(ctx context.Context, sql string, args ...any) (int64, error) {
	return 0, fmt.Errorf("fixtureStore: Execute not supported")
}

func (f *fixtureStore) QueryRow(ctx context.Context, sql string, args ...any) store.Row {
	return fixtureRow{err: fmt.Errorf("fixtureStore: QueryRow not supported")}
}

func (f *fixtureStore) QueryRows(ctx context.Context, sql string, args ...any) (store.Rows, error) {
	switch sql {
	case enumerateSQL:
		userID := args[0].(int64)
		contextID, _ := args[1].(*int64)
		var rightFilter string
		if args[2] != nil {
			rightFilter = args[2].(string)
		}
		depthBoundPlus1 := args[3].(int)
		return f.enumerate(userID, contextID, rightFilter, depthBoundPlus1), nil
	default:
		return nil, fmt.Errorf("fixtureStore: unsupported query")
	}
}

func (f *fixtureStore) WithTx(ctx context.Context, iso store.IsoLevel, fn func(store.Tx) error) error {
	return fn(f)
}

// closureOf mirrors closureSQL: BFS upward from direct memberships,
// keeping the minimum distance per group, capped at depthBound (the
// caller passes depthBound, mirroring the +1 overrun-then-filter dance
// the real query does).
func (f *fixtureStore) closureOf(userID int64, depthBound int) map[int64]int {
	best := map[int64]int{}
	frontier := map[int64]int{}
	for _, gid := range f.memberships[userID] {
		if d, ok := best[gid]; !ok || 0 < d {
			best[gid] = 0
		}
		frontier[gid] = 0
	}
	for len(frontier) > 0 && depthBound > 0 {
		next := map[int64]int{}
		for gid, d := range frontier {
			for child, parent := range f.subgroups {
				if child != gid {
					continue
				}
				nd := d + 1
				if cur, ok := best[parent]; !ok || nd < cur {
					best[parent] = nd
					next[parent] = nd
				}
			}
		}
		frontier = next
		depthBound--
	}
	return best
}

func (f *fixtureStore) enumerate(userID int64, contextID *int64, rightFilter string, depthBound int) *fixtureRows {
	var rows []candidateRow

	// override mirrors the correlated NOT EXISTS in enumerateSQL: a
	// personal user-context-role row at the exact queried context
	// supersedes Global for this query entirely.
	override := false
	if contextID != nil {
		for _, a := range f.userRoles {
			if a.subjectID == userID && a.contextID != nil && *a.contextID == *contextID {
				override = true
				break
			}
		}
	}

	matches := func(rowCtx *int64) bool {
		if contextID == nil {
			return rowCtx == nil
		}
		if override {
			return rowCtx != nil && *rowCtx == *contextID
		}
		if rowCtx == nil {
			return true
		}
		return *rowCtx == *contextID
	}
	ctxName := func(id *int64) string {
		if id == nil {
			return GlobalContextName
		}
		return f.contexts[*id]
	}

	for _, a := range f.userRoles {
		if a.subjectID != userID || !matches(a.contextID) {
			continue
		}
		for _, rr := range f.roleRights[a.roleName] {
			if rightFilter != "" && rr.rightName != rightFilter {
				continue
			}
			rows = append(rows, candidateRow{
				sourceKind: string(SourceUser), sourceID: userID, sourceName: f.users[userID],
				roleName: a.roleName, contextID: a.contextID, contextName: ctxName(a.contextID),
				rightName: rr.rightName, rightType: rr.rightType, rangeValue: rr.rangeValue, distance: 0,
			})
		}
	}

	closure := f.closureOf(userID, depthBound)
	for _, a := range f.groupRoles {
		d, inClosure := closure[a.subjectID]
		if !inClosure || !matches(a.contextID) {
			continue
		}
		for _, rr := range f.roleRights[a.roleName] {
			if rightFilter != "" && rr.rightName != rightFilter {
				continue
			}
			rows = append(rows, candidateRow{
				sourceKind: string(SourceGroup), sourceID: a.subjectID, sourceName: f.groups[a.subjectID],
				roleName: a.roleName, contextID: a.contextID, contextName: ctxName(a.contextID),
				rightName: rr.rightName, rightType: rr.rightType, rangeValue: rr.rangeValue, distance: d,
			})
		}
	}

	return &fixtureRows{rows: rows, idx: -1}
}

type candidateRow struct {
	sourceKind  string
	sourceID    int64
	sourceName  string
	roleName    string
	contextID   *int64
	contextName string
	rightName   string
	rightType   RightType
	rangeValue  *float64
	distance    int
}

type fixtureRows struct {
	rows []candidateRow
	idx  int
}

func (r *fixtureRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fixtureRows) Scan(dest ...any) error {
	row := r.rows[r.idx]
	*dest[0].(*string) = row.sourceKind
	*dest[1].(*int64) = row.sourceID
	*dest[2].(*string) = row.sourceName
	*dest[3].(*string) = row.roleName
	*dest[4].(**int64) = row.contextID
	*dest[5].(*string) = row.contextName
	*dest[6].(*string) = row.rightName
	*dest[7].(*RightType) = row.rightType
	*dest[8].(**float64) = row.rangeValue
	*dest[9].(*int) = row.distance
	return nil
}

func (r *fixtureRows) Err() error { return nil }
func (r *fixtureRows) Close()     {}

type fixtureRow struct {
	err error
}

func (r fixtureRow) Scan(dest ...any) error { return r.err }
