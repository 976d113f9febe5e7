package groups

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolemanager/rbac-engine/internal/apperr"
)

// graphFakeRepo mirrors wouldCycleSQL's upward traversal over a plain
// Go map, so cycle rejection can be exercised without a real database.
type graphFakeRepo struct {
	groups map[int64]Group
	// child -> set of parents
	parents map[int64]map[int64]bool
	next    int64
}

func newGraphFakeRepo() *graphFakeRepo {
	return &graphFakeRepo{
		groups:  map[int64]Group{},
		parents: map[int64]map[int64]bool{},
		next:    1,
	}
}

func (f *graphFakeRepo) List(ctx context.Context) ([]Group, error) { return nil, nil }

func (f *graphFakeRepo) Get(ctx context.Context, id int64) (Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return Group{}, apperr.ErrNotFound
	}
	return g, nil
}

func (f *graphFakeRepo) Create(ctx context.Context, req CreateRequest) (Group, error) {
	g := Group{ID: f.next, Name: req.Name}
	f.groups[g.ID] = g
	f.next++
	return g, nil
}

func (f *graphFakeRepo) Update(ctx context.Context, id int64, req UpdateRequest) (Group, error) {
	return Group{}, nil
}

func (f *graphFakeRepo) Delete(ctx context.Context, id int64) error { return nil }

// ancestors returns every group reachable by climbing from id through
// its recorded parents, the same set wouldCycleSQL computes.
func (f *graphFakeRepo) ancestors(id int64) map[int64]bool {
	seen := map[int64]bool{}
	var walk func(int64)
	walk = func(cur int64) {
		for p := range f.parents[cur] {
			if !seen[p] {
				seen[p] = true
				walk(p)
			}
		}
	}
	walk(id)
	return seen
}

func (f *graphFakeRepo) AddSubgroup(ctx context.Context, parentID, childID int64) error {
	if parentID == childID {
		return apperr.ErrValidation
	}
	if f.ancestors(parentID)[childID] {
		return apperr.ErrValidation
	}
	if f.parents[childID] == nil {
		f.parents[childID] = map[int64]bool{}
	}
	f.parents[childID][parentID] = true
	return nil
}

func (f *graphFakeRepo) RemoveSubgroup(ctx context.Context, parentID, childID int64) error {
	delete(f.parents[childID], parentID)
	return nil
}

func (f *graphFakeRepo) AddMember(ctx context.Context, groupID, userID int64) error    { return nil }
func (f *graphFakeRepo) RemoveMember(ctx context.Context, groupID, userID int64) error { return nil }

func (f *graphFakeRepo) AssignRole(ctx context.Context, a ContextRoleAssignment) error { return nil }
func (f *graphFakeRepo) RevokeRole(ctx context.Context, a ContextRoleAssignment) error { return nil }

func TestAddSubgroupRejectsDirectCycle(t *testing.T) {
	svc := NewService(newGraphFakeRepo())
	require.NoError(t, svc.AddSubgroup(context.Background(), 1, 2)) // 2 subgroup of 1

	err := svc.AddSubgroup(context.Background(), 2, 1) // 1 subgroup of 2 -> cycle
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestAddSubgroupRejectsTransitiveCycle(t *testing.T) {
	svc := NewService(newGraphFakeRepo())
	require.NoError(t, svc.AddSubgroup(context.Background(), 1, 2)) // 2 subgroup of 1
	require.NoError(t, svc.AddSubgroup(context.Background(), 2, 3)) // 3 subgroup of 2

	err := svc.AddSubgroup(context.Background(), 3, 1) // 1 subgroup of 3 -> closes the loop
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestAddSubgroupAllowsDiamond(t *testing.T) {
	svc := NewService(newGraphFakeRepo())
	require.NoError(t, svc.AddSubgroup(context.Background(), 1, 2))
	require.NoError(t, svc.AddSubgroup(context.Background(), 1, 3))
	require.NoError(t, svc.AddSubgroup(context.Background(), 2, 4))
	require.NoError(t, svc.AddSubgroup(context.Background(), 3, 4)) // 4 has two parents, not a cycle
}
