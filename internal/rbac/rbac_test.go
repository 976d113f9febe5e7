package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolemanager/rbac-engine/internal/logging"
)

// newScenarioStore builds exactly the literal fixture: users
// alice/bob, groups Staff ⊃ Editors ⊃ Proofreaders plus Marketing, the
// six roles and four rights, and the seven listed assignments.
func newScenarioStore() *fixtureStore {
	const (
		alice = 1
		bob   = 2

		staff        = 10
		editors      = 11
		proofreaders = 12
		marketing    = 13
	)

	var (
		alpha = int64(100)
		beta  = int64(101)
		omega = int64(102)
	)

	f := &fixtureStore{
		users:  map[int64]string{alice: "alice", bob: "bob"},
		groups: map[int64]string{staff: "Staff", editors: "Editors", proofreaders: "Proofreaders", marketing: "Marketing"},
		memberships: map[int64][]int64{
			alice: {editors, marketing},
			bob:   {proofreaders},
		},
		subgroups: map[int64]int64{
			proofreaders: editors,
			editors:      staff,
		},
		contexts: map[int64]string{alpha: "Alpha", beta: "Beta", omega: "Omega"},
		roleRights: map[string][]roleRight{
			"Reader":        {{rightName: "view_article", rightType: RightBoolean}},
			"Proofreader":   {{rightName: "edit_article", rightType: RightBoolean}},
			"Editor":        {{rightName: "publish_article", rightType: RightBoolean}, {rightName: "approve_budget", rightType: RightRange, rangeValue: f64(2000)}},
			"Marketing":     {{rightName: "approve_budget", rightType: RightRange, rangeValue: f64(2500)}},
			"JuniorManager": {{rightName: "approve_budget", rightType: RightRange, rangeValue: f64(1000)}},
			"Intern":        {{rightName: "view_article", rightType: RightBoolean}},
		},
		groupRoles: []assignment{
			{subjectID: staff, contextID: nil, roleName: "Reader"},
			{subjectID: proofreaders, contextID: nil, roleName: "Proofreader"},
			{subjectID: proofreaders, contextID: &alpha, roleName: "Proofreader"},
			{subjectID: editors, contextID: &alpha, roleName: "Editor"},
			{subjectID: marketing, contextID: &alpha, roleName: "Marketing"},
		},
		userRoles: []assignment{
			{subjectID: alice, contextID: &beta, roleName: "JuniorManager"},
			{subjectID: bob, contextID: &omega, roleName: "Intern"},
		},
	}
	return f
}

func TestResolveScenario(t *testing.T) {
	const alice, bob = int64(1), int64(2)
	alpha, beta, omega := int64(100), int64(101), int64(102)
	f := newScenarioStore()
	ctx := context.Background()
	logger := logging.Noop()

	has := func(t *testing.T, userID int64, right string, contextID *int64) (bool, any) {
		t.Helper()
		result, err := Resolve(ctx, f, logger, userID, contextID, GroupDepthBound)
		require.NoError(t, err)
		v, ok := result[right]
		return ok, v
	}

	t.Run("1 bob view_article Alpha true", func(t *testing.T) {
		ok, _ := has(t, bob, "view_article", &alpha)
		assert.True(t, ok)
	})
	t.Run("2 alice publish_article Alpha true", func(t *testing.T) {
		ok, _ := has(t, alice, "publish_article", &alpha)
		assert.True(t, ok)
	})
	t.Run("3 bob publish_article Alpha true", func(t *testing.T) {
		ok, _ := has(t, bob, "publish_article", &alpha)
		assert.True(t, ok)
	})
	t.Run("4 alice publish_article Beta false", func(t *testing.T) {
		ok, _ := has(t, alice, "publish_article", &beta)
		assert.False(t, ok)
	})
	t.Run("5 alice approve_budget Beta 1000", func(t *testing.T) {
		ok, v := has(t, alice, "approve_budget", &beta)
		require.True(t, ok)
		assert.Equal(t, 1000.0, v)
	})
	t.Run("6 bob edit_article global true", func(t *testing.T) {
		ok, _ := has(t, bob, "edit_article", nil)
		assert.True(t, ok)
	})
	t.Run("7 bob edit_article Omega false", func(t *testing.T) {
		ok, _ := has(t, bob, "edit_article", &omega)
		assert.False(t, ok)
	})
	t.Run("8 alice approve_budget Alpha 2500", func(t *testing.T) {
		ok, v := has(t, alice, "approve_budget", &alpha)
		require.True(t, ok)
		assert.Equal(t, 2500.0, v)
	})
}

func TestExplainScenario(t *testing.T) {
	alpha := int64(100)
	f := newScenarioStore()
	ctx := context.Background()

	out, err := Explain(ctx, f, logging.Noop(), 1, &alpha, "approve_budget", GroupDepthBound)
	require.NoError(t, err)

	assert.True(t, out.Decision)
	assert.Equal(t, 2500.0, out.Value)
	assert.Contains(t, out.Reason, "Marketing")
	require.Len(t, out.Trace, 2)
	assert.Equal(t, StatusApplied, out.Trace[0].Status)
	assert.Equal(t, "Marketing", out.Trace[0].Source)
	assert.Equal(t, StatusOverridden, out.Trace[1].Status)
	assert.Equal(t, "Editors", out.Trace[1].Source)
}

func TestExplainEmptyCandidateSet(t *testing.T) {
	alpha := int64(100)
	f := newScenarioStore()
	out, err := Explain(context.Background(), f, logging.Noop(), 1, &alpha, "approve_nonexistent", GroupDepthBound)
	require.NoError(t, err)
	assert.False(t, out.Decision)
	assert.Nil(t, out.Value)
	assert.Equal(t, "No rule found granting this right.", out.Reason)
	assert.Empty(t, out.Trace)
}

func TestRankOrdering(t *testing.T) {
	// Context specificity dominates source, which dominates distance.
	specificUser := Candidate{ContextKind: ContextSpecific, SourceKind: SourceUser, Distance: 0}
	globalUser := Candidate{ContextKind: ContextGlobal, SourceKind: SourceUser, Distance: 0}
	specificGroupFar := Candidate{ContextKind: ContextSpecific, SourceKind: SourceGroup, Distance: 9}
	globalGroupNear := Candidate{ContextKind: ContextGlobal, SourceKind: SourceGroup, Distance: 1}

	assert.Less(t, Rank(specificUser), Rank(globalUser))
	assert.Less(t, Rank(specificGroupFar), Rank(globalGroupNear))
	assert.Less(t, Rank(specificUser), Rank(specificGroupFar))
}

func TestWinnerRangeTieBreak(t *testing.T) {
	a := Candidate{RightType: RightRange, RangeValue: f64(100), SourceID: 2, RoleName: "a"}
	b := Candidate{RightType: RightRange, RangeValue: f64(200), SourceID: 1, RoleName: "b"}
	w, ok := Winner([]Candidate{a, b})
	require.True(t, ok)
	assert.Equal(t, 200.0, *w.RangeValue)
}

func TestWinnerBooleanDeterministicTieBreak(t *testing.T) {
	a := Candidate{RightType: RightBoolean, SourceID: 5, RoleName: "z"}
	b := Candidate{RightType: RightBoolean, SourceID: 3, RoleName: "a"}
	w, ok := Winner([]Candidate{a, b})
	require.True(t, ok)
	assert.Equal(t, int64(3), w.SourceID)
}

func TestClosureDepthBoundary(t *testing.T) {
	// A ten-hop chain resolves fully; an eleven-hop chain truncates the
	// last hop with a warning rather than an error.
	f := &fixtureStore{
		users:       map[int64]string{1: "u"},
		groups:      map[int64]string{},
		memberships: map[int64][]int64{1: {1}},
		subgroups:   map[int64]int64{},
	}
	for i := int64(1); i <= 11; i++ {
		f.groups[i] = "g"
		if i > 1 {
			f.subgroups[i-1] = i
		}
	}
	// group_context_roles on group 11 (distance 10) and a synthetic
	// group 12 (distance 11, beyond the bound) to prove truncation.
	f.groups[12] = "g12"
	f.subgroups[11] = 12
	alpha := int64(100)
	f.groupRoles = []assignment{
		{subjectID: 11, contextID: nil, roleName: "Reader"},
		{subjectID: 12, contextID: nil, roleName: "Reader"},
	}
	f.roleRights = map[string][]roleRight{"Reader": {{rightName: "view_article", rightType: RightBoolean}}}
	f.contexts = map[int64]string{alpha: "Alpha"}

	cs, err := Enumerate(context.Background(), f, logging.Noop(), 1, nil, "view_article", GroupDepthBound)
	require.NoError(t, err)

	var sawDepth10, sawDepth11 bool
	for _, c := range cs {
		if c.Distance == 10 {
			sawDepth10 = true
		}
		if c.Distance == 11 {
			sawDepth11 = true
		}
	}
	assert.True(t, sawDepth10, "depth exactly at the bound must resolve")
	assert.False(t, sawDepth11, "depth beyond the bound must be truncated")
}

func TestGlobalContextQueryIgnoresSpecificAssignments(t *testing.T) {
	f := newScenarioStore()
	cs, err := Enumerate(context.Background(), f, logging.Noop(), 2, nil, "publish_article", GroupDepthBound)
	require.NoError(t, err)
	assert.Empty(t, cs, "null context_id must ignore specific-context assignments entirely")
}
