// Package rbac implements the core resolution logic: the group closure
// resolver, the candidate enumerator, the specificity ranker, and the two
// resolver variants (fast path and explain path). Everything here is pure
// decision logic over rows the store adapter hands back — no HTTP, no
// session, no caching (that's internal/cache).
package rbac

import "fmt"

// SourceKind names where a candidate rule came from.
type SourceKind string

const (
	SourceUser  SourceKind = "user"
	SourceGroup SourceKind = "group"
)

// ContextKind names whether a candidate's context is the specific one
// being queried or the Global Context.
type ContextKind string

const (
	ContextSpecific ContextKind = "specific"
	ContextGlobal   ContextKind = "global"
)

// RightType mirrors right.type.
type RightType string

const (
	RightBoolean RightType = "boolean"
	RightRange   RightType = "range"
)

// GlobalContextName is the literal display name for the null context.
const GlobalContextName = "Global"

// GroupDepthBound is the safety cap on closure traversal. The default
// here matches config.Options.GroupDepthBound; callers that load config
// should pass its value through instead of relying on this.
const GroupDepthBound = 10

// OnTruncate, when non-nil, is called with the number of rows dropped
// each time Closure or Enumerate hits depthBound. The root engine wires
// this to its truncation counter so this package doesn't need to import
// internal/metrics, the same reasoning as cache.TwoLevel's hooks.
var OnTruncate func(n int)

// Group is a single entry of the group closure G(u): a reachable group id
// paired with the minimum hop distance at which it was reached.
type Group struct {
	ID       int64
	Name     string
	Distance int
}

// Candidate is one rule that might grant a right.
type Candidate struct {
	SourceKind     SourceKind
	SourceID       int64
	SourceName     string
	RoleName       string
	ContextKind    ContextKind
	ContextName    string
	RightName      string
	RightType      RightType
	RangeValue     *float64 // nil for boolean rights
	Distance       int      // 0 for user sources
	Specificity    int      // filled in by Rank
}

// Value returns the candidate's granted value: true for boolean rights,
// the raw decimal for range rights.
func (c Candidate) Value() any {
	if c.RightType == RightRange {
		if c.RangeValue == nil {
			return nil
		}
		return *c.RangeValue
	}
	return true
}

// String renders a citation suitable for explain reasons and log fields.
func (c Candidate) String() string {
	return fmt.Sprintf("role %q from %q in context %q", c.RoleName, c.SourceName, c.ContextName)
}
