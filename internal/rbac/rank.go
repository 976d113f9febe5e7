package rbac

import "sort"

// Rank assigns the packed specificity key to a candidate.
// Smaller is stronger. The multipliers (100, 10) dominate the maximum
// value of the less significant dimension (distance is capped at
// GroupDepthBound = 10) so the dimensions never bleed into each other.
func Rank(c Candidate) int {
	contextBucket := 0
	if c.ContextKind != ContextSpecific {
		contextBucket = 1
	}
	sourceBucket := 1
	if c.SourceKind != SourceUser {
		sourceBucket = 2
	}
	distance := 0
	if c.SourceKind == SourceGroup {
		distance = c.Distance
	}
	return contextBucket*100 + sourceBucket*10 + distance
}

// RankAll fills in Specificity for every candidate in place.
func RankAll(cs []Candidate) {
	for i := range cs {
		cs[i].Specificity = Rank(cs[i])
	}
}

// Winner picks the single strongest candidate for one right: lowest
// specificity wins; ties among range candidates go to the greater raw
// value; ties among boolean candidates (immaterial, both imply true)
// resolve deterministically by (source_id, role_name).
func Winner(cs []Candidate) (Candidate, bool) {
	idx, ok := WinnerIndex(cs)
	if !ok {
		return Candidate{}, false
	}
	return cs[idx], true
}

// WinnerIndex is Winner, but returns the index into cs so callers (the
// explain path) can build a stable trace around it.
func WinnerIndex(cs []Candidate) (int, bool) {
	if len(cs) == 0 {
		return 0, false
	}
	best := 0
	for i := 1; i < len(cs); i++ {
		if isStronger(cs[i], cs[best]) {
			best = i
		}
	}
	return best, true
}

// isStronger reports whether a beats b under the specificity ordering.
func isStronger(a, b Candidate) bool {
	if a.Specificity != b.Specificity {
		return a.Specificity < b.Specificity
	}
	if a.RightType == RightRange && b.RightType == RightRange {
		av, bv := valueOf(a.RangeValue), valueOf(b.RangeValue)
		if av != bv {
			return av > bv
		}
	}
	// Deterministic fallback: (source_id, role_name) ascending, first
	// encountered in that order "wins" by not losing to later entries.
	if a.SourceID != b.SourceID {
		return a.SourceID < b.SourceID
	}
	return a.RoleName < b.RoleName
}

func valueOf(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// SortTrace orders an explain trace: the winner first, then the rest by
// ascending specificity, stable on ties.
func SortTrace(cs []Candidate, winnerIdx int) []Candidate {
	if len(cs) == 0 {
		return cs
	}
	winner := cs[winnerIdx]
	rest := make([]Candidate, 0, len(cs)-1)
	for i, c := range cs {
		if i == winnerIdx {
			continue
		}
		rest = append(rest, c)
	}
	sort.SliceStable(rest, func(i, j int) bool {
		if rest[i].Specificity != rest[j].Specificity {
			return rest[i].Specificity < rest[j].Specificity
		}
		if rest[i].SourceID != rest[j].SourceID {
			return rest[i].SourceID < rest[j].SourceID
		}
		return rest[i].RoleName < rest[j].RoleName
	})
	out := make([]Candidate, 0, len(cs))
	out = append(out, winner)
	out = append(out, rest...)
	return out
}
