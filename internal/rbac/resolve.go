package rbac

import (
	"context"
	"fmt"

	"github.com/rolemanager/rbac-engine/internal/logging"
	"github.com/rolemanager/rbac-engine/internal/store"
)

// TraceStatus names a row's standing in an explain trace.
type TraceStatus string

const (
	StatusApplied    TraceStatus = "APPLIED"
	StatusOverridden TraceStatus = "OVERRIDDEN"
)

// TraceEntry is one annotated row of an explain trace.
type TraceEntry struct {
	Source      string      `json:"source"`
	Role        string      `json:"role"`
	Context     string      `json:"context"`
	Value       any         `json:"value"`
	Specificity int         `json:"specificity"`
	Status      TraceStatus `json:"status"`
}

// Explanation is the full diagnostic output of Explain.
type Explanation struct {
	TraceID  string       `json:"trace_id"`
	Decision bool         `json:"decision"`
	Value    any          `json:"value"`
	Reason   string       `json:"reason"`
	Trace    []TraceEntry `json:"trace"`
}

// Resolve implements the fast path: enumerate every candidate for
// (userID, contextID), rank them, and keep one winner per right. The
// result is the two-level cache's payload.
func Resolve(ctx context.Context, q store.Tx, logger *logging.Logger, userID int64, contextID *int64, depthBound int) (map[string]any, error) {
	candidates, err := Enumerate(ctx, q, logger, userID, contextID, "", depthBound)
	if err != nil {
		return nil, fmt.Errorf("rbac: resolve: %w", err)
	}
	RankAll(candidates)

	byRight := make(map[string][]Candidate)
	for _, c := range candidates {
		byRight[c.RightName] = append(byRight[c.RightName], c)
	}

	result := make(map[string]any, len(byRight))
	for name, cs := range byRight {
		if w, ok := Winner(cs); ok {
			result[name] = w.Value()
		}
	}
	return result, nil
}

// Explain implements the diagnostic path: the same candidate set,
// restricted to one right, annotated with APPLIED / OVERRIDDEN status
// and sorted with the winner first.
func Explain(ctx context.Context, q store.Tx, logger *logging.Logger, userID int64, contextID *int64, rightName string, depthBound int) (Explanation, error) {
	candidates, err := Enumerate(ctx, q, logger, userID, contextID, rightName, depthBound)
	if err != nil {
		return Explanation{}, fmt.Errorf("rbac: explain: %w", err)
	}
	if len(candidates) == 0 {
		return Explanation{
			Decision: false,
			Value:    nil,
			Reason:   "No rule found granting this right.",
			Trace:    []TraceEntry{},
		}, nil
	}

	RankAll(candidates)
	winnerIdx, _ := WinnerIndex(candidates)
	ordered := SortTrace(candidates, winnerIdx)

	trace := make([]TraceEntry, len(ordered))
	for i, c := range ordered {
		status := StatusOverridden
		if i == 0 {
			status = StatusApplied
		}
		trace[i] = TraceEntry{
			Source:      c.SourceName,
			Role:        c.RoleName,
			Context:     c.ContextName,
			Value:       c.Value(),
			Specificity: c.Specificity,
			Status:      status,
		}
	}

	winner := ordered[0]
	return Explanation{
		Decision: true,
		Value:    winner.Value(),
		Reason:   fmt.Sprintf("Right granted by role %q from source %q in context %q.", winner.RoleName, winner.SourceName, winner.ContextName),
		Trace:    trace,
	}, nil
}
