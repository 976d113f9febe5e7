package rolemanager

import "github.com/rolemanager/rbac-engine/internal/apperr"

// Sentinel errors for the five kinds of failure this engine reports.
// Collaborator packages wrap the same values (via internal/apperr, to
// avoid an import cycle with this facade package) with
// fmt.Errorf("...: %w", ErrX) so callers can keep using errors.Is
// regardless of which package raised the error.
var (
	// ErrValidation covers empty required fields, malformed values,
	// out-of-bound range values, right type mismatches, circular subgroup
	// attempts and self-parent attempts.
	ErrValidation = apperr.ErrValidation

	// ErrConflict covers uniqueness violations on natural keys and
	// duplicate assignments.
	ErrConflict = apperr.ErrConflict

	// ErrDependency covers deletes blocked by protective references.
	ErrDependency = apperr.ErrDependency

	// ErrNotFound covers lookups with no matching row.
	ErrNotFound = apperr.ErrNotFound

	// ErrInfrastructure covers store, cache, and logger transport failures
	// that are not a normal outcome of a well-formed request.
	ErrInfrastructure = apperr.ErrInfrastructure
)
