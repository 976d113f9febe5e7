// Package apperr holds the five sentinel error kinds every collaborator
// package wraps its own errors in. It exists as its own package (rather
// than living directly in the root rolemanager package) so the
// collaborator packages (internal/users, internal/groups, ...) can wrap
// them without creating an import cycle with the root package's facade,
// which imports the collaborators.
package apperr

import "errors"

var (
	// ErrValidation covers empty required fields, malformed values,
	// out-of-bound range values, right type mismatches, circular subgroup
	// attempts and self-parent attempts.
	ErrValidation = errors.New("rolemanager: validation failed")

	// ErrConflict covers uniqueness violations on natural keys and
	// duplicate assignments.
	ErrConflict = errors.New("rolemanager: conflict")

	// ErrDependency covers deletes blocked by protective references.
	ErrDependency = errors.New("rolemanager: dependency exists")

	// ErrNotFound covers lookups with no matching row.
	ErrNotFound = errors.New("rolemanager: not found")

	// ErrInfrastructure covers store, cache, and logger transport failures
	// that are not a normal outcome of a well-formed request.
	ErrInfrastructure = errors.New("rolemanager: infrastructure failure")
)
