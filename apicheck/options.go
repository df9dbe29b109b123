package apicheck

import "errors"

var (
	// ErrNotFound is returned when a package or class is requested from both
	// snapshots but one of them does not contain it.
	ErrNotFound = errors.New("element not found")

	// ErrKindMismatch is returned when two members of different kinds are
	// paired for comparison. It aborts the whole run.
	ErrKindMismatch = errors.New("member kind mismatch")
)

// Options configures one comparison run.
type Options struct {
	// ExcludedPackages are skipped on both sides.
	ExcludedPackages []string
	// OverloadWarnings enables the OVERLOADED_METHOD_CALL heuristic.
	OverloadWarnings bool
	// SkipNonInstantiableInstanceMembers drops non-static fields and methods
	// of classes that cannot be instantiated from the API surface.
	SkipNonInstantiableInstanceMembers bool
	// IncludeCompatible keeps COMPATIBLE and COMPATIBLE_WITH records in the
	// result.
	IncludeCompatible bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		OverloadWarnings: true,
	}
}

func (o Options) excluded() map[string]bool {
	set := make(map[string]bool, len(o.ExcludedPackages))
	for _, p := range o.ExcludedPackages {
		set[p] = true
	}
	return set
}
