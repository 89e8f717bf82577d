package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes every layer agrees on. Callers
// classify with the Is* predicates rather than matching error strings.
var (
	// ErrNotFound reports that a node, edge, or preset does not exist
	// (or has been soft-deleted and the caller did not ask for deleted rows).
	ErrNotFound = errors.New("not found")

	// ErrInvalidData reports input that fails validation: empty names,
	// out-of-range coordinates, malformed filter expressions.
	ErrInvalidData = errors.New("invalid data")

	// ErrConflict reports an optimistic-concurrency failure: the stored
	// version no longer matches the version the caller read.
	ErrConflict = errors.New("conflict")

	// ErrDependencyMissing reports an operation that needs a collaborator
	// the caller never wired in, such as a cascade delete without an edge store.
	ErrDependencyMissing = errors.New("dependency missing")
)

// NotFoundf wraps ErrNotFound with a formatted detail message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Invalidf wraps ErrInvalidData with a formatted detail message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidData, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err is classified as ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidData reports whether err is classified as ErrInvalidData.
func IsInvalidData(err error) bool { return errors.Is(err, ErrInvalidData) }

// IsConflict reports whether err is classified as ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsDependencyMissing reports whether err is classified as ErrDependencyMissing.
func IsDependencyMissing(err error) bool { return errors.Is(err, ErrDependencyMissing) }
