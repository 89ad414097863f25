package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for well-known failure conditions that cross package
// boundaries.  Callers should use [errors.Is] to match these.
var (
	// ErrCredentialNotFound means no session credential is stored for the
	// requested username.
	ErrCredentialNotFound = errors.New("session credential not found")

	// ErrUnsupportedPuzzle means no solver is registered for the key.
	ErrUnsupportedPuzzle = errors.New("unsupported puzzle")

	// ErrInvalidPuzzleKey indicates a zero year or day.
	ErrInvalidPuzzleKey = errors.New("invalid puzzle key")

	// ErrMissingUser is returned when no current user is configured.
	ErrMissingUser = errors.New("current user is not configured")
)

// Kind classifies a resolution failure so the boundary layer can map it
// to a status code without inspecting messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindStore
	KindUpstream
	KindUnsupported
	KindCacheWrite
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindStore:
		return "store"
	case KindUpstream:
		return "upstream"
	case KindUnsupported:
		return "unsupported"
	case KindCacheWrite:
		return "cache_write"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with its kind, operation, and puzzle key.
type Error struct {
	Kind Kind
	Op   string
	Key  PuzzleKey
	Err  error
}

func (e *Error) Error() string {
	if e.Key.Valid() {
		return fmt.Sprintf("puzzle %s: %s: %v", e.Key, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first [*Error] in err's chain, or
// [KindUnknown] when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
