package annotation

import "github.com/pkg/errors"

var (
	// ErrMalformedReference marks a chain entry that could not be parsed. It is
	// only ever recorded as a diagnostic, never returned from Build.
	ErrMalformedReference = errors.New("malformed reference")
	// ErrOutOfRange is returned for line numbers outside [1, Len()].
	ErrOutOfRange = errors.New("line number out of range")
	// ErrIOFailure is returned when the annotated input cannot be read.
	ErrIOFailure = errors.New("annotated input could not be read")
	// ErrNotReloadable is returned when the current index came from a stream.
	ErrNotReloadable = errors.New("input cannot be reloaded")
)
