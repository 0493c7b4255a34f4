package dungeon

import (
	"errors"
	"fmt"
)

var (
	// ErrSanityExceeded means a bounded search gave up. The constants do not
	// fit the map (usually the map is too small), so retrying cannot help.
	ErrSanityExceeded = errors.New("sanity limit exceeded")

	// ErrTooManyAttempts means every attempt up to MaxAttempts was rejected.
	ErrTooManyAttempts = errors.New("too many rejected attempts")

	ErrInvalidSize    = errors.New("invalid map size")
	ErrInvalidParams  = errors.New("invalid generator parameters")
	ErrNoCollaborator = errors.New("missing collaborator")

	// errRejected marks a whole-attempt rejection; Generate retries on it.
	errRejected = errors.New("attempt rejected")
)

func reject(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errRejected, fmt.Sprintf(format, args...))
}

func insane(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSanityExceeded, fmt.Sprintf(format, args...))
}
