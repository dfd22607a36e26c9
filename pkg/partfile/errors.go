package partfile

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy of §7: construction/argument validation,
// pre-existing files, malformed containers, inconsistent geometry, reads of
// chunks not yet written, reads before geometry is resolved, and
// unsupported operations on the read-stream adapter. Filesystem errors are
// passed through unwrapped rather than mapped onto one of these.
var (
	ErrInvalidArgument = errors.New("partfile: invalid argument")
	ErrAlreadyExists   = errors.New("partfile: already exists")
	ErrInvalidFormat   = errors.New("partfile: invalid format")
	ErrInvalidGeometry = errors.New("partfile: invalid geometry")
	ErrMissingChunk    = errors.New("partfile: missing chunk")
	ErrNotReady        = errors.New("partfile: not ready")
	ErrNotSupported    = errors.New("partfile: not supported")
)

func errInvalidArgument(filename, field string, value any) error {
	return fmt.Errorf("partfile %q: invalid argument %s=%v: %w", filename, field, value, ErrInvalidArgument)
}

func errAlreadyExists(filename, path string) error {
	return fmt.Errorf("partfile %q: %s already exists: %w", filename, path, ErrAlreadyExists)
}

func errMissingChunk(filename string, chunkID int64) error {
	return fmt.Errorf("partfile %q: chunk %d not written: %w", filename, chunkID, ErrMissingChunk)
}

func errNotReady(filename, reason string) error {
	return fmt.Errorf("partfile %q: not ready: %s: %w", filename, reason, ErrNotReady)
}

func errNotSupported(op string) error {
	return fmt.Errorf("partfile: %s: %w", op, ErrNotSupported)
}
