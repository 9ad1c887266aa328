package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNoState is returned by loaders when nothing has been persisted yet.
	ErrNoState = errors.New("no saved ledger state")

	// ErrCorruptState marks persisted state that cannot be decoded.
	ErrCorruptState = errors.New("corrupt ledger state")

	// ErrVersionConflict is returned by the compare-and-swap session calls
	// when another writer committed first.
	ErrVersionConflict = errors.New("ledger version conflict")

	// ErrPersist wraps a store failure after a mutation was committed in memory.
	ErrPersist = errors.New("persist ledger state")
)

// ValidationError rejects an operation before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
