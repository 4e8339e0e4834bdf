package store

import (
	"errors"
	"fmt"
)

// Domain errors. Infrastructure failures (unreachable database, I/O errors)
// propagate as ordinary wrapped errors and never match these sentinels, so
// retry logic can tell a domain conflict from a transient outage.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("conflict")
)

// ValidationError reports client-correctable input problems keyed by field.
// It never reaches the transactional boundary.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
