// Package artifact persists the rendered report. Writers are all-or-nothing:
// a failed write never leaves a partial document at the target location.
package artifact

import (
	"context"
	"fmt"
)

// Writer stores one finished document
type Writer interface {
	Write(ctx context.Context, data []byte) error
	Location() string
}

// PersistenceError is returned when the artifact cannot be stored
type PersistenceError struct {
	Location string
	Cause    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("writing artifact %s: %v", e.Location, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
