package pipeline

import (
	"errors"
	"fmt"
)

// ErrPrecondition marks failures detected before any stage ran (missing raw
// source files or landing objects). The pipeline performs no side effects
// when it fails on a precondition.
var ErrPrecondition = errors.New("precondition failed")

// MissingColumnError reports a raw table without one of its required
// columns. Malformed input fails the whole cleaning stage; there is no
// partial output.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("table %q is missing required column %q", e.Table, e.Column)
}
