package guard

import (
	"errors"
	"fmt"
)

// ErrFatal matches every FatalError with errors.Is.
var ErrFatal = errors.New("fatal filesystem failure")

// FatalError reports an action that still failed after its last attempt.
// Callers must stop the process when they receive one.
type FatalError struct {
	Kind     ActionKind
	Target   string
	Attempts int
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempt(s): %v", e.Kind, e.Target, e.Attempts, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

func (e *FatalError) Is(target error) bool { return target == ErrFatal }
