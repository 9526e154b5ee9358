package vm

import "fmt"

// RuntimeError is raised by the running chunk itself — a type mismatch,
// an undefined global, anything the compiler couldn't have caught ahead
// of time. At most one is ever produced per Run call: execution stops the
// instant one occurs (spec §4.3, unlike compile errors these are not
// accumulated).
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Line, e.Message)
}
