package compiler

import "fmt"

// CompileError is one diagnostic raised while compiling a single chunk.
// The compiler accumulates these into a *multierror.Error instead of
// stopping at the first one (spec §7: "reports all compile-time errors
// it can find in one pass").
type CompileError struct {
	Line    int
	Where   string
	Message string
}

func (e *CompileError) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at %s: %s", e.Line, e.Where, e.Message)
}
