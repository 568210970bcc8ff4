package engine

import "fmt"

// The engine reports expected rule violations as InvalidMove events, never
// as panics. The helpers below cover the other channel: lookups the
// validator has already guaranteed to succeed. If one fires, the state
// violates the engine's own invariants and the caller should treat it as a
// bug, not a recoverable rejection.

// invariant panics with msg when cond is false.
func invariant(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}

// invariantf is invariant with formatting.
func invariantf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
