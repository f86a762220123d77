package snekrt

import "github.com/snek-lang/snekc/internal/value"

// ErrorMessage returns the diagnostic text the runtime prints for a
// given error code, the same fixed code-to-message table
// _examples/original_source/runtime/start.rs's snek_error hardcodes,
// extended to the fuller seven-code set spec.md §4.D's error-label
// contract fixes (the original only ever had four).
func ErrorMessage(code value.ErrCode) string {
	switch code {
	case value.ErrNotBool:
		return "invalid argument: expected a boolean"
	case value.ErrNotNumber:
		return "invalid argument: expected a number"
	case value.ErrEqualityType:
		return "invalid argument: cannot compare values of different types"
	case value.ErrOverflow:
		return "overflow"
	case value.ErrNotTuple:
		return "invalid argument: expected a tuple"
	case value.ErrOutOfBounds:
		return "index out of bounds"
	case value.ErrNilDeref:
		return "nil dereference"
	case value.ErrOutOfMemory:
		return "out of memory"
	default:
		return "an error occurred"
	}
}
