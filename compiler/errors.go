package compiler

import "errors"

// These sentinels mark the static (compile-time) errors spec.md §4.D
// requires: every one of them is caught by walking the AST before any
// assembly is emitted, the same way skx-math-compiler's Compile returns
// early instead of generating broken output.
var (
	ErrUnboundVariable   = errors.New("unbound variable identifier")
	ErrDuplicateBinding  = errors.New("duplicate binding")
	ErrUndefinedFunction = errors.New("undefined function")
	ErrArityMismatch     = errors.New("arity mismatch")
	ErrBreakOutsideLoop  = errors.New("break outside of a loop")
)
