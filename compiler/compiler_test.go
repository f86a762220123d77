package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snek-lang/snekc/parser"
)

// compile is a small test helper: parse src and run it through the
// full compiler, failing the test immediately on either error so the
// individual test bodies only have to deal with the happy path.
func compile(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse(src)
	assert.NoError(t, err)
	out, err := New(prog).Compile()
	assert.NoError(t, err)
	return out
}

func TestCompileValidProgramsProduceOutput(t *testing.T) {
	tests := []string{
		"1",
		"(+ 1 2)",
		"(let ((x 5)) (* x x))",
		"(if (> 3 2) 1 0)",
		"(loop (break 1))",
		"(block (print 1) (print 2) 3)",
		"(tuple 1 2 3)",
		"(fun (fact n) (if (= n 0) 1 (* n (fact (sub1 n))))) (fact input)",
	}

	for _, src := range tests {
		out := compile(t, src)
		assert.Contains(t, out, "our_code_starts_here")
		assert.Contains(t, out, "ret")
	}
}

func TestCompileEmitsFixedExternsAndDataSection(t *testing.T) {
	out := compile(t, "1")
	assert.Contains(t, out, "extern snek_error")
	assert.Contains(t, out, "extern snek_print")
	assert.Contains(t, out, "extern snek_try_gc")
	assert.Contains(t, out, "heap_end: .quad 0")
	assert.Contains(t, out, "stack_base: .quad 0")
}

func TestCompileEmitsOneLabelPerFunctionDefinition(t *testing.T) {
	out := compile(t, "(fun (double n) (+ n n)) (double 21)")
	assert.Contains(t, out, "snek_fn_double:")
}

func TestCompileEmitsIntelSyntaxDirectiveFirst(t *testing.T) {
	out := compile(t, "1")
	assert.True(t, strings.HasPrefix(out, ".intel_syntax noprefix\n"))
}

func TestSetDebugInsertsDebugBreakComment(t *testing.T) {
	prog, err := parser.Parse("1")
	assert.NoError(t, err)

	c := New(prog)
	c.SetDebug(true)
	out, err := c.Compile()
	assert.NoError(t, err)
	assert.Contains(t, out, "Debug-break")
}

func TestCompileRejectsUnboundVariable(t *testing.T) {
	prog, err := parser.Parse("x")
	assert.NoError(t, err)
	_, err = New(prog).Compile()
	assert.ErrorIs(t, err, ErrUnboundVariable)
}

func TestCompileRejectsBreakOutsideLoop(t *testing.T) {
	prog, err := parser.Parse("(break 1)")
	assert.NoError(t, err)
	_, err = New(prog).Compile()
	assert.ErrorIs(t, err, ErrBreakOutsideLoop)
}

func TestCompileRejectsUndefinedFunction(t *testing.T) {
	prog, err := parser.Parse("(ghost 1)")
	assert.NoError(t, err)
	_, err = New(prog).Compile()
	assert.ErrorIs(t, err, ErrUndefinedFunction)
}

func TestCompileRejectsCallArityMismatch(t *testing.T) {
	prog, err := parser.Parse("(fun (f x y) (+ x y)) (f 1)")
	assert.NoError(t, err)
	_, err = New(prog).Compile()
	assert.ErrorIs(t, err, ErrArityMismatch)
}

func TestCompileRejectsDuplicateLetBinding(t *testing.T) {
	prog, err := parser.Parse("(let ((x 1) (x 2)) x)")
	assert.NoError(t, err)
	_, err = New(prog).Compile()
	assert.ErrorIs(t, err, ErrDuplicateBinding)
}

func TestCompileRejectsInputReferencedInsideFunBody(t *testing.T) {
	// "input" is only ever bound in main's environment; referencing it
	// from within a fun body is just another unbound-variable error.
	prog, err := parser.Parse("(fun (f x) (+ x input)) (f 1)")
	assert.NoError(t, err)
	_, err = New(prog).Compile()
	assert.ErrorIs(t, err, ErrUnboundVariable)
}

func TestCompileMainCapturesStackBaseBeforeAllocatingItsFrame(t *testing.T) {
	out := compile(t, "1")
	lines := strings.Split(out, "\n")
	entryIdx, stackBaseIdx, pushRbpIdx := -1, -1, -1
	for i, l := range lines {
		switch {
		case strings.Contains(l, "our_code_starts_here:"):
			entryIdx = i
		case strings.Contains(l, "mov qword ptr [stack_base], rsp"):
			stackBaseIdx = i
		case entryIdx >= 0 && pushRbpIdx < 0 && strings.Contains(l, "push rbp"):
			pushRbpIdx = i
		}
	}
	assert.Greater(t, stackBaseIdx, entryIdx)
	assert.Greater(t, pushRbpIdx, stackBaseIdx)
}
