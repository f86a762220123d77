package compiler

import (
	"github.com/samber/lo"

	"github.com/snek-lang/snekc/ast"
)

// depth is the conservative stack-depth analysis of spec.md §4.D: the
// maximum number of extra rbp-relative local slots any single
// subexpression can have simultaneously live at once, used to size a
// function's frame before a single instruction of its body is emitted.
//
// It is conservative rather than exact on purpose — a tighter analysis
// would require tracking slot lifetimes across sibling subexpressions,
// which this compiler, like the original Boa/Snek prototype it is
// grounded on, does not attempt. Overestimating wastes a few stack
// words; underestimating corrupts the frame.
func depth(e ast.Expr) int {
	switch e := e.(type) {
	case *ast.IntLit, *ast.BoolLit, *ast.NilLit, *ast.Id:
		return 0

	case *ast.UnOp:
		return depth(e.Operand)

	case *ast.BinOp:
		// Binary operators reserve one extra slot to hold the first
		// operand while the second is evaluated.
		return 1 + max(depth(e.Left), depth(e.Right))

	case *ast.If:
		return max(depth(e.Cond), max(depth(e.Then), depth(e.Else)))

	case *ast.Loop:
		return depth(e.Body)

	case *ast.Break:
		return depth(e.Value)

	case *ast.Set:
		return depth(e.Value)

	case *ast.Block:
		return lo.Max(lo.Map(e.Exprs, func(sub ast.Expr, _ int) int { return depth(sub) }))

	case *ast.Let:
		inits := lo.Map(e.Bindings, func(b ast.Binding, _ int) ast.Expr { return b.Init })
		return max(sequentialDepth(inits), len(e.Bindings)+depth(e.Body))

	case *ast.TupleLit:
		return max(len(e.Elems), sequentialDepth(e.Elems))

	case *ast.Call:
		return max(len(e.Args), sequentialDepth(e.Args))

	default:
		return 0
	}
}

// sequentialDepth bounds the slots live while evaluating a list of
// subexpressions one at a time into successive stack slots: by the
// time subexpression i is evaluated, slots 0..i-1 are already occupied
// by its predecessors' results.
func sequentialDepth(exprs []ast.Expr) int {
	d := 0
	for i, e := range exprs {
		if v := i + depth(e); v > d {
			d = v
		}
	}
	return d
}

// frameSize rounds depth(e) up to an even word count and converts it to
// a byte count, matching spec.md §4.D's "rounds the result up to an
// even slot count before multiplying by 8, keeping call sites aligned
// to 16 bytes" rule.
func frameSize(words int) int {
	if words%2 != 0 {
		words++
	}
	return words * 8
}
