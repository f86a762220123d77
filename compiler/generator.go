// generator.go contains one genXxx method per AST construct, the same
// role skx-math-compiler's generator.go plays for its own instruction
// set — except each method here returns a slice of asm.Instr values
// built from the closed instruction IR instead of a raw string
// template, so there is nothing left to escape or placeholder-replace.
package compiler

import (
	"fmt"

	"github.com/snek-lang/snekc/asm"
	"github.com/snek-lang/snekc/ast"
	"github.com/snek-lang/snekc/internal/value"
)

func reg(r asm.Reg) asm.Register   { return asm.Register{Reg: r} }
func imm(n int64) asm.Imm          { return asm.Imm{Value: n} }
func local(si int64) asm.RegOffset { return asm.RegOffset{Reg: asm.RBP, Offset: si * 8} }
func lbl(name string) asm.LabelRef { return asm.LabelRef{Name: name} }

// genExpr dispatches on the AST node's dynamic type and lowers it into
// a sequence of instructions that leaves its result in rax. si is the
// next free local stack slot (an rbp-relative index, not a byte
// offset); brk is the label `break` should jump to, or "" outside any
// loop.
func (c *Compiler) genExpr(e ast.Expr, env env, si int64, brk string) ([]asm.Instr, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return []asm.Instr{asm.Mov{Dst: reg(asm.RAX), Src: imm(int64(value.Encode(e.Value)))}}, nil

	case *ast.BoolLit:
		return []asm.Instr{asm.Mov{Dst: reg(asm.RAX), Src: imm(int64(value.Bool(e.Value)))}}, nil

	case *ast.NilLit:
		return []asm.Instr{asm.Mov{Dst: reg(asm.RAX), Src: imm(int64(value.Nil))}}, nil

	case *ast.Id:
		return c.genId(e, env)

	case *ast.UnOp:
		return c.genUnOp(e, env, si, brk)

	case *ast.BinOp:
		return c.genBinOp(e, env, si, brk)

	case *ast.If:
		return c.genIf(e, env, si, brk)

	case *ast.Loop:
		return c.genLoop(e, env, si)

	case *ast.Break:
		return c.genBreak(e, env, si, brk)

	case *ast.Set:
		return c.genSet(e, env, si, brk)

	case *ast.Block:
		return c.genBlock(e, env, si, brk)

	case *ast.Let:
		return c.genLet(e, env, si, brk)

	case *ast.TupleLit:
		return c.genTuple(e, env, si, brk)

	case *ast.Call:
		return c.genCall(e, env, si, brk)

	default:
		return nil, fmt.Errorf("compiler: unhandled expression %T", e)
	}
}

// genId loads a bound identifier's value from its environment slot.
func (c *Compiler) genId(e *ast.Id, env env) ([]asm.Instr, error) {
	offset, ok := env[e.Name]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnboundVariable, e.Name)
	}
	return []asm.Instr{asm.Mov{Dst: reg(asm.RAX), Src: asm.RegOffset{Reg: asm.RBP, Offset: offset}}}, nil
}

// checkNum emits the "rax's low bit marks it as an encoded integer"
// tag check used by add1/sub1.
func checkNum(failLabel string) []asm.Instr {
	return []asm.Instr{
		asm.Test{Dst: reg(asm.RAX), Src: imm(1)},
		asm.Jne{Target: lbl(failLabel)},
	}
}

func (c *Compiler) genUnOp(e *ast.UnOp, env env, si int64, brk string) ([]asm.Instr, error) {
	operand, err := c.genExpr(e.Operand, env, si, brk)
	if err != nil {
		return nil, err
	}
	out := append([]asm.Instr{}, operand...)

	switch e.Op {
	case ast.Add1:
		out = append(out, checkNum(labelNotNum)...)
		out = append(out,
			asm.Add{Dst: reg(asm.RAX), Src: imm(int64(value.Encode(1)))},
			asm.Jo{Target: lbl(labelOverflow)},
		)
	case ast.Sub1:
		out = append(out, checkNum(labelNotNum)...)
		out = append(out,
			asm.Sub{Dst: reg(asm.RAX), Src: imm(int64(value.Encode(1)))},
			asm.Jo{Target: lbl(labelOverflow)},
		)
	case ast.IsNum:
		out = append(out,
			asm.Mov{Dst: reg(asm.RBX), Src: reg(asm.RAX)},
			asm.And{Dst: reg(asm.RBX), Src: imm(1)},
			asm.Mov{Dst: reg(asm.RAX), Src: imm(int64(value.False))},
			asm.Mov{Dst: reg(asm.RCX), Src: imm(int64(value.True))},
			asm.Cmp{Dst: reg(asm.RBX), Src: imm(0)},
			asm.CMovE{Dst: reg(asm.RAX), Src: reg(asm.RCX)},
		)
	case ast.IsBool:
		out = append(out,
			asm.Mov{Dst: reg(asm.RBX), Src: reg(asm.RAX)},
			asm.And{Dst: reg(asm.RBX), Src: imm(0b11)},
			asm.Mov{Dst: reg(asm.RAX), Src: imm(int64(value.False))},
			asm.Mov{Dst: reg(asm.RCX), Src: imm(int64(value.True))},
			asm.Cmp{Dst: reg(asm.RBX), Src: imm(0b11)},
			asm.CMovE{Dst: reg(asm.RAX), Src: reg(asm.RCX)},
		)
	case ast.Print:
		out = append(out,
			asm.Mov{Dst: reg(asm.RDI), Src: reg(asm.RAX)},
			asm.Call{Target: lbl(runtimePrint)},
		)
	default:
		return nil, fmt.Errorf("compiler: unhandled unary operator %s", e.Op)
	}
	return out, nil
}

// genBinOp evaluates Left, spills it to slot si, evaluates Right into
// rax, then combines them. This is the same left-spill-then-right
// shape _examples/original_source/src/compiler.rs's compile_instructions
// uses for Op2, generalized with tag checks and an overflow trap for
// every arithmetic and comparison form spec.md §4.D adds beyond it.
func (c *Compiler) genBinOp(e *ast.BinOp, env env, si int64, brk string) ([]asm.Instr, error) {
	left, err := c.genExpr(e.Left, env, si, brk)
	if err != nil {
		return nil, err
	}
	right, err := c.genExpr(e.Right, env, si+1, brk)
	if err != nil {
		return nil, err
	}

	leftSlot := local(si)
	out := append([]asm.Instr{}, left...)
	out = append(out, asm.Mov{Dst: leftSlot, Src: reg(asm.RAX)})
	out = append(out, right...)

	bothNum := func(failLabel string) []asm.Instr {
		return []asm.Instr{
			asm.Mov{Dst: reg(asm.RBX), Src: reg(asm.RAX)},
			asm.Or{Dst: reg(asm.RBX), Src: leftSlot},
			asm.Test{Dst: reg(asm.RBX), Src: imm(1)},
			asm.Jne{Target: lbl(failLabel)},
		}
	}

	switch e.Op {
	case ast.Plus:
		out = append(out, bothNum(labelNotNum)...)
		out = append(out,
			asm.Add{Dst: reg(asm.RAX), Src: leftSlot},
			asm.Jo{Target: lbl(labelOverflow)},
		)
	case ast.Minus:
		out = append(out, bothNum(labelNotNum)...)
		// The first operand lives in memory and the second in rax, so
		// the subtraction is run in place on the memory slot and the
		// result moved back, keeping the (left - right) order with the
		// operands where they already sit.
		out = append(out,
			asm.Sub{Dst: leftSlot, Src: reg(asm.RAX)},
			asm.Jo{Target: lbl(labelOverflow)},
			asm.Mov{Dst: reg(asm.RAX), Src: leftSlot},
		)
	case ast.Times:
		out = append(out, bothNum(labelNotNum)...)
		// Shift the encoded right operand back down to its plain value
		// before multiplying, so the product comes out already encoded:
		// (n<<1)*m == (n*m)<<1.
		out = append(out,
			asm.Sar{Dst: reg(asm.RAX), Src: imm(1)},
			asm.IMul{Dst: reg(asm.RAX), Src: leftSlot},
			asm.Jo{Target: lbl(labelOverflow)},
		)
	case ast.Equal:
		out = append(out,
			asm.Mov{Dst: reg(asm.RBX), Src: reg(asm.RAX)},
			asm.Xor{Dst: reg(asm.RBX), Src: leftSlot},
			asm.Test{Dst: reg(asm.RBX), Src: imm(1)},
			asm.Jne{Target: lbl(labelInvalidArg)},
			asm.Cmp{Dst: reg(asm.RAX), Src: leftSlot},
			asm.Mov{Dst: reg(asm.RAX), Src: imm(int64(value.False))},
			asm.Mov{Dst: reg(asm.RCX), Src: imm(int64(value.True))},
			asm.CMovE{Dst: reg(asm.RAX), Src: reg(asm.RCX)},
		)
	case ast.Greater, ast.GreaterOrEqual, ast.Less, ast.LessOrEqual:
		out = append(out, bothNum(labelNotNum)...)
		out = append(out,
			asm.Cmp{Dst: leftSlot, Src: reg(asm.RAX)},
			asm.Mov{Dst: reg(asm.RAX), Src: imm(int64(value.False))},
			asm.Mov{Dst: reg(asm.RCX), Src: imm(int64(value.True))},
		)
		switch e.Op {
		case ast.Greater:
			out = append(out, asm.CMovG{Dst: reg(asm.RAX), Src: reg(asm.RCX)})
		case ast.GreaterOrEqual:
			out = append(out, asm.CMovGE{Dst: reg(asm.RAX), Src: reg(asm.RCX)})
		case ast.Less:
			out = append(out, asm.CMovL{Dst: reg(asm.RAX), Src: reg(asm.RCX)})
		case ast.LessOrEqual:
			out = append(out, asm.CMovLE{Dst: reg(asm.RAX), Src: reg(asm.RCX)})
		}
	case ast.Index:
		return c.genIndex(leftSlot, out)
	default:
		return nil, fmt.Errorf("compiler: unhandled binary operator %s", e.Op)
	}
	return out, nil
}

// genIndex implements `(index tuple n)`: left (the tuple) already sits
// in leftSlot, right (the index) in rax, at the point out is handed in.
// It asserts the left operand is neither nil nor a non-tuple and that
// the right operand is a number in bounds, then loads the word at
// tuple[n].
func (c *Compiler) genIndex(leftSlot asm.RegOffset, out []asm.Instr) ([]asm.Instr, error) {
	out = append(out,
		// right must be a number
		asm.Test{Dst: reg(asm.RAX), Src: imm(1)},
		asm.Jne{Target: lbl(labelNotNum)},

		asm.Mov{Dst: reg(asm.RBX), Src: leftSlot},
		asm.Cmp{Dst: reg(asm.RBX), Src: imm(int64(value.Nil))},
		asm.Je{Target: lbl(labelNilDeref)},

		// left must be a tuple reference: low bit 1, and not one of the
		// two boolean singletons (nil was already ruled out above).
		asm.Mov{Dst: reg(asm.RCX), Src: reg(asm.RBX)},
		asm.And{Dst: reg(asm.RCX), Src: imm(1)},
		asm.Cmp{Dst: reg(asm.RCX), Src: imm(1)},
		asm.Jne{Target: lbl(labelNotTuple)},
		asm.Cmp{Dst: reg(asm.RBX), Src: imm(int64(value.False))},
		asm.Je{Target: lbl(labelNotTuple)},
		asm.Cmp{Dst: reg(asm.RBX), Src: imm(int64(value.True))},
		asm.Je{Target: lbl(labelNotTuple)},

		// decode the index
		asm.Mov{Dst: reg(asm.RDX), Src: reg(asm.RAX)},
		asm.Sar{Dst: reg(asm.RDX), Src: imm(1)},
		asm.Cmp{Dst: reg(asm.RDX), Src: imm(0)},
		asm.Jl{Target: lbl(labelOutOfBounds)},

		// untag the tuple reference, then bounds-check against its
		// stored, encoded size.
		asm.Mov{Dst: reg(asm.R8), Src: reg(asm.RBX)},
		asm.Sub{Dst: reg(asm.R8), Src: imm(1)},
		asm.Mov{Dst: reg(asm.R9), Src: asm.Mem{Reg: asm.R8, Disp: 8}},
		asm.Sar{Dst: reg(asm.R9), Src: imm(1)},
		asm.Cmp{Dst: reg(asm.RDX), Src: reg(asm.R9)},
		asm.Jge{Target: lbl(labelOutOfBounds)},

		// byte offset = (index + 2) * 8, skipping the two header words
		asm.Add{Dst: reg(asm.RDX), Src: imm(2)},
		asm.IMul{Dst: reg(asm.RDX), Src: imm(8)},
		asm.Jo{Target: lbl(labelOverflow)},
		asm.Add{Dst: reg(asm.R8), Src: reg(asm.RDX)},
		asm.Mov{Dst: reg(asm.RAX), Src: asm.Mem{Reg: asm.R8}},
	)
	return out, nil
}

func (c *Compiler) genIf(e *ast.If, env env, si int64, brk string) ([]asm.Instr, error) {
	cond, err := c.genExpr(e.Cond, env, si, brk)
	if err != nil {
		return nil, err
	}
	then, err := c.genExpr(e.Then, env, si, brk)
	if err != nil {
		return nil, err
	}
	els, err := c.genExpr(e.Else, env, si, brk)
	if err != nil {
		return nil, err
	}

	elseLabel := c.label("if_else")
	endLabel := c.label("if_end")

	out := append([]asm.Instr{}, cond...)
	out = append(out,
		asm.Cmp{Dst: reg(asm.RAX), Src: imm(int64(value.False))},
		asm.Je{Target: lbl(elseLabel)},
	)
	out = append(out, then...)
	out = append(out, asm.Jmp{Target: lbl(endLabel)}, asm.Label{Name: elseLabel})
	out = append(out, els...)
	out = append(out, asm.Label{Name: endLabel})
	return out, nil
}

func (c *Compiler) genLoop(e *ast.Loop, env env, si int64) ([]asm.Instr, error) {
	startLabel := c.label("loop_start")
	endLabel := c.label("loop_end")

	body, err := c.genExpr(e.Body, env, si, endLabel)
	if err != nil {
		return nil, err
	}

	out := []asm.Instr{asm.Label{Name: startLabel}}
	out = append(out, body...)
	out = append(out, asm.Jmp{Target: lbl(startLabel)}, asm.Label{Name: endLabel})
	return out, nil
}

func (c *Compiler) genBreak(e *ast.Break, env env, si int64, brk string) ([]asm.Instr, error) {
	if brk == "" {
		return nil, ErrBreakOutsideLoop
	}
	val, err := c.genExpr(e.Value, env, si, brk)
	if err != nil {
		return nil, err
	}
	out := append([]asm.Instr{}, val...)
	out = append(out, asm.Jmp{Target: lbl(brk)})
	return out, nil
}

func (c *Compiler) genSet(e *ast.Set, env env, si int64, brk string) ([]asm.Instr, error) {
	offset, ok := env[e.Name]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnboundVariable, e.Name)
	}
	val, err := c.genExpr(e.Value, env, si, brk)
	if err != nil {
		return nil, err
	}
	out := append([]asm.Instr{}, val...)
	out = append(out, asm.Mov{Dst: asm.RegOffset{Reg: asm.RBP, Offset: offset}, Src: reg(asm.RAX)})
	return out, nil
}

func (c *Compiler) genBlock(e *ast.Block, env env, si int64, brk string) ([]asm.Instr, error) {
	var out []asm.Instr
	for _, sub := range e.Exprs {
		instrs, err := c.genExpr(sub, env, si, brk)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	return out, nil
}

// genLet evaluates each binding in turn, storing it to its own slot and
// extending the environment before the next binding (and the body) are
// compiled — so a binding can never see itself, but can see every
// binding before it, matching spec.md §4.C's let semantics.
func (c *Compiler) genLet(e *ast.Let, outerEnv env, si int64, brk string) ([]asm.Instr, error) {
	curEnv := outerEnv
	seen := make(map[string]bool, len(e.Bindings))

	var out []asm.Instr
	for i, b := range e.Bindings {
		if seen[b.Name] {
			return nil, fmt.Errorf("%w %s", ErrDuplicateBinding, b.Name)
		}
		seen[b.Name] = true

		instrs, err := c.genExpr(b.Init, curEnv, si+int64(i), brk)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
		out = append(out, asm.Mov{Dst: local(si + int64(i)), Src: reg(asm.RAX)})
		curEnv = curEnv.extend(b.Name, (si+int64(i))*8)
	}

	body, err := c.genExpr(e.Body, curEnv, si+int64(len(e.Bindings)), brk)
	if err != nil {
		return nil, err
	}
	return append(out, body...), nil
}

// allocTuple emits the shared shape genTuple and genCall's argument
// evaluation both need: evaluate each of exprs left to right, storing
// result i into slot si+i.
func (c *Compiler) allocTuple(exprs []ast.Expr, env env, si int64, brk string) ([]asm.Instr, error) {
	var out []asm.Instr
	for i, e := range exprs {
		instrs, err := c.genExpr(e, env, si+int64(i), brk)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
		out = append(out, asm.Mov{Dst: local(si + int64(i)), Src: reg(asm.RAX)})
	}
	return out, nil
}

// genTuple evaluates every element into successive stack slots, grows
// the heap by one bump-allocation (calling the runtime's try_gc helper
// first if that would overrun the heap end), writes the two header
// words, copies each element in, and leaves the tagged tuple reference
// in rax.
func (c *Compiler) genTuple(e *ast.TupleLit, env env, si int64, brk string) ([]asm.Instr, error) {
	out, err := c.allocTuple(e.Elems, env, si, brk)
	if err != nil {
		return nil, err
	}

	size := int64(len(e.Elems))
	totalBytes := (size + 2) * 8
	okLabel := c.label("tuple_alloc_ok")

	out = append(out,
		asm.Mov{Dst: reg(asm.RBX), Src: reg(asm.R15)},
		asm.Add{Dst: reg(asm.RBX), Src: imm(totalBytes)},
		asm.Cmp{Dst: reg(asm.RBX), Src: asm.Data{Name: symHeapEnd}},
		asm.Jle{Target: lbl(okLabel)},

		asm.Mov{Dst: reg(asm.RDI), Src: imm(totalBytes / 8)},
		asm.Mov{Dst: reg(asm.RSI), Src: reg(asm.R15)},
		asm.Mov{Dst: reg(asm.RDX), Src: asm.Data{Name: symStackBase}},
		asm.Mov{Dst: reg(asm.RCX), Src: reg(asm.RBP)},
		asm.Mov{Dst: reg(asm.R8), Src: reg(asm.RSP)},
		asm.Call{Target: lbl(runtimeTryGC)},
		asm.Mov{Dst: reg(asm.R15), Src: reg(asm.RAX)},

		asm.Label{Name: okLabel},
		asm.Mov{Dst: asm.Mem{Reg: asm.R15}, Src: imm(0)},
		asm.Mov{Dst: asm.Mem{Reg: asm.R15, Disp: 8}, Src: imm(int64(value.Encode(size)))},
	)

	for i := int64(0); i < size; i++ {
		out = append(out,
			asm.Mov{Dst: reg(asm.RAX), Src: local(si + i)},
			asm.Mov{Dst: asm.Mem{Reg: asm.R15, Disp: (2 + i) * 8}, Src: reg(asm.RAX)},
		)
	}

	out = append(out,
		asm.Mov{Dst: reg(asm.RAX), Src: reg(asm.R15)},
		asm.Add{Dst: reg(asm.RAX), Src: imm(1)},
		asm.Add{Dst: reg(asm.R15), Src: imm(totalBytes)},
	)
	return out, nil
}

// genCall checks the call's arity against the function table, then
// evaluates each argument left to right into a stack slot and pushes
// them in reverse order, so the callee's parameters land at ascending
// offsets above its own frame pointer in their natural, left-to-right
// order.
func (c *Compiler) genCall(e *ast.Call, env env, si int64, brk string) ([]asm.Instr, error) {
	def, ok := c.prog.Defs[e.Name]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUndefinedFunction, e.Name)
	}
	if len(def.Params) != len(e.Args) {
		return nil, fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrArityMismatch, e.Name, len(def.Params), len(e.Args))
	}

	out, err := c.allocTuple(e.Args, env, si, brk)
	if err != nil {
		return nil, err
	}

	padded := len(e.Args)%2 != 0
	if padded {
		out = append(out, asm.Push{Val: imm(0)})
	}
	for i := len(e.Args) - 1; i >= 0; i-- {
		out = append(out, asm.Push{Val: local(si + int64(i))})
	}
	out = append(out, asm.Call{Target: lbl(functionLabel(e.Name))})

	popWords := len(e.Args)
	if padded {
		popWords++
	}
	if popWords > 0 {
		out = append(out, asm.Add{Dst: reg(asm.RSP), Src: imm(int64(popWords) * 8)})
	}
	return out, nil
}
