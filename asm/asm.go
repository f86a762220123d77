// Package asm is the x86-64 assembly IR: a closed sum type of operands
// and instructions, plus the textual emitter (Component E) that turns
// them into GAS, Intel-syntax assembly text.
//
// This is a direct Go translation of the Val/Reg/Instr enums and their
// Display implementations in _examples/original_source/src/spec.rs,
// reshaped into Go's tagged-struct idiom the way teacher's
// instructions.Instruction (a Type byte plus a Value string) shapes
// its own, much smaller, instruction set.
package asm

import "fmt"

// Reg names one of the general-purpose registers the generator uses.
// R15 is reserved, by calling convention (spec.md §4.D), for the heap
// pointer; RBP/RSP are the frame and stack pointers.
type Reg int

const (
	RAX Reg = iota
	RBX
	RCX
	RDX
	RSI
	RDI
	R8
	R9
	R10
	R15
	RBP
	RSP
)

func (r Reg) String() string {
	switch r {
	case RAX:
		return "rax"
	case RBX:
		return "rbx"
	case RCX:
		return "rcx"
	case RDX:
		return "rdx"
	case RSI:
		return "rsi"
	case RDI:
		return "rdi"
	case R8:
		return "r8"
	case R9:
		return "r9"
	case R10:
		return "r10"
	case R15:
		return "r15"
	case RBP:
		return "rbp"
	case RSP:
		return "rsp"
	default:
		return "?reg"
	}
}

// Val is an instruction operand: a register, an immediate, a
// register-relative memory reference, or a bare label reference.
type Val interface {
	fmt.Stringer
	isVal()
}

// Register is a bare register operand.
type Register struct{ Reg Reg }

func (Register) isVal() {}
func (v Register) String() string {
	return v.Reg.String()
}

// Imm is a signed immediate operand.
type Imm struct{ Value int64 }

func (Imm) isVal() {}
func (v Imm) String() string {
	return fmt.Sprintf("%d", v.Value)
}

// RegOffset is a memory operand `[reg - offset]` when Offset is
// non-negative, or `[reg + -Offset]` when it is negative — the
// convention spec.md §4.D calls "negative addresses in memory
// convention", and the one _examples/original_source/src/spec.rs's
// `Display for Val` implements for `Val::RegOffset`.
type RegOffset struct {
	Reg    Reg
	Offset int64
}

func (RegOffset) isVal() {}
func (v RegOffset) String() string {
	if v.Offset >= 0 {
		return fmt.Sprintf("[%s - %d]", v.Reg, v.Offset)
	}
	return fmt.Sprintf("[%s + %d]", v.Reg, -v.Offset)
}

// LabelRef is an operand that names a label, used as the target of
// jumps and calls.
type LabelRef struct{ Name string }

func (LabelRef) isVal() {}
func (v LabelRef) String() string {
	return v.Name
}

// Data is a memory reference to a `.data`-section symbol, rendered
// `[name]` the way teacher's generator.go writes `[depth]`, `[a]`, and
// `[b]` for its own module-level scratch storage.
type Data struct{ Name string }

func (Data) isVal() {}
func (v Data) String() string {
	return fmt.Sprintf("[%s]", v.Name)
}

// Mem is a plain pointer-plus-displacement memory operand, `[reg +
// disp]` / `[reg - disp]` / `[reg]`. Unlike RegOffset (which always
// reads as "slot k below the frame pointer"), Mem is used for heap
// addressing — tuple headers and elements — where the displacement is
// a literal byte count, not a frame-relative slot index.
type Mem struct {
	Reg  Reg
	Disp int64
}

func (Mem) isVal() {}
func (v Mem) String() string {
	switch {
	case v.Disp == 0:
		return fmt.Sprintf("[%s]", v.Reg)
	case v.Disp > 0:
		return fmt.Sprintf("[%s + %d]", v.Reg, v.Disp)
	default:
		return fmt.Sprintf("[%s - %d]", v.Reg, -v.Disp)
	}
}

// Size marks the operand width for instructions that need it spelled
// out (GAS requires this whenever an operand is a bare memory
// reference with no register to infer a width from).
type Size int

const (
	NoSize Size = iota
	Qword
)

func (s Size) prefix() string {
	if s == Qword {
		return "qword ptr "
	}
	return ""
}

// sized renders an operand with an optional "qword ptr" prefix applied
// only to memory operands — mirroring the generated text teacher's
// generator.go writes by hand for every "mov qword ptr [x], rax".
func sized(v Val, sz Size) string {
	switch v.(type) {
	case RegOffset, Mem, Data:
		return sz.prefix() + v.String()
	default:
		return v.String()
	}
}

// Instr is the closed sum type of emittable instructions.
type Instr interface {
	fmt.Stringer
	isInstr()
}

type (
	// Comment is a free-text `# ...` line, used the way teacher's
	// generator.go annotates every code shape with a `# [OPNAME]`
	// banner comment.
	Comment struct{ Text string }

	// Section emits a GAS section directive, e.g. ".text" or ".data".
	Section struct{ Name string }

	// Global emits a `.global` directive.
	Global struct{ Symbol string }

	// Extern emits an `extern` directive for a symbol defined outside
	// this translation unit (the runtime helpers).
	Extern struct{ Symbol string }

	// Label emits a bare `name:` line.
	Label struct{ Name string }

	// Quad emits a `name: .quad value` data declaration, used for the
	// module-level mutable heap handles (spec.md §9's "mutable
	// module-level heap handles" note) the way teacher's generator.go
	// declares `a:`, `b:`, `depth:` in its own `.data` section.
	Quad struct {
		Name  string
		Value int64
	}

	Mov   struct{ Dst, Src Val }
	Add   struct{ Dst, Src Val }
	Sub   struct{ Dst, Src Val }
	IMul  struct{ Dst, Src Val }
	Cmp   struct{ Dst, Src Val }
	Test  struct{ Dst, Src Val }
	And   struct{ Dst, Src Val }
	Or    struct{ Dst, Src Val }
	Xor   struct{ Dst, Src Val }
	Sar   struct{ Dst, Src Val }
	Shl   struct{ Dst, Src Val }
	CMovE struct{ Dst, Src Val }
	CMovL struct{ Dst, Src Val }
	CMovG struct{ Dst, Src Val }

	CMovGE struct{ Dst, Src Val }
	CMovLE struct{ Dst, Src Val }

	Je  struct{ Target Val }
	Jne struct{ Target Val }
	Jg  struct{ Target Val }
	Jge struct{ Target Val }
	Jl  struct{ Target Val }
	Jle struct{ Target Val }
	Jo  struct{ Target Val }
	Jmp struct{ Target Val }

	Call struct{ Target Val }
	Push struct{ Val Val }
	Pop  struct{ Val Val }
	Ret  struct{}
)

func (Comment) isInstr() {}
func (c Comment) String() string {
	return "        # " + c.Text
}

func (Section) isInstr() {}
func (s Section) String() string {
	return "." + s.Name
}

func (Global) isInstr() {}
func (g Global) String() string {
	return ".global " + g.Symbol
}

func (Extern) isInstr() {}
func (e Extern) String() string {
	return "extern " + e.Symbol
}

func (Label) isInstr() {}
func (l Label) String() string {
	return l.Name + ":"
}

func (Mov) isInstr() {}
func (i Mov) String() string {
	return fmt.Sprintf("        mov %s, %s", sized(i.Dst, Qword), sized(i.Src, Qword))
}

func (Add) isInstr() {}
func (i Add) String() string {
	return fmt.Sprintf("        add %s, %s", sized(i.Dst, Qword), sized(i.Src, Qword))
}

func (Sub) isInstr() {}
func (i Sub) String() string {
	return fmt.Sprintf("        sub %s, %s", sized(i.Dst, Qword), sized(i.Src, Qword))
}

func (IMul) isInstr() {}
func (i IMul) String() string {
	return fmt.Sprintf("        imul %s, %s", sized(i.Dst, Qword), sized(i.Src, Qword))
}

func (Cmp) isInstr() {}
func (i Cmp) String() string {
	return fmt.Sprintf("        cmp %s, %s", sized(i.Dst, Qword), sized(i.Src, Qword))
}

func (Test) isInstr() {}
func (i Test) String() string {
	return fmt.Sprintf("        test %s, %s", sized(i.Dst, Qword), sized(i.Src, Qword))
}

func (And) isInstr() {}
func (i And) String() string {
	return fmt.Sprintf("        and %s, %s", sized(i.Dst, Qword), sized(i.Src, Qword))
}

func (Or) isInstr() {}
func (i Or) String() string {
	return fmt.Sprintf("        or %s, %s", sized(i.Dst, Qword), sized(i.Src, Qword))
}

func (Xor) isInstr() {}
func (i Xor) String() string {
	return fmt.Sprintf("        xor %s, %s", sized(i.Dst, Qword), sized(i.Src, Qword))
}

func (Quad) isInstr() {}
func (q Quad) String() string {
	return fmt.Sprintf("%s: .quad %d", q.Name, q.Value)
}

func (Sar) isInstr() {}
func (i Sar) String() string {
	return fmt.Sprintf("        sar %s, %s", i.Dst, i.Src)
}

func (Shl) isInstr() {}
func (i Shl) String() string {
	return fmt.Sprintf("        shl %s, %s", i.Dst, i.Src)
}

func (CMovE) isInstr() {}
func (i CMovE) String() string {
	return fmt.Sprintf("        cmove %s, %s", i.Dst, sized(i.Src, Qword))
}

func (CMovL) isInstr() {}
func (i CMovL) String() string {
	return fmt.Sprintf("        cmovl %s, %s", i.Dst, sized(i.Src, Qword))
}

func (CMovG) isInstr() {}
func (i CMovG) String() string {
	return fmt.Sprintf("        cmovg %s, %s", i.Dst, sized(i.Src, Qword))
}

func (CMovGE) isInstr() {}
func (i CMovGE) String() string {
	return fmt.Sprintf("        cmovge %s, %s", i.Dst, sized(i.Src, Qword))
}

func (CMovLE) isInstr() {}
func (i CMovLE) String() string {
	return fmt.Sprintf("        cmovle %s, %s", i.Dst, sized(i.Src, Qword))
}

func (Je) isInstr() {}
func (i Je) String() string { return "        je " + i.Target.String() }

func (Jne) isInstr() {}
func (i Jne) String() string { return "        jne " + i.Target.String() }

func (Jg) isInstr() {}
func (i Jg) String() string { return "        jg " + i.Target.String() }

func (Jge) isInstr() {}
func (i Jge) String() string { return "        jge " + i.Target.String() }

func (Jl) isInstr() {}
func (i Jl) String() string { return "        jl " + i.Target.String() }

func (Jle) isInstr() {}
func (i Jle) String() string { return "        jle " + i.Target.String() }

func (Jo) isInstr() {}
func (i Jo) String() string { return "        jo " + i.Target.String() }

func (Jmp) isInstr() {}
func (i Jmp) String() string { return "        jmp " + i.Target.String() }

func (Call) isInstr() {}
func (i Call) String() string { return "        call " + i.Target.String() }

func (Push) isInstr() {}
func (i Push) String() string { return "        push " + sized(i.Val, NoSize) }

func (Pop) isInstr() {}
func (i Pop) String() string { return "        pop " + sized(i.Val, NoSize) }

func (Ret) isInstr() {}
func (Ret) String() string { return "        ret" }

// Render joins a sequence of instructions into one assembly-language
// program, one instruction per line, in the style of teacher's
// instrs_to_string helper. Every operand in this package renders as
// Intel-syntax text ("mov rax, 5"), so the output is prefixed with the
// one directive GAS needs to parse it that way instead of defaulting
// to AT&T syntax; teacher's own output needs no such directive since
// it targets NASM, which is Intel-syntax by default.
func Render(instrs []Instr) string {
	out := ".intel_syntax noprefix\n"
	for _, i := range instrs {
		out += i.String() + "\n"
	}
	return out
}
