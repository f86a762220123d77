// Package ast defines the Snek abstract syntax tree.
//
// The shape of every type here is a direct translation of the Rust
// enums in the original Boa/Snek coursework prototype (see
// _examples/original_source/src/spec.rs): Expr becomes a closed
// interface with one struct per variant, Op1/Op2 become small
// byte-backed enums in the style of the teacher compiler's
// instructions.InstructionType, and Definition/Program carry over
// field-for-field.
package ast

// Op1 is a unary operator.
type Op1 byte

const (
	Add1   Op1 = 'a'
	Sub1   Op1 = 's'
	IsNum  Op1 = 'n'
	IsBool Op1 = 'b'
	Print  Op1 = 'p'
)

func (o Op1) String() string {
	switch o {
	case Add1:
		return "add1"
	case Sub1:
		return "sub1"
	case IsNum:
		return "isnum"
	case IsBool:
		return "isbool"
	case Print:
		return "print"
	default:
		return "?"
	}
}

// Op2 is a binary operator.
type Op2 byte

const (
	Plus           Op2 = '+'
	Minus          Op2 = '-'
	Times          Op2 = '*'
	Equal          Op2 = '='
	Greater        Op2 = '>'
	GreaterOrEqual Op2 = 'G'
	Less           Op2 = '<'
	LessOrEqual    Op2 = 'L'
	Index          Op2 = 'I'
)

func (o Op2) String() string {
	switch o {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Times:
		return "*"
	case Equal:
		return "="
	case Greater:
		return ">"
	case GreaterOrEqual:
		return ">="
	case Less:
		return "<"
	case LessOrEqual:
		return "<="
	case Index:
		return "index"
	default:
		return "?"
	}
}

// Expr is the sum type of every Snek expression form. It is a closed
// interface: isExpr is unexported, so only the variants declared in
// this package may implement it.
type Expr interface {
	isExpr()
}

// IntLit is an integer literal, already range-checked by the parser to
// fit the signed 63-bit encoding.
type IntLit struct {
	Value int64
}

// BoolLit is a `true`/`false` literal.
type BoolLit struct {
	Value bool
}

// NilLit is the `nil` literal.
type NilLit struct{}

// Id is an identifier reference.
type Id struct {
	Name string
}

// Binding is one `(name expr)` pair within a `let` form.
type Binding struct {
	Name string
	Init Expr
}

// Let evaluates each binding in order, in an environment that already
// contains the bindings before it, then evaluates Body.
type Let struct {
	Bindings []Binding
	Body     Expr
}

// UnOp applies a unary operator to Operand.
type UnOp struct {
	Op      Op1
	Operand Expr
}

// BinOp applies a binary operator to Left and Right, evaluated in that
// order.
type BinOp struct {
	Op    Op2
	Left  Expr
	Right Expr
}

// If evaluates Cond; if it is not the `false` singleton, it evaluates
// Then, otherwise Else.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Loop repeats Body until a Break inside it fires.
type Loop struct {
	Body Expr
}

// Break evaluates Value and transfers control to the innermost
// enclosing Loop's end label.
type Break struct {
	Value Expr
}

// Set evaluates Value and stores it into the environment slot bound to
// Name, which must already be in scope.
type Set struct {
	Name  string
	Value Expr
}

// Block evaluates each of Exprs in order; the last one's value is the
// block's value. Exprs is never empty.
type Block struct {
	Exprs []Expr
}

// TupleLit allocates a heap tuple holding the value of each of Elems,
// evaluated in order. Elems is never empty.
type TupleLit struct {
	Elems []Expr
}

// Call invokes the top-level function named Name with Args, evaluated
// left to right.
type Call struct {
	Name string
	Args []Expr
}

func (*IntLit) isExpr()   {}
func (*BoolLit) isExpr()  {}
func (*NilLit) isExpr()   {}
func (*Id) isExpr()       {}
func (*Let) isExpr()      {}
func (*UnOp) isExpr()     {}
func (*BinOp) isExpr()    {}
func (*If) isExpr()       {}
func (*Loop) isExpr()     {}
func (*Break) isExpr()    {}
func (*Set) isExpr()      {}
func (*Block) isExpr()    {}
func (*TupleLit) isExpr() {}
func (*Call) isExpr()     {}

// Definition is a top-level `fun` declaration.
type Definition struct {
	Name   string
	Params []string
	Body   Expr
}

// Program is a whole compilation unit: zero or more named function
// definitions plus the main expression.
type Program struct {
	Defs map[string]*Definition
	Main Expr
}
