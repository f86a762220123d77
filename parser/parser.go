// Package parser turns a tree of sexpr.Value into an ast.Program,
// implementing the keyword dispatch, arity checks, and reserved-word
// rules of spec.md §4.C.
//
// The expression-level dispatch is a direct generalization of
// parse_expr in _examples/original_source/src/compiler.rs (itself a
// Boa-language-only prototype) out to the full Snek surface spec.md
// describes: booleans, nil, if/loop/break/set!, block, tuple, and
// named function calls, plus the multi-form-file / `fun`-definitions
// convention spec.md §4.C adds beyond the prototype.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/samber/lo"

	"github.com/snek-lang/snekc/ast"
	"github.com/snek-lang/snekc/internal/value"
	"github.com/snek-lang/snekc/sexpr"
)

// ErrInvalid is the sentinel wrapped by every malformed-input error the
// parser produces, so callers can discriminate "the input was bad" from
// other failure modes with errors.Is.
var ErrInvalid = errors.New("Invalid")

// reserved lists every keyword in spec.md §6's "source language
// surface"; none of them may be used as a bound identifier, a
// parameter name, or a set! target.
var reserved = []string{
	"add1", "sub1", "let", "+", "-", "*", "<", ">", ">=", "<=", "=",
	"true", "false", "input", "isnum", "isbool", "loop", "break",
	"set!", "if", "fun", "print", "index", "tuple", "block", "nil",
}

func isReserved(name string) bool {
	return lo.Contains(reserved, name)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Parse tokenizes and parses a whole source file into a Program.
func Parse(src string) (*ast.Program, error) {
	values, err := sexpr.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	if len(values) == 0 {
		return nil, invalid("empty program")
	}
	return parseProgram(values)
}

func parseProgram(values []sexpr.Value) (*ast.Program, error) {
	defs := make(map[string]*ast.Definition)

	for _, v := range values[:len(values)-1] {
		def, err := parseDefinition(v)
		if err != nil {
			return nil, err
		}
		if _, dup := defs[def.Name]; dup {
			return nil, invalid("duplicate function definition %q", def.Name)
		}
		defs[def.Name] = def
	}

	main, err := parseExpr(values[len(values)-1])
	if err != nil {
		return nil, err
	}

	return &ast.Program{Defs: defs, Main: main}, nil
}

func parseDefinition(v sexpr.Value) (*ast.Definition, error) {
	if v.IsAtom() || len(v.List) != 3 || !v.List[0].IsAtom() || v.List[0].Atom != "fun" {
		return nil, invalid("expected a (fun (name params...) body) definition")
	}

	sig := v.List[1]
	if sig.IsAtom() || len(sig.List) == 0 {
		return nil, invalid("function signature must name the function and its parameters")
	}
	if !sig.List[0].IsAtom() {
		return nil, invalid("function name must be a symbol")
	}
	name := sig.List[0].Atom
	if isReserved(name) {
		return nil, invalid("%q is a reserved word and cannot name a function", name)
	}

	var params []string
	for _, p := range sig.List[1:] {
		if !p.IsAtom() {
			return nil, invalid("parameter names must be symbols")
		}
		if isReserved(p.Atom) {
			return nil, invalid("%q is a reserved word and cannot be a parameter name", p.Atom)
		}
		params = append(params, p.Atom)
	}
	if dups := lo.FindDuplicates(params); len(dups) > 0 {
		return nil, invalid("duplicate parameter name %q in definition of %q", dups[0], name)
	}

	body, err := parseExpr(v.List[2])
	if err != nil {
		return nil, err
	}

	return &ast.Definition{Name: name, Params: params, Body: body}, nil
}

func parseExpr(v sexpr.Value) (ast.Expr, error) {
	if v.IsAtom() {
		return parseAtom(v.Atom)
	}
	return parseList(v.List)
}

func parseAtom(lit string) (ast.Expr, error) {
	if isIntegerLiteral(lit) {
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil || n > value.MaxInt || n < value.MinInt {
			return nil, invalid("integer literal %q is out of range", lit)
		}
		return &ast.IntLit{Value: n}, nil
	}

	switch lit {
	case "true":
		return &ast.BoolLit{Value: true}, nil
	case "false":
		return &ast.BoolLit{Value: false}, nil
	case "nil":
		return &ast.NilLit{}, nil
	case "input":
		return &ast.Id{Name: "input"}, nil
	}

	if isReserved(lit) {
		return nil, invalid("%q is a reserved word and cannot be used as an identifier", lit)
	}
	return &ast.Id{Name: lit}, nil
}

func isIntegerLiteral(lit string) bool {
	if lit == "" {
		return false
	}
	i := 0
	if lit[0] == '-' {
		i = 1
	}
	if i >= len(lit) {
		return false
	}
	for ; i < len(lit); i++ {
		if lit[i] < '0' || lit[i] > '9' {
			return false
		}
	}
	return true
}

func parseList(list []sexpr.Value) (ast.Expr, error) {
	if len(list) == 0 {
		return nil, invalid("empty list expression")
	}
	head := list[0]
	if !head.IsAtom() {
		return nil, invalid("expression head must be a symbol")
	}
	args := list[1:]

	switch head.Atom {
	case "add1":
		return parseUnOp(ast.Add1, args)
	case "sub1":
		return parseUnOp(ast.Sub1, args)
	case "isnum":
		return parseUnOp(ast.IsNum, args)
	case "isbool":
		return parseUnOp(ast.IsBool, args)
	case "print":
		return parseUnOp(ast.Print, args)
	case "+":
		return parseBinOp(ast.Plus, args)
	case "-":
		return parseBinOp(ast.Minus, args)
	case "*":
		return parseBinOp(ast.Times, args)
	case "=":
		return parseBinOp(ast.Equal, args)
	case ">":
		return parseBinOp(ast.Greater, args)
	case ">=":
		return parseBinOp(ast.GreaterOrEqual, args)
	case "<":
		return parseBinOp(ast.Less, args)
	case "<=":
		return parseBinOp(ast.LessOrEqual, args)
	case "index":
		return parseBinOp(ast.Index, args)
	case "if":
		return parseIf(args)
	case "loop":
		return parseLoop(args)
	case "break":
		return parseBreak(args)
	case "set!":
		return parseSet(args)
	case "block":
		return parseBlock(args)
	case "let":
		return parseLet(args)
	case "tuple":
		return parseTuple(args)
	case "fun":
		return nil, invalid("fun definitions may only appear at the top level")
	default:
		return parseCall(head.Atom, args)
	}
}

func parseUnOp(op ast.Op1, args []sexpr.Value) (ast.Expr, error) {
	if len(args) != 1 {
		return nil, invalid("%s expects exactly one argument", op)
	}
	operand, err := parseExpr(args[0])
	if err != nil {
		return nil, err
	}
	return &ast.UnOp{Op: op, Operand: operand}, nil
}

func parseBinOp(op ast.Op2, args []sexpr.Value) (ast.Expr, error) {
	if len(args) != 2 {
		return nil, invalid("%s expects exactly two arguments", op)
	}
	left, err := parseExpr(args[0])
	if err != nil {
		return nil, err
	}
	right, err := parseExpr(args[1])
	if err != nil {
		return nil, err
	}
	return &ast.BinOp{Op: op, Left: left, Right: right}, nil
}

func parseIf(args []sexpr.Value) (ast.Expr, error) {
	if len(args) != 3 {
		return nil, invalid("if expects a condition, a then-branch, and an else-branch")
	}
	cond, err := parseExpr(args[0])
	if err != nil {
		return nil, err
	}
	then, err := parseExpr(args[1])
	if err != nil {
		return nil, err
	}
	els, err := parseExpr(args[2])
	if err != nil {
		return nil, err
	}
	return &ast.If{Cond: cond, Then: then, Else: els}, nil
}

func parseLoop(args []sexpr.Value) (ast.Expr, error) {
	if len(args) != 1 {
		return nil, invalid("loop expects exactly one body expression")
	}
	body, err := parseExpr(args[0])
	if err != nil {
		return nil, err
	}
	return &ast.Loop{Body: body}, nil
}

func parseBreak(args []sexpr.Value) (ast.Expr, error) {
	if len(args) != 1 {
		return nil, invalid("break expects exactly one value expression")
	}
	val, err := parseExpr(args[0])
	if err != nil {
		return nil, err
	}
	return &ast.Break{Value: val}, nil
}

func parseSet(args []sexpr.Value) (ast.Expr, error) {
	if len(args) != 2 || !args[0].IsAtom() {
		return nil, invalid("set! expects an identifier and a value expression")
	}
	name := args[0].Atom
	if isReserved(name) {
		return nil, invalid("%q is a reserved word and cannot be set!", name)
	}
	val, err := parseExpr(args[1])
	if err != nil {
		return nil, err
	}
	return &ast.Set{Name: name, Value: val}, nil
}

func parseBlock(args []sexpr.Value) (ast.Expr, error) {
	if len(args) == 0 {
		return nil, invalid("block requires at least one subexpression")
	}
	exprs, err := parseEach(args)
	if err != nil {
		return nil, err
	}
	return &ast.Block{Exprs: exprs}, nil
}

func parseTuple(args []sexpr.Value) (ast.Expr, error) {
	if len(args) == 0 {
		return nil, invalid("tuple requires at least one element")
	}
	elems, err := parseEach(args)
	if err != nil {
		return nil, err
	}
	return &ast.TupleLit{Elems: elems}, nil
}

func parseLet(args []sexpr.Value) (ast.Expr, error) {
	if len(args) != 2 {
		return nil, invalid("let expects a binding list and a body expression")
	}
	bindingList := args[0]
	if bindingList.IsAtom() || len(bindingList.List) == 0 {
		return nil, invalid("let requires at least one binding")
	}

	var bindings []ast.Binding
	for _, b := range bindingList.List {
		if b.IsAtom() || len(b.List) != 2 || !b.List[0].IsAtom() {
			return nil, invalid("each let binding must be (name expr)")
		}
		name := b.List[0].Atom
		if isReserved(name) {
			return nil, invalid("%q is a reserved word and cannot be bound", name)
		}
		init, err := parseExpr(b.List[1])
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.Binding{Name: name, Init: init})
	}

	body, err := parseExpr(args[1])
	if err != nil {
		return nil, err
	}
	return &ast.Let{Bindings: bindings, Body: body}, nil
}

func parseCall(name string, args []sexpr.Value) (ast.Expr, error) {
	if isReserved(name) {
		return nil, invalid("%q is a reserved word and cannot be called as a function", name)
	}
	callArgs, err := parseEach(args)
	if err != nil {
		return nil, err
	}
	return &ast.Call{Name: name, Args: callArgs}, nil
}

func parseEach(values []sexpr.Value) ([]ast.Expr, error) {
	exprs := make([]ast.Expr, 0, len(values))
	for _, v := range values {
		e, err := parseExpr(v)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}
