package lang

import (
	"math"
	"strconv"
	"strings"
)

// Node is an untyped expression tree node. String renders the node as a fully
// parenthesized expression.
type Node interface {
	String() string
}

// UnaryOp is a prefix operator.
type UnaryOp int

// Prefix operators.
const (
	UnaryNot UnaryOp = iota
	UnaryMinus
)

func (o UnaryOp) String() string {
	if o == UnaryNot {
		return "!"
	}

	return "-"
}

type (
	// IntConst is an integer literal.
	IntConst struct{ Value int64 }

	// FloatConst is a floating-point literal.
	FloatConst struct{ Value float64 }

	// BoolConst is true or false.
	BoolConst struct{ Value bool }

	// Variable is a bare identifier.
	Variable struct{ Name string }

	// Call is a function call with its arguments in source order.
	Call struct {
		Name string
		Args []Node
	}

	// Binary is a binary operation.
	Binary struct {
		Left, Right Node
		Op          Operator
	}

	// Unary is a prefix operation.
	Unary struct {
		Operand Node
		Op      UnaryOp
	}

	// Swizzle selects one component (0 through 3) of a vector.
	Swizzle struct {
		Value Node
		Index int
	}
)

func (n *IntConst) String() string { return strconv.FormatInt(n.Value, 10) }

func (n *FloatConst) String() string { return FormatFloat(n.Value) }

func (n *BoolConst) String() string { return strconv.FormatBool(n.Value) }

func (n *Variable) String() string { return n.Name }

func (n *Call) String() string {
	var b strings.Builder

	b.WriteString(n.Name)
	b.WriteByte('(')

	for i, arg := range n.Args {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(arg.String())
	}

	b.WriteByte(')')

	return b.String()
}

func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

func (n *Unary) String() string { return n.Op.String() + n.Operand.String() }

func (n *Swizzle) String() string {
	return n.Value.String() + "." + strconv.Itoa(n.Index)
}

// FormatFloat formats v with at least one fractional digit.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// TreeBuilder is a [Builder] producing the untyped [Node] tree.
type TreeBuilder struct{}

// FunctionCall implements [Builder].
func (TreeBuilder) FunctionCall(name string, args []Node) (Node, error) {
	return &Call{Name: name, Args: args}, nil
}

// Variable implements [Builder].
func (TreeBuilder) Variable(name string, _ *Lexer) (Node, error) {
	return &Variable{Name: name}, nil
}

// Binary implements [Builder].
func (TreeBuilder) Binary(left, right Node, op Operator) (Node, error) {
	return &Binary{Left: left, Right: right, Op: op}, nil
}

// Int implements [Builder].
func (TreeBuilder) Int(v int64) (Node, error) { return &IntConst{Value: v}, nil }

// Float implements [Builder].
func (TreeBuilder) Float(v float64) (Node, error) { return &FloatConst{Value: v}, nil }

// Bool implements [Builder].
func (TreeBuilder) Bool(v bool) (Node, error) { return &BoolConst{Value: v}, nil }

// Not implements [Builder].
func (TreeBuilder) Not(v Node) (Node, error) {
	return &Unary{Operand: v, Op: UnaryNot}, nil
}

// Minus implements [Builder].
func (TreeBuilder) Minus(v Node) (Node, error) {
	return &Unary{Operand: v, Op: UnaryMinus}, nil
}

// Swizzle implements [Builder].
func (TreeBuilder) Swizzle(v Node, index int) (Node, error) {
	return &Swizzle{Value: v, Index: index}, nil
}

// ParseTree parses src into an untyped [Node] tree.
func ParseTree(src string) (Node, error) {
	return Parse[Node](src, TreeBuilder{})
}
