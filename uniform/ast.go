package uniform

import (
	"strings"

	"github.com/ardnew/shadervar/lang"
)

// Node is a typed expression tree node.
type Node interface {
	Type() Type
	String() string
}

type (
	// Const is a literal value.
	Const struct{ Value Value }

	// Math is an arithmetic operation on two scalars of the same type.
	Math struct {
		Left, Right Node
		Op          lang.Operator
	}

	// Rel compares two scalars of the same type.
	Rel struct {
		Left, Right Node
		Op          lang.Operator
	}

	// Chain is a flattened sequence of Bool operands joined by one of
	// [lang.OpAnd] or [lang.OpOr].
	Chain struct {
		Elems []Node
		Op    lang.Operator
	}

	// Branch selects IfTrue or IfFalse by a Bool condition.
	Branch struct {
		Cond, IfTrue, IfFalse Node
	}

	// MultiMatch is true if Elems[0] equals any of Elems[1:].
	MultiMatch struct{ Elems []Node }

	// Cast converts Input to To.
	Cast struct {
		To    Type
		Input Node
	}

	// Minus negates a scalar.
	Minus struct{ Input Node }

	// Not inverts a Bool.
	Not struct{ Input Node }

	// Call invokes a registered function.
	Call struct {
		Func *Function
		Args []Node
	}
)

func (n *Const) Type() Type      { return n.Value.Type() }
func (n *Math) Type() Type       { return n.Left.Type() }
func (n *Rel) Type() Type        { return Bool }
func (n *Chain) Type() Type      { return Bool }
func (n *Branch) Type() Type     { return n.IfTrue.Type() }
func (n *MultiMatch) Type() Type { return Bool }
func (n *Cast) Type() Type       { return n.To }
func (n *Minus) Type() Type      { return n.Input.Type() }
func (n *Not) Type() Type        { return Bool }
func (n *Call) Type() Type       { return n.Func.Returns }

func (n *Const) String() string { return n.Value.String() }

func (n *Math) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

func (n *Rel) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

func (n *Chain) String() string {
	return "(" + join(n.Elems, " "+n.Op.String()+" ") + ")"
}

func (n *Branch) String() string {
	return "if(" + join([]Node{n.Cond, n.IfTrue, n.IfFalse}, ", ") + ")"
}

func (n *MultiMatch) String() string { return "in(" + join(n.Elems, ", ") + ")" }
func (n *Cast) String() string       { return n.To.String() + "(" + n.Input.String() + ")" }
func (n *Minus) String() string      { return "-" + n.Input.String() }
func (n *Not) String() string        { return "!" + n.Input.String() }

func (n *Call) String() string {
	if len(n.Args) == 0 {
		return n.Func.Name
	}

	return n.Func.Name + "(" + join(n.Args, ", ") + ")"
}

func join(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}

	return strings.Join(parts, sep)
}

// constant returns the value of n if it is a [Const].
func constant(n Node) (Value, bool) {
	if c, ok := n.(*Const); ok {
		return c.Value, true
	}

	return Value{}, false
}

func boolConst(b bool) *Const { return &Const{Value: BoolValue(b)} }
func intConst(i int32) *Const { return &Const{Value: IntValue(i)} }

// Walk calls fn for n and each of its descendants, depth first, until fn
// returns false.
func Walk(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}

	var children []Node

	switch n := n.(type) {
	case *Math:
		children = []Node{n.Left, n.Right}
	case *Rel:
		children = []Node{n.Left, n.Right}
	case *Chain:
		children = n.Elems
	case *Branch:
		children = []Node{n.Cond, n.IfTrue, n.IfFalse}
	case *MultiMatch:
		children = n.Elems
	case *Cast:
		children = []Node{n.Input}
	case *Minus:
		children = []Node{n.Input}
	case *Not:
		children = []Node{n.Input}
	case *Call:
		children = n.Args
	}

	for _, c := range children {
		if !Walk(c, fn) {
			return false
		}
	}

	return true
}
