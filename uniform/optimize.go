package uniform

import (
	"log/slog"

	"github.com/ardnew/shadervar/lang"
)

// Optimizer rewrites typed trees into equivalent, cheaper trees.
type Optimizer struct {
	folding         bool
	shortCircuit    bool
	keepSideEffects bool
}

// NewOptimizer returns an optimizer enabling the rewrites selected by flags.
func NewOptimizer(flags Flags) *Optimizer {
	return &Optimizer{
		folding:         flags.ConstantFolding,
		shortCircuit:    flags.ShortCircuitBool,
		keepSideEffects: flags.KeepSideEffects,
	}
}

// Optimize returns the optimized form of n. Children are optimized before
// their parents. The only error is a constant expression that cannot be
// evaluated, such as an integer division by zero.
func (o *Optimizer) Optimize(n Node) (Node, error) {
	switch n := n.(type) {
	case *Math:
		left, right, err := o.pair(n.Left, n.Right)
		if err != nil {
			return nil, err
		}

		return o.math(left, right, n.Op)

	case *Rel:
		left, right, err := o.pair(n.Left, n.Right)
		if err != nil {
			return nil, err
		}

		return o.rel(left, right, n.Op), nil

	case *Chain:
		elems, err := o.all(n.Elems)
		if err != nil {
			return nil, err
		}

		return o.chain(elems, n.Op), nil

	case *Branch:
		elems, err := o.all([]Node{n.Cond, n.IfTrue, n.IfFalse})
		if err != nil {
			return nil, err
		}

		return o.branch(elems[0], elems[1], elems[2]), nil

	case *MultiMatch:
		elems, err := o.all(n.Elems)
		if err != nil {
			return nil, err
		}

		return o.multiMatch(elems), nil

	case *Cast:
		in, err := o.Optimize(n.Input)
		if err != nil {
			return nil, err
		}

		return o.cast(n.To, in), nil

	case *Minus:
		in, err := o.Optimize(n.Input)
		if err != nil {
			return nil, err
		}

		return o.minus(in), nil

	case *Not:
		in, err := o.Optimize(n.Input)
		if err != nil {
			return nil, err
		}

		return o.not(in), nil

	case *Call:
		args, err := o.all(n.Args)
		if err != nil {
			return nil, err
		}

		return o.call(n.Func, args), nil
	}

	return n, nil
}

func (o *Optimizer) pair(a, b Node) (Node, Node, error) {
	a, err := o.Optimize(a)
	if err != nil {
		return nil, nil, err
	}

	b, err = o.Optimize(b)
	if err != nil {
		return nil, nil, err
	}

	return a, b, nil
}

func (o *Optimizer) all(nodes []Node) ([]Node, error) {
	out := make([]Node, len(nodes))

	for i, n := range nodes {
		v, err := o.Optimize(n)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func (o *Optimizer) math(left, right Node, op lang.Operator) (Node, error) {
	n := &Math{Left: left, Right: right, Op: op}

	if !o.folding {
		return n, nil
	}

	a, aok := constant(left)
	b, bok := constant(right)

	if !aok || !bok {
		return n, nil
	}

	v, ok := arith(op, a, b)
	if !ok {
		return nil, ErrFold.With(
			slog.String("reason", "integer division by zero"),
			slog.String("expr", n.String()),
		)
	}

	return &Const{Value: v}, nil
}

func (o *Optimizer) rel(left, right Node, op lang.Operator) Node {
	if o.folding {
		a, aok := constant(left)
		b, bok := constant(right)

		if aok && bok {
			return boolConst(compare(op, a, b))
		}
	}

	return &Rel{Left: left, Right: right, Op: op}
}

func (o *Optimizer) chain(elems []Node, op lang.Operator) Node {
	flat := make([]Node, 0, len(elems))

	for _, e := range elems {
		if c, ok := e.(*Chain); ok && c.Op == op {
			flat = append(flat, c.Elems...)
		} else {
			flat = append(flat, e)
		}
	}

	// x && y && ... is false once any operand is false; x || y || ... is
	// true once any operand is true.
	absorbing := op == lang.OpOr

	if o.folding {
		if v, ok := foldChain(flat, absorbing); ok {
			return boolConst(v)
		}
	}

	if !o.shortCircuit {
		return &Chain{Elems: flat, Op: op}
	}

	keep := make([]Node, 0, len(flat))
	decided := false

	// Operands after the first absorbing constant are never evaluated.
	for _, e := range flat {
		v, ok := constant(e)
		if !ok {
			keep = append(keep, e)

			continue
		}

		if v.Bool() == absorbing {
			decided = true

			break
		}
	}

	if decided {
		if !o.keepSideEffects || len(keep) == 0 {
			return boolConst(absorbing)
		}

		keep = append(keep, boolConst(absorbing))
	}

	switch len(keep) {
	case 0:
		return boolConst(!absorbing)
	case 1:
		return keep[0]
	}

	return &Chain{Elems: keep, Op: op}
}

// foldChain evaluates a chain whose operands are all constant.
func foldChain(elems []Node, absorbing bool) (bool, bool) {
	for _, e := range elems {
		if _, ok := constant(e); !ok {
			return false, false
		}
	}

	for _, e := range elems {
		if v, _ := constant(e); v.Bool() == absorbing {
			return absorbing, true
		}
	}

	return !absorbing, true
}

func (o *Optimizer) branch(cond, ifTrue, ifFalse Node) Node {
	if o.folding {
		if v, ok := constant(cond); ok {
			if v.Bool() {
				return ifTrue
			}

			return ifFalse
		}
	}

	if not, ok := cond.(*Not); ok {
		return &Branch{Cond: not.Input, IfTrue: ifFalse, IfFalse: ifTrue}
	}

	return &Branch{Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}
}

func (o *Optimizer) multiMatch(elems []Node) Node {
	if len(elems) == 2 {
		return o.rel(elems[0], elems[1], lang.OpEq)
	}

	if o.folding {
		if root, ok := constant(elems[0]); ok {
			all := true

			for _, e := range elems[1:] {
				v, ok := constant(e)
				if !ok {
					all = false

					continue
				}

				if compare(lang.OpEq, root, v) {
					return boolConst(true)
				}
			}

			if all {
				return boolConst(false)
			}
		}
	}

	return &MultiMatch{Elems: elems}
}

func (o *Optimizer) cast(to Type, in Node) Node {
	if in.Type() == to {
		return in
	}

	// A widening inner conversion adds nothing the outer one does not.
	if c, ok := in.(*Cast); ok && c.Input.Type() < c.To && !c.To.IsVector() {
		return o.cast(to, c.Input)
	}

	if o.folding {
		if v, ok := constant(in); ok {
			if w, ok := v.Cast(to); ok {
				return &Const{Value: w}
			}
		}
	}

	return &Cast{To: to, Input: in}
}

func (o *Optimizer) minus(in Node) Node {
	if m, ok := in.(*Minus); ok {
		return m.Input
	}

	if o.folding {
		if v, ok := constant(in); ok {
			return &Const{Value: negate(v)}
		}
	}

	return &Minus{Input: in}
}

func (o *Optimizer) not(in Node) Node {
	if n, ok := in.(*Not); ok {
		return n.Input
	}

	if o.folding {
		if v, ok := constant(in); ok {
			return boolConst(!v.Bool())
		}
	}

	return &Not{Input: in}
}

func (o *Optimizer) call(f *Function, args []Node) Node {
	if !o.folding || !f.Pure {
		return &Call{Func: f, Args: args}
	}

	vals := make([]Value, len(args))

	for i, a := range args {
		v, ok := constant(a)
		if !ok {
			return &Call{Func: f, Args: args}
		}

		vals[i] = v
	}

	return &Const{Value: f.Call(vals...)}
}
