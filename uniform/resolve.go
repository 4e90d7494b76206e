package uniform

import (
	"log/slog"
	"math"
	"slices"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/shadervar/lang"
)

// maxSuggestions bounds the "did you mean" list of an unknown-name error.
const maxSuggestions = 3

// Resolver converts untyped expression trees into typed trees, binding names
// to functions of its registry and inserting the conversions implied by
// operand types.
//
// A resolver numbers the call sites of stateful functions. Every tree
// resolved by the same resolver draws from the same sequence, so one
// resolver is used per program.
type Resolver struct {
	reg Registry

	// castIntDivToFloat makes integer division produce Float.
	castIntDivToFloat bool

	instances int32
}

// NewResolver returns a resolver binding names against reg.
func NewResolver(reg Registry, flags Flags) *Resolver {
	return &Resolver{reg: reg, castIntDivToFloat: flags.CastIntDivToFloat}
}

// Instances returns the number of stateful call sites numbered so far.
func (r *Resolver) Instances() int { return int(r.instances) }

// Resolve returns the typed form of n.
func (r *Resolver) Resolve(n lang.Node) (Node, error) {
	switch n := n.(type) {
	case *lang.IntConst:
		if n.Value < math.MinInt32 || n.Value > math.MaxInt32 {
			return nil, ErrType.With(
				slog.String("reason", "integer literal out of range"),
				slog.Int64("value", n.Value),
			)
		}

		return intConst(int32(n.Value)), nil

	case *lang.FloatConst:
		return &Const{Value: FloatValue(n.Value)}, nil

	case *lang.BoolConst:
		return boolConst(n.Value), nil

	case *lang.Variable:
		return r.call(n.Name, nil)

	case *lang.Call:
		args, err := r.resolveAll(n.Args)
		if err != nil {
			return nil, err
		}

		switch n.Name {
		case "if":
			return r.branch(n, args)
		case "in":
			return r.multiMatch(n, args)
		}

		return r.call(n.Name, args)

	case *lang.Unary:
		v, err := r.Resolve(n.Operand)
		if err != nil {
			return nil, err
		}

		if n.Op == lang.UnaryNot {
			return r.not(n, v)
		}

		return r.minus(v)

	case *lang.Swizzle:
		v, err := r.Resolve(n.Value)
		if err != nil {
			return nil, err
		}

		return r.swizzle(n, v)

	case *lang.Binary:
		left, err := r.Resolve(n.Left)
		if err != nil {
			return nil, err
		}

		right, err := r.Resolve(n.Right)
		if err != nil {
			return nil, err
		}

		switch {
		case n.Op.IsLogical():
			return r.chain(n, left, right)
		case n.Op.IsRelational():
			return r.rel(n, left, right)
		}

		return r.math(n, left, right)
	}

	return nil, ErrType.With(slog.String("node", n.String()))
}

func (r *Resolver) resolveAll(nodes []lang.Node) ([]Node, error) {
	out := make([]Node, len(nodes))

	for i, n := range nodes {
		v, err := r.Resolve(n)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func (r *Resolver) call(name string, args []Node) (Node, error) {
	types := make([]Type, len(args))
	for i, a := range args {
		types[i] = a.Type()
	}

	f, ok := Resolve(r.reg, name, types)
	if !ok {
		return nil, r.unknown(name, types)
	}

	args = slices.Clone(args)

	if f.Stateful && len(args) > 0 && args[0].Type() == Int {
		args[0] = intConst(r.instances)
		r.instances++
	}

	for i, p := range f.Params {
		args[i] = castTo(args[i], p)
	}

	return &Call{Func: f, Args: args}, nil
}

func (r *Resolver) unknown(name string, types []Type) error {
	sig := name
	if len(types) > 0 {
		sig += "("
		for i, t := range types {
			if i > 0 {
				sig += ", "
			}

			sig += t.String()
		}
		sig += ")"
	}

	err := ErrUnknownFunction.With(slog.String("name", sig))

	names := slices.Sorted(r.reg.Names())
	if matches := fuzzy.Find(name, names); len(matches) > 0 {
		hint := make([]string, 0, maxSuggestions)
		for _, m := range matches[:min(len(matches), maxSuggestions)] {
			hint = append(hint, m.Str)
		}

		err = err.With(slog.Any("did_you_mean", hint))
	}

	return err
}

func (r *Resolver) branch(n *lang.Call, args []Node) (Node, error) {
	if len(args) != 3 {
		return nil, arity(n, "3", len(args))
	}

	cond, err := r.condition(args[0])
	if err != nil {
		return nil, err
	}

	t, ok := Coerce(args[1].Type(), args[2].Type())
	if !ok {
		return nil, mismatch(n, args[1].Type(), args[2].Type())
	}

	return &Branch{
		Cond:    cond,
		IfTrue:  castTo(args[1], t),
		IfFalse: castTo(args[2], t),
	}, nil
}

// condition converts a branch condition to Bool. Numeric conditions are true
// when nonzero.
func (r *Resolver) condition(n Node) (Node, error) {
	switch t := n.Type(); {
	case t == Bool:
		return n, nil
	case t.IsVector():
		return nil, ErrType.With(
			slog.String("reason", "condition must be a scalar"),
			slog.String("expr", n.String()),
		)
	default:
		return &Rel{Left: n, Right: &Const{Value: Zero(t)}, Op: lang.OpNe}, nil
	}
}

func (r *Resolver) multiMatch(n *lang.Call, args []Node) (Node, error) {
	if len(args) < 2 {
		return nil, arity(n, "at least 2", len(args))
	}

	types := make([]Type, len(args))
	for i, a := range args {
		types[i] = a.Type()
	}

	t, ok := CoerceAll(types...)
	if !ok || t.IsVector() {
		return nil, ErrType.With(
			slog.String("reason", "in() requires scalar arguments"),
			slog.String("expr", n.String()),
		)
	}

	elems := make([]Node, len(args))
	for i, a := range args {
		elems[i] = castTo(a, t)
	}

	return &MultiMatch{Elems: elems}, nil
}

func (r *Resolver) not(n *lang.Unary, v Node) (Node, error) {
	switch t := v.Type(); {
	case t == Bool:
		return &Not{Input: v}, nil
	case t.IsVector():
		return nil, ErrType.With(
			slog.String("reason", "operator ! requires a scalar"),
			slog.String("expr", n.String()),
		)
	default:
		return &Rel{Left: v, Right: &Const{Value: Zero(t)}, Op: lang.OpEq}, nil
	}
}

func (r *Resolver) minus(v Node) (Node, error) {
	switch t := v.Type(); {
	case t == Bool:
		return &Minus{Input: castTo(v, Int)}, nil
	case t.IsVector():
		return r.vector("neg", v)
	default:
		return &Minus{Input: v}, nil
	}
}

func (r *Resolver) swizzle(n *lang.Swizzle, v Node) (Node, error) {
	t := v.Type()
	if !t.IsVector() || n.Index >= t.Size() {
		return nil, ErrType.With(
			slog.String("reason", "invalid swizzle"),
			slog.String("expr", n.String()),
			slog.String("type", t.String()),
		)
	}

	return r.vector("swiz", v, intConst(int32(n.Index)))
}

func (r *Resolver) chain(n *lang.Binary, left, right Node) (Node, error) {
	if left.Type() != Bool || right.Type() != Bool {
		return nil, ErrType.With(
			slog.String("reason", "operator "+n.Op.String()+" requires bool operands"),
			slog.String("expr", n.String()),
		)
	}

	return &Chain{Elems: []Node{left, right}, Op: n.Op}, nil
}

func (r *Resolver) rel(n *lang.Binary, left, right Node) (Node, error) {
	t, ok := Coerce(left.Type(), right.Type())
	if !ok {
		return nil, mismatch(n, left.Type(), right.Type())
	}

	if t.IsVector() {
		return nil, ErrType.With(
			slog.String("reason", "operator "+n.Op.String()+" requires scalar operands"),
			slog.String("expr", n.String()),
		)
	}

	return &Rel{Left: castTo(left, t), Right: castTo(right, t), Op: n.Op}, nil
}

var vecOpNames = map[lang.Operator]string{
	lang.OpAdd: "add",
	lang.OpSub: "sub",
	lang.OpMul: "mul",
	lang.OpDiv: "div",
	lang.OpRem: "rem",
}

func (r *Resolver) math(n *lang.Binary, left, right Node) (Node, error) {
	t, ok := Coerce(left.Type(), right.Type())
	if !ok {
		return nil, mismatch(n, left.Type(), right.Type())
	}

	switch {
	case t.IsVector():
		return r.vector(vecOpNames[n.Op], castTo(left, t), castTo(right, t))
	case n.Op == lang.OpDiv && r.castIntDivToFloat:
		t = Float
	case t == Bool:
		t = Int
	}

	return &Math{Left: castTo(left, t), Right: castTo(right, t), Op: n.Op}, nil
}

// vector lowers a vector operation to a call of the internal operator table.
func (r *Resolver) vector(name string, args ...Node) (Node, error) {
	types := make([]Type, len(args))
	for i, a := range args {
		types[i] = a.Type()
	}

	f, ok := Resolve(vecOps(), name, types)
	if !ok {
		return nil, ErrType.With(slog.String("vector_op", name))
	}

	return &Call{Func: f, Args: args}, nil
}

// castTo converts n to t, returning n itself if it already has type t.
func castTo(n Node, t Type) Node {
	if n.Type() == t {
		return n
	}

	return &Cast{To: t, Input: n}
}

// canCast reports whether a value of type from may be converted to to.
func canCast(from, to Type) bool {
	switch {
	case from == to:
		return true
	case to == Bool, from.IsVector():
		return false
	}

	return true
}

func arity(n lang.Node, want string, got int) error {
	return ErrType.With(
		slog.String("reason", "wrong number of arguments"),
		slog.String("expr", n.String()),
		slog.String("want", want),
		slog.Int("got", got),
	)
}

func mismatch(n lang.Node, a, b Type) error {
	return ErrType.With(
		slog.String("reason", "incompatible operand types"),
		slog.String("expr", n.String()),
		slog.String("left", a.String()),
		slog.String("right", b.String()),
	)
}
