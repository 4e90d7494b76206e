package uniform

import (
	"log/slog"

	"github.com/ardnew/shadervar/lang"
)

// target is where a conditional sends control. An exprTarget evaluates one
// of two expressions and leaves its value on the stack. A labelTarget jumps
// to label when the condition equals cond and falls through otherwise.
type target interface{ isTarget() }

type exprTarget struct{ ifTrue, ifFalse Node }

type labelTarget struct {
	label int
	cond  bool
}

func (exprTarget) isTarget()  {}
func (labelTarget) isTarget() {}

// generator emits instructions for typed trees. The first error is kept and
// later emission is discarded by [Generate].
type generator struct {
	inlineConstRoot bool
	fuseConditions  bool

	code      []Instr
	labels    int
	locals    int
	maxLocals int
	err       error
}

// Generate returns the instructions computing n, with labels unresolved, and
// the number of local slots they use.
func Generate(n Node, flags Flags) ([]Instr, int, error) {
	g := &generator{
		inlineConstRoot: flags.InlineMultiMatchConst,
		fuseConditions:  flags.FuseIfElseRelational,
	}

	g.expr(n)

	if g.err != nil {
		return nil, 0, g.err
	}

	return g.code, g.maxLocals, nil
}

func (g *generator) emit(in Instr) { g.code = append(g.code, in) }

func (g *generator) fail(reason string, n Node) {
	if g.err == nil {
		g.err = ErrCodegen.With(slog.String("reason", reason), slog.String("expr", n.String()))
	}
}

func (g *generator) newLabel() int {
	g.labels++

	return g.labels - 1
}

func (g *generator) label(l int) { g.emit(Instr{Code: OpLabel, Arg: l}) }
func (g *generator) jump(l int)  { g.emit(Instr{Code: OpGoto, Arg: l}) }

func (g *generator) alloc() int {
	g.locals++
	g.maxLocals = max(g.maxLocals, g.locals)

	return g.locals - 1
}

func (g *generator) free() { g.locals-- }

func (g *generator) expr(n Node) {
	switch n := n.(type) {
	case *Const:
		g.emit(Instr{Code: OpConst, Value: n.Value})

	case *Call:
		for _, a := range n.Args {
			g.expr(a)
		}

		g.emit(Instr{Code: OpCall, Func: n.Func})

	case *Cast:
		if !canCast(n.Input.Type(), n.To) {
			g.fail("unsupported conversion", n)

			return
		}

		g.expr(n.Input)

		if n.Input.Type() != n.To {
			g.emit(Instr{Code: OpCast, To: n.To})
		}

	case *Math:
		if t := n.Type(); t != Int && t != Float {
			g.fail("arithmetic requires int or float operands", n)

			return
		}

		g.expr(n.Left)
		g.expr(n.Right)
		g.emit(Instr{Code: OpMath, Op: n.Op})

	case *Minus:
		if t := n.Type(); t != Int && t != Float {
			g.fail("negation requires an int or float operand", n)

			return
		}

		g.expr(n.Input)
		g.emit(Instr{Code: OpNeg})

	case *Branch:
		g.branch(n.Cond, exprTarget{n.IfTrue, n.IfFalse})

	case *Not:
		g.branch(n.Input, exprTarget{boolConst(false), boolConst(true)})

	case *Rel:
		g.rel(n, exprTarget{boolConst(true), boolConst(false)})

	case *Chain:
		g.chain(n, exprTarget{boolConst(true), boolConst(false)})

	case *MultiMatch:
		g.multiMatch(n, exprTarget{boolConst(true), boolConst(false)})

	default:
		g.fail("unsupported node", n)
	}
}

// pair evaluates first, falls through to the end, and evaluates second at
// secondLabel.
func (g *generator) pair(first, second Node, secondLabel int) {
	end := g.newLabel()

	g.expr(first)
	g.jump(end)
	g.label(secondLabel)
	g.expr(second)
	g.label(end)
}

// decide emits a jump taken when the condition computed by jmp is false, or
// is cond for a label target. jmp has no label and no Cond yet.
func (g *generator) decide(jmp Instr, tgt target) {
	switch t := tgt.(type) {
	case exprTarget:
		onFalse := g.newLabel()
		jmp.Arg, jmp.Cond = onFalse, false
		g.emit(jmp)
		g.pair(t.ifTrue, t.ifFalse, onFalse)

	case labelTarget:
		jmp.Arg, jmp.Cond = t.label, t.cond
		g.emit(jmp)
	}
}

func (g *generator) branch(cond Node, tgt target) {
	if g.fuseConditions {
		switch c := cond.(type) {
		case *Rel:
			g.rel(c, tgt)

			return

		case *Chain:
			g.chain(c, tgt)

			return

		case *MultiMatch:
			g.multiMatch(c, tgt)

			return

		case *Not:
			switch t := tgt.(type) {
			case exprTarget:
				g.branch(c.Input, exprTarget{t.ifFalse, t.ifTrue})
			case labelTarget:
				g.branch(c.Input, labelTarget{t.label, !t.cond})
			}

			return
		}
	}

	if cond.Type() != Bool {
		g.fail("condition must be bool", cond)

		return
	}

	g.expr(cond)
	g.decide(Instr{Code: OpJumpIf}, tgt)
}

func (g *generator) rel(n *Rel, tgt target) {
	if n.Left.Type().IsVector() || n.Left.Type() != n.Right.Type() {
		g.fail("comparison requires scalar operands of one type", n)

		return
	}

	g.expr(n.Left)
	g.expr(n.Right)
	g.decide(Instr{Code: OpJumpCmp, Op: n.Op}, tgt)
}

// chain evaluates operands left to right, leaving at the first operand that
// decides the result.
func (g *generator) chain(n *Chain, tgt target) {
	// An && chain is decided by a false operand, an || chain by a true one.
	decidedBy := n.Op == lang.OpOr

	switch t := tgt.(type) {
	case exprTarget:
		decided, pass := t.ifFalse, t.ifTrue
		if decidedBy {
			decided, pass = t.ifTrue, t.ifFalse
		}

		out := g.newLabel()

		for _, e := range n.Elems {
			g.branch(e, labelTarget{out, decidedBy})
		}

		g.pair(pass, decided, out)

	case labelTarget:
		if decidedBy == t.cond {
			for _, e := range n.Elems {
				g.branch(e, labelTarget{t.label, decidedBy})
			}

			return
		}

		out := g.newLabel()

		for _, e := range n.Elems {
			g.branch(e, labelTarget{out, decidedBy})
		}

		g.jump(t.label)
		g.label(out)
	}
}

func (g *generator) multiMatch(n *MultiMatch, tgt target) {
	switch t := tgt.(type) {
	case exprTarget:
		matched := g.newLabel()
		g.matchAny(n, matched)
		g.pair(t.ifFalse, t.ifTrue, matched)

	case labelTarget:
		if t.cond {
			g.matchAny(n, t.label)

			return
		}

		matched := g.newLabel()
		g.matchAny(n, matched)
		g.jump(t.label)
		g.label(matched)
	}
}

// matchAny jumps to matched if the root equals any alternative and falls
// through otherwise. A constant root is pushed once per alternative; any other
// root is evaluated once into a local slot.
func (g *generator) matchAny(n *MultiMatch, matched int) {
	root, alts := n.Elems[0], n.Elems[1:]

	if t := root.Type(); t.IsVector() {
		g.fail("in() requires scalar arguments", n)

		return
	}

	if _, ok := root.(*Const); ok && g.inlineConstRoot {
		for _, e := range alts {
			g.expr(e)
			g.expr(root)
			g.emit(Instr{Code: OpJumpCmp, Op: lang.OpEq, Cond: true, Arg: matched})
		}

		return
	}

	slot := g.alloc()
	defer g.free()

	g.expr(root)
	g.emit(Instr{Code: OpStore, Arg: slot})

	for _, e := range alts {
		g.expr(e)
		g.emit(Instr{Code: OpLoad, Arg: slot})
		g.emit(Instr{Code: OpJumpCmp, Op: lang.OpEq, Cond: true, Arg: matched})
	}
}
