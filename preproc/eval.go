package preproc

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/shadervar/lang"
)

// DefaultMaxDepth bounds how deeply symbol values may refer to other symbols.
const DefaultMaxDepth = 64

// defined is the parsed form of "defined NAME".
type defined struct{ name string }

func (d *defined) String() string { return "defined " + d.name }

// macroBuilder builds untyped trees, recognizing "defined NAME" by consuming
// the identifier that follows "defined".
type macroBuilder struct{ lang.TreeBuilder }

func (macroBuilder) Variable(name string, lex *lang.Lexer) (lang.Node, error) {
	if name == "defined" {
		if ok, err := lex.HasNext(); err != nil {
			return nil, err
		} else if ok && lex.Peek().Type == lang.Identifier {
			return &defined{name: lex.Next().Text}, nil
		}
	}

	return &lang.Variable{Name: name}, nil
}

// exprCache holds parsed macro expressions. Conditional expressions and
// symbol values repeat heavily across the files of a shader pack.
var exprCache = lang.NewCache[lang.Node](macroBuilder{})

// Evaluator evaluates preprocessor conditional expressions against a symbol
// table. Referenced symbols are evaluated from their text form on every
// reference.
type Evaluator struct {
	Symbols  map[string]Value
	MaxDepth int
}

// NewEvaluator returns an evaluator reading symbols from the given table.
func NewEvaluator(symbols map[string]Value) *Evaluator {
	return &Evaluator{Symbols: symbols, MaxDepth: DefaultMaxDepth}
}

// Eval evaluates expr. Text from the first "//" onward is ignored.
func (e *Evaluator) Eval(ctx context.Context, expr string) (Number, error) {
	return e.evalText(ctx, expr, 0)
}

// Evaluate evaluates expr against symbols with the default depth limit.
func Evaluate(ctx context.Context, expr string, symbols map[string]Value) (Number, error) {
	return NewEvaluator(symbols).Eval(ctx, expr)
}

func (e *Evaluator) evalText(ctx context.Context, text string, depth int) (Number, error) {
	if depth > e.MaxDepth {
		return Number{}, ErrMaxDepthExceeded.With(slog.Int("max_depth", e.MaxDepth))
	}

	if i := strings.Index(text, "//"); i >= 0 {
		text = text[:i]
	}

	node, err := exprCache.Parse(ctx, text)
	if err != nil {
		return Number{}, err
	}

	return e.eval(ctx, node, depth)
}

func (e *Evaluator) eval(ctx context.Context, node lang.Node, depth int) (Number, error) {
	switch n := node.(type) {
	case *lang.IntConst:
		return IntNumber(n.Value), nil

	case *lang.FloatConst:
		return FloatNumber(n.Value), nil

	case *lang.BoolConst:
		return truth(n.Value), nil

	case *defined:
		_, ok := e.Symbols[n.name]

		return truth(ok), nil

	case *lang.Variable:
		v, ok := e.Symbols[n.Name]
		if !ok {
			return IntNumber(0), nil
		}

		res, err := e.evalText(ctx, v.String(), depth+1)
		if err != nil {
			return Number{}, ErrMacro.Wrap(err).With(slog.String("symbol", n.Name))
		}

		return res, nil

	case *lang.Call:
		if n.Name == "defined" && len(n.Args) == 1 {
			if v, ok := n.Args[0].(*lang.Variable); ok {
				_, ok := e.Symbols[v.Name]

				return truth(ok), nil
			}
		}

		return Number{}, ErrMacro.With(
			slog.String("reason", "function-like macros are not supported"),
			slog.String("function", n.Name),
		)

	case *lang.Swizzle:
		return Number{}, ErrMacro.With(
			slog.String("reason", "vector swizzles are not supported"),
		)

	case *lang.Unary:
		v, err := e.eval(ctx, n.Operand, depth)
		if err != nil {
			return Number{}, err
		}

		if n.Op == lang.UnaryNot {
			return truth(!v.Bool()), nil
		}

		return v.negate(), nil

	case *lang.Binary:
		// Both operands are evaluated, including those of && and ||.
		l, err := e.eval(ctx, n.Left, depth)
		if err != nil {
			return Number{}, err
		}

		r, err := e.eval(ctx, n.Right, depth)
		if err != nil {
			return Number{}, err
		}

		switch n.Op {
		case lang.OpAnd:
			return truth(l.Bool() && r.Bool()), nil
		case lang.OpOr:
			return truth(l.Bool() || r.Bool()), nil
		}

		return arith(l, r, n.Op)
	}

	return Number{}, ErrMacro.With(slog.String("node", node.String()))
}
