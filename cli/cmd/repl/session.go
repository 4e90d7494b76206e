package repl

import (
	"context"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ardnew/shadervar/host"
	"github.com/ardnew/shadervar/lang"
	"github.com/ardnew/shadervar/log"
	"github.com/ardnew/shadervar/preproc"
	"github.com/ardnew/shadervar/uniform"
)

// frameTime is the simulated duration of one frame.
const frameTime = time.Second / 60

// session holds the state shared by every input of one REPL: the simulated
// host, the declarations entered so far and the preprocessor symbol table.
type session struct {
	host    *host.Host
	state   *uniform.State
	flags   uniform.Flags
	decls   []uniform.Declaration
	program *uniform.Program
	symbols map[string]preproc.Value
	last    *uniform.Expr
	logger  log.Logger
}

func newSession(ctx context.Context, h *host.Host, flags uniform.Flags, logger log.Logger) (*session, error) {
	s := &session{
		host:    h,
		state:   uniform.NewState(),
		flags:   flags,
		symbols: make(map[string]preproc.Value),
		logger:  logger,
	}

	p, err := s.compiler().Compile(ctx, nil)
	if err != nil {
		return nil, err
	}

	s.program = p

	return s, nil
}

func (s *session) compiler(extra ...uniform.Registry) *uniform.Compiler {
	return uniform.NewCompiler(
		uniform.WithFlags(s.flags),
		uniform.WithLogger(s.logger),
		uniform.WithState(s.state),
		uniform.WithRegistry(append([]uniform.Registry{s.host.Registry()}, extra...)...),
	)
}

func (s *session) registry() uniform.Layers {
	return uniform.Layers{
		uniform.Builtins(),
		s.state.Registry(),
		s.host.Registry(),
		s.program.Registry(),
	}
}

// eval handles one eval-mode input: a preprocessor directive, a declaration
// of the form "[kind] type name = expr", or an expression.
func (s *session) eval(ctx context.Context, input string) (string, error) {
	if strings.HasPrefix(input, "#") {
		return s.directive(ctx, input)
	}

	if d, ok := parseDeclaration(input); ok {
		return s.declare(ctx, d)
	}

	e, err := s.compiler(s.program.Registry()).CompileExpr(ctx, input)
	if err != nil {
		return "", err
	}

	s.last = e

	v := e.Eval()

	return v.String() + " : " + v.Type().String(), nil
}

// declare recompiles every declaration with d appended. d is discarded if it
// fails to compile.
func (s *session) declare(ctx context.Context, d uniform.Declaration) (string, error) {
	decls := append(slices.DeleteFunc(slices.Clone(s.decls), func(o uniform.Declaration) bool {
		return o.Name == d.Name
	}), d)

	p, err := s.compiler().Compile(ctx, decls)
	if err != nil {
		return "", err
	}

	s.decls, s.program = decls, p
	s.program.Update()

	if d.Kind == uniform.KindVariable {
		return d.Kind.String() + " " + d.Name + " : " + d.Type.String(), nil
	}

	v, _ := s.program.Get(d.Name)

	return d.Name + " = " + v.String() + " : " + d.Type.String(), nil
}

// parseDeclaration recognizes "[kind] type name = expr". A lone "=" is not a
// valid expression token, so inputs like "a == b" or "a >= b" never match.
func parseDeclaration(input string) (uniform.Declaration, bool) {
	var d uniform.Declaration

	lhs, rhs, ok := strings.Cut(input, "=")
	if !ok || strings.HasPrefix(rhs, "=") || strings.TrimSpace(rhs) == "" {
		return d, false
	}

	f := strings.Fields(lhs)

	switch len(f) {
	case 3:
		kind, err := uniform.ParseKind(f[0])
		if err != nil {
			return d, false
		}

		d.Kind, f = kind, f[1:]
	case 2:
	default:
		return d, false
	}

	typ, err := uniform.ParseType(f[0])
	if err != nil || !lang.IsIdentifier(f[1]) {
		return d, false
	}

	d.Type, d.Name, d.Expr = typ, f[1], strings.TrimSpace(rhs)

	return d, true
}

// directive evaluates #if, #ifdef and #ifndef conditions and applies other
// directives (#define, #undef) to the symbol table.
func (s *session) directive(ctx context.Context, input string) (string, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(strings.TrimPrefix(input, "#")), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "if", "elif":
		n, err := preproc.Evaluate(ctx, arg, s.symbols)
		if err != nil {
			return "", err
		}

		return n.String() + " : " + strconv.FormatBool(n.Bool()), nil

	case "ifdef", "ifndef":
		_, ok := s.symbols[arg]

		return strconv.FormatBool(ok == (name == "ifdef")), nil
	}

	res, err := preproc.Process(ctx, preproc.TagLines(0, []string{input}), nil, s.symbols,
		preproc.WithLogger(s.logger),
	)
	if err != nil {
		return "", err
	}

	s.symbols = res.Symbols

	s.logger.TraceContext(ctx, "repl directive",
		slog.String("directive", name),
		slog.Int("symbols", len(s.symbols)),
	)

	return strconv.Itoa(len(s.symbols)) + " symbols defined", nil
}

// advance runs n frames.
func (s *session) advance(n int) string {
	for range n {
		s.host.Advance(frameTime)
		s.program.Update()
	}

	return "frame " + strconv.Itoa(s.host.Env().Frame)
}

// reset restarts the clock and clears stateful builtin history.
func (s *session) reset() {
	s.host.Reset()
	s.state.Reset()
	s.program.Reset()
}

// names returns every name an expression may refer to.
func (s *session) names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for name := range s.registry().Names() {
			if !yield(name) {
				return
			}
		}

		for name := range maps.Keys(s.symbols) {
			if !yield(name) {
				return
			}
		}
	}
}

// overloads returns the signatures registered under name.
func (s *session) overloads(name string) []*uniform.Function {
	return slices.Collect(s.registry().Overloads(name))
}
