package preproc

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/shadervar/log"
)

// Config configures an [Interpreter].
type Config func(*Interpreter)

// WithGLSL enables capture of #version and #extension lines.
func WithGLSL(glsl bool) Config {
	return func(p *Interpreter) { p.glsl = glsl }
}

// WithFiles names the source files referenced by [Line.File] in diagnostics.
func WithFiles(files ...string) Config {
	return func(p *Interpreter) { p.files = files }
}

// WithMaxDepth bounds symbol expansion depth while evaluating conditionals.
func WithMaxDepth(depth int) Config {
	return func(p *Interpreter) { p.maxDepth = depth }
}

// WithLogger sets the logger receiving diagnostics. The default logger is
// used otherwise.
func WithLogger(logger log.Logger) Config {
	return func(p *Interpreter) { p.log = logger }
}

// Interpreter runs conditional compilation over tagged lines.
type Interpreter struct {
	glsl     bool
	files    []string
	maxDepth int
	log      log.Logger
}

// NewInterpreter returns an interpreter with the given configuration.
func NewInterpreter(configs ...Config) *Interpreter {
	p := &Interpreter{maxDepth: DefaultMaxDepth, log: log.Default()}

	for _, c := range configs {
		c(p)
	}

	return p
}

// Result is the outcome of conditional compilation.
type Result struct {
	// Lines has one entry per input line. Lines suppressed by a directive or
	// a disabled block are commented out.
	Lines []Line

	// Options maps line indices to the options in effect on them.
	Options map[int]*Option

	// Symbols is the symbol table after the last line.
	Symbols map[string]Value

	// Prelude holds lines to emit before Lines: the #version and #extension
	// lines (GLSL only) and a define for each external symbol.
	Prelude []string

	Version       string
	Extensions    []string
	RenderTargets []int
}

// Process runs conditional compilation with a default interpreter.
func Process(
	ctx context.Context,
	lines []Line,
	opts *Options,
	symbols map[string]Value,
	configs ...Config,
) (*Result, error) {
	return NewInterpreter(configs...).Process(ctx, lines, opts, symbols)
}

// Process evaluates the conditional directives in lines. The symbol table
// starts as a copy of symbols. opts may be nil.
//
// Unbalanced #elif, #else and #endif directives are fatal. A conditional
// expression that fails to evaluate is logged and disables its branch.
func (p *Interpreter) Process(
	ctx context.Context,
	lines []Line,
	opts *Options,
	symbols map[string]Value,
) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}

	r := &run{
		Interpreter: p,
		ctx:         ctx,
		opts:        opts,
		eval:        &Evaluator{Symbols: maps.Clone(symbols), MaxDepth: p.maxDepth},
		res: &Result{
			Lines:   make([]Line, 0, len(lines)),
			Options: make(map[int]*Option),
		},
	}

	if r.eval.Symbols == nil {
		r.eval.Symbols = make(map[string]Value)
	}

	for i, ln := range lines {
		if err := r.line(i, ln); err != nil {
			return nil, err
		}
	}

	if r.depth != 0 {
		p.log.WarnContext(ctx, "unterminated conditional", slog.Int("depth", r.depth))
	}

	r.res.Symbols = r.eval.Symbols
	r.res.Prelude = p.prelude(r.res, symbols)

	return r.res, nil
}

func (p *Interpreter) prelude(res *Result, external map[string]Value) []string {
	var prelude []string

	if p.glsl {
		if res.Version != "" {
			prelude = append(prelude, res.Version)
		}

		prelude = append(prelude, res.Extensions...)
	}

	for _, name := range slices.Sorted(maps.Keys(external)) {
		v := external[name]

		switch {
		case v.Kind() != KindToggle:
			prelude = append(prelude, "#define "+name+" "+v.String())
		case v.Enabled():
			prelude = append(prelude, "#define "+name)
		}
	}

	return prelude
}

func (p *Interpreter) fileName(i int) string {
	if i >= 0 && i < len(p.files) {
		return p.files[i]
	}

	return strconv.Itoa(i)
}

// run is the state of one Process call. disabled[d] suppresses lines at
// nesting depth d; taken[d] records whether a branch of the conditional chain
// at depth d has already been live.
type run struct {
	*Interpreter

	ctx      context.Context
	opts     *Options
	eval     *Evaluator
	res      *Result
	disabled []bool
	taken    []bool
	depth    int
}

func (r *run) line(i int, ln Line) error {
	suppress := false

	switch ln.Tag {
	case Directive:
		var err error
		if suppress, err = r.directive(i, ln); err != nil {
			return err
		}

	case Standard:
		r.option(i)
	}

	if suppress || r.anyDisabled() {
		ln.Text = "// " + ln.Text
		r.res.Lines = append(r.res.Lines, ln)

		return nil
	}

	if ln.Tag == BlockComment {
		if rt := ParseRenderTargets(ln.Text); rt != nil {
			r.res.RenderTargets = rt
		}
	}

	if opt, ok := r.res.Options[i]; ok && !opt.IsDefault() {
		ln.Text = opt.Code()
	}

	r.res.Lines = append(r.res.Lines, ln)

	return nil
}

// directive processes a directive line and reports whether the line itself is
// to be commented out.
func (r *run) directive(i int, ln Line) (bool, error) {
	text := strings.TrimSpace(ln.Text)
	name, arg := splitDirective(text)

	switch name {
	case "ifdef", "ifndef":
		r.push()

		if r.outerDisabled() {
			return true, nil
		}

		_, ok := r.eval.Symbols[firstWord(arg)]
		live := ok == (name == "ifdef")
		r.taken[r.depth] = live
		r.disabled[r.depth] = !live

		return true, nil

	case "if":
		r.push()

		if r.outerDisabled() {
			return true, nil
		}

		live, ok := r.condition(ln, name, arg)
		r.taken[r.depth] = ok && live
		r.disabled[r.depth] = !ok || !live

		return true, nil

	case "elif":
		if err := r.requireOpen(ln, name); err != nil {
			return true, err
		}

		if r.outerDisabled() {
			return true, nil
		}

		if r.taken[r.depth] {
			r.disabled[r.depth] = true

			return true, nil
		}

		live, ok := r.condition(ln, name, arg)
		if ok {
			r.taken[r.depth] = live
		}

		r.disabled[r.depth] = !ok || !live

		return true, nil

	case "else":
		if err := r.requireOpen(ln, name); err != nil {
			return true, err
		}

		if r.outerDisabled() {
			return true, nil
		}

		if r.taken[r.depth] {
			r.disabled[r.depth] = true
		} else {
			r.disabled[r.depth] = !r.disabled[r.depth]
			r.taken[r.depth] = true
		}

		return true, nil

	case "endif":
		if err := r.requireOpen(ln, name); err != nil {
			return true, err
		}

		r.disabled[r.depth] = false
		r.taken[r.depth] = false
		r.depth--

		return true, nil

	case "undef":
		if !r.anyDisabled() {
			delete(r.eval.Symbols, firstWord(arg))
		}

		return false, nil

	case "version":
		if !r.glsl {
			break
		}

		if !r.anyDisabled() {
			if r.res.Version != "" {
				r.log.TraceContext(r.ctx, "multiple version directives", r.where(ln)...)
			}

			r.res.Version = text
		}

		return true, nil

	case "extension":
		if !r.glsl {
			break
		}

		if r.anyDisabled() {
			r.log.TraceContext(r.ctx, "disabled extension", r.where(ln)...)
		} else {
			r.res.Extensions = append(r.res.Extensions, text)
		}

		return true, nil

	case "define":
		if !r.option(i) && !r.anyDisabled() {
			r.define(arg)
		}

		return false, nil
	}

	return false, nil
}

// option applies the option declared on line i, if any, and reports whether
// there was one.
func (r *run) option(i int) bool {
	opt, ok := r.opts.At(i)
	if !ok {
		return false
	}

	if !r.anyDisabled() {
		r.res.Options[i] = opt

		if !opt.IsToggle() || opt.Enabled() {
			r.eval.Symbols[opt.Name] = opt.Current()
		}
	}

	return true
}

// define records a #define that is not bound to an option. Function-like
// macros are ignored.
func (r *run) define(arg string) {
	name := arg
	rest := ""

	if i := strings.IndexFunc(arg, func(c rune) bool { return !isWordChar(c) }); i >= 0 {
		name, rest = arg[:i], arg[i:]
	}

	if name == "" || strings.HasPrefix(rest, "(") {
		return
	}

	if j := strings.Index(rest, "//"); j >= 0 {
		rest = rest[:j]
	}

	if rest = strings.TrimSpace(rest); rest == "" {
		r.eval.Symbols[name] = Bool(true)

		return
	}

	r.eval.Symbols[name] = Detect(rest)
}

// condition evaluates the expression of an #if or #elif. ok is false if the
// expression could not be evaluated.
func (r *run) condition(ln Line, name, expr string) (live, ok bool) {
	v, err := r.eval.Eval(r.ctx, expr)
	if err != nil {
		attrs := append(r.where(ln),
			slog.String("directive", "#"+name),
			slog.String("expr", expr),
			slog.Any("error", err),
		)
		r.log.ErrorContext(r.ctx, "failed to evaluate conditional", attrs...)

		return false, false
	}

	return v.Bool(), true
}

func (r *run) requireOpen(ln Line, name string) error {
	if r.depth > 0 {
		return nil
	}

	return ErrUnbalanced.With(append(r.where(ln), slog.String("directive", "#"+name))...)
}

func (r *run) where(ln Line) []slog.Attr {
	return []slog.Attr{
		slog.String("file", r.fileName(ln.File)),
		slog.Int("line", ln.Number),
	}
}

func (r *run) push() {
	r.depth++

	for len(r.disabled) <= r.depth {
		r.disabled = append(r.disabled, false)
		r.taken = append(r.taken, false)
	}
}

// outerDisabled reports whether any enclosing block is disabled.
func (r *run) outerDisabled() bool {
	return slices.Contains(r.disabled[:r.depth], true)
}

func (r *run) anyDisabled() bool {
	return slices.Contains(r.disabled, true)
}

// splitDirective splits "#  name rest" into its directive name and the
// trimmed remainder.
func splitDirective(text string) (string, string) {
	text = strings.TrimLeft(strings.TrimPrefix(text, "#"), " \t")

	end := strings.IndexFunc(text, func(c rune) bool { return c < 'a' || c > 'z' })
	if end < 0 {
		return text, ""
	}

	return text[:end], strings.TrimSpace(text[end:])
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}

	return ""
}

func isWordChar(c rune) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
