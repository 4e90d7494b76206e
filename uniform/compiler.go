package uniform

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/shadervar/lang"
	"github.com/ardnew/shadervar/log"
	"github.com/ardnew/shadervar/pkg"
)

// Flags selects compiler behavior. [DefaultFlags] enables everything.
type Flags struct {
	// CastIntDivToFloat makes integer division produce Float.
	CastIntDivToFloat bool

	ConstantFolding  bool
	ShortCircuitBool bool

	// KeepSideEffects keeps the non-constant operands of a boolean chain that
	// short-circuits to a constant, so each is still evaluated.
	KeepSideEffects bool

	// InlineMultiMatchConst pushes a constant in() root once per alternative
	// instead of storing it in a local.
	InlineMultiMatchConst bool

	// FuseIfElseRelational branches directly on comparisons and boolean
	// chains instead of materializing their Bool result.
	FuseIfElseRelational bool

	OptimizeJumps bool
}

// DefaultFlags returns flags with every option enabled.
func DefaultFlags() Flags {
	return Flags{
		CastIntDivToFloat:     true,
		ConstantFolding:       true,
		ShortCircuitBool:      true,
		KeepSideEffects:       true,
		InlineMultiMatchConst: true,
		FuseIfElseRelational:  true,
		OptimizeJumps:         true,
	}
}

// Kind distinguishes declarations exposed to shaders from helper variables.
type Kind uint8

// Declaration kinds.
const (
	KindUniform Kind = iota
	KindVariable
)

func (k Kind) String() string {
	if k == KindVariable {
		return "variable"
	}

	return "uniform"
}

// ParseKind parses "uniform" or "variable".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uniform":
		return KindUniform, nil
	case "variable":
		return KindVariable, nil
	}

	return 0, ErrDeclaration.With(slog.String("reason", "unknown kind"), slog.String("kind", s))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}

	*k = v

	return nil
}

// Declaration is one named, typed expression.
type Declaration struct {
	Kind Kind   `yaml:"kind"`
	Type Type   `yaml:"type"`
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

func (d Declaration) attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("kind", d.Kind.String()),
		slog.String("type", d.Type.String()),
		slog.String("name", d.Name),
		slog.String("expr", strings.Join(strings.Fields(d.Expr), " ")),
	}
}

// treeCache holds parsed declaration expressions.
var treeCache = lang.NewCache[lang.Node](lang.TreeBuilder{})

// Option configures a [Compiler].
type Option func(*Compiler)

// WithFlags sets the compiler flags.
func WithFlags(flags Flags) Option {
	return func(c *Compiler) { c.flags = flags }
}

// WithLogger sets the logger receiving declaration failures.
func WithLogger(logger log.Logger) Option {
	return func(c *Compiler) { c.log = logger }
}

// WithState sets the state of the stateful builtins.
func WithState(state *State) Option {
	return func(c *Compiler) { c.state = state }
}

// WithRegistry adds registries consulted after the builtins and the
// declarations of the program being compiled.
func WithRegistry(regs ...Registry) Option {
	return func(c *Compiler) { c.extra = append(c.extra, regs...) }
}

// Compiler compiles declarations into programs.
type Compiler struct {
	flags Flags
	state *State
	extra []Registry
	log   log.Logger
}

// NewCompiler returns a compiler with [DefaultFlags] and a fresh [State]
// unless configured otherwise.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{flags: DefaultFlags(), log: log.Default()}

	for _, opt := range opts {
		opt(c)
	}

	if c.state == nil {
		c.state = NewState()
	}

	return c
}

// Compile compiles decls in order. Each declaration may refer to the ones
// before it. A declaration that fails to compile is logged and left out of
// the program, so declarations referring to it fail too; the returned error
// joins every failure while the program holds the rest.
func (c *Compiler) Compile(ctx context.Context, decls []Declaration) (*Program, error) {
	p := &Program{
		state: c.state,
		table: NewTable(),
		index: make(map[string]int),
	}

	reg := c.registry(p.table)
	res := NewResolver(reg, c.flags)

	var errs pkg.Error

	for _, d := range decls {
		if err := c.declare(ctx, p, res, d); err != nil {
			err = ErrDeclaration.Wrap(err).With(d.attrs()...)
			c.log.ErrorContext(ctx, "failed to compile declaration", slog.Any("error", err))
			errs = errs.Wrap(err)
		}
	}

	c.state.claim(res.instances)

	c.log.DebugContext(ctx, "compiled program",
		slog.Int("declarations", len(p.entries)),
		slog.Int("failed", len(errs)),
		slog.Int("stateful_sites", res.Instances()),
	)

	return p, errs.Err()
}

func (c *Compiler) registry(decls Registry) Layers {
	return append(Layers{Builtins(), c.state.Registry(), decls}, c.extra...)
}

func (c *Compiler) declare(ctx context.Context, p *Program, res *Resolver, d Declaration) error {
	if _, ok := p.index[d.Name]; ok {
		return ErrDuplicate
	}

	if !lang.IsIdentifier(d.Name) {
		return ErrDeclaration.With(slog.String("reason", "invalid name"))
	}

	tree, err := c.parse(ctx, res, d.Expr)
	if err != nil {
		return err
	}

	if from := tree.Type(); !canCast(from, d.Type) {
		return ErrType.With(
			slog.String("reason", "cannot convert "+from.String()+" to "+d.Type.String()),
		)
	}

	if tree, err = NewOptimizer(c.flags).Optimize(castTo(tree, d.Type)); err != nil {
		return err
	}

	r, err := c.generate(tree)
	if err != nil {
		return err
	}

	slot := len(p.slots)
	p.slots = append(p.slots, Zero(d.Type))
	p.entries = append(p.entries, entry{Declaration: d, tree: tree, routine: r, slot: slot})
	p.index[d.Name] = slot
	p.table.Impure(d.Name, d.Type, nil, func([]Value) Value { return p.slots[slot] })

	return nil
}

func (c *Compiler) parse(ctx context.Context, res *Resolver, expr string) (Node, error) {
	parsed, err := treeCache.Parse(ctx, expr)
	if err != nil {
		return nil, err
	}

	return res.Resolve(parsed)
}

func (c *Compiler) generate(tree Node) (*Routine, error) {
	code, locals, err := Generate(tree, c.flags)
	if err != nil {
		return nil, err
	}

	if c.flags.OptimizeJumps {
		code = OptimizeJumps(code)
	}

	return Assemble(code, locals)
}

// Expr is a standalone compiled expression.
type Expr struct {
	Tree    Node
	Routine *Routine
	state   *State
	machine Machine
}

// Type returns the result type of e.
func (e *Expr) Type() Type { return e.Tree.Type() }

// Eval evaluates e once and starts a new frame of the stateful builtins.
func (e *Expr) Eval() Value {
	v := e.machine.Run(e.Routine)
	e.state.Update()

	return v
}

// CompileExpr compiles a single expression of its natural type against the
// builtins and the compiler's extra registries.
func (c *Compiler) CompileExpr(ctx context.Context, expr string) (*Expr, error) {
	// Stateful call sites are numbered past those of compiled programs so
	// that evaluating an expression leaves their history intact.
	res := NewResolver(c.registry(nil), c.flags)
	res.instances = c.state.sites

	tree, err := c.parse(ctx, res, expr)
	if err != nil {
		return nil, err
	}

	if tree, err = NewOptimizer(c.flags).Optimize(tree); err != nil {
		return nil, err
	}

	r, err := c.generate(tree)
	if err != nil {
		return nil, err
	}

	return &Expr{Tree: tree, Routine: r, state: c.state}, nil
}
