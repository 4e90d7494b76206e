package host

import (
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/shadervar/lang"
	"github.com/ardnew/shadervar/log"
	"github.com/ardnew/shadervar/uniform"
)

// Predefined errors (sentinel values).
var (
	ErrCompile = lang.NewError("cannot compile host accessor")
	ErrResult  = lang.NewError("host accessor result does not match its type")
	ErrLoad    = lang.NewError("failed to load host accessors")
)

// Env is the host state visible to accessor expressions.
type Env struct {
	Frame  int     `expr:"frame"`
	Time   float64 `expr:"time"`
	Delta  float64 `expr:"delta"`
	Width  int     `expr:"width"`
	Height int     `expr:"height"`
}

// Accessor declares a named host value computed from [Env].
type Accessor struct {
	Name string       `yaml:"name"`
	Type uniform.Type `yaml:"type"`
	Expr string       `yaml:"expr"`
}

// Defaults returns the standard accessors of a shader pack host.
func Defaults() []Accessor {
	return []Accessor{
		{"frameCounter", uniform.Int, "frame % 720720"},
		{"frameTime", uniform.Float, "delta"},
		{"frameTimeCounter", uniform.Float, "time - floor(time / 3600) * 3600"},
		{"worldTime", uniform.Int, "int(time * 20) % 24000"},
		{"viewWidth", uniform.Float, "width"},
		{"viewHeight", uniform.Float, "height"},
		{"aspectRatio", uniform.Float, "width / height"},
		{"sunPosition", uniform.Vec3, "[100 * cos(time / 60), 100 * sin(time / 60), 0]"},
	}
}

// Option configures a [Host].
type Option func(*Host)

// WithLogger sets the logger receiving evaluation failures.
func WithLogger(logger log.Logger) Option {
	return func(h *Host) { h.log = logger }
}

// WithSize sets the initial viewport size.
func WithSize(width, height int) Option {
	return func(h *Host) { h.env.Width, h.env.Height = width, height }
}

// Host simulates the state a renderer exposes to uniform expressions. Each
// accessor is evaluated at most once per frame.
type Host struct {
	env   Env
	accs  []*accessor
	table *uniform.Table
	log   log.Logger
}

type accessor struct {
	Accessor

	program *vm.Program
	value   uniform.Value
	valid   bool
}

// New compiles accessors against [Env]. Every accessor is evaluated once
// against the initial state so that result type mismatches surface here.
func New(accessors []Accessor, opts ...Option) (*Host, error) {
	h := &Host{
		env:   Env{Width: 1920, Height: 1080},
		table: uniform.NewTable(),
		log:   log.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	for _, a := range accessors {
		acc, err := h.compile(a)
		if err != nil {
			return nil, err
		}

		h.accs = append(h.accs, acc)
		h.table.Impure(a.Name, a.Type, nil, func([]uniform.Value) uniform.Value {
			return h.eval(acc)
		})
	}

	return h, nil
}

func (h *Host) compile(a Accessor) (*accessor, error) {
	fail := func(err error) error {
		return ErrCompile.Wrap(err).With(
			slog.String("name", a.Name),
			slog.String("type", a.Type.String()),
			slog.String("expr", a.Expr),
		)
	}

	if !lang.IsIdentifier(a.Name) {
		return nil, fail(lang.NewError("invalid name"))
	}

	opts := []expr.Option{expr.Env(Env{}), mathFunc("sin", math.Sin), mathFunc("cos", math.Cos)}

	switch a.Type {
	case uniform.Bool:
		opts = append(opts, expr.AsBool())
	case uniform.Int:
		opts = append(opts, expr.AsInt())
	case uniform.Float:
		opts = append(opts, expr.AsFloat64())
	}

	program, err := expr.Compile(a.Expr, opts...)
	if err != nil {
		return nil, fail(err)
	}

	acc := &accessor{Accessor: a, program: program}

	out, err := vm.Run(program, h.env)
	if err != nil {
		return nil, fail(err)
	}

	if _, ok := convert(a.Type, out); !ok {
		return nil, fail(ErrResult.With(slog.Any("result", out)))
	}

	return acc, nil
}

func (h *Host) eval(acc *accessor) uniform.Value {
	if acc.valid {
		return acc.value
	}

	acc.valid = true
	acc.value = uniform.Zero(acc.Type)

	out, err := vm.Run(acc.program, h.env)
	if err != nil {
		h.log.Error("failed to evaluate host accessor",
			slog.String("name", acc.Name),
			slog.Any("error", err),
		)

		return acc.value
	}

	if v, ok := convert(acc.Type, out); ok {
		acc.value = v
	}

	return acc.value
}

// Registry returns the accessors as zero-argument uniform functions.
func (h *Host) Registry() *uniform.Table { return h.table }

// Env returns the current host state.
func (h *Host) Env() Env { return h.env }

// Advance starts the next frame, dt after the previous one.
func (h *Host) Advance(dt time.Duration) {
	h.env.Frame++
	h.env.Delta = dt.Seconds()
	h.env.Time += h.env.Delta
	h.invalidate()
}

// Resize changes the viewport size.
func (h *Host) Resize(width, height int) {
	h.env.Width, h.env.Height = width, height
	h.invalidate()
}

// Reset returns the clock to frame zero.
func (h *Host) Reset() {
	h.env.Frame, h.env.Time, h.env.Delta = 0, 0, 0
	h.invalidate()
}

func (h *Host) invalidate() {
	for _, acc := range h.accs {
		acc.valid = false
	}
}

// Load reads a YAML sequence of accessors, each a mapping with keys name,
// type and expr.
func Load(ctx context.Context, r io.Reader) ([]Accessor, error) {
	src, err := lang.ReadSource(ctx, r)
	if err != nil {
		return nil, ErrLoad.Wrap(err)
	}

	var accs []Accessor

	if err := yaml.UnmarshalContext(ctx, []byte(src), &accs, yaml.Strict()); err != nil {
		return nil, ErrLoad.Wrap(err)
	}

	return accs, nil
}

func mathFunc(name string, fn func(float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		x, ok := number(params[0])
		if !ok {
			return nil, ErrResult.With(slog.String("func", name), slog.Any("arg", params[0]))
		}

		return fn(x), nil
	})
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}

	return 0, false
}

// convert maps an expression result onto a uniform value of type t. Vector
// accessors produce arrays of t.Size() numbers.
func convert(t uniform.Type, out any) (uniform.Value, bool) {
	switch t {
	case uniform.Bool:
		b, ok := out.(bool)

		return uniform.BoolValue(b), ok
	case uniform.Int:
		n, ok := out.(int)

		return uniform.IntValue(int32(n)), ok
	case uniform.Float:
		f, ok := number(out)

		return uniform.FloatValue(f), ok
	}

	list, ok := out.([]any)
	if !ok || len(list) != t.Size() {
		return uniform.Value{}, false
	}

	comps := make([]float64, len(list))

	for i, c := range list {
		if comps[i], ok = number(c); !ok {
			return uniform.Value{}, false
		}
	}

	return uniform.VecValue(comps...), true
}
