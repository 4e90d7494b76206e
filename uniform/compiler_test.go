package uniform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/shadervar/lang"
	"github.com/ardnew/shadervar/log"
)

func testCompiler(opts ...Option) *Compiler {
	base := []Option{
		WithLogger(log.Make(io.Discard)),
		WithState(NewState(WithRand(rand.NewPCG(1, 2)))),
	}

	return NewCompiler(append(base, opts...)...)
}

func evalExpr(t *testing.T, c *Compiler, expr string) Value {
	t.Helper()

	e, err := c.CompileExpr(t.Context(), expr)
	if err != nil {
		t.Fatalf("CompileExpr(%q): %v", expr, err)
	}

	return e.Eval()
}

func TestCompileExpr_Values(t *testing.T) {
	tests := []struct {
		expr string
		want Value
	}{
		{"10 - 3 - 2", IntValue(9)},
		{"2 * 3 + 4", IntValue(10)},
		{"20 / 4 / 2", FloatValue(10)},
		{"7 / 2", FloatValue(3.5)},
		{"7 % 3", IntValue(1)},
		{"-7 % 3", IntValue(-1)},
		{"2147483647 + 1", IntValue(-2147483648)},
		{"1.5 + 2", FloatValue(3.5)},
		{"true + true", IntValue(2)},
		{"-true", IntValue(-1)},
		{"!0", BoolValue(true)},
		{"!2.5", BoolValue(false)},
		{"!(1 < 2)", BoolValue(false)},
		{"1 < 2 && 2 < 3", BoolValue(true)},
		{"1 > 2 || 2 > 3", BoolValue(false)},
		{"1 == 1.0", BoolValue(true)},
		{"if(1 > 2, 1, 2.5)", FloatValue(2.5)},
		{"if(3, 1, 2)", IntValue(1)},
		{"if(0.0, 1, 2)", IntValue(2)},
		{"in(2, 1, 2, 3)", BoolValue(true)},
		{"in(5, 1, 2, 3)", BoolValue(false)},
		{"in(2.0, 1, 2)", BoolValue(true)},
		{"vec2(1, 2) * 2", VecValue(2, 4)},
		{"-vec3(1, -2, 3)", VecValue(-1, 2, -3)},
		{"vec4(1.5)", VecValue(1.5, 1.5, 1.5, 1.5)},
		{"min(3, 2) + max(1, 4)", IntValue(6)},
		{"clamp(5.0, 0, 1)", FloatValue(1)},
		{"abs(-3)", IntValue(3)},
		{"signum(-2.5)", FloatValue(-1)},
		{"between(0.5, 0, 1)", BoolValue(true)},
		{"frac(2.25)", FloatValue(0.25)},
	}

	c := testCompiler()

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := evalExpr(t, c, tt.expr); !got.Equal(tt.want) {
				t.Errorf("expected %v (%s), got %v (%s)", tt.want, tt.want.Type(), got, got.Type())
			}
		})
	}
}

func TestCompileExpr_IntDivision(t *testing.T) {
	flags := DefaultFlags()
	flags.CastIntDivToFloat = false

	c := testCompiler(WithFlags(flags))

	if got := evalExpr(t, c, "7 / 2"); !got.Equal(IntValue(3)) {
		t.Errorf("expected 3, got %v", got)
	}

	if _, err := c.CompileExpr(t.Context(), "1 / 0"); !errors.Is(err, ErrFold) {
		t.Errorf("expected ErrFold, got %v", err)
	}

	if _, err := c.CompileExpr(t.Context(), "1 % (2 - 2)"); !errors.Is(err, ErrFold) {
		t.Errorf("expected ErrFold, got %v", err)
	}
}

func TestCompileExpr_Errors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"foo", ErrUnknownFunction},
		{"sin(1, 2)", ErrUnknownFunction},
		{"vec2(1, 2) < 1", ErrType},
		{"vec2(1, 2) + vec3(1, 2, 3)", ErrType},
		{"!vec2(1, 2)", ErrType},
		{"if(true, 1)", ErrType},
		{"if(vec2(1, 2), 1, 2)", ErrType},
		{"in(1)", ErrType},
		{"in(vec2(1, 2), vec2(1, 2), 1)", ErrType},
		{"true && 1", ErrType},
		{"3000000000", ErrType},
		{"1 +", lang.ErrParse},
		{"1 = 2", lang.ErrLex},
	}

	c := testCompiler()

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := c.CompileExpr(t.Context(), tt.expr)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestResolver_SuggestsNames(t *testing.T) {
	tree, err := lang.ParseTree("clmp(1.0, 0.0, 2.0)")
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewResolver(Builtins(), DefaultFlags()).Resolve(tree)

	var le *lang.Error
	if !errors.As(err, &le) || !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("expected ErrUnknownFunction, got %v", err)
	}

	for _, a := range le.Attrs() {
		if a.Key != "did_you_mean" {
			continue
		}

		hints, ok := a.Value.Any().([]string)
		if !ok || !slices.Contains(hints, "clamp") {
			t.Errorf("expected clamp among suggestions, got %v", a.Value)
		}

		return
	}

	t.Errorf("expected did_you_mean attribute, got %v", le.Attrs())
}

// hostVars is a registry of mutable host values for tests.
type hostVars struct {
	x int32
	f float64
	n int
}

func (h *hostVars) registry() *Table {
	return NewTable().
		Impure("x", Int, nil, func([]Value) Value { return IntValue(h.x) }).
		Impure("f", Float, nil, func([]Value) Value { return FloatValue(h.f) }).
		Impure("tick", Bool, nil, func([]Value) Value {
			h.n++

			return BoolValue(true)
		})
}

func TestCompileExpr_FoldingPreservesResults(t *testing.T) {
	exprs := []string{
		"x * 2 + 1 - 3 * 4",
		"10 - x - 2 - f",
		"if(x > 1 && f < 0.5 || false, x / 2, f)",
		"if(!(x == 0), 1, 2 + 3)",
		"in(x, 1, 2 + 1, 5)",
		"in(1 + 1, x, 2, f)",
		"!(x == 3) && true",
		"-(-x) + -(-f)",
		"clamp(f, 0.0, 1.0) * 2",
		"min(x, 3) + max(2, 7)",
		"x % 3 == 0 || x % 2 == 0",
		"sin(pi * f) + cos(0)",
		"(vec2(f, x) + vec2(1, 2) * 3)",
		"mix(1.0, 3.0, f) >= 2 || x < 0",
		"if(true, x, 2) + if(false, 1, x)",
		"-true + x",
	}

	host := &hostVars{}
	unfolded := Flags{CastIntDivToFloat: true}
	folded := testCompiler(WithRegistry(host.registry()))
	plain := testCompiler(WithRegistry(host.registry()), WithFlags(unfolded))

	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			a, err := folded.CompileExpr(t.Context(), expr)
			if err != nil {
				t.Fatal(err)
			}

			b, err := plain.CompileExpr(t.Context(), expr)
			if err != nil {
				t.Fatal(err)
			}

			for x := int32(-3); x <= 3; x++ {
				for _, f := range []float64{-1, 0, 0.25, 0.75, 2} {
					host.x, host.f = x, f

					if got, want := a.Eval(), b.Eval(); !got.Equal(want) {
						t.Errorf("x=%d f=%v: expected %v, got %v", x, f, want, got)
					}
				}
			}
		})
	}
}

func TestCompileExpr_ShortCircuit(t *testing.T) {
	tests := []struct {
		expr  string
		keep  bool
		want  bool
		calls int
	}{
		{"false && tick", false, false, 0},
		{"false && tick", true, false, 0},
		{"tick && false", false, false, 0},
		{"tick && false && tick", true, false, 1},
		{"tick && false && tick", false, false, 0},
		{"true || tick", true, true, 0},
		{"tick || true || tick", true, true, 1},
		{"true || tick", false, true, 0},
		{"tick || true", true, true, 1},
		{"true && tick", false, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			flags := DefaultFlags()
			flags.KeepSideEffects = tt.keep

			host := &hostVars{}
			c := testCompiler(WithFlags(flags), WithRegistry(host.registry()))

			if got := evalExpr(t, c, tt.expr); got.Bool() != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}

			if host.n != tt.calls {
				t.Errorf("expected %d calls, got %d", tt.calls, host.n)
			}
		})
	}
}

func TestCompileExpr_ShortCircuitCalls(t *testing.T) {
	exprs := []string{
		"false && tick",
		"tick && false",
		"tick && false && tick",
		"tick && tick && false",
		"true || tick",
		"tick || true || tick",
		"!tick || true || tick",
		"x > 0 && false && tick",
		"tick && x > 0 && tick",
	}

	for _, keep := range []bool{true, false} {
		flags := DefaultFlags()
		flags.KeepSideEffects = keep

		for _, expr := range exprs {
			t.Run(fmt.Sprintf("keep=%v/%s", keep, expr), func(t *testing.T) {
				plain, optimized := &hostVars{x: 1}, &hostVars{x: 1}

				want := evalExpr(t, testCompiler(
					WithFlags(Flags{CastIntDivToFloat: true}),
					WithRegistry(plain.registry()),
				), expr)

				got := evalExpr(t, testCompiler(
					WithFlags(flags),
					WithRegistry(optimized.registry()),
				), expr)

				if !got.Equal(want) {
					t.Errorf("expected %v, got %v", want, got)
				}

				switch {
				case keep && optimized.n != plain.n:
					t.Errorf("expected %d calls, got %d", plain.n, optimized.n)
				case !keep && optimized.n > plain.n:
					t.Errorf("expected at most %d calls, got %d", plain.n, optimized.n)
				}
			})
		}
	}
}

func TestCompileExpr_MultiMatch(t *testing.T) {
	host := &hostVars{}
	c := testCompiler(WithRegistry(host.registry()))

	e, err := c.CompileExpr(t.Context(), "in(2, 1, 2, 3)")
	if err != nil {
		t.Fatal(err)
	}

	if v, ok := constant(e.Tree); !ok || !v.Bool() {
		t.Errorf("expected constant true, got %s", e.Tree)
	}

	e, err = c.CompileExpr(t.Context(), "in(x, 1, 2, 3)")
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := e.Tree.(*MultiMatch); !ok {
		t.Fatalf("expected multi-match, got %s", e.Tree)
	}

	compares := 0

	for _, in := range e.Routine.Code {
		if in.Code == OpJumpCmp && in.Op == lang.OpEq {
			compares++
		}
	}

	if compares != 3 {
		t.Errorf("expected 3 equality branches, got %d", compares)
	}

	for x, want := range map[int32]bool{0: false, 1: true, 2: true, 3: true, 4: false} {
		host.x = x

		if got := e.Eval(); got.Bool() != want {
			t.Errorf("x=%d: expected %v, got %v", x, want, got)
		}
	}
}

func TestCompileExpr_FloatComparisons(t *testing.T) {
	host := &hostVars{}
	c := testCompiler(WithRegistry(host.registry()))

	tests := []struct {
		expr string
		want bool
	}{
		{"f < 1", false},
		{"f >= 1", false},
		{"f == f", false},
		{"f != f", true},
		{"!(f < 1)", true},
		{"if(f > 0, false, true)", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := c.CompileExpr(t.Context(), tt.expr)
			if err != nil {
				t.Fatal(err)
			}

			host.f = math.NaN()

			if got := e.Eval(); got.Bool() != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCompile_Program(t *testing.T) {
	decls := []Declaration{
		{KindVariable, Int, "base", "10 - 3 - 2"},
		{KindUniform, Float, "half", "base / 2"},
		{KindUniform, Vec3, "color", "vec3(1, 0.5, base)"},
		{KindUniform, Float, "green", "color.g"},
		{KindUniform, Bool, "big", "base > 8 || in(base, 9, 10)"},
		{KindUniform, Int, "flag", "big"},
	}

	p, err := testCompiler().Compile(t.Context(), decls)
	if err != nil {
		t.Fatal(err)
	}

	if v, ok := p.Get("half"); !ok || !v.Equal(Zero(Float)) {
		t.Errorf("expected zero before the first update, got %v", v)
	}

	p.Update()

	want := map[string]Value{
		"half":  FloatValue(4.5),
		"color": VecValue(1, 0.5, 9),
		"green": FloatValue(0.5),
		"big":   BoolValue(true),
		"flag":  IntValue(1),
	}

	for name, w := range want {
		got, ok := p.Get(name)
		if !ok {
			t.Errorf("%s: no accessor", name)

			continue
		}

		if !got.Equal(w) {
			t.Errorf("%s: expected %v, got %v", name, w, got)
		}
	}

	if _, ok := p.Accessor("base"); ok {
		t.Error("expected no accessor for a variable")
	}

	var names []string
	for d := range p.Uniforms() {
		names = append(names, d.Name)
	}

	if !slices.Equal(names, []string{"half", "color", "green", "big", "flag"}) {
		t.Errorf("unexpected uniforms %v", names)
	}
}

func TestProgram_UpdateIsIdempotent(t *testing.T) {
	host := &hostVars{x: 4, f: 0.3}
	decls := []Declaration{
		{KindVariable, Float, "a", "f * x"},
		{KindUniform, Float, "b", "if(a > 1, a, -a) + sin(a)"},
		{KindUniform, Bool, "c", "in(x, 1, 4) && b > 0"},
		{KindUniform, Vec2, "d", "vec2(a, b) / 2"},
	}

	p, err := testCompiler(WithRegistry(host.registry())).Compile(t.Context(), decls)
	if err != nil {
		t.Fatal(err)
	}

	p.Update()

	first := make(map[string]Value)
	for d := range p.Uniforms() {
		first[d.Name], _ = p.Get(d.Name)
	}

	p.Update()

	for name, v := range first {
		if got, _ := p.Get(name); !got.Equal(v) {
			t.Errorf("%s: expected %v, got %v", name, v, got)
		}
	}
}

func TestCompile_FailuresCascade(t *testing.T) {
	decls := []Declaration{
		{KindUniform, Int, "ok", "2"},
		{KindVariable, Int, "broken", "1 % 0"},
		{KindUniform, Int, "dependent", "broken + ok"},
		{KindUniform, Vec2, "v", "vec2(1, 2)"},
		{KindUniform, Float, "swz", "v.z"},
		{KindUniform, Bool, "flag", "ok + 1"},
		{KindUniform, Int, "ok", "3"},
		{KindUniform, Int, "after", "ok * 2"},
	}

	p, err := testCompiler().Compile(t.Context(), decls)
	if err == nil {
		t.Fatal("expected errors")
	}

	for _, want := range []error{ErrFold, ErrUnknownFunction, ErrType, ErrDuplicate, ErrDeclaration} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v in %v", want, err)
		}
	}

	if p.Len() != 3 {
		t.Errorf("expected 3 compiled declarations, got %d", p.Len())
	}

	p.Update()

	if v, ok := p.Get("after"); !ok || !v.Equal(IntValue(4)) {
		t.Errorf("expected after = 4, got %v (%v)", v, ok)
	}

	for _, name := range []string{"broken", "dependent", "swz", "flag"} {
		if _, ok := p.Get(name); ok {
			t.Errorf("%s: expected no accessor", name)
		}
	}
}

func TestCompile_StatefulIndices(t *testing.T) {
	decls := []Declaration{
		{KindUniform, Float, "a", "random(0)"},
		{KindUniform, Float, "b", "random(0)"},
		{KindUniform, Float, "c", "random(0) - random(0, 0.0, 1.0)"},
	}

	p, err := testCompiler().Compile(t.Context(), decls)
	if err != nil {
		t.Fatal(err)
	}

	var indices []int32

	for _, name := range []string{"a", "b", "c"} {
		tree, _ := p.Tree(name)

		Walk(tree, func(n Node) bool {
			if call, ok := n.(*Call); ok && call.Func.Stateful {
				v, _ := constant(call.Args[0])
				indices = append(indices, v.Int())
			}

			return true
		})
	}

	if !slices.Equal(indices, []int32{0, 1, 2, 3}) {
		t.Errorf("expected indices [0 1 2 3], got %v", indices)
	}
}

func TestResolver_StatefulIndexArgument(t *testing.T) {
	tests := []struct {
		expr      string
		instances int
	}{
		{"random(7)", 1},
		{"random(2, 0.0, 1.0) + randomInt(0)", 2},
		{"random(true)", 0},
		{"smooth(false, 1.0, 1, 1)", 0},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			tree, err := lang.ParseTree(tt.expr)
			if err != nil {
				t.Fatal(err)
			}

			res := NewResolver(Layers{Builtins(), NewState().Registry()}, DefaultFlags())

			if _, err := res.Resolve(tree); err != nil {
				t.Fatal(err)
			}

			if got := res.Instances(); got != tt.instances {
				t.Errorf("expected %d instances, got %d", tt.instances, got)
			}
		})
	}
}

func TestCompileExpr_StatefulIndicesFollowProgram(t *testing.T) {
	c := testCompiler()

	p, err := c.Compile(t.Context(), []Declaration{
		{KindUniform, Float, "a", "random(0)"},
		{KindUniform, Float, "b", "random(0) + random(0)"},
	})
	if err != nil {
		t.Fatal(err)
	}

	p.Update()

	a, _ := p.Get("a")

	e, err := c.CompileExpr(t.Context(), "random(0)")
	if err != nil {
		t.Fatal(err)
	}

	call, ok := e.Tree.(*Call)
	if !ok {
		t.Fatalf("expected a call, got %s", e.Tree)
	}

	if v, _ := constant(call.Args[0]); v.Int() != 3 {
		t.Errorf("expected index 3, got %v", call.Args[0])
	}

	if v := e.Eval(); v.Equal(a) {
		t.Errorf("expected a fresh draw, got the value of a: %v", v)
	}
}

func TestProgram_Disassemble(t *testing.T) {
	p, err := testCompiler().Compile(t.Context(), []Declaration{
		{KindUniform, Float, "a", "if(random(0) > 0.5, 1, 2)"},
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := p.Disassemble(&buf); err != nil {
		t.Fatal(err)
	}

	out := buf.String()

	for _, want := range []string{"uniform float a = ", "call random(int) float", "goto"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func BenchmarkProgram_Update(b *testing.B) {
	host := &hostVars{x: 3, f: 0.5}
	decls := []Declaration{
		{KindVariable, Float, "t", "f * 2 + x"},
		{KindUniform, Float, "wave", "sin(t) * 0.5 + 0.5"},
		{KindUniform, Bool, "night", "in(x, 1, 2, 3) && t > 1 || f < 0"},
		{KindUniform, Vec3, "tint", "mix(0.2, 1.0, wave) * vec3(1, 0.9, 0.8)"},
		{KindUniform, Float, "noise", "smooth(0, random(0), 1, 1)"},
	}

	p, err := testCompiler(WithRegistry(host.registry())).Compile(b.Context(), decls)
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		p.Update()
	}
}
