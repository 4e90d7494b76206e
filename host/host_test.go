package host

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ardnew/shadervar/log"
	"github.com/ardnew/shadervar/uniform"
)

func value(t *testing.T, h *Host, name string) uniform.Value {
	t.Helper()

	f, ok := uniform.Resolve(h.Registry(), name, nil)
	if !ok {
		t.Fatalf("accessor %s not registered", name)
	}

	return f.Call()
}

func TestHost_Defaults(t *testing.T) {
	h, err := New(Defaults(), WithSize(800, 400), WithLogger(log.Make(io.Discard)))
	if err != nil {
		t.Fatal(err)
	}

	for range 3 {
		h.Advance(500 * time.Millisecond)
	}

	tests := []struct {
		name string
		want uniform.Value
	}{
		{"frameCounter", uniform.IntValue(3)},
		{"frameTime", uniform.FloatValue(0.5)},
		{"frameTimeCounter", uniform.FloatValue(1.5)},
		{"worldTime", uniform.IntValue(30)},
		{"viewWidth", uniform.FloatValue(800)},
		{"aspectRatio", uniform.FloatValue(2)},
		{"sunPosition", uniform.VecValue(100*math.Cos(1.5/60), 100*math.Sin(1.5/60), 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := value(t, h, tt.name)
			if got.Type() != tt.want.Type() {
				t.Fatalf("expected %s, got %s", tt.want.Type(), got.Type())
			}

			for i, c := range tt.want.Comps() {
				if d := got.Comps()[i] - c; d > 1e-9 || d < -1e-9 {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestHost_OncePerFrame(t *testing.T) {
	h, err := New([]Accessor{{"t", uniform.Float, "time"}})
	if err != nil {
		t.Fatal(err)
	}

	first := value(t, h, "t")

	h.Advance(time.Second)

	if got := value(t, h, "t"); got.Equal(first) {
		t.Errorf("expected a new value after advance, got %v", got)
	}

	h.Reset()

	if got := value(t, h, "t"); !got.Equal(uniform.FloatValue(0)) {
		t.Errorf("expected 0 after reset, got %v", got)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		acc  Accessor
	}{
		{"syntax", Accessor{"a", uniform.Int, "frame +"}},
		{"unknown variable", Accessor{"a", uniform.Float, "speed"}},
		{"scalar type", Accessor{"a", uniform.Bool, "frame"}},
		{"vector length", Accessor{"a", uniform.Vec2, "[1, 2, 3]"}},
		{"vector element", Accessor{"a", uniform.Vec2, "[1, true]"}},
		{"name", Accessor{"2a", uniform.Int, "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]Accessor{tt.acc})
			if !errors.Is(err, ErrCompile) {
				t.Errorf("expected ErrCompile, got %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	const src = `
- name: ticks
  type: int
  expr: frame * 2
- name: center
  type: vec2
  expr: "[width / 2, height / 2]"
`

	accs, err := Load(t.Context(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	h, err := New(accs, WithSize(100, 50))
	if err != nil {
		t.Fatal(err)
	}

	decls := []uniform.Declaration{
		{Kind: uniform.KindUniform, Type: uniform.Float, Name: "half", Expr: "ticks / 2"},
		{Kind: uniform.KindUniform, Type: uniform.Vec2, Name: "pos", Expr: "center + 1"},
	}

	p, err := uniform.NewCompiler(
		uniform.WithLogger(log.Make(io.Discard)),
		uniform.WithRegistry(h.Registry()),
	).Compile(t.Context(), decls)
	if err != nil {
		t.Fatal(err)
	}

	h.Advance(time.Second)
	p.Update()

	if v, _ := p.Get("half"); !v.Equal(uniform.FloatValue(1)) {
		t.Errorf("expected 1.0, got %v", v)
	}

	if v, _ := p.Get("pos"); !v.Equal(uniform.VecValue(51, 26)) {
		t.Errorf("expected vec2(51.0, 26.0), got %v", v)
	}

	if _, err := Load(t.Context(), strings.NewReader("- name: a\n  kind: int\n")); !errors.Is(err, ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}
}
