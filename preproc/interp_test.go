package preproc

import (
	"bytes"
	"errors"
	"io"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/ardnew/shadervar/log"
)

func process(t *testing.T, src string, symbols map[string]Value, configs ...Config) (*Result, *Options) {
	t.Helper()

	res, opts, err := tryProcess(t, src, symbols, configs...)
	if err != nil {
		t.Fatalf("Process error: %v", err)
	}

	return res, opts
}

func tryProcess(t *testing.T, src string, symbols map[string]Value, configs ...Config) (*Result, *Options, error) {
	t.Helper()

	lines, err := ReadLines(t.Context(), 0, strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	opts := DiscoverOptions(t.Context(), lines)
	configs = append([]Config{WithLogger(log.Make(io.Discard))}, configs...)

	res, err := Process(t.Context(), lines, opts, symbols, configs...)

	return res, opts, err
}

func texts(res *Result) []string {
	out := make([]string, len(res.Lines))
	for i, ln := range res.Lines {
		out[i] = ln.Text
	}

	return out
}

func TestProcess_Conditionals(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		symbols map[string]Value
		want    []string
	}{
		{
			name:    "ifdef taken",
			src:     "#ifdef A\na\n#else\nb\n#endif",
			symbols: map[string]Value{"A": Bool(true)},
			want:    []string{"// #ifdef A", "a", "// #else", "// b", "// #endif"},
		},
		{
			name: "ifdef not taken",
			src:  "#ifdef A\na\n#else\nb\n#endif",
			want: []string{"// #ifdef A", "// a", "// #else", "b", "// #endif"},
		},
		{
			name: "ifndef",
			src:  "#ifndef A\na\n#endif",
			want: []string{"// #ifndef A", "a", "// #endif"},
		},
		{
			name:    "elif chain second",
			src:     "#if X == 1\none\n#elif X == 2\ntwo\n#else\nother\n#endif",
			symbols: map[string]Value{"X": Int(2)},
			want: []string{
				"// #if X == 1", "// one",
				"// #elif X == 2", "two",
				"// #else", "// other",
				"// #endif",
			},
		},
		{
			name:    "elif chain fallthrough",
			src:     "#if X == 1\none\n#elif X == 2\ntwo\n#else\nother\n#endif",
			symbols: map[string]Value{"X": Int(5)},
			want: []string{
				"// #if X == 1", "// one",
				"// #elif X == 2", "// two",
				"// #else", "other",
				"// #endif",
			},
		},
		{
			name:    "elif after taken branch",
			src:     "#if 1\none\n#elif 1\ntwo\n#endif",
			symbols: nil,
			want:    []string{"// #if 1", "one", "// #elif 1", "// two", "// #endif"},
		},
		{
			name:    "nested inside disabled",
			src:     "#if 0\n#ifdef A\nx\n#else\ny\n#endif\n#endif\nz",
			symbols: map[string]Value{"A": Bool(true)},
			want: []string{
				"// #if 0", "// #ifdef A", "// x", "// #else", "// y",
				"// #endif", "// #endif", "z",
			},
		},
		{
			name: "failed condition disables branch",
			src:  "#if (1\nbad\n#else\ngood\n#endif",
			want: []string{"// #if (1", "// bad", "// #else", "good", "// #endif"},
		},
		{
			name: "define then test",
			src:  "#define LEVEL 3\n#if LEVEL > 2\nyes\n#endif",
			want: []string{"#define LEVEL 3", "// #if LEVEL > 2", "yes", "// #endif"},
		},
		{
			name: "define in disabled block",
			src:  "#if 0\n#define LEVEL 3\n#endif\n#ifdef LEVEL\nyes\n#endif",
			want: []string{
				"// #if 0", "// #define LEVEL 3", "// #endif",
				"// #ifdef LEVEL", "// yes", "// #endif",
			},
		},
		{
			name: "undef",
			src:  "#define FOO\n#undef FOO\n#ifdef FOO\nx\n#endif",
			want: []string{"#define FOO", "#undef FOO", "// #ifdef FOO", "// x", "// #endif"},
		},
		{
			name: "function-like macro ignored",
			src:  "#define F(x) x\n#ifdef F\nx\n#endif",
			want: []string{"#define F(x) x", "// #ifdef F", "// x", "// #endif"},
		},
		{
			name: "directive without space",
			src:  "#if(1)\nx\n#endif",
			want: []string{"// #if(1)", "x", "// #endif"},
		},
		{
			name:    "symbol expansion",
			src:     "#if SCALE * 2 >= 3.0\nwide\n#endif",
			symbols: map[string]Value{"SCALE": Double(1.5)},
			want:    []string{"// #if SCALE * 2 >= 3.0", "wide", "// #endif"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := process(t, tt.src, tt.symbols)

			if got := texts(res); !slices.Equal(got, tt.want) {
				t.Errorf("lines =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(tt.want, "\n"))
			}
		})
	}
}

func TestProcess_Unbalanced(t *testing.T) {
	for _, src := range []string{
		"#endif",
		"x\n#else\ny",
		"#elif 1",
		"#if 1\n#endif\n#endif",
	} {
		_, _, err := tryProcess(t, src, nil)
		if !errors.Is(err, ErrUnbalanced) {
			t.Errorf("Process(%q) error = %v, want %v", src, err, ErrUnbalanced)
		}
	}
}

func TestProcess_VersionAndExtensions(t *testing.T) {
	src := strings.Join([]string{
		"#version 120",
		"#extension GL_EXT_gpu_shader4 : enable",
		"#if 0",
		"#extension GL_ARB_unused : enable",
		"#endif",
		"void main() {}",
	}, "\n")

	symbols := map[string]Value{
		"SHADOWS": Bool(true),
		"OFF":     Bool(false),
		"Q":       Int(2),
	}

	res, _ := process(t, src, symbols, WithGLSL(true))

	if res.Version != "#version 120" {
		t.Errorf("Version = %q", res.Version)
	}

	wantPrelude := []string{
		"#version 120",
		"#extension GL_EXT_gpu_shader4 : enable",
		"#define Q 2",
		"#define SHADOWS",
	}
	if !slices.Equal(res.Prelude, wantPrelude) {
		t.Errorf("Prelude = %q, want %q", res.Prelude, wantPrelude)
	}

	if got := texts(res)[0]; got != "// #version 120" {
		t.Errorf("version line = %q", got)
	}

	res, _ = process(t, src, nil)

	if res.Version != "" || len(res.Extensions) != 0 {
		t.Errorf("non-GLSL run captured version %q extensions %q", res.Version, res.Extensions)
	}

	if got := texts(res)[0]; got != "#version 120" {
		t.Errorf("non-GLSL version line = %q", got)
	}
}

func TestProcess_Options(t *testing.T) {
	src := strings.Join([]string{
		"#define QUALITY 2 // [1 2 3]",
		"//#define BLOOM",
		"#if QUALITY == 3",
		"high",
		"#endif",
		"#ifdef BLOOM",
		"glow",
		"#endif",
	}, "\n")

	lines, err := ReadLines(t.Context(), 0, strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	opts := DiscoverOptions(t.Context(), lines)

	quality, _ := opts.Lookup("QUALITY")
	bloom, _ := opts.Lookup("BLOOM")

	res, err := Process(t.Context(), lines, opts, nil, WithLogger(log.Make(io.Discard)))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"#define QUALITY 2 // [1 2 3]", "//#define BLOOM",
		"// #if QUALITY == 3", "// high", "// #endif",
		"// #ifdef BLOOM", "// glow", "// #endif",
	}
	if got := texts(res); !slices.Equal(got, want) {
		t.Fatalf("default lines =\n%s", strings.Join(got, "\n"))
	}

	quality.Next()
	bloom.Next()

	res, err = Process(t.Context(), lines, opts, nil, WithLogger(log.Make(io.Discard)))
	if err != nil {
		t.Fatal(err)
	}

	want = []string{
		"#define QUALITY 3", "#define BLOOM",
		"// #if QUALITY == 3", "high", "// #endif",
		"// #ifdef BLOOM", "glow", "// #endif",
	}
	if got := texts(res); !slices.Equal(got, want) {
		t.Fatalf("changed lines =\n%s", strings.Join(got, "\n"))
	}

	if _, ok := res.Options[0]; !ok {
		t.Error("Options[0] missing")
	}

	if got := res.Symbols["QUALITY"]; !got.Matches(Int(3)) {
		t.Errorf("Symbols[QUALITY] = %v", got)
	}

	var buf bytes.Buffer
	if err := Props(&buf, opts); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "QUALITY=3\nBLOOM=true\n" {
		t.Errorf("Props =\n%s", got)
	}
}

func TestProcess_RenderTargets(t *testing.T) {
	src := "/* DRAWBUFFERS:01 */\n#if 0\n/* RENDERTARGETS: 5 */\n#endif"

	res, _ := process(t, src, nil)

	if !slices.Equal(res.RenderTargets, []int{0, 1}) {
		t.Errorf("RenderTargets = %v, want [0 1]", res.RenderTargets)
	}
}

func TestProcess_DoesNotModifySymbols(t *testing.T) {
	symbols := map[string]Value{"A": Int(1)}

	process(t, "#define B 2\n#undef A", symbols)

	if _, ok := symbols["B"]; ok {
		t.Error("define leaked into caller symbols")
	}

	if _, ok := symbols["A"]; !ok {
		t.Error("undef removed caller symbol")
	}
}

// nestingCase builds random nested #ifdef/#ifndef/#else blocks and records
// which lines must survive.
type nestingCase struct {
	rng   *rand.Rand
	lines []string
	live  []bool
	n     int
}

func (c *nestingCase) block(depth int, live bool) {
	for range c.rng.IntN(3) + 1 {
		if depth >= 4 || c.rng.IntN(3) == 0 {
			c.n++
			c.lines = append(c.lines, "line"+strconv.Itoa(c.n))
			c.live = append(c.live, live)

			continue
		}

		name, defined := "A", true
		if c.rng.IntN(2) == 0 {
			name, defined = "B", false
		}

		directive, cond := "#ifdef ", defined
		if c.rng.IntN(2) == 0 {
			directive, cond = "#ifndef ", !defined
		}

		c.directive(directive + name)
		c.block(depth+1, live && cond)

		if c.rng.IntN(2) == 0 {
			c.directive("#else")
			c.block(depth+1, live && !cond)
		}

		c.directive("#endif")
	}
}

func (c *nestingCase) directive(text string) {
	c.lines = append(c.lines, text)
	c.live = append(c.live, false)
}

func TestProcess_Nesting(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := range 200 {
		c := &nestingCase{rng: rng}
		c.block(0, true)

		src := strings.Join(c.lines, "\n")
		res, _ := process(t, src, map[string]Value{"A": Bool(true)})

		for j, ln := range res.Lines {
			if commented := strings.HasPrefix(ln.Text, "// "); commented == c.live[j] {
				t.Fatalf("case %d line %d %q: live = %v\n%s", i, j, ln.Text, c.live[j], src)
			}
		}
	}
}
