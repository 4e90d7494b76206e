package uniform

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
)

const testProperties = `# sky
uniform.float.sunAngle = sin(worldTime) * 0.5
variable.int.frames = 10 - 3 - 2
uniform.vec2.size = vec2(viewWidth, \
    viewHeight)
program.world0/gbuffers.enabled = false
uniform.mat4.bad = 1
uniform.nodot = 1
`

func TestLoadProperties(t *testing.T) {
	decls, err := LoadProperties(t.Context(), strings.NewReader(testProperties))
	if err != nil {
		t.Fatal(err)
	}

	want := []Declaration{
		{KindUniform, Float, "sunAngle", "sin(worldTime) * 0.5"},
		{KindVariable, Int, "frames", "10 - 3 - 2"},
		{KindUniform, Vec2, "size", "vec2(viewWidth, viewHeight)"},
	}

	if !slices.Equal(decls, want) {
		t.Errorf("expected %v, got %v", want, decls)
	}
}

func TestLoadYAML(t *testing.T) {
	const src = `
- kind: variable
  type: int
  name: frames
  expr: 10 - 3 - 2
- type: vec3
  name: tint
  expr: vec3(1, 0.5, frames)
`

	decls, err := LoadYAML(t.Context(), strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	want := []Declaration{
		{KindVariable, Int, "frames", "10 - 3 - 2"},
		{KindUniform, Vec3, "tint", "vec3(1, 0.5, frames)"},
	}

	if !slices.Equal(decls, want) {
		t.Fatalf("expected %v, got %v", want, decls)
	}

	p, err := testCompiler().Compile(t.Context(), decls)
	if err != nil {
		t.Fatal(err)
	}

	p.Update()

	if v, _ := p.Get("tint"); !v.Equal(VecValue(1, 0.5, 9)) {
		t.Errorf("expected vec3(1.0, 0.5, 9.0), got %v", v)
	}
}

func TestLoadYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown field", "- name: a\n  type: int\n  expression: 1\n"},
		{"unknown type", "- name: a\n  type: mat4\n  expr: 1\n"},
		{"unknown kind", "- kind: constant\n  name: a\n  type: int\n  expr: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadYAML(t.Context(), strings.NewReader(tt.src))
			if !errors.Is(err, ErrLoad) {
				t.Errorf("expected ErrLoad, got %v", err)
			}
		})
	}
}

func TestMarshalProperties(t *testing.T) {
	decls, err := LoadProperties(t.Context(), strings.NewReader(testProperties))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer

	if err := MarshalProperties(&buf, decls); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "variable.int.frames = 10 - 3 - 2") {
		t.Errorf("expected variable entry, got:\n%s", buf.String())
	}

	got, err := LoadProperties(t.Context(), &buf)
	if err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(got, decls) {
		t.Errorf("expected %v, got %v", decls, got)
	}
}
