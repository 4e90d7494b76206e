package uniform

import (
	"log/slog"
	"strconv"
	"strings"
)

// Type is the static type of a uniform expression.
type Type uint8

// Types, in coercion order. Scalars widen toward Float; a scalar broadcasts
// to any vector type. Vectors never convert to each other.
const (
	Bool Type = iota
	Int
	Float
	Vec2
	Vec3
	Vec4
)

var typeNames = [...]string{"bool", "int", "float", "vec2", "vec3", "vec4"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}

	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// ParseType returns the type named s, ignoring case.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(i), nil
		}
	}

	return 0, ErrType.With(slog.String("reason", "unknown type name"), slog.String("type", s))
}

// Types returns every type in coercion order.
func Types() []Type { return []Type{Bool, Int, Float, Vec2, Vec3, Vec4} }

// IsVector reports whether t is one of the vector types.
func (t Type) IsVector() bool { return t >= Vec2 }

// Size returns the number of scalar components of t.
func (t Type) Size() int {
	if t.IsVector() {
		return int(t-Vec2) + 2
	}

	return 1
}

// Coerce returns the common type of a and b. It fails only when a and b are
// distinct vector types.
func Coerce(a, b Type) (Type, bool) {
	switch {
	case a == b:
		return a, true
	case a.IsVector() && b.IsVector():
		return 0, false
	}

	return max(a, b), true
}

// CoerceAll returns the common type of ts.
func CoerceAll(ts ...Type) (Type, bool) {
	if len(ts) == 0 {
		return 0, false
	}

	out := ts[0]

	for _, t := range ts[1:] {
		var ok bool
		if out, ok = Coerce(out, t); !ok {
			return 0, false
		}
	}

	return out, true
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}

	*t = v

	return nil
}
