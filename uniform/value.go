package uniform

import (
	"math"
	"strconv"
	"strings"

	"github.com/ardnew/shadervar/lang"
)

// Value is a typed uniform value. Bool and Int values are held as a 32-bit
// integer; Float and vector components as float64.
type Value struct {
	typ Type
	i   int32
	v   [4]float64
}

// BoolValue returns a Bool value.
func BoolValue(b bool) Value {
	if b {
		return Value{typ: Bool, i: 1}
	}

	return Value{typ: Bool}
}

// IntValue returns an Int value.
func IntValue(i int32) Value { return Value{typ: Int, i: i} }

// FloatValue returns a Float value.
func FloatValue(f float64) Value { return Value{typ: Float, v: [4]float64{f}} }

// VecValue returns a vector value with the given two to four components.
func VecValue(comps ...float64) Value {
	if len(comps) < 2 || len(comps) > 4 {
		panic("uniform: vector must have 2, 3 or 4 components")
	}

	val := Value{typ: Vec2 + Type(len(comps)-2)}
	copy(val.v[:], comps)

	return val
}

// Splat returns a vector of type t with every component set to f.
func Splat(t Type, f float64) Value {
	val := Value{typ: t}
	for i := range t.Size() {
		val.v[i] = f
	}

	return val
}

// Zero returns the zero value of t.
func Zero(t Type) Value { return Value{typ: t} }

// Type returns the type of v.
func (v Value) Type() Type { return v.typ }

// Bool returns v as a Bool. Numeric values are true when nonzero.
func (v Value) Bool() bool {
	if v.typ == Float {
		return v.v[0] != 0
	}

	return v.i != 0
}

// Int returns v as an Int, converting a Float as a cast would.
func (v Value) Int() int32 {
	if v.typ == Float {
		return floatToInt(v.v[0])
	}

	return v.i
}

// Float returns v as a Float.
func (v Value) Float() float64 {
	if v.typ == Float || v.typ.IsVector() {
		return v.v[0]
	}

	return float64(v.i)
}

// Comp returns component i of a vector value.
func (v Value) Comp(i int) float64 { return v.v[i] }

// Comps returns the components of a vector value, or the single component of
// a scalar.
func (v Value) Comps() []float64 {
	if v.typ.IsVector() {
		return v.v[:v.typ.Size()]
	}

	return []float64{v.Float()}
}

// Equal reports whether v and o have the same type and contents.
func (v Value) Equal(o Value) bool { return v == o }

// Cast converts v to type to. Any scalar converts to any other numeric
// scalar and broadcasts to a vector; only Bool converts to Bool. A vector
// converts only to its own type.
func (v Value) Cast(to Type) (Value, bool) {
	if v.typ == to {
		return v, true
	}

	switch {
	case to == Bool, v.typ.IsVector():
		return Value{}, false
	case to == Int:
		return IntValue(v.Int()), true
	case to == Float:
		return FloatValue(v.Float()), true
	}

	return Splat(to, v.Float()), true
}

func (v Value) String() string {
	switch v.typ {
	case Bool:
		return strconv.FormatBool(v.i != 0)
	case Int:
		return strconv.FormatInt(int64(v.i), 10)
	case Float:
		return lang.FormatFloat(v.v[0])
	}

	var b strings.Builder

	b.WriteString(v.typ.String())
	b.WriteByte('(')

	for i, c := range v.Comps() {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(lang.FormatFloat(c))
	}

	b.WriteByte(')')

	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (v Value) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// floatToInt truncates toward zero, saturating at the Int range. NaN is 0.
func floatToInt(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}

	return int32(f)
}
