package preproc

import (
	"math"
	"strconv"

	"github.com/ardnew/shadervar/lang"
)

// Number is the result of evaluating a macro expression: either a 32-bit
// integer or a floating-point value. Integer arithmetic wraps.
type Number struct {
	i       int64
	f       float64
	isFloat bool
}

// IntNumber returns an integer Number holding v truncated to 32 bits.
func IntNumber(v int64) Number { return Number{i: int64(int32(v))} }

// FloatNumber returns a floating-point Number.
func FloatNumber(v float64) Number { return Number{f: v, isFloat: true} }

func truth(v bool) Number {
	if v {
		return IntNumber(1)
	}

	return IntNumber(0)
}

// IsFloat reports whether n holds a floating-point value.
func (n Number) IsFloat() bool { return n.isFloat }

// Int returns n as an integer, truncating a floating-point value.
func (n Number) Int() int64 {
	if n.isFloat {
		return int64(n.f)
	}

	return n.i
}

// Float returns n as a floating-point value.
func (n Number) Float() float64 {
	if n.isFloat {
		return n.f
	}

	return float64(n.i)
}

// Bool reports whether n is nonzero.
func (n Number) Bool() bool {
	if n.isFloat {
		return n.f != 0
	}

	return n.i != 0
}

func (n Number) String() string {
	if n.isFloat {
		return lang.FormatFloat(n.f)
	}

	return strconv.FormatInt(n.i, 10)
}

func (n Number) negate() Number {
	if n.isFloat {
		return FloatNumber(-n.f)
	}

	return IntNumber(-n.i)
}

// arith applies an arithmetic or relational operator, promoting both operands
// to floating point when either one is.
func arith(l, r Number, op lang.Operator) (Number, error) {
	if l.isFloat || r.isFloat {
		return arithFloat(l.Float(), r.Float(), op), nil
	}

	a, b := int32(l.i), int32(r.i)

	switch op {
	case lang.OpAdd:
		return IntNumber(int64(a + b)), nil
	case lang.OpSub:
		return IntNumber(int64(a - b)), nil
	case lang.OpMul:
		return IntNumber(int64(a * b)), nil
	case lang.OpDiv, lang.OpRem:
		if b == 0 {
			return Number{}, ErrDivideByZero
		}

		if op == lang.OpDiv {
			return IntNumber(int64(a / b)), nil
		}

		return IntNumber(int64(a % b)), nil
	case lang.OpEq:
		return truth(a == b), nil
	case lang.OpNe:
		return truth(a != b), nil
	case lang.OpGe:
		return truth(a >= b), nil
	case lang.OpGt:
		return truth(a > b), nil
	case lang.OpLe:
		return truth(a <= b), nil
	case lang.OpLt:
		return truth(a < b), nil
	}

	return truth(false), nil
}

func arithFloat(a, b float64, op lang.Operator) Number {
	switch op {
	case lang.OpAdd:
		return FloatNumber(a + b)
	case lang.OpSub:
		return FloatNumber(a - b)
	case lang.OpMul:
		return FloatNumber(a * b)
	case lang.OpDiv:
		return FloatNumber(a / b)
	case lang.OpRem:
		return FloatNumber(math.Mod(a, b))
	case lang.OpEq:
		return truth(a == b)
	case lang.OpNe:
		return truth(a != b)
	case lang.OpGe:
		return truth(a >= b)
	case lang.OpGt:
		return truth(a > b)
	case lang.OpLe:
		return truth(a <= b)
	case lang.OpLt:
		return truth(a < b)
	}

	return truth(false)
}
