package uniform

import (
	"math"

	"github.com/ardnew/shadervar/lang"
)

// arith applies a math operator to two values of the same type. Int
// arithmetic wraps; ok is false for an Int division or remainder by zero.
func arith(op lang.Operator, a, b Value) (res Value, ok bool) {
	switch a.typ {
	case Bool, Int:
		x, y := a.i, b.i

		switch op {
		case lang.OpAdd:
			return IntValue(x + y), true
		case lang.OpSub:
			return IntValue(x - y), true
		case lang.OpMul:
			return IntValue(x * y), true
		case lang.OpDiv:
			if y == 0 {
				return IntValue(0), false
			}

			return IntValue(x / y), true
		case lang.OpRem:
			if y == 0 {
				return IntValue(0), false
			}

			return IntValue(x % y), true
		}

	case Float:
		return FloatValue(arithFloat(op, a.v[0], b.v[0])), true

	default:
		res = Value{typ: a.typ}
		for i := range a.typ.Size() {
			res.v[i] = arithFloat(op, a.v[i], b.v[i])
		}

		return res, true
	}

	return Value{}, false
}

func arithFloat(op lang.Operator, x, y float64) float64 {
	switch op {
	case lang.OpAdd:
		return x + y
	case lang.OpSub:
		return x - y
	case lang.OpMul:
		return x * y
	case lang.OpDiv:
		return x / y
	case lang.OpRem:
		return math.Mod(x, y)
	}

	return math.NaN()
}

// compare applies a relational operator to two scalars of the same type.
// Float comparisons involving NaN are false, except !=.
func compare(op lang.Operator, a, b Value) bool {
	if a.typ == Float {
		x, y := a.v[0], b.v[0]

		switch op {
		case lang.OpEq:
			return x == y
		case lang.OpNe:
			return x != y
		case lang.OpGe:
			return x >= y
		case lang.OpGt:
			return x > y
		case lang.OpLe:
			return x <= y
		case lang.OpLt:
			return x < y
		}

		return false
	}

	x, y := a.i, b.i

	switch op {
	case lang.OpEq:
		return x == y
	case lang.OpNe:
		return x != y
	case lang.OpGe:
		return x >= y
	case lang.OpGt:
		return x > y
	case lang.OpLe:
		return x <= y
	case lang.OpLt:
		return x < y
	}

	return false
}

// negate returns -v. Bool values negate as Int.
func negate(v Value) Value {
	switch v.typ {
	case Bool, Int:
		return IntValue(-v.i)
	case Float:
		return FloatValue(-v.v[0])
	}

	for i := range v.typ.Size() {
		v.v[i] = -v.v[i]
	}

	return v
}
