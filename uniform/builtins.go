package uniform

import (
	"math"
	"sync"
)

var (
	f1 = []Type{Float}
	f2 = []Type{Float, Float}
	f3 = []Type{Float, Float, Float}
	i1 = []Type{Int}
	i2 = []Type{Int, Int}
	i3 = []Type{Int, Int, Int}
)

func vecs() []Type { return []Type{Vec2, Vec3, Vec4} }

func repeat(t Type, n int) []Type {
	ts := make([]Type, n)
	for i := range ts {
		ts[i] = t
	}

	return ts
}

func unary(fn func(float64) float64) Impl {
	return func(a []Value) Value { return FloatValue(fn(a[0].v[0])) }
}

func binary(fn func(x, y float64) float64) Impl {
	return func(a []Value) Value { return FloatValue(fn(a[0].v[0], a[1].v[0])) }
}

func ternary(fn func(x, y, z float64) float64) Impl {
	return func(a []Value) Value { return FloatValue(fn(a[0].v[0], a[1].v[0], a[2].v[0])) }
}

// componentwise lifts a scalar function over the components of its vector
// arguments, which all have the type of the first.
func componentwise(fn func(xs ...float64) float64) Impl {
	return func(a []Value) Value {
		res := Value{typ: a[0].typ}
		xs := make([]float64, len(a))

		for i := range a[0].typ.Size() {
			for j := range a {
				xs[j] = a[j].v[i]
			}

			res.v[i] = fn(xs...)
		}

		return res
	}
}

func clamp[T int32 | float64](x, lo, hi T) T {
	return max(lo, min(x, hi))
}

func signInt(x int32) int32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}

	return 0
}

// signum follows the sign of x, keeping zeros and NaN.
func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}

	return x
}

// javaMin and javaMax propagate NaN and order -0 below +0.
func javaMin(x, y float64) float64 {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.NaN()
	}

	return math.Min(x, y)
}

func javaMax(x, y float64) float64 {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.NaN()
	}

	return math.Max(x, y)
}

// Builtins returns the registry of pure math functions. The registry is built
// once and must not be modified.
var Builtins = sync.OnceValue(func() *Table {
	t := NewTable()

	t.Pure("pi", Float, nil, func([]Value) Value { return FloatValue(math.Pi) })

	for _, v := range vecs() {
		name := v.String()
		t.Pure(name, v, f1, func(a []Value) Value { return Splat(v, a[0].v[0]) })
		t.Pure(name, v, repeat(Float, v.Size()), func(a []Value) Value {
			res := Value{typ: v}
			for i := range v.Size() {
				res.v[i] = a[i].v[0]
			}

			return res
		})
	}

	t.Pure("radians", Float, f1, unary(func(x float64) float64 { return x * (math.Pi / 180) }), "torad")
	t.Pure("degrees", Float, f1, unary(func(x float64) float64 { return x * (180 / math.Pi) }), "todeg")
	t.Pure("sin", Float, f1, unary(math.Sin))
	t.Pure("cos", Float, f1, unary(math.Cos))
	t.Pure("asin", Float, f1, unary(math.Asin))
	t.Pure("acos", Float, f1, unary(math.Acos))
	t.Pure("atan", Float, f1, unary(math.Atan))
	t.Pure("atan2", Float, f2, binary(math.Atan2), "atan")
	t.Pure("exp", Float, f1, unary(math.Exp))
	t.Pure("pow", Float, f2, binary(math.Pow))
	t.Pure("exp2", Float, f1, unary(func(x float64) float64 { return math.Pow(2, x) }))
	t.Pure("exp10", Float, f1, unary(func(x float64) float64 { return math.Pow(10, x) }))
	t.Pure("log", Float, f1, unary(math.Log))
	t.Pure("log", Float, f2, binary(func(base, x float64) float64 { return math.Log(x) / math.Log(base) }))
	t.Pure("log2", Float, f1, unary(func(x float64) float64 { return math.Log(x) / math.Ln2 }))
	t.Pure("log10", Float, f1, unary(math.Log10))
	t.Pure("sqrt", Float, f1, unary(math.Sqrt))

	t.Pure("abs", Float, f1, unary(math.Abs))
	t.Pure("abs", Int, i1, func(a []Value) Value {
		if a[0].i < 0 {
			return IntValue(-a[0].i)
		}

		return a[0]
	})

	t.Pure("signum", Float, f1, unary(signum), "sign")
	t.Pure("signum", Int, i1, func(a []Value) Value { return IntValue(signInt(a[0].i)) }, "sign")

	t.Pure("floor", Float, f1, unary(math.Floor))
	t.Pure("ceil", Float, f1, unary(math.Ceil))
	t.Pure("frac", Float, f1, unary(func(x float64) float64 { return x - math.Floor(x) }))

	t.Pure("min", Float, f2, binary(javaMin))
	t.Pure("min", Int, i2, func(a []Value) Value { return IntValue(min(a[0].i, a[1].i)) })
	t.Pure("max", Float, f2, binary(javaMax))
	t.Pure("max", Int, i2, func(a []Value) Value { return IntValue(max(a[0].i, a[1].i)) })
	t.Pure("clamp", Float, f3, ternary(clamp[float64]))
	t.Pure("clamp", Int, i3, func(a []Value) Value { return IntValue(clamp(a[0].i, a[1].i, a[2].i)) })

	for _, v := range vecs() {
		t.Pure("abs", v, []Type{v}, componentwise(func(x ...float64) float64 { return math.Abs(x[0]) }))
		t.Pure("floor", v, []Type{v}, componentwise(func(x ...float64) float64 { return math.Floor(x[0]) }))
		t.Pure("ceil", v, []Type{v}, componentwise(func(x ...float64) float64 { return math.Ceil(x[0]) }))
		t.Pure("min", v, repeat(v, 2), componentwise(func(x ...float64) float64 { return javaMin(x[0], x[1]) }))
		t.Pure("max", v, repeat(v, 2), componentwise(func(x ...float64) float64 { return javaMax(x[0], x[1]) }))
		t.Pure("clamp", v, repeat(v, 3), componentwise(func(x ...float64) float64 { return clamp(x[0], x[1], x[2]) }))
	}

	t.Pure("mix", Float, f3, ternary(func(x, y, a float64) float64 { return math.FMA(y-x, a, x) }))
	t.Pure("edge", Float, f2, binary(func(k, x float64) float64 {
		if x < k {
			return 0
		}

		return 1
	}))
	t.Pure("edge", Int, i2, func(a []Value) Value {
		if a[1].i < a[0].i {
			return IntValue(0)
		}

		return IntValue(1)
	})
	t.Pure("fmod", Float, f2, binary(func(x, y float64) float64 { return x - y*math.Floor(x/y) }))
	t.Pure("between", Bool, f3, func(a []Value) Value {
		x := a[0].v[0]

		return BoolValue(x >= a[1].v[0] && x <= a[2].v[0])
	})
	t.Pure("equals", Bool, f3, func(a []Value) Value {
		return BoolValue(math.Abs(a[0].v[0]-a[1].v[0]) <= a[2].v[0])
	})

	return t
})

// vecOps returns the vector operator registry used to lower vector
// arithmetic, negation and swizzles.
var vecOps = sync.OnceValue(func() *Table {
	t := NewTable()

	for _, v := range vecs() {
		for name, op := range map[string]func(x, y float64) float64{
			"add": func(x, y float64) float64 { return x + y },
			"sub": func(x, y float64) float64 { return x - y },
			"mul": func(x, y float64) float64 { return x * y },
			"div": func(x, y float64) float64 { return x / y },
			"rem": math.Mod,
		} {
			t.Pure(name, v, repeat(v, 2), componentwise(func(x ...float64) float64 { return op(x[0], x[1]) }))
		}

		t.Pure("neg", v, []Type{v}, func(a []Value) Value { return negate(a[0]) })
		t.Pure("swiz", Float, []Type{v, Int}, func(a []Value) Value { return FloatValue(a[0].v[a[1].i&3]) })
	}

	return t
})
