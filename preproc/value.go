package preproc

import (
	"strconv"
	"strings"

	"github.com/ardnew/shadervar/lang"
)

// Kind classifies an option [Value].
type Kind int

// Value kinds.
const (
	KindToggle Kind = iota
	KindInt
	KindDouble
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindToggle:
		return "toggle"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a symbol-table entry or option setting. Its text form is what the
// macro evaluator parses when the symbol is referenced.
type Value struct {
	kind Kind
	b    bool
	i    int64
	d    float64
	s    string
}

// Bool returns a toggle value.
func Bool(v bool) Value { return Value{kind: KindToggle, b: v} }

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Double returns a floating-point value.
func Double(v float64) Value { return Value{kind: KindDouble, d: v} }

// Str returns a raw text value.
func Str(v string) Value { return Value{kind: KindString, s: v} }

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// Enabled reports whether v is the toggle value true.
func (v Value) Enabled() bool { return v.kind == KindToggle && v.b }

func (v Value) String() string {
	switch v.kind {
	case KindToggle:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDouble:
		return lang.FormatFloat(v.d)
	}

	return v.s
}

// numeric returns v as a float64 for cross-kind comparison. Toggles compare
// as 0 or 1; strings are not numeric.
func (v Value) numeric() (float64, bool) {
	switch v.kind {
	case KindToggle:
		if v.b {
			return 1, true
		}

		return 0, true
	case KindInt:
		return float64(v.i), true
	case KindDouble:
		return v.d, true
	}

	return 0, false
}

// Matches reports whether v and o denote the same setting. Toggles, integers
// and doubles compare numerically across kinds; strings only match strings.
func (v Value) Matches(o Value) bool {
	if v.kind == KindString || o.kind == KindString {
		return v.kind == o.kind && v.s == o.s
	}

	if v.kind == KindInt && o.kind == KindInt {
		return v.i == o.i
	}

	a, _ := v.numeric()
	b, _ := o.numeric()

	return a == b
}

// Detect classifies text as a toggle (true or false, any case), an integer
// (no dot), a double, or otherwise a raw string.
func Detect(text string) Value {
	switch {
	case strings.EqualFold(text, "true"):
		return Bool(true)
	case strings.EqualFold(text, "false"):
		return Bool(false)
	}

	if !strings.Contains(text, ".") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Int(i)
		}
	}

	if looksNumeric(text) {
		if d, err := strconv.ParseFloat(text, 64); err == nil {
			return Double(d)
		}
	}

	return Str(text)
}

// looksNumeric reports whether text begins like a decimal number, which keeps
// words such as "inf" and "nan" from being read as doubles.
func looksNumeric(text string) bool {
	text = strings.TrimLeft(text, "+-")

	return text != "" && (text[0] == '.' || text[0] >= '0' && text[0] <= '9')
}
