package lang

import (
	"errors"
	"strings"
	"testing"
)

// intBuilder evaluates integer expressions during the parse.
type intBuilder struct{ vars map[string]int64 }

func (b intBuilder) FunctionCall(name string, args []int64) (int64, error) {
	var sum int64
	for _, a := range args {
		sum += a
	}

	return sum, nil
}

func (b intBuilder) Variable(name string, _ *Lexer) (int64, error) {
	return b.vars[name], nil
}

func (intBuilder) Binary(l, r int64, op Operator) (int64, error) {
	truth := func(v bool) int64 {
		if v {
			return 1
		}

		return 0
	}

	switch op {
	case OpMul:
		return l * r, nil
	case OpDiv:
		return l / r, nil
	case OpRem:
		return l % r, nil
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpGe:
		return truth(l >= r), nil
	case OpGt:
		return truth(l > r), nil
	case OpLe:
		return truth(l <= r), nil
	case OpLt:
		return truth(l < r), nil
	case OpEq:
		return truth(l == r), nil
	case OpNe:
		return truth(l != r), nil
	case OpAnd:
		return truth(l != 0 && r != 0), nil
	case OpOr:
		return truth(l != 0 || r != 0), nil
	}

	return 0, errors.New("bad operator")
}

func (intBuilder) Int(v int64) (int64, error)     { return v, nil }
func (intBuilder) Float(v float64) (int64, error) { return int64(v), nil }

func (intBuilder) Bool(v bool) (int64, error) {
	if v {
		return 1, nil
	}

	return 0, nil
}

func (intBuilder) Not(v int64) (int64, error) {
	if v == 0 {
		return 1, nil
	}

	return 0, nil
}

func (intBuilder) Minus(v int64) (int64, error) { return -v, nil }

func (intBuilder) Swizzle(v int64, index int) (int64, error) {
	return v*10 + int64(index), nil
}

func TestParse_Evaluate(t *testing.T) {
	b := intBuilder{vars: map[string]int64{"a": 4, "b": 0}}

	tests := []struct {
		input string
		want  int64
	}{
		{"1", 1},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 3 - 2", 9},
		{"100 / 10 / 5", 50},
		{"2 * 3 % 4", 6},
		{"1 + 2 == 3", 1},
		{"1 < 2 == 1", 1},
		{"a > 3 && b || 0", 0},
		{"a > 3 && !b", 1},
		{"-2 * 3", -6},
		{"--a", 4},
		{"!0 + 1", 2},
		{"f(1, 2, 3)", 6},
		{"f()", 0},
		{"f(1 + 1, (2))", 4},
		{"a.y", 41},
		{"a.b.1", 4*100 + 2*10 + 1},
		{"-a.w", -43},
		{"true + false", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse[int64](tt.input, b)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}

			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_Tree(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10 - 3 - 2", "(10 - (3 - 2))"},
		{"a * b + c", "((a * b) + c)"},
		{"a + b * c", "(a + (b * c))"},
		{"a || b && c", "(a || (b && c))"},
		{"a && b || c", "((a && b) || c)"},
		{"x.r", "x.0"},
		{"vec2(1, 2.5)", "vec2(1, 2.5)"},
		{"-(a)", "-a"},
		{"!a == b", "(!a == b)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, err := ParseTree(tt.input)
			if err != nil {
				t.Fatalf("ParseTree(%q) error: %v", tt.input, err)
			}

			if got := n.String(); got != tt.want {
				t.Errorf("ParseTree(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_TrailingTokensIgnored(t *testing.T) {
	lex := NewLexer("1 + 2 ) 3")

	got, err := NewParser[int64](lex, intBuilder{}).Parse()
	if err != nil {
		t.Fatal(err)
	}

	if got != 3 {
		t.Errorf("got %d, want 3", got)
	}

	if ok, _ := lex.HasNext(); !ok || lex.Peek().Type != RightParen {
		t.Error("expected ) to remain unconsumed")
	}
}

func TestParse_EndOfInput(t *testing.T) {
	tests := []struct {
		input  string
		reason string
	}{
		{"", "Nothing to parse"},
		{"1 +", "Unterminated binary operation"},
		{"(", "Unterminated parenthesis"},
		{"(1", "Unterminated parenthesis"},
		{"-", "Dangling minus sign"},
		{"!", "Dangling not sign"},
		{"v.", "Dangling dot for swizzling"},
		{"f(", "Unterminated function call"},
		{"f(1", "Unterminated function call"},
		{"f(1,", "Unterminated function call"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseTree(tt.input)

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}

			if pe.Got != nil {
				t.Errorf("expected end of input, got token %q", pe.Got.Text)
			}

			if pe.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", pe.Reason, tt.reason)
			}

			if !errors.Is(err, ErrParse) {
				t.Error("errors.Is(err, ErrParse) = false")
			}
		})
	}
}

func TestParse_UnexpectedToken(t *testing.T) {
	primaryAndOps := NewTokenSet().Union(expectPrimary).Union(expectOperator)

	tests := []struct {
		input    string
		got      string
		expected TokenSet
	}{
		{")", ")", primaryAndOps},
		{"1 + *", "*", primaryAndOps},
		{"(1 2", "2", NewTokenSet(RightParen).Union(expectOperator)},
		{"f(1 2)", "2", NewTokenSet(Comma).Union(expectOperator)},
		{"v.(", "(", NewTokenSet().Union(expectSwizzle).Union(expectOperator)},
		{"f(,)", ",", primaryAndOps},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseTree(tt.input)

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}

			if pe.Got == nil || pe.Got.Text != tt.got {
				t.Fatalf("got token %v, want %q", pe.Got, tt.got)
			}

			if pe.Expected.String() != tt.expected.String() {
				t.Errorf("expected %s, want %s", pe.Expected, tt.expected)
			}
		})
	}
}

func TestParse_UnknownSwizzle(t *testing.T) {
	_, err := ParseTree("v.k")

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}

	if !strings.Contains(pe.Reason, `Unknown swizzle index "k"`) {
		t.Errorf("reason = %q", pe.Reason)
	}
}

func TestParseError_Snippet(t *testing.T) {
	_, err := ParseTree("1 + )")

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}

	want := "  | 1 + )\n  |     ^ here\n"
	if got := pe.Snippet(); got != want {
		t.Errorf("Snippet() = %q, want %q", got, want)
	}
}
