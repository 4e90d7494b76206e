package lang

import (
	"errors"
	"testing"
)

func collect(t *testing.T, src string) ([]Token, error) {
	t.Helper()

	var toks []Token

	lex := NewLexer(src)

	for {
		ok, err := lex.HasNext()
		if err != nil {
			return toks, err
		}

		if !ok {
			return toks, nil
		}

		toks = append(toks, lex.Next())
	}
}

func TestLexer_Tokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
		text  []string
	}{
		{
			name:  "empty",
			input: "   \t\n",
		},
		{
			name:  "arithmetic",
			input: "1+2.5*x",
			want:  []TokenType{Integer, Plus, Float, Mul, Identifier},
			text:  []string{"1", "+", "2.5", "*", "x"},
		},
		{
			name:  "single ampersand and pipe",
			input: "a & b | c",
			want:  []TokenType{Identifier, And, Identifier, Or, Identifier},
		},
		{
			name:  "doubled ampersand and pipe",
			input: "a&&b||c",
			want:  []TokenType{Identifier, And, Identifier, Or, Identifier},
		},
		{
			name:  "comparisons",
			input: "a>=b>c<=d<e==f!=g",
			want: []TokenType{
				Identifier, GreaterEqual, Identifier, Greater, Identifier,
				LessEqual, Identifier, Less, Identifier, Equal, Identifier,
				NotEqual, Identifier,
			},
		},
		{
			name:  "not",
			input: "!!x",
			want:  []TokenType{Not, Not, Identifier},
		},
		{
			name:  "keywords",
			input: "true false truex",
			want:  []TokenType{True, False, Identifier},
		},
		{
			name:  "call with swizzle",
			input: "vec3(1, 2, 3).y",
			want: []TokenType{
				Identifier, LeftParen, Integer, Comma, Integer, Comma, Integer,
				RightParen, Dot, Identifier,
			},
		},
		{
			name:  "float stops at second dot",
			input: "1.2.3",
			want:  []TokenType{Float, Dot, Integer},
			text:  []string{"1.2", ".", "3"},
		},
		{
			name:  "trailing dot float",
			input: "1.",
			want:  []TokenType{Float},
			text:  []string{"1."},
		},
		{
			name:  "identifier with underscore and digits",
			input: "frame_time2",
			want:  []TokenType{Identifier},
			text:  []string{"frame_time2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := collect(t, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(toks) != len(tt.want) {
				t.Fatalf("got %d tokens %v, want %d", len(toks), toks, len(tt.want))
			}

			for i, tok := range toks {
				if tok.Type != tt.want[i] {
					t.Errorf("token %d: got type %v, want %v", i, tok.Type, tt.want[i])
				}

				if tt.text != nil && tok.Text != tt.text[i] {
					t.Errorf("token %d: got text %q, want %q", i, tok.Text, tt.text[i])
				}
			}
		})
	}
}

func TestLexer_Offsets(t *testing.T) {
	toks, err := collect(t, "  ab <= 10")
	if err != nil {
		t.Fatal(err)
	}

	want := []int{2, 5, 8}
	for i, tok := range toks {
		if tok.Offset != want[i] {
			t.Errorf("token %d: got offset %d, want %d", i, tok.Offset, want[i])
		}
	}

	if end := toks[1].End(); end != 7 {
		t.Errorf("End() = %d, want 7", end)
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		offset   int
		expected string
		got      string
	}{
		{"lone equals at end", "a =", 3, "=", "End of file"},
		{"lone equals followed", "a = b", 3, "=", " "},
		{"unknown character", "a $ b", 2, expectedChars, "$"},
		{"non-ascii character", "a ∞", 2, expectedChars, "∞"},
		{"underscore prefix", "_a", 0, expectedChars, "_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collect(t, tt.input)
			if err == nil {
				t.Fatal("expected error")
			}

			if !errors.Is(err, ErrLex) {
				t.Errorf("errors.Is(err, ErrLex) = false for %v", err)
			}

			var le *LexError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LexError, got %T", err)
			}

			if le.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", le.Offset, tt.offset)
			}

			if le.Expected != tt.expected {
				t.Errorf("expected = %q, want %q", le.Expected, tt.expected)
			}

			if le.Got != tt.got {
				t.Errorf("got = %q, want %q", le.Got, tt.got)
			}
		})
	}
}

func TestLexer_PeekDoesNotConsume(t *testing.T) {
	lex := NewLexer("a b")

	if ok, err := lex.HasNext(); !ok || err != nil {
		t.Fatalf("HasNext() = %v, %v", ok, err)
	}

	if p := lex.Peek(); p.Text != "a" {
		t.Fatalf("Peek() = %q, want a", p.Text)
	}

	if ok, _ := lex.HasNext(); !ok {
		t.Fatal("HasNext() after Peek = false")
	}

	if n := lex.Next(); n.Text != "a" {
		t.Fatalf("Next() = %q, want a", n.Text)
	}

	lex.HasNext()

	if n := lex.Next(); n.Text != "b" {
		t.Fatalf("Next() = %q, want b", n.Text)
	}

	if ok, _ := lex.HasNext(); ok {
		t.Fatal("HasNext() at end = true")
	}
}

func TestTokenSet_String(t *testing.T) {
	s := NewTokenSet(Identifier, Plus, RightParen)

	if got, want := s.String(), "[+, ), an identifier]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	if !s.Has(Plus) || s.Has(Minus) {
		t.Error("Has reports wrong membership")
	}
}

func BenchmarkLexer(b *testing.B) {
	const src = `clamp(frameTimeCounter * 0.25 + sin(worldTime / 24000.0), 0.0, 1.0) >= 0.5 && !(viewWidth < 1280)`

	for b.Loop() {
		lex := NewLexer(src)

		for {
			ok, err := lex.HasNext()
			if err != nil {
				b.Fatal(err)
			}

			if !ok {
				break
			}

			lex.Next()
		}
	}
}
