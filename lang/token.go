package lang

import (
	"slices"
	"strings"
)

// TokenType identifies the lexical class of a [Token].
type TokenType int

// Token types in canonical order. The order is significant: expected-token
// sets are sorted by it when rendered in diagnostics.
const (
	Plus TokenType = iota
	Minus
	Mul
	Div
	Mod
	Not
	And
	Or
	GreaterEqual
	Greater
	LessEqual
	Less
	Equal
	NotEqual
	Comma
	LeftParen
	RightParen
	Dot
	Integer
	Float
	False
	True
	Identifier
)

var tokenText = [...]string{
	Plus:         "+",
	Minus:        "-",
	Mul:          "*",
	Div:          "/",
	Mod:          "%",
	Not:          "!",
	And:          "&&",
	Or:           "||",
	GreaterEqual: ">=",
	Greater:      ">",
	LessEqual:    "<=",
	Less:         "<",
	Equal:        "==",
	NotEqual:     "!=",
	Comma:        ",",
	LeftParen:    "(",
	RightParen:   ")",
	Dot:          ".",
	Integer:      "an integer",
	Float:        "a float",
	False:        "false",
	True:         "true",
	Identifier:   "an identifier",
}

// String returns the canonical display text of t.
func (t TokenType) String() string {
	if t < 0 || int(t) >= len(tokenText) {
		return "unknown"
	}

	return tokenText[t]
}

// Token is a single lexeme with its byte offset in the source.
type Token struct {
	Offset int
	Type   TokenType
	Text   string
}

// End returns the byte offset one past the last byte of the token.
func (t Token) End() int { return t.Offset + len(t.Text) }

// TokenSet is an unordered set of token types.
type TokenSet map[TokenType]struct{}

// NewTokenSet returns a set containing types.
func NewTokenSet(types ...TokenType) TokenSet {
	s := make(TokenSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}

	return s
}

// Union adds every member of other to s and returns s.
func (s TokenSet) Union(other TokenSet) TokenSet {
	for t := range other {
		s[t] = struct{}{}
	}

	return s
}

// Has reports whether t is a member of s.
func (s TokenSet) Has(t TokenType) bool {
	_, ok := s[t]

	return ok
}

// Sorted returns the members of s in canonical order.
func (s TokenSet) Sorted() []TokenType {
	out := make([]TokenType, 0, len(s))
	for t := range s {
		out = append(out, t)
	}

	slices.Sort(out)

	return out
}

func (s TokenSet) String() string {
	sorted := s.Sorted()
	part := make([]string, len(sorted))

	for i, t := range sorted {
		part[i] = t.String()
	}

	return "[" + strings.Join(part, ", ") + "]"
}
