package lang

import (
	"unicode"
)

// expectedChars describes the character classes the lexer accepts.
const expectedChars = "whitespace  +-*/%&|><!=,().  a-z  A-Z  0-9"

// Lexer produces tokens from an expression string on demand, holding at most
// one token of lookahead.
//
// The zero value is not usable; create lexers with [NewLexer].
type Lexer struct {
	src    string
	offset int
	buf    *Token
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Source returns the text being lexed.
func (l *Lexer) Source() string { return l.src }

// HasNext reports whether another token is available, lexing it into the
// lookahead buffer if necessary. It returns a *[LexError] when the input at
// the cursor is not a valid token.
func (l *Lexer) HasNext() (bool, error) {
	if l.buf != nil {
		return true, nil
	}

	for l.offset < len(l.src) {
		start := l.offset
		c := l.src[l.offset]
		l.offset++

		if c < 0x80 && unicode.IsSpace(rune(c)) {
			continue
		}

		tok, err := l.lex(start, c)
		if err != nil {
			return false, err
		}

		l.buf = &tok

		return true, nil
	}

	return false, nil
}

// Peek returns the buffered lookahead token. It must only be called after
// HasNext has returned true.
func (l *Lexer) Peek() Token {
	if l.buf == nil {
		panic("lang: Peek called without a buffered token")
	}

	return *l.buf
}

// Next consumes and returns the buffered lookahead token. It must only be
// called after HasNext has returned true.
func (l *Lexer) Next() Token {
	tok := l.Peek()
	l.buf = nil

	return tok
}

func (l *Lexer) lex(start int, c byte) (Token, error) {
	switch c {
	case '+':
		return Token{start, Plus, "+"}, nil
	case '-':
		return Token{start, Minus, "-"}, nil
	case '*':
		return Token{start, Mul, "*"}, nil
	case '/':
		return Token{start, Div, "/"}, nil
	case '%':
		return Token{start, Mod, "%"}, nil
	case ',':
		return Token{start, Comma, ","}, nil
	case '(':
		return Token{start, LeftParen, "("}, nil
	case ')':
		return Token{start, RightParen, ")"}, nil
	case '.':
		return Token{start, Dot, "."}, nil
	case '&':
		return l.pair('&', Token{start, And, "&"}, Token{start, And, "&&"}), nil
	case '|':
		return l.pair('|', Token{start, Or, "|"}, Token{start, Or, "||"}), nil
	case '>':
		return l.pair('=', Token{start, Greater, ">"}, Token{start, GreaterEqual, ">="}), nil
	case '<':
		return l.pair('=', Token{start, Less, "<"}, Token{start, LessEqual, "<="}), nil
	case '!':
		return l.pair('=', Token{start, Not, "!"}, Token{start, NotEqual, "!="}), nil
	case '=':
		if l.offset >= len(l.src) {
			return Token{}, &LexError{
				Source:   l.src,
				Offset:   l.offset,
				Expected: "=",
				Got:      "End of file",
			}
		}

		if c2 := l.src[l.offset]; c2 != '=' {
			return Token{}, &LexError{
				Source:   l.src,
				Offset:   l.offset,
				Expected: "=",
				Got:      l.charAt(l.offset),
			}
		}

		l.offset++

		return Token{start, Equal, "=="}, nil
	}

	switch {
	case isDigit(c):
		return l.number(start), nil
	case isLetter(c):
		return l.identifier(start), nil
	}

	return Token{}, &LexError{
		Source:   l.src,
		Offset:   start,
		Expected: expectedChars,
		Got:      l.charAt(start),
	}
}

// pair returns double if the next character is second, consuming it, and
// single otherwise.
func (l *Lexer) pair(second byte, single, double Token) Token {
	if l.offset < len(l.src) && l.src[l.offset] == second {
		l.offset++

		return double
	}

	return single
}

func (l *Lexer) number(start int) Token {
	dot := false

	for l.offset < len(l.src) {
		c := l.src[l.offset]

		if isDigit(c) {
			l.offset++

			continue
		}

		if c == '.' && !dot {
			dot = true
			l.offset++

			continue
		}

		break
	}

	typ := Integer
	if dot {
		typ = Float
	}

	return Token{start, typ, l.src[start:l.offset]}
}

func (l *Lexer) identifier(start int) Token {
	for l.offset < len(l.src) {
		c := l.src[l.offset]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			break
		}

		l.offset++
	}

	text := l.src[start:l.offset]

	switch text {
	case "true":
		return Token{start, True, text}
	case "false":
		return Token{start, False, text}
	}

	return Token{start, Identifier, text}
}

// charAt returns the full character starting at byte offset i.
func (l *Lexer) charAt(i int) string {
	for _, r := range l.src[i:] {
		return string(r)
	}

	return ""
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

// IsIdentifier reports whether s lexes as exactly one identifier.
func IsIdentifier(s string) bool {
	if s == "" || s == "true" || s == "false" || !isLetter(s[0]) {
		return false
	}

	for i := range len(s) {
		if c := s[i]; !isLetter(c) && !isDigit(c) && c != '_' {
			return false
		}
	}

	return true
}
