package lang

import (
	"strconv"
)

// Operator is a binary operator recognized by the parser.
type Operator int

// Binary operators.
const (
	OpMul Operator = iota
	OpDiv
	OpRem
	OpAdd
	OpSub
	OpGe
	OpGt
	OpLe
	OpLt
	OpEq
	OpNe
	OpAnd
	OpOr
)

var operatorInfo = [...]struct {
	text       string
	precedence int
}{
	OpMul: {"*", 3},
	OpDiv: {"/", 3},
	OpRem: {"%", 3},
	OpAdd: {"+", 4},
	OpSub: {"-", 4},
	OpGe:  {">=", 6},
	OpGt:  {">", 6},
	OpLe:  {"<=", 6},
	OpLt:  {"<", 6},
	OpEq:  {"==", 7},
	OpNe:  {"!=", 7},
	OpAnd: {"&&", 11},
	OpOr:  {"||", 12},
}

// Precedence returns the binding strength of o. Larger values bind more
// loosely.
func (o Operator) Precedence() int { return operatorInfo[o].precedence }

func (o Operator) String() string { return operatorInfo[o].text }

// IsRelational reports whether o is one of the six comparison operators.
func (o Operator) IsRelational() bool { return o >= OpGe && o <= OpNe }

// IsLogical reports whether o is && or ||.
func (o Operator) IsLogical() bool { return o == OpAnd || o == OpOr }

var binaryOperators = map[TokenType]Operator{
	Mul:          OpMul,
	Div:          OpDiv,
	Mod:          OpRem,
	Plus:         OpAdd,
	Minus:        OpSub,
	GreaterEqual: OpGe,
	Greater:      OpGt,
	LessEqual:    OpLe,
	Less:         OpLt,
	Equal:        OpEq,
	NotEqual:     OpNe,
	And:          OpAnd,
	Or:           OpOr,
}

var (
	expectPrimary = NewTokenSet(
		Integer, Float, True, False, Identifier, LeftParen, Not, Minus,
	)
	expectOperator = NewTokenSet(
		Mul, Div, Mod, Plus, Minus,
		GreaterEqual, Greater, LessEqual, Less, Equal, NotEqual,
		And, Or,
	)
	expectSwizzle = NewTokenSet(Integer, Identifier)
)

// Builder constructs nodes of type N as the parser recognizes them. Any
// method may return an error to abort the parse; the error is returned from
// [Parse] unchanged.
type Builder[N any] interface {
	FunctionCall(name string, args []N) (N, error)
	// Variable is called for an identifier that is not a function call. The
	// lexer is positioned after the identifier, so the builder may peek at or
	// consume the following token.
	Variable(name string, lex *Lexer) (N, error)
	Binary(left, right N, op Operator) (N, error)
	Int(v int64) (N, error)
	Float(v float64) (N, error)
	Bool(v bool) (N, error)
	Not(v N) (N, error)
	Minus(v N) (N, error)
	Swizzle(v N, index int) (N, error)
}

// Parse parses src into a tree of N using b.
func Parse[N any](src string, b Builder[N]) (N, error) {
	return NewParser(NewLexer(src), b).Parse()
}

// Parser is a recursive-descent expression parser generic over the node type
// produced by its [Builder].
//
// Binary operators are collected into a flat list and split at the loosest
// operator. When several operators share the loosest precedence the first
// one wins, so chains of equal precedence group to the right: 10-3-2 parses
// as 10-(3-2).
type Parser[N any] struct {
	lex *Lexer
	b   Builder[N]
}

// NewParser returns a parser reading tokens from lex.
func NewParser[N any](lex *Lexer, b Builder[N]) *Parser[N] {
	return &Parser[N]{lex: lex, b: b}
}

// Parse parses a single expression. Tokens following a complete expression
// that cannot continue it are left unconsumed.
func (p *Parser[N]) Parse() (N, error) {
	var zero N

	ok, err := p.lex.HasNext()
	if err != nil {
		return zero, err
	}

	if !ok {
		return zero, p.eof("Nothing to parse")
	}

	return p.expr()
}

func (p *Parser[N]) expr() (N, error) {
	var (
		zero      N
		primaries []N
		operators []Operator
	)

	for {
		ok, err := p.lex.HasNext()
		if err != nil {
			return zero, err
		}

		if !ok {
			return zero, p.eof("Unterminated binary operation")
		}

		x, err := p.primary()
		if err != nil {
			if pe, ok := err.(*ParseError); ok && len(pe.Expected) > 0 {
				pe.Expected = NewTokenSet().Union(pe.Expected).Union(expectOperator)
			}

			return zero, err
		}

		primaries = append(primaries, x)

		ok, err = p.lex.HasNext()
		if err != nil {
			return zero, err
		}

		if !ok {
			break
		}

		op, isOp := binaryOperators[p.lex.Peek().Type]
		if !isOp {
			break
		}

		operators = append(operators, op)
		p.lex.Next()
	}

	return p.split(primaries, operators)
}

// split recursively combines primaries around the first operator with the
// largest precedence value.
func (p *Parser[N]) split(primaries []N, operators []Operator) (N, error) {
	if len(operators) == 0 {
		return primaries[0], nil
	}

	index, current := -1, 0

	for i, op := range operators {
		if op.Precedence() > current {
			index, current = i, op.Precedence()
		}
	}

	left, err := p.split(primaries[:index+1], operators[:index])
	if err != nil {
		return left, err
	}

	right, err := p.split(primaries[index+1:], operators[index+1:])
	if err != nil {
		return right, err
	}

	return p.b.Binary(left, right, operators[index])
}

func (p *Parser[N]) primary() (N, error) {
	var zero N

	tok := p.lex.Next()

	switch tok.Type {
	case Integer:
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return zero, p.unexpected(tok, nil, "integer literal out of range")
		}

		return p.b.Int(v)

	case Float:
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return zero, p.unexpected(tok, nil, "invalid float literal")
		}

		return p.b.Float(v)

	case True:
		return p.b.Bool(true)

	case False:
		return p.b.Bool(false)

	case Identifier:
		return p.identifier(tok.Text)

	case LeftParen:
		return p.paren()

	case Minus:
		x, err := p.operand("Dangling minus sign")
		if err != nil {
			return zero, err
		}

		return p.b.Minus(x)

	case Not:
		x, err := p.operand("Dangling not sign")
		if err != nil {
			return zero, err
		}

		return p.b.Not(x)
	}

	return zero, p.unexpected(tok, expectPrimary, "")
}

// operand parses the primary following a unary operator.
func (p *Parser[N]) operand(reason string) (N, error) {
	var zero N

	ok, err := p.lex.HasNext()
	if err != nil {
		return zero, err
	}

	if !ok {
		return zero, p.eof(reason)
	}

	return p.primary()
}

func (p *Parser[N]) paren() (N, error) {
	var zero N

	ok, err := p.lex.HasNext()
	if err != nil {
		return zero, err
	}

	if !ok {
		return zero, p.eof("Unterminated parenthesis")
	}

	x, err := p.expr()
	if err != nil {
		return zero, err
	}

	ok, err = p.lex.HasNext()
	if err != nil {
		return zero, err
	}

	if !ok {
		return zero, p.eof("Unterminated parenthesis")
	}

	if tok := p.lex.Next(); tok.Type != RightParen {
		return zero, p.unexpected(tok, NewTokenSet(RightParen), "")
	}

	return x, nil
}

func (p *Parser[N]) identifier(name string) (N, error) {
	var zero N

	ok, err := p.lex.HasNext()
	if err != nil {
		return zero, err
	}

	if ok {
		switch p.lex.Peek().Type {
		case Dot:
			v, err := p.b.Variable(name, p.lex)
			if err != nil {
				return zero, err
			}

			return p.swizzle(v)

		case LeftParen:
			p.lex.Next()

			return p.call(name)
		}
	}

	return p.b.Variable(name, p.lex)
}

func (p *Parser[N]) swizzle(v N) (N, error) {
	var zero N

	for {
		ok, err := p.lex.HasNext()
		if err != nil {
			return zero, err
		}

		if !ok || p.lex.Peek().Type != Dot {
			return v, nil
		}

		p.lex.Next()

		ok, err = p.lex.HasNext()
		if err != nil {
			return zero, err
		}

		if !ok {
			return zero, p.eof("Dangling dot for swizzling")
		}

		tok := p.lex.Next()

		var index int

		switch tok.Type {
		case Integer:
			index, err = strconv.Atoi(tok.Text)
			if err != nil {
				return zero, p.unexpected(tok, nil, "swizzle index out of range")
			}

		case Identifier:
			index, ok = swizzleIndex(tok.Text)
			if !ok {
				return zero, p.unexpected(tok, nil, "Unknown swizzle index \""+tok.Text+
					"\". Must be a number, or one of [x, y, z, w] or [s, t, p, q] or [r, g, b, a]")
			}

		default:
			return zero, p.unexpected(tok, expectSwizzle, "")
		}

		if v, err = p.b.Swizzle(v, index); err != nil {
			return zero, err
		}
	}
}

func swizzleIndex(name string) (int, bool) {
	switch name {
	case "x", "s", "r":
		return 0, true
	case "y", "t", "g":
		return 1, true
	case "z", "p", "b":
		return 2, true
	case "w", "q", "a":
		return 3, true
	}

	return 0, false
}

func (p *Parser[N]) call(name string) (N, error) {
	var (
		zero N
		args []N
	)

	for first := true; ; first = false {
		ok, err := p.lex.HasNext()
		if err != nil {
			return zero, err
		}

		if !ok {
			return zero, p.eof("Unterminated function call")
		}

		tok := p.lex.Peek()
		if tok.Type == RightParen {
			p.lex.Next()

			return p.b.FunctionCall(name, args)
		}

		if !first {
			if tok.Type != Comma {
				return zero, p.unexpected(tok, NewTokenSet(Comma), "")
			}

			p.lex.Next()

			if ok, err = p.lex.HasNext(); err != nil {
				return zero, err
			} else if !ok {
				return zero, p.eof("Unterminated function call")
			}
		}

		x, err := p.expr()
		if err != nil {
			return zero, err
		}

		args = append(args, x)
	}
}

func (p *Parser[N]) eof(reason string) *ParseError {
	return &ParseError{Source: p.lex.Source(), Reason: reason}
}

func (p *Parser[N]) unexpected(tok Token, expected TokenSet, reason string) *ParseError {
	return &ParseError{
		Source:   p.lex.Source(),
		Got:      &tok,
		Expected: expected,
		Reason:   reason,
	}
}
