package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrLex       = NewError("lexical error")
	ErrParse     = NewError("parse error")
	ErrReadInput = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from. Errors created
// by [Error.Wrap] and [Error.With] share the message of their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.err == nil && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Attrs returns the structured logging attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// LexError reports a character the lexer could not accept.
type LexError struct {
	Source   string // The expression being lexed
	Offset   int    // Byte offset of the offending character
	Expected string // Description of the acceptable characters
	Got      string // The character found, or "End of file"
}

// Error implements the error interface.
func (e *LexError) Error() string {
	var b strings.Builder

	b.WriteString("unexpected character ")
	b.WriteString(strconv.Quote(e.Got))
	b.WriteString(" at offset ")
	b.WriteString(strconv.Itoa(e.Offset))
	b.WriteString(": expected ")
	b.WriteString(e.Expected)

	return b.String()
}

// Unwrap returns [ErrLex].
func (e *LexError) Unwrap() error { return ErrLex }

// Snippet renders the source with a caret under the offending character.
func (e *LexError) Snippet() string {
	return snippet(e.Source, e.Offset, e.Offset+1)
}

// LogValue implements slog.LogValuer.
func (e *LexError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrLex.msg),
		slog.Int("offset", e.Offset),
		slog.String("expected", e.Expected),
		slog.String("got", e.Got),
	)
}

// ParseError reports either an unexpected token, with the set of token types
// that would have been accepted, or an unexpected end of input naming the
// construct left open.
type ParseError struct {
	Source   string   // The expression being parsed
	Got      *Token   // Offending token, nil at end of input
	Expected TokenSet // Acceptable token types, for unexpected tokens
	Reason   string   // Unclosed construct, for unexpected end of input
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Got == nil {
		return "unexpected end of input: " + e.Reason
	}

	var b strings.Builder

	b.WriteString("unexpected token ")
	b.WriteString(strconv.Quote(e.Got.Text))
	b.WriteString(" at offset ")
	b.WriteString(strconv.Itoa(e.Got.Offset))

	if len(e.Expected) > 0 {
		b.WriteString(": expected one of ")
		b.WriteString(e.Expected.String())
	}

	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}

	return b.String()
}

// Unwrap returns [ErrParse].
func (e *ParseError) Unwrap() error { return ErrParse }

// Snippet renders the source with carets under the offending token, or after
// the last character at end of input.
func (e *ParseError) Snippet() string {
	if e.Got == nil {
		return snippet(e.Source, len(e.Source), len(e.Source)+1)
	}

	return snippet(e.Source, e.Got.Offset, e.Got.End())
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("error", ErrParse.msg)}

	if e.Got != nil {
		attrs = append(attrs,
			slog.Int("offset", e.Got.Offset),
			slog.String("got", e.Got.Text),
		)
	}

	if len(e.Expected) > 0 {
		attrs = append(attrs, slog.String("expected", e.Expected.String()))
	}

	if e.Reason != "" {
		attrs = append(attrs, slog.String("reason", e.Reason))
	}

	return slog.GroupValue(attrs...)
}

// snippet formats a single-line source excerpt with a caret marker spanning
// bytes [from, to). Newlines in the source are flattened to spaces so the
// marker stays aligned.
func snippet(source string, from, to int) string {
	var b strings.Builder

	flat := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}

		return r
	}, source)

	from = max(0, from)
	to = max(from+1, to)

	b.WriteString("  | ")
	b.WriteString(flat)
	b.WriteString("\n  | ")
	b.WriteString(strings.Repeat(" ", from))
	b.WriteString(strings.Repeat("^", to-from))
	b.WriteString(" here\n")

	return b.String()
}
