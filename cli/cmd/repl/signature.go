package repl

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/shadervar/lang"
	"github.com/ardnew/shadervar/uniform"
)

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall is a function call enclosing the cursor.
type functionCall struct {
	name     string
	argIndex int
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call before cursor and the
// index of the argument being typed.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open, depth := -1, 0

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '_' && !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9') {
			break
		}

		start -= size
	}

	name := input[start:open]
	if !lang.IsIdentifier(name) {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for _, c := range input[open+1 : cursor] {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// renderSignatureHint renders the first overload accepting more than
// argIndex arguments, with the current parameter highlighted. The number of
// remaining overloads is appended.
func renderSignatureHint(overloads []*uniform.Function, argIndex int) string {
	if len(overloads) == 0 {
		return ""
	}

	f := overloads[0]

	for _, o := range overloads {
		if len(o.Params) > argIndex {
			f = o

			break
		}
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(f.Name))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == argIndex {
			b.WriteString(currentParamStyle.Render(p.String()))
		} else {
			b.WriteString(signatureStyle.Render(p.String()))
		}
	}

	b.WriteString(signatureStyle.Render(") " + f.Returns.String()))

	if n := len(overloads) - 1; n > 0 {
		b.WriteString(hintStyle.Render("  +" + strconv.Itoa(n) + " overloads"))
	}

	return b.String()
}
