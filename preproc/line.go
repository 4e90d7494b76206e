package preproc

import (
	"context"
	"io"
	"strings"

	"github.com/ardnew/shadervar/lang"
)

// Tag classifies a source line.
type Tag int

// Line tags.
const (
	Standard Tag = iota
	Directive
	BlockComment
)

func (t Tag) String() string {
	switch t {
	case Directive:
		return "directive"
	case BlockComment:
		return "block-comment"
	}

	return "standard"
}

// Line is a tagged source line. File and Number identify where the line came
// from and are used only in diagnostics.
type Line struct {
	File   int
	Number int
	Text   string
	Tag    Tag
}

// TagLines tags the lines of one source file. Line numbers start at 1. A line
// is a [Directive] when only whitespace precedes its first '#'.
func TagLines(file int, texts []string) []Line {
	lines := make([]Line, len(texts))

	for i, text := range texts {
		tag := Standard
		if strings.HasPrefix(strings.TrimLeft(text, " \t\f\v"), "#") {
			tag = Directive
		}

		lines[i] = Line{File: file, Number: i + 1, Text: text, Tag: tag}
	}

	return lines
}

// MarkBlockComments retags the lines spanned by /* ... */ comments as
// [BlockComment], from the line that opens the comment through the line that
// closes it. Directive lines keep their tag. A /* after a line comment
// marker does not open a comment.
func MarkBlockComments(lines []Line) []Line {
	out := make([]Line, len(lines))
	inComment := false

	for i, ln := range lines {
		out[i] = ln

		text := ln.Text
		touched := inComment

		for text != "" {
			if inComment {
				end := strings.Index(text, "*/")
				if end < 0 {
					break
				}

				inComment = false
				text = text[end+2:]

				continue
			}

			start := strings.Index(text, "/*")
			if start < 0 {
				break
			}

			if line := strings.Index(text, "//"); line >= 0 && line < start {
				break
			}

			inComment, touched = true, true
			text = text[start+2:]
		}

		if touched && ln.Tag != Directive {
			out[i].Tag = BlockComment
		}
	}

	return out
}

// SplitLines splits text at newlines, dropping a trailing carriage return
// from each line and the empty line after a final newline.
func SplitLines(text string) []string {
	texts := strings.Split(text, "\n")
	if n := len(texts); n > 0 && texts[n-1] == "" {
		texts = texts[:n-1]
	}

	for i, t := range texts {
		texts[i] = strings.TrimSuffix(t, "\r")
	}

	return texts
}

// ReadLines reads r and returns its tagged lines, with block comments marked.
func ReadLines(ctx context.Context, file int, r io.Reader) ([]Line, error) {
	text, err := lang.ReadSource(ctx, r)
	if err != nil {
		return nil, err
	}

	return MarkBlockComments(TagLines(file, SplitLines(text))), nil
}
