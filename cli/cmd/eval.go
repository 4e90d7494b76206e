package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ardnew/shadervar/log"
	"github.com/ardnew/shadervar/preproc"
	"github.com/ardnew/shadervar/uniform"
)

// Eval evaluates a single uniform expression, or a preprocessor condition
// when the expression is written as an #if, #elif, #ifdef or #ifndef
// directive.
type Eval struct {
	Defines  `embed:""`
	Host     `embed:""`
	Optimize `embed:""`

	Decls  string `help:"Declaration file whose names the expression may use." placeholder:"FILE"`
	Frame  int    `help:"Advance the simulated clock by this many frames first."`
	Tree   bool   `help:"Print the optimized expression tree."`
	Disasm bool   `help:"Print the generated instructions."`

	Expr []string `arg:"" help:"Expression to evaluate." name:"expr"`

	out io.Writer
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().With(slog.String("command", "eval"))
	out := stdout(ctx, e.out)
	text := strings.TrimSpace(strings.Join(e.Expr, " "))

	symbols, err := e.symbols()
	if err != nil {
		return err
	}

	if cond, ok := condition(text); ok {
		n, err := preproc.Evaluate(ctx, cond, symbols)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(out, n)

		return err
	}

	if e.Frame < 0 {
		return ErrUsage.With(slog.Int("frame", e.Frame))
	}

	h, err := e.build(ctx, logger)
	if err != nil {
		return err
	}

	regs := []uniform.Registry{h.Registry()}

	var p *uniform.Program

	if e.Decls != "" {
		decls, err := Declarations{File: e.Decls, Format: "auto"}.load(ctx, symbols, logger)
		if err != nil {
			return err
		}

		if p, err = compile(ctx, h, decls, e.flags(), logger); err != nil {
			return err
		}

		regs = append(regs, p.Registry())
		p.Update()
	}

	for range e.Frame {
		h.Advance(time.Second / 60)

		if p != nil {
			p.Update()
		}
	}

	x, err := uniform.NewCompiler(
		uniform.WithFlags(e.flags()),
		uniform.WithLogger(logger),
		uniform.WithRegistry(regs...),
	).CompileExpr(ctx, text)
	if err != nil {
		return err
	}

	switch {
	case e.Tree:
		_, err = fmt.Fprintln(out, x.Tree)
	case e.Disasm:
		err = uniform.Disassemble(out, x.Routine.Code)
	default:
		v := x.Eval()
		_, err = fmt.Fprintf(out, "%s : %s\n", v, v.Type())
	}

	return err
}

// condition extracts the expression tested by an #if, #elif, #ifdef or
// #ifndef directive.
func condition(text string) (string, bool) {
	rest, ok := strings.CutPrefix(text, "#")
	if !ok {
		return "", false
	}

	name, cond, _ := strings.Cut(strings.TrimSpace(rest), " ")
	cond = strings.TrimSpace(cond)

	switch name {
	case "if", "elif":
		return cond, true
	case "ifdef":
		return "defined " + cond, true
	case "ifndef":
		return "!defined " + cond, true
	}

	return "", false
}
