package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/shadervar/log"
	"github.com/ardnew/shadervar/uniform"
)

// Compile compiles a declaration file and prints each uniform's value at
// frame zero.
type Compile struct {
	Declarations `embed:""`
	Defines      `embed:""`
	Host         `embed:""`
	Optimize     `embed:""`

	Disasm bool `help:"Print the optimized tree and instructions of each declaration instead of values."`

	out io.Writer
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().With(slog.String("command", "compile"))

	p, err := c.program(ctx, logger)
	if err != nil {
		return err
	}

	out := stdout(ctx, c.out)

	if c.Disasm {
		return p.Disassemble(out)
	}

	p.Update()

	for d := range p.Uniforms() {
		v, _ := p.Get(d.Name)
		if _, err := fmt.Fprintf(out, "%s %s = %s\n", d.Type, d.Name, v); err != nil {
			return err
		}
	}

	return nil
}

// program loads and compiles the declarations against a new host.
func (c *Compile) program(ctx context.Context, logger log.Logger) (*uniform.Program, error) {
	symbols, err := c.symbols()
	if err != nil {
		return nil, err
	}

	decls, err := c.load(ctx, symbols, logger)
	if err != nil {
		return nil, err
	}

	h, err := c.build(ctx, logger)
	if err != nil {
		return nil, err
	}

	return compile(ctx, h, decls, c.flags(), logger)
}
