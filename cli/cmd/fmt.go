package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/shadervar/log"
	"github.com/ardnew/shadervar/uniform"
)

// Fmt reads a declaration file and writes it in the chosen format.
type Fmt struct {
	YAML       YAML       `cmd:"" default:"withargs" help:"Format declarations as YAML (default)."`
	Properties Properties `cmd:""                    help:"Format declarations as properties entries."`
	Tree       Tree       `cmd:""                    help:"Format declarations as optimized expression trees."`
}

// YAML formats declarations as a YAML sequence.
type YAML struct {
	Declarations `embed:""`
	Defines      `embed:""`

	out io.Writer
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	decls, err := loadDeclarations(ctx, y.Declarations, y.Defines, "yaml")
	if err != nil {
		return err
	}

	return uniform.MarshalYAML(ctx, stdout(ctx, y.out), decls)
}

// Properties formats declarations as kind.type.name = expr entries.
type Properties struct {
	Declarations `embed:""`
	Defines      `embed:""`

	out io.Writer
}

// Run executes the properties command.
func (p *Properties) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	decls, err := loadDeclarations(ctx, p.Declarations, p.Defines, "properties")
	if err != nil {
		return err
	}

	return uniform.MarshalProperties(stdout(ctx, p.out), decls)
}

// Tree compiles declarations and prints the optimized tree of each.
type Tree struct {
	Declarations `embed:""`
	Defines      `embed:""`
	Host         `embed:""`
	Optimize     `embed:""`

	out io.Writer
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().With(slog.String("command", "fmt"), slog.String("format", "tree"))

	decls, err := loadDeclarations(ctx, t.Declarations, t.Defines, "tree")
	if err != nil {
		return err
	}

	h, err := t.build(ctx, logger)
	if err != nil {
		return err
	}

	p, err := compile(ctx, h, decls, t.flags(), logger)
	if err != nil {
		return err
	}

	out := stdout(ctx, t.out)

	for d := range p.Declarations() {
		tree, _ := p.Tree(d.Name)
		if _, err := fmt.Fprintf(out, "%s %s %s = %s\n", d.Kind, d.Type, d.Name, tree); err != nil {
			return err
		}
	}

	return nil
}

func loadDeclarations(
	ctx context.Context,
	decls Declarations,
	defines Defines,
	format string,
) ([]uniform.Declaration, error) {
	logger := log.Default().With(slog.String("command", "fmt"), slog.String("format", format))

	symbols, err := defines.symbols()
	if err != nil {
		return nil, err
	}

	return decls.load(ctx, symbols, logger)
}
