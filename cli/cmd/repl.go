package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/shadervar/cli/cmd/repl"
	"github.com/ardnew/shadervar/log"
	"github.com/ardnew/shadervar/uniform"
)

// Repl starts an interactive session for evaluating expressions, declarations
// and preprocessor conditions against a simulated host.
type Repl struct {
	Defines  `embed:""`
	Host     `embed:""`
	Optimize `embed:""`

	Decls string `help:"Declaration file to load at startup." placeholder:"FILE"`
	Cache string `default:"${cache}" help:"Directory holding the session history." hidden:"" type:"path"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().With(slog.String("command", "repl"))

	symbols, err := r.symbols()
	if err != nil {
		return err
	}

	h, err := r.build(ctx, logger)
	if err != nil {
		return err
	}

	var decls []uniform.Declaration

	if r.Decls != "" {
		if decls, err = (Declarations{File: r.Decls, Format: "auto"}).load(ctx, symbols, logger); err != nil {
			return err
		}
	}

	return repl.Run(ctx, repl.Config{
		Host:     h,
		Flags:    r.flags(),
		Decls:    decls,
		Symbols:  symbols,
		CacheDir: r.Cache,
		Logger:   logger,
	})
}
