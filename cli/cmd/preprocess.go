package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/shadervar/log"
	"github.com/ardnew/shadervar/preproc"
)

// Preprocess runs conditional compilation over shader sources.
type Preprocess struct {
	Defines `embed:""`

	GLSL    bool     `help:"Capture #version and #extension lines into the prelude." name:"glsl"`
	Set     []string `help:"Set a discovered option to VALUE before processing."      placeholder:"NAME=VALUE"`
	Options bool     `help:"Print the configurable options as name=value lines instead of code."`
	Summary bool     `help:"Print a one-line summary to stderr."`

	Files []string `arg:"" default:"-" help:"Source files, concatenated in order, or '-' for stdin." name:"file"`

	out io.Writer
}

// Run executes the preprocess command.
func (p *Preprocess) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().With(slog.String("command", "preprocess"))

	symbols, err := p.symbols()
	if err != nil {
		return err
	}

	srcs, err := openAll(ctx, p.Files)
	if err != nil {
		return err
	}
	defer closeAll(srcs)

	var (
		lines []preproc.Line
		names []string
	)

	for i, src := range srcs {
		ls, err := preproc.ReadLines(ctx, i, src)
		if err != nil {
			return err
		}

		lines = append(lines, ls...)
		names = append(names, src.name)
	}

	opts := preproc.DiscoverOptions(ctx, lines)

	for _, set := range p.Set {
		if err := apply(opts, set); err != nil {
			return err
		}
	}

	out := stdout(ctx, p.out)

	if p.Options {
		return preproc.Props(out, opts)
	}

	res, err := preproc.Process(ctx, lines, opts, symbols,
		preproc.WithGLSL(p.GLSL),
		preproc.WithFiles(names...),
		preproc.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.DebugContext(ctx, "preprocessed",
		slog.Int("files", len(srcs)),
		slog.String("summary", res.Summary()),
		slog.Any("render_targets", res.RenderTargets),
	)

	if p.Summary {
		fmt.Fprintln(stderr(ctx), res.Summary())
	}

	return preproc.Print(out, res)
}

// apply sets the option named in a NAME=VALUE assignment.
func apply(opts *preproc.Options, set string) error {
	name, value, ok := strings.Cut(set, "=")

	opt, found := opts.Lookup(name)
	if !ok || !found {
		return ErrOption.With(slog.String("set", set))
	}

	opt.Set(preproc.Detect(value))

	return nil
}
