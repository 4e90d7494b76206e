package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ardnew/shadervar/log"
)

// Simulate advances a compiled program through a number of frames and prints
// the uniform values of each.
type Simulate struct {
	Declarations `embed:""`
	Defines      `embed:""`
	Host         `embed:""`
	Optimize     `embed:""`

	Frames int     `default:"60" help:"Number of frames to run."    short:"n"`
	FPS    float64 `default:"60" help:"Simulated frames per second."`
	Every  int     `default:"1"  help:"Print every Nth frame."`

	out io.Writer
}

// Run executes the run command.
func (s *Simulate) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default().With(slog.String("command", "run"))

	if s.Frames < 0 || s.FPS <= 0 || s.Every <= 0 {
		return ErrUsage.With(
			slog.Int("frames", s.Frames),
			slog.Float64("fps", s.FPS),
			slog.Int("every", s.Every),
		)
	}

	symbols, err := s.symbols()
	if err != nil {
		return err
	}

	decls, err := s.load(ctx, symbols, logger)
	if err != nil {
		return err
	}

	h, err := s.build(ctx, logger)
	if err != nil {
		return err
	}

	p, err := compile(ctx, h, decls, s.flags(), logger)
	if err != nil {
		return err
	}

	out := stdout(ctx, s.out)
	dt := time.Duration(float64(time.Second) / s.FPS)
	start := time.Now()

	for frame := 1; frame <= s.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		h.Advance(dt)
		p.Update()

		if frame%s.Every != 0 {
			continue
		}

		var b strings.Builder

		fmt.Fprintf(&b, "%d", frame)

		for d := range p.Uniforms() {
			v, _ := p.Get(d.Name)
			fmt.Fprintf(&b, "\t%s=%s", d.Name, v)
		}

		b.WriteByte('\n')

		if _, err := io.WriteString(out, b.String()); err != nil {
			return err
		}
	}

	logger.DebugContext(ctx, "run complete",
		slog.Int("frames", s.Frames),
		slog.Int("uniforms", p.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)

	return nil
}
