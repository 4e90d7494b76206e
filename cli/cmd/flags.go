package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ardnew/shadervar/host"
	"github.com/ardnew/shadervar/lang"
	"github.com/ardnew/shadervar/log"
	"github.com/ardnew/shadervar/preproc"
	"github.com/ardnew/shadervar/uniform"
)

// Defines are preprocessor symbols given on the command line.
type Defines struct {
	Define []string `help:"Define a preprocessor symbol as NAME or NAME=VALUE." placeholder:"NAME[=VALUE]" short:"D"`
}

// symbols parses each define. A bare NAME is an enabled toggle; a value is
// classified by [preproc.Detect].
func (d Defines) symbols() (map[string]preproc.Value, error) {
	symbols := make(map[string]preproc.Value, len(d.Define))

	for _, def := range d.Define {
		name, value, hasValue := strings.Cut(def, "=")
		if !lang.IsIdentifier(name) {
			return nil, ErrDefine.With(slog.String("define", def))
		}

		symbols[name] = preproc.Bool(true)
		if hasValue {
			symbols[name] = preproc.Detect(value)
		}
	}

	return symbols, nil
}

// Host configures the simulated renderer.
type Host struct {
	Host string `help:"YAML file of host accessors (default: built-in shader pack host)." placeholder:"FILE" type:"path"`
	Size string `default:"1920x1080"                                                     help:"Viewport size." placeholder:"WxH"`
}

func (h Host) build(ctx context.Context, logger log.Logger) (*host.Host, error) {
	width, height, err := parseSize(h.Size)
	if err != nil {
		return nil, err
	}

	accs := host.Defaults()

	if h.Host != "" {
		src, err := open(ctx, h.Host)
		if err != nil {
			return nil, err
		}
		defer src.Close()

		if accs, err = host.Load(ctx, src); err != nil {
			return nil, err
		}
	}

	return host.New(accs, host.WithSize(width, height), host.WithLogger(logger))
}

// parseSize parses "WxH" with positive dimensions.
func parseSize(s string) (width, height int, err error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, ErrSize.With(slog.String("size", s))
	}

	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)

	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return 0, 0, ErrSize.With(slog.String("size", s))
	}

	return width, height, nil
}

// Optimize selects the compiler optimizations.
type Optimize struct {
	NoOptimize bool `help:"Disable constant folding, branch fusion and jump optimization." name:"no-optimize"`
}

func (o Optimize) flags() uniform.Flags {
	if o.NoOptimize {
		return uniform.Flags{CastIntDivToFloat: true}
	}

	return uniform.DefaultFlags()
}

// Declarations names a declaration file.
type Declarations struct {
	File   string `arg:"" default:"-"    help:"Declaration file (.properties, .yaml) or '-' for stdin." name:"file"`
	Format string `default:"auto" enum:"auto,properties,yaml" help:"Declaration file format."`
}

func (d Declarations) format() string {
	if d.Format != "auto" {
		return d.Format
	}

	switch strings.ToLower(filepath.Ext(d.File)) {
	case ".yaml", ".yml":
		return "yaml"
	}

	return "properties"
}

// load reads the declarations. Properties files are preprocessed with
// symbols first, the way a shader pack loader does.
func (d Declarations) load(
	ctx context.Context,
	symbols map[string]preproc.Value,
	logger log.Logger,
) ([]uniform.Declaration, error) {
	src, err := open(ctx, d.File)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	switch d.format() {
	case "yaml":
		return uniform.LoadYAML(ctx, src)
	case "properties":
	default:
		return nil, ErrFormat.With(slog.String("format", d.Format))
	}

	lines, err := preproc.ReadLines(ctx, 0, src)
	if err != nil {
		return nil, err
	}

	res, err := preproc.Process(ctx, lines, nil, symbols,
		preproc.WithFiles(src.name),
		preproc.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	var b strings.Builder

	for _, ln := range res.Lines {
		b.WriteString(ln.Text)
		b.WriteByte('\n')
	}

	return uniform.LoadProperties(ctx, strings.NewReader(b.String()))
}

// compile builds a program from decls against h.
func compile(
	ctx context.Context,
	h *host.Host,
	decls []uniform.Declaration,
	flags uniform.Flags,
	logger log.Logger,
) (*uniform.Program, error) {
	return uniform.NewCompiler(
		uniform.WithFlags(flags),
		uniform.WithLogger(logger),
		uniform.WithRegistry(h.Registry()),
	).Compile(ctx, decls)
}
