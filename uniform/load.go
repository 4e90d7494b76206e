package uniform

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/magiconair/properties"

	"github.com/ardnew/shadervar/lang"
	"github.com/ardnew/shadervar/log"
)

// ErrLoad indicates a declaration file that could not be read.
var ErrLoad = lang.NewError("failed to load declarations")

// LoadProperties reads declarations from a shader-pack properties file. Keys
// of the form uniform.<type>.<name> and variable.<type>.<name> are returned
// in file order. Other keys are ignored; malformed declaration keys are
// logged and skipped.
func LoadProperties(ctx context.Context, r io.Reader) ([]Declaration, error) {
	src, err := lang.ReadSource(ctx, r)
	if err != nil {
		return nil, ErrLoad.Wrap(err)
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}

	props, err := loader.LoadBytes([]byte(src))
	if err != nil {
		return nil, ErrLoad.Wrap(err)
	}

	var decls []Declaration

	for _, key := range props.Keys() {
		kind, rest, ok := strings.Cut(key, ".")
		if !ok || (kind != "uniform" && kind != "variable") {
			continue
		}

		typ, name, ok := strings.Cut(rest, ".")
		if !ok {
			log.WarnContext(ctx, "malformed declaration key", slog.String("key", key))

			continue
		}

		d := Declaration{Name: name}

		if d.Kind, err = ParseKind(kind); err != nil {
			continue
		}

		if d.Type, err = ParseType(typ); err != nil {
			log.WarnContext(ctx, "unknown declaration type",
				slog.String("key", key),
				slog.String("type", typ),
			)

			continue
		}

		d.Expr, _ = props.Get(key)
		decls = append(decls, d)
	}

	return decls, nil
}

// LoadYAML reads a YAML sequence of declarations, each a mapping with keys
// kind, type, name and expr. kind defaults to uniform.
func LoadYAML(ctx context.Context, r io.Reader) ([]Declaration, error) {
	src, err := lang.ReadSource(ctx, r)
	if err != nil {
		return nil, ErrLoad.Wrap(err)
	}

	var decls []Declaration

	if err := yaml.UnmarshalContext(ctx, []byte(src), &decls, yaml.Strict()); err != nil {
		return nil, ErrLoad.Wrap(err)
	}

	return decls, nil
}

// MarshalYAML writes decls in the form read by [LoadYAML].
func MarshalYAML(ctx context.Context, w io.Writer, decls []Declaration) error {
	data, err := yaml.MarshalContext(ctx, decls)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// MarshalProperties writes decls as kind.type.name = expr entries in the form
// read by [LoadProperties].
func MarshalProperties(w io.Writer, decls []Declaration) error {
	props := properties.NewProperties()
	props.DisableExpansion = true

	for _, d := range decls {
		key := d.Kind.String() + "." + d.Type.String() + "." + d.Name
		if _, _, err := props.Set(key, d.Expr); err != nil {
			return err
		}
	}

	_, err := props.Write(w, properties.UTF8)

	return err
}
