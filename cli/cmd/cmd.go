package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ardnew/mung"

	"github.com/ardnew/shadervar/pkg"
)

// PathEnv names the environment variable holding the default search path.
var PathEnv = strings.ToUpper(pkg.Name) + "_PATH"

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns w, or the output of the kong context in ctx, or os.Stdout.
func stdout(ctx context.Context, w io.Writer) io.Writer {
	if w != nil {
		return w
	}

	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stderr returns the error output of the kong context in ctx, or os.Stderr.
func stderr(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stderr != nil {
		return ktx.Stderr
	}

	return os.Stderr
}

type searchPathKey struct{}

// SearchPath returns dirs followed by the directories listed in [PathEnv].
func SearchPath(dirs ...string) []string {
	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(PathEnv)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
	).String()

	return slices.DeleteFunc(filepath.SplitList(list), func(dir string) bool {
		return dir == ""
	})
}

// WithSearchPath returns a new context.Context whose inputs are resolved
// against dirs.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

func searchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// resolve locates name in the working directory or the search path of ctx.
func resolve(ctx context.Context, name string) (string, error) {
	if name == stdinSource {
		return name, nil
	}

	if _, err := os.Stat(name); err == nil || filepath.IsAbs(name) {
		return name, nil
	}

	for _, dir := range searchPathFrom(ctx) {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrNotFound.With(
		slog.String("name", name),
		slog.Any("path", searchPathFrom(ctx)),
	)
}

// source is one opened input.
type source struct {
	name string
	io.ReadCloser
}

// open resolves and opens a single input.
func open(ctx context.Context, name string) (source, error) {
	path, err := resolve(ctx, name)
	if err != nil {
		return source{}, err
	}

	if path == stdinSource {
		return source{name: "<stdin>", ReadCloser: io.NopCloser(os.Stdin)}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return source{}, err
	}

	return source{name: path, ReadCloser: file}, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openAll opens every input once. Names referring to the same file, through
// symlinks or different relative paths, are opened only the first time. All
// occurrences of "-" read stdin, placed last so it reads after all regular
// files.
func openAll(ctx context.Context, names []string) ([]source, error) {
	if len(names) == 0 {
		return nil, ErrNoInput
	}

	var (
		srcs     []source
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, name := range names {
		path, err := resolve(ctx, name)
		if err != nil {
			closeAll(srcs)

			return nil, err
		}

		if path == stdinSource {
			hasStdin = true

			continue
		}

		key, ok := uniqueKey(path)
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		if ok && key == stdinKey {
			hasStdin = true

			continue
		}

		src, err := open(ctx, path)
		if err != nil {
			closeAll(srcs)

			return nil, err
		}

		srcs = append(srcs, src)
	}

	if hasStdin {
		src, _ := open(ctx, stdinSource)
		srcs = append(srcs, src)
	}

	return srcs, nil
}

func closeAll(srcs []source) {
	for _, src := range srcs {
		src.Close()
	}
}

// uniqueKey resolves symlinks in path and returns the device/inode pair of
// the target.
func uniqueKey(path string) (fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}
