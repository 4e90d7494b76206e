package preproc

import (
	"bufio"
	"io"
	"strconv"
)

// Print writes the prelude of res followed by its lines. When the prelude is
// not empty, a "#line 1" directive separates the two so that compiler
// diagnostics refer to the original line numbers.
func Print(w io.Writer, res *Result) error {
	bw := bufio.NewWriter(w)

	for _, s := range res.Prelude {
		bw.WriteString(s)
		bw.WriteByte('\n')
	}

	if len(res.Prelude) > 0 {
		bw.WriteString("#line 1\n")
	}

	for _, ln := range res.Lines {
		bw.WriteString(ln.Text)
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// Props writes the current value of each configurable option as a
// name=value line.
func Props(w io.Writer, opts *Options) error {
	bw := bufio.NewWriter(w)

	for opt := range opts.All() {
		if !opt.Configurable() {
			continue
		}

		bw.WriteString(opt.Props())
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// Summary describes res in one line for diagnostics.
func (r *Result) Summary() string {
	return strconv.Itoa(len(r.Lines)) + " lines, " +
		strconv.Itoa(len(r.Options)) + " options, " +
		strconv.Itoa(len(r.Extensions)) + " extensions"
}
