package pkg

import (
	"log/slog"
	"strconv"
	"strings"
)

// Error collects independent failures of a batch operation, such as every
// declaration of a program that failed to compile. errors.Is and errors.As
// search each of them.
type Error []error

// Wrap appends the non-nil errors of errs.
func (e Error) Wrap(errs ...error) Error {
	for _, err := range errs {
		if err != nil {
			e = append(e, err)
		}
	}

	return e
}

// Err returns e, or nil when it holds no errors.
func (e Error) Err() error {
	if len(e) == 0 {
		return nil
	}

	return e
}

// Error lists each failure on its own line.
func (e Error) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}

	return strings.Join(msgs, "\n")
}

func (e Error) Unwrap() []error { return e }

// LogValue groups the failures under their index.
func (e Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, len(e))
	for i, err := range e {
		attrs[i] = slog.Any(strconv.Itoa(i), err)
	}

	return slog.GroupValue(attrs...)
}
