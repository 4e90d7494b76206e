// Package log is the structured logger shared by every shadervar package.
//
// A [Logger] wraps a [slog.Logger] and adds a Trace level below Debug.
// Attributes are always passed as [slog.Attr]:
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelDebug))
//	logger.Debug("compiled program",
//		slog.Int("uniforms", n),
//		slog.Duration("elapsed", d),
//	)
//
// Library packages take a Logger through their own WithLogger options and fall
// back to [Default], which the command line reconfigures with [Config] once
// flags are parsed. The zero Logger discards everything.
//
// Output is [FormatText] or [FormatJSON]. With [WithPretty], text output is
// rendered by a colorized handler that flattens groups into dotted keys, so a
// wrapped error logged with slog.Any shows each of its attributes.
package log
