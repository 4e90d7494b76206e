package repl

import "github.com/ardnew/shadervar/lang"

// Predefined errors (sentinel values).
var (
	ErrOutOfBounds    = lang.NewError("history index out of range")
	ErrUnknownCommand = lang.NewError("unknown command")
	ErrUsage          = lang.NewError("invalid command arguments")
)
