package cmd

import "github.com/ardnew/shadervar/lang"

// Predefined errors (sentinel values).
var (
	ErrNotFound = lang.NewError("input file not found")
	ErrNoInput  = lang.NewError("no input files")
	ErrDefine   = lang.NewError("invalid define")
	ErrSize     = lang.NewError("invalid viewport size")
	ErrFormat   = lang.NewError("unknown declaration format")
	ErrOption   = lang.NewError("unknown option")
	ErrUsage    = lang.NewError("invalid arguments")
)
