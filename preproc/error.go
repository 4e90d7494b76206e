package preproc

import "github.com/ardnew/shadervar/lang"

// Predefined errors (sentinel values).
var (
	ErrMacro            = lang.NewError("cannot evaluate macro expression")
	ErrDivideByZero     = lang.NewError("integer division by zero")
	ErrMaxDepthExceeded = lang.NewError("maximum macro expansion depth exceeded")
	ErrUnbalanced       = lang.NewError("unbalanced conditional directive")
	ErrOptionRange      = lang.NewError("option value index out of range")
)
