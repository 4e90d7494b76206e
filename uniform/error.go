package uniform

import "github.com/ardnew/shadervar/lang"

// Predefined errors (sentinel values).
var (
	ErrType            = lang.NewError("type error")
	ErrUnknownFunction = lang.NewError("unknown uniform variable/function")
	ErrFold            = lang.NewError("compile-time evaluation failed")
	ErrCodegen         = lang.NewError("code generation failed")
	ErrDeclaration     = lang.NewError("invalid declaration")
	ErrDuplicate       = lang.NewError("duplicate declaration")
)
