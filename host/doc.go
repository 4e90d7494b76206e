// Package host simulates the renderer state read by uniform expressions.
//
// Host values such as the frame counter or viewport size are declared as
// [Accessor] entries whose expressions are written in expr-lang syntax over
// [Env]. A [Host] compiles them once and registers each as a zero-argument
// uniform function:
//
//	h, err := host.New(host.Defaults())
//	prog, err := uniform.NewCompiler(uniform.WithRegistry(h.Registry())).
//		Compile(ctx, decls)
//
//	for range frames {
//		h.Advance(time.Second / 60)
//		prog.Update()
//	}
package host
