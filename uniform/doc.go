// Package uniform compiles shader-pack uniform and variable declarations into
// a [Program] that recomputes every declaration once per frame.
//
// Each declaration expression is parsed by package lang, then passes through
// a pipeline of independent stages:
//
//   - [Resolver] binds names to functions and inserts conversions;
//   - [Optimizer] folds constants and simplifies boolean chains and branches;
//   - [Generate] lowers the typed tree to stack machine instructions;
//   - [OptimizeJumps] removes redundant jumps;
//   - [Assemble] resolves labels into a [Routine] run by a [Machine].
//
// Values have one of the types bool, int (32-bit, wrapping), float (64-bit)
// and vec2 through vec4. Operands are converted along bool < int < float <
// vector, where a scalar converts to any vector by broadcast and vectors of
// different sizes never convert.
//
// Names resolve against layered registries: the pure [Builtins], the
// stateful builtins of a [State], the declarations compiled so far, and any
// registries supplied with [WithRegistry]. Stateful builtins such as random
// and smooth keep state per call site; the compiler numbers each call site.
//
// Binary operators of equal precedence group to the right, so 10 - 3 - 2 is 9.
package uniform
