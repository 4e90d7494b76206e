// Package preproc implements conditional compilation for shader sources.
//
// Source lines are first tagged ([TagLines], [MarkBlockComments]) and scanned
// for option-style defines ([DiscoverOptions]):
//
//	#define SHADOWS              // toggle, on
//	//#define BLOOM              // toggle, off
//	#define QUALITY 2 // [1 2 3] // one of a list of values
//
// An [Interpreter] then walks the lines, evaluating #if, #ifdef, #ifndef,
// #elif, #else and #endif against a symbol table seeded with externally
// supplied defines and extended by the #define lines it passes. Lines in
// disabled blocks, and the conditional directives themselves, are commented
// out rather than removed, so line numbers are preserved.
//
// Conditional expressions use the grammar of package lang with C-like
// semantics: integers and floating-point values, comparisons and logical
// operators yielding 0 or 1, and "defined NAME" or "defined(NAME)". A
// symbol reference evaluates the symbol's value as an expression in turn,
// up to [DefaultMaxDepth] levels deep. Undefined symbols evaluate to 0.
package preproc
