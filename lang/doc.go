// Package lang implements the lexical and syntactic layers shared by the
// shader option preprocessor and the custom uniform compiler.
//
// # Tokens
//
// The lexer recognizes the operators + - * / % ! && || >= > <= < == !=, the
// punctuation , ( ) . and three literal classes: unsigned decimal integers,
// unsigned decimals with a single dot, and identifiers of ASCII letters,
// digits and underscores. The words true and false are keywords. A single &
// or | is accepted as its doubled form; a single = is an error.
//
// # Grammar
//
//	Expr     → Primary (BinOp Primary)*
//	Primary  → Integer | Float | true | false
//	         | Identifier [ '(' [Expr (',' Expr)*] ')' | ('.' Index)+ ]
//	         | '(' Expr ')' | '-' Primary | '!' Primary
//	Index    → Integer | x | y | z | w | s | t | p | q | r | g | b | a
//
// Binary operators are grouped by splitting the flat operator list at the
// first operator of the loosest precedence:
//
//	* / %        3
//	+ -          4
//	< <= > >=    6
//	== !=        7
//	&&          11
//	||          12
//
// Because the first loosest operator wins, a chain of equal precedence groups
// to the right, so 10 - 3 - 2 evaluates to 9. Unary operators bind to a
// single primary: -a.x negates the swizzle, and -2 * 3 is (-2) * 3.
//
// # Builders
//
// [Parser] is generic over the node type it produces. Each consumer supplies
// a [Builder]: [TreeBuilder] yields the untyped [Node] tree used by the
// uniform compiler, and the preprocessor supplies its own builder to
// recognize defined NAME.
package lang
