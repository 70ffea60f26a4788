// Package expr evaluates a closed arithmetic expression language. It accepts
// numeric literals, variables, table subscripts, the four arithmetic operators
// plus modulo and exponentiation, unary sign, and a short list of builtin
// functions. Everything else is rejected: there is no attribute access, no
// comparison, no call to anything outside the builtin list.
package expr

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "whitespace", Pattern: `\s+`},
	{Name: "Pow", Pattern: `\*\*`},
	{Name: "Number", Pattern: `(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?`},
	{Name: "String", Pattern: `"[^"]*"|'[^']*'`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Op", Pattern: `[-+*/%]`},
	{Name: "Punct", Pattern: `[()\[\],]`},
})

// Grammar: standard precedence ladder, right-associative exponentiation.

type expression struct {
	Left *mulTerm `parser:"@@"`
	Rest []*addOp `parser:"@@*"`
}

type addOp struct {
	Op   string   `parser:"@('+' | '-')"`
	Term *mulTerm `parser:"@@"`
}

type mulTerm struct {
	Left *unary   `parser:"@@"`
	Rest []*mulOp `parser:"@@*"`
}

type mulOp struct {
	Op   string `parser:"@('*' | '/' | '%')"`
	Term *unary `parser:"@@"`
}

// Unary sign binds looser than exponentiation, so -2**2 is -(2**2); the
// exponent itself may carry a sign (2**-1).
type unary struct {
	Sign    string   `parser:"@('+' | '-')?"`
	Operand *powTerm `parser:"@@"`
}

type powTerm struct {
	Base *primary `parser:"@@"`
	Exp  *unary   `parser:"(Pow @@)?"`
}

type primary struct {
	Call      *call       `parser:"  @@"`
	Subscript *subscript  `parser:"| @@"`
	Number    *float64    `parser:"| @Number"`
	Name      *string     `parser:"| @Ident"`
	Paren     *expression `parser:"| '(' @@ ')'"`
}

type call struct {
	Func string        `parser:"@Ident '('"`
	Args []*expression `parser:"( @@ ( ',' @@ )* )? ')'"`
}

type subscript struct {
	Base string `parser:"@Ident '['"`
	Key  *key   `parser:"@@ ']'"`
}

// key is either a quoted string or a bare identifier; a bare identifier is
// read as the literal label, not as a variable.
type key struct {
	Str  *string `parser:"  @String"`
	Name *string `parser:"| @Ident"`
}

var parser = participle.MustBuild[expression](
	participle.Lexer(exprLexer),
	participle.UseLookahead(2),
)
