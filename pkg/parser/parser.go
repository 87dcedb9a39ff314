// Package parser turns expression text into an Abstract Syntax Tree.
//
// The parser is a hand-written precedence-climbing parser driven by a
// TokenStream. Every error it reports is a *types.SyntaxError carrying the
// cursor of the offending token and the source expression.
//
// # Architecture
//
// The parser consists of three main components:
//   - Lexer: Tokenizes the input expression into a stream of tokens
//   - TokenStream: A cursor over the tokens with expectation checks
//   - Parser: Builds an Abstract Syntax Tree (AST) from the stream
//
// # Example
//
//	expr, err := parser.Parse("user.age >= 18", parser.NewNames("user"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	root := expr.Nodes()
package parser

import (
	"github.com/sandrolain/goel/pkg/types"
)

// DefaultMaxDepth is the nesting limit used when none is configured.
const DefaultMaxDepth = 100

// Parse tokenizes and parses expression.
//
// Example:
//
//	expr, err := parser.Parse("a + b", parser.NewNames("a", "b"))
//	if err != nil {
//	    var se *types.SyntaxError
//	    if errors.As(err, &se) {
//	        fmt.Printf("error at position %d\n", se.Cursor)
//	    }
//	    return
//	}
func Parse(expression string, names Names, opts ...Option) (*types.ParsedExpression, error) {
	stream, err := Tokenize(expression)
	if err != nil {
		return nil, err
	}
	node, err := New(opts...).Parse(stream, names)
	if err != nil {
		return nil, err
	}
	return types.NewParsedExpression(expression, node), nil
}

// Lint tokenizes and parses expression, discarding the tree. With nil
// names every variable is accepted.
func Lint(expression string, names *Names, opts ...Option) error {
	stream, err := Tokenize(expression)
	if err != nil {
		return err
	}
	if names == nil {
		return New(append(opts, WithIgnoreUnknownVariables())...).Lint(stream, Names{})
	}
	return New(opts...).Lint(stream, *names)
}

// Option configures parsing behavior.
type Option func(*Options)

// Options holds parser configuration.
type Options struct {
	// MaxDepth limits recursion depth to prevent stack overflow.
	MaxDepth int
	// IgnoreUnknownVariables turns undeclared names into NameNodes instead
	// of reporting them.
	IgnoreUnknownVariables bool
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = depth
	}
}

// WithIgnoreUnknownVariables accepts any variable name.
func WithIgnoreUnknownVariables() Option {
	return func(opts *Options) {
		opts.IgnoreUnknownVariables = true
	}
}
