package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandrolain/goel/pkg/types"
)

// Associativity of a binary operator.
type Associativity uint8

const (
	AssocLeft Associativity = iota
	AssocRight
)

// OperatorInfo describes the binding of an operator.
type OperatorInfo struct {
	Precedence    int
	Associativity Associativity
}

// Unary operator precedence table.
var unaryOperators = map[string]OperatorInfo{
	"not": {Precedence: 50},
	"!":   {Precedence: 50},
	"-":   {Precedence: 500},
	"+":   {Precedence: 500},
}

// Binary operator precedence table. Higher values bind more tightly.
var binaryOperators = map[string]OperatorInfo{
	"or":          {Precedence: 10},
	"||":          {Precedence: 10},
	"and":         {Precedence: 15},
	"&&":          {Precedence: 15},
	"==":          {Precedence: 20},
	"!=":          {Precedence: 20},
	"<":           {Precedence: 20},
	">":           {Precedence: 20},
	">=":          {Precedence: 20},
	"<=":          {Precedence: 20},
	"not in":      {Precedence: 20},
	"in":          {Precedence: 20},
	"matches":     {Precedence: 20},
	"contains":    {Precedence: 20},
	"starts with": {Precedence: 20},
	"ends with":   {Precedence: 20},
	"..":          {Precedence: 25},
	"+":           {Precedence: 30},
	"-":           {Precedence: 30},
	"~":           {Precedence: 40},
	"*":           {Precedence: 60},
	"/":           {Precedence: 60},
	"%":           {Precedence: 60},
	"**":          {Precedence: 200, Associativity: AssocRight},
}

// UnaryOperator returns the binding of a prefix operator.
func UnaryOperator(op string) (OperatorInfo, bool) {
	info, ok := unaryOperators[op]
	return info, ok
}

// BinaryOperator returns the binding of an infix operator.
func BinaryOperator(op string) (OperatorInfo, bool) {
	info, ok := binaryOperators[op]
	return info, ok
}

// Parser builds an Abstract Syntax Tree from a TokenStream using
// precedence climbing. A Parser only holds configuration and may be
// reused, including concurrently.
type Parser struct {
	opts Options
}

// New creates a parser.
func New(opts ...Option) *Parser {
	options := Options{
		MaxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Parser{opts: options}
}

// Parse consumes stream until its end and returns the root node.
func (p *Parser) Parse(stream *TokenStream, names Names) (types.Node, error) {
	s := &state{
		opts:   p.opts,
		stream: stream,
		names:  names,
	}

	node, err := s.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if !stream.IsEOF() {
		t := stream.Current()
		return nil, s.error(types.ErrUnexpectedToken, fmt.Sprintf("Unexpected token %q of value %q", t.Type.String(), t.Value), t.Cursor)
	}
	return node, nil
}

// Lint validates stream without keeping the tree.
func (p *Parser) Lint(stream *TokenStream, names Names) error {
	_, err := p.Parse(stream, names)
	return err
}

// state is the per-call parsing state.
type state struct {
	opts   Options
	stream *TokenStream
	names  Names
	depth  int
}

func (s *state) error(code types.ErrorCode, message string, cursor int) *types.SyntaxError {
	return types.NewSyntaxError(code, message, cursor, s.stream.Expression())
}

func (s *state) current() Token {
	return s.stream.Current()
}

// enter guards the recursion depth; the returned function restores it.
func (s *state) enter() (func(), error) {
	s.depth++
	if s.opts.MaxDepth > 0 && s.depth > s.opts.MaxDepth {
		return nil, s.error(types.ErrNestingTooDeep, fmt.Sprintf("Expression nesting exceeds the maximum depth of %d", s.opts.MaxDepth), s.current().Cursor)
	}
	return func() { s.depth-- }, nil
}

// parseExpression parses a binary expression whose operators bind at
// least as tightly as precedence. At precedence 0 a trailing ternary is
// parsed as well.
func (s *state) parseExpression(precedence int) (types.Node, error) {
	leave, err := s.enter()
	if err != nil {
		return nil, err
	}
	defer leave()

	expr, err := s.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		token := s.current()
		if token.Type != TokenOperator {
			break
		}
		op, ok := binaryOperators[token.Value]
		if !ok || op.Precedence < precedence {
			break
		}
		if err := s.stream.Next(); err != nil {
			return nil, err
		}

		next := op.Precedence + 1
		if op.Associativity == AssocRight {
			next = op.Precedence
		}
		right, err := s.parseExpression(next)
		if err != nil {
			return nil, err
		}
		expr = types.NewBinary(token.Value, expr, right)
	}

	if precedence == 0 {
		return s.parseConditional(expr)
	}
	return expr, nil
}

func (s *state) parsePrimary() (types.Node, error) {
	token := s.current()

	if token.Type == TokenOperator {
		if op, ok := unaryOperators[token.Value]; ok {
			if err := s.stream.Next(); err != nil {
				return nil, err
			}
			operand, err := s.parseExpression(op.Precedence)
			if err != nil {
				return nil, err
			}
			return s.parsePostfix(types.NewUnary(token.Value, operand))
		}
	}

	if token.Test(TokenPunctuation, "(") {
		if err := s.stream.Next(); err != nil {
			return nil, err
		}
		expr, err := s.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := s.stream.Expect(TokenPunctuation, ")", "An opened parenthesis is not properly closed"); err != nil {
			return nil, err
		}
		return s.parsePostfix(expr)
	}

	return s.parsePrimaryExpression()
}

// parseConditional parses "? then : else", "? then" and "?: else" chains.
func (s *state) parseConditional(expr types.Node) (types.Node, error) {
	for s.current().Test(TokenPunctuation, "?") {
		if err := s.stream.Next(); err != nil {
			return nil, err
		}

		var then, otherwise types.Node
		var err error
		if s.current().Test(TokenPunctuation, ":") {
			if err := s.stream.Next(); err != nil {
				return nil, err
			}
			then = expr
			if otherwise, err = s.parseExpression(0); err != nil {
				return nil, err
			}
		} else {
			if then, err = s.parseExpression(0); err != nil {
				return nil, err
			}
			if s.current().Test(TokenPunctuation, ":") {
				if err := s.stream.Next(); err != nil {
					return nil, err
				}
				if otherwise, err = s.parseExpression(0); err != nil {
					return nil, err
				}
			} else {
				otherwise = types.NewConstant(nil)
			}
		}

		expr = types.NewConditional(expr, then, otherwise)
	}
	return expr, nil
}

func (s *state) parsePrimaryExpression() (types.Node, error) {
	token := s.current()

	var node types.Node
	switch token.Type {
	case TokenName:
		if err := s.stream.Next(); err != nil {
			return nil, err
		}
		switch token.Value {
		case "true", "TRUE":
			node = types.NewConstant(true)
		case "false", "FALSE":
			node = types.NewConstant(false)
		case "null", "NULL":
			node = types.NewConstant(nil)
		default:
			var err error
			if s.current().Test(TokenPunctuation, "(") {
				node, err = s.parseFunction(token)
			} else {
				node, err = s.parseName(token)
			}
			if err != nil {
				return nil, err
			}
		}

	case TokenNumber:
		if err := s.stream.Next(); err != nil {
			return nil, err
		}
		v, err := ParseNumber(token.Value)
		if err != nil {
			return nil, s.error(types.ErrInvalidNumber, fmt.Sprintf("Invalid number %q", token.Value), token.Cursor)
		}
		node = types.NewConstant(v)

	case TokenString:
		if err := s.stream.Next(); err != nil {
			return nil, err
		}
		node = types.NewConstant(token.Value)

	default:
		var err error
		switch {
		case token.Test(TokenPunctuation, "["):
			node, err = s.parseArray()
		case token.Test(TokenPunctuation, "{"):
			node, err = s.parseHash()
		case token.Type == TokenEOF:
			return nil, s.error(types.ErrUnexpectedEnd, "Unexpected end of expression", token.Cursor)
		default:
			return nil, s.error(types.ErrUnexpectedToken, fmt.Sprintf("Unexpected token %q of value %q", token.Type.String(), token.Value), token.Cursor)
		}
		if err != nil {
			return nil, err
		}
	}

	return s.parsePostfix(node)
}

// parseFunction parses a call to a top-level function. The name is not
// checked against any registry: unknown functions are reported when the
// tree is compiled or evaluated.
func (s *state) parseFunction(token Token) (types.Node, error) {
	args, err := s.parseArguments()
	if err != nil {
		return nil, err
	}
	return types.NewFunction(token.Value, args), nil
}

func (s *state) parseName(token Token) (types.Node, error) {
	internal, ok := s.names.Resolve(token.Value)
	if ok {
		return types.NewName(internal), nil
	}
	if s.opts.IgnoreUnknownVariables {
		return types.NewName(token.Value), nil
	}
	return nil, s.error(types.ErrInvalidVariable, fmt.Sprintf("Variable %q is not valid", token.Value), token.Cursor).
		WithProposals(token.Value, s.names.Surface())
}

func (s *state) parseArray() (types.Node, error) {
	if err := s.stream.Expect(TokenPunctuation, "[", "An array element was expected"); err != nil {
		return nil, err
	}

	elements := []types.Node{}
	for !s.current().Test(TokenPunctuation, "]") {
		if len(elements) > 0 {
			if err := s.stream.Expect(TokenPunctuation, ",", "An array element must be followed by a comma"); err != nil {
				return nil, err
			}
			// trailing comma
			if s.current().Test(TokenPunctuation, "]") {
				break
			}
		}
		el, err := s.parseExpression(0)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}

	if err := s.stream.Expect(TokenPunctuation, "]", "An opened array is not properly closed"); err != nil {
		return nil, err
	}
	return types.NewArray(elements...), nil
}

func (s *state) parseHash() (types.Node, error) {
	if err := s.stream.Expect(TokenPunctuation, "{", "A hash element was expected"); err != nil {
		return nil, err
	}

	entries := []types.HashEntry{}
	index := map[string]int{}
	for !s.current().Test(TokenPunctuation, "}") {
		if len(index) > 0 {
			if err := s.stream.Expect(TokenPunctuation, ",", "A hash value must be followed by a comma"); err != nil {
				return nil, err
			}
			// trailing comma
			if s.current().Test(TokenPunctuation, "}") {
				break
			}
		}

		token := s.current()
		switch token.Type {
		case TokenString, TokenName, TokenNumber:
		default:
			return nil, s.error(types.ErrUnexpectedToken, fmt.Sprintf("A hash key must be a quoted string, a number or a name (unexpected token %q of value %q)", token.Type.String(), token.Value), token.Cursor)
		}
		if err := s.stream.Next(); err != nil {
			return nil, err
		}
		if err := s.stream.Expect(TokenPunctuation, ":", "A hash key must be followed by a colon (:)"); err != nil {
			return nil, err
		}
		value, err := s.parseExpression(0)
		if err != nil {
			return nil, err
		}

		key := token.Value
		if token.Type == TokenNumber {
			key = numberKey(token.Value)
		}
		// A repeated key replaces the earlier value in place.
		if i, ok := index[key]; ok {
			entries[i].Value = value
			continue
		}
		index[key] = len(entries)
		entries = append(entries, types.HashEntry{Key: key, Value: value})
	}

	if err := s.stream.Expect(TokenPunctuation, "}", "An opened hash is not properly closed"); err != nil {
		return nil, err
	}
	return types.NewHash(entries...), nil
}

// parsePostfix applies the chain of .name, .name(args) and [expr]
// accessors to node, building left-leaning GetAttr nodes.
func (s *state) parsePostfix(node types.Node) (types.Node, error) {
	for {
		token := s.current()
		switch {
		case token.Test(TokenPunctuation, "."):
			if err := s.stream.Next(); err != nil {
				return nil, err
			}
			name := s.current()
			if name.Type != TokenName && (name.Type != TokenOperator || !IsIdentifier(name.Value)) {
				return nil, s.error(types.ErrExpectedName, "Expected name", name.Cursor)
			}
			if err := s.stream.Next(); err != nil {
				return nil, err
			}

			attr := types.NewIdentifier(name.Value)
			if s.current().Test(TokenPunctuation, "(") {
				args, err := s.parseArguments()
				if err != nil {
					return nil, err
				}
				node = types.NewGetAttr(node, attr, args, types.MethodCall)
			} else {
				node = types.NewGetAttr(node, attr, nil, types.PropertyCall)
			}

		case token.Test(TokenPunctuation, "["):
			if err := s.stream.Next(); err != nil {
				return nil, err
			}
			index, err := s.parseExpression(0)
			if err != nil {
				return nil, err
			}
			if err := s.stream.Expect(TokenPunctuation, "]"); err != nil {
				return nil, err
			}
			node = types.NewGetAttr(node, index, nil, types.ArrayCall)

		default:
			return node, nil
		}
	}
}

// parseArguments parses a parenthesized, comma separated argument list.
func (s *state) parseArguments() (*types.ArgumentsNode, error) {
	if err := s.stream.Expect(TokenPunctuation, "(", "A list of arguments must begin with an opening parenthesis"); err != nil {
		return nil, err
	}

	args := types.NewArguments()
	for !s.current().Test(TokenPunctuation, ")") {
		if args.Len() > 0 {
			if err := s.stream.Expect(TokenPunctuation, ",", "Arguments must be separated by a comma"); err != nil {
				return nil, err
			}
		}
		arg, err := s.parseExpression(0)
		if err != nil {
			return nil, err
		}
		args.Add(arg)
	}

	if err := s.stream.Expect(TokenPunctuation, ")", "A list of arguments must be closed by a parenthesis"); err != nil {
		return nil, err
	}
	return args, nil
}

// ParseNumber materializes a number token: int when the literal is made
// of digits only and fits, float64 otherwise.
func ParseNumber(text string) (any, error) {
	if !strings.ContainsAny(text, ".eE") {
		if v, err := strconv.Atoi(text); err == nil {
			return v, nil
		}
	}
	return strconv.ParseFloat(text, 64)
}

// numberKey normalizes a numeric hash key: 01 and 1 name the same entry.
func numberKey(text string) string {
	v, err := ParseNumber(text)
	if err != nil {
		return text
	}
	return types.DumpValue(v)
}
