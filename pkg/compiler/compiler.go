// Package compiler renders an expression tree as source text for the
// expr-lang/expr runtime.
//
// Every operator is fully parenthesized, so the output does not depend on
// the precedence rules of the target language. Calls to registered
// functions are delegated to the compiler half of each function.
//
// # Example
//
//	src, err := compiler.Compile(parsed.Nodes(), registry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// src: ((a + 1) > b)
package compiler

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/sandrolain/goel/pkg/functions"
	"github.com/sandrolain/goel/pkg/pattern"
	"github.com/sandrolain/goel/pkg/types"
)

// PatternFunction is the runtime function that converts a delimited
// pattern computed at run time into RE2 syntax.
const PatternFunction = "pcre"

// binaryOperators maps source operators to their target spelling.
var binaryOperators = map[string]string{
	"or":          "||",
	"||":          "||",
	"and":         "&&",
	"&&":          "&&",
	"==":          "==",
	"!=":          "!=",
	"<":           "<",
	">":           ">",
	"<=":          "<=",
	">=":          ">=",
	"in":          "in",
	"not in":      "not in",
	"contains":    "contains",
	"starts with": "startsWith",
	"ends with":   "endsWith",
	"..":          "..",
	"+":           "+",
	"-":           "-",
	"*":           "*",
	"/":           "/",
	"%":           "%",
	"**":          "**",
}

// keywords cannot be used as bare identifiers in the target language.
var keywords = map[string]bool{
	"nil":        true,
	"true":       true,
	"false":      true,
	"in":         true,
	"not":        true,
	"and":        true,
	"or":         true,
	"matches":    true,
	"contains":   true,
	"startsWith": true,
	"endsWith":   true,
	"let":        true,
	"if":         true,
	"else":       true,
}

// Compiler accumulates target source text.
//
// A Compiler is not safe for concurrent use. The registry it reads from is.
type Compiler struct {
	registry *functions.Registry
	source   strings.Builder
}

// New creates a Compiler resolving function calls against registry.
// A nil registry behaves like an empty one.
func New(registry *functions.Registry) *Compiler {
	if registry == nil {
		registry = functions.NewRegistry()
	}
	return &Compiler{registry: registry}
}

// Compile renders node as target source and returns it.
func Compile(node types.Node, registry *functions.Registry) (string, error) {
	c := New(registry)
	if err := c.Compile(node); err != nil {
		return "", err
	}
	return c.Source(), nil
}

// Source returns the text accumulated so far.
func (c *Compiler) Source() string {
	return c.source.String()
}

// Reset discards the accumulated text.
func (c *Compiler) Reset() *Compiler {
	c.source.Reset()
	return c
}

// Function returns the registered function name.
func (c *Compiler) Function(name string) (functions.Function, error) {
	return c.registry.Lookup(name)
}

// Raw appends s verbatim.
func (c *Compiler) Raw(s string) *Compiler {
	c.source.WriteString(s)
	return c
}

// Quote appends s as a quoted string literal.
func (c *Compiler) Quote(s string) *Compiler {
	c.source.WriteString(strconv.Quote(s))
	return c
}

// Repr appends the literal form of v. Supported values are nil, booleans,
// numbers, strings and slices or string-keyed maps of those.
func (c *Compiler) Repr(v any) *Compiler {
	c.source.WriteString(repr(v))
	return c
}

// Subcompile renders node into a separate buffer and returns the result,
// leaving the accumulated text untouched.
func (c *Compiler) Subcompile(node types.Node) (string, error) {
	sub := &Compiler{registry: c.registry}
	if err := sub.Compile(node); err != nil {
		return "", err
	}
	return sub.Source(), nil
}

// Compile appends the rendering of node.
func (c *Compiler) Compile(node types.Node) error {
	switch n := node.(type) {
	case *types.ConstantNode:
		return c.compileConstant(n)
	case *types.NameNode:
		c.name(n.Name)
		return nil
	case *types.UnaryNode:
		return c.compileUnary(n)
	case *types.BinaryNode:
		return c.compileBinary(n)
	case *types.ConditionalNode:
		return c.compileConditional(n)
	case *types.ArgumentsNode:
		return c.compileList(n.Nodes)
	case *types.GetAttrNode:
		return c.compileGetAttr(n)
	case *types.FunctionNode:
		return c.compileFunction(n)
	case *types.ArrayNode:
		c.Raw("[")
		if err := c.compileList(n.Elements); err != nil {
			return err
		}
		c.Raw("]")
		return nil
	case *types.HashNode:
		return c.compileHash(n)
	case nil:
		return types.NewError(types.ErrUnsupportedNode, "cannot compile a nil node")
	default:
		return types.Errorf(types.ErrUnsupportedNode, "cannot compile node of type %s", node.Type())
	}
}

func (c *Compiler) compileConstant(n *types.ConstantNode) error {
	if n.IsIdentifier {
		s, _ := n.Value.(string)
		c.Raw(s)
		return nil
	}
	switch n.Value.(type) {
	case nil, bool, int, float64, string:
		c.Repr(n.Value)
		return nil
	default:
		return types.Errorf(types.ErrUnsupportedNode, "cannot compile constant of type %T", n.Value)
	}
}

// name renders a variable reference. Names the target reserves are read
// through the environment map.
func (c *Compiler) name(name string) {
	if isIdentifier(name) {
		c.Raw(name)
		return
	}
	c.Raw("$env[").Quote(name).Raw("]")
}

func (c *Compiler) compileUnary(n *types.UnaryNode) error {
	operand, err := c.Subcompile(n.Node)
	if err != nil {
		return err
	}
	op := n.Operator
	if op == "not" {
		op = "!"
	}
	switch op {
	case "!", "-", "+":
	default:
		return types.Errorf(types.ErrUnsupportedNode, "unknown unary operator %q", n.Operator)
	}
	c.Raw("(").Raw(op).Raw(operand).Raw(")")
	return nil
}

// stringOperand converts a compiled operand of "~" to a string; null
// renders as the empty string.
func stringOperand(node types.Node, compiled string) string {
	if binary, ok := node.(*types.BinaryNode); ok && binary.Operator == "~" {
		return compiled
	}
	if constant, ok := node.(*types.ConstantNode); ok && !constant.IsIdentifier {
		if constant.Value == nil {
			return `""`
		}
		return "string(" + compiled + ")"
	}
	return "string(" + compiled + ` ?? "")`
}

func (c *Compiler) compileBinary(n *types.BinaryNode) error {
	left, err := c.Subcompile(n.Left)
	if err != nil {
		return err
	}

	switch n.Operator {
	case "matches":
		return c.compileMatches(left, n.Right)
	case "~":
		right, err := c.Subcompile(n.Right)
		if err != nil {
			return err
		}
		c.Raw("(").Raw(stringOperand(n.Left, left)).Raw(" + ").Raw(stringOperand(n.Right, right)).Raw(")")
		return nil
	}

	op, ok := binaryOperators[n.Operator]
	if !ok {
		return types.Errorf(types.ErrUnsupportedNode, "unknown binary operator %q", n.Operator)
	}
	right, err := c.Subcompile(n.Right)
	if err != nil {
		return err
	}
	c.Raw("(").Raw(left).Raw(" ").Raw(op).Raw(" ").Raw(right).Raw(")")
	return nil
}

// compileMatches converts constant patterns at compile time; other
// patterns are converted by the runtime.
func (c *Compiler) compileMatches(left string, right types.Node) error {
	if constant, ok := right.(*types.ConstantNode); ok && !constant.IsIdentifier {
		if p, ok := constant.Value.(string); ok {
			re, err := pattern.Convert(p)
			if err != nil {
				return err
			}
			c.Raw("(").Raw(left).Raw(" matches ").Quote(re).Raw(")")
			return nil
		}
	}

	r, err := c.Subcompile(right)
	if err != nil {
		return err
	}
	c.Raw("(").Raw(left).Raw(" matches ").Raw(PatternFunction).Raw("(").Raw(r).Raw("))")
	return nil
}

func (c *Compiler) compileConditional(n *types.ConditionalNode) error {
	parts := make([]string, 3)
	for i, node := range []types.Node{n.Condition, n.Then, n.Else} {
		s, err := c.Subcompile(node)
		if err != nil {
			return err
		}
		parts[i] = s
	}
	c.Raw("((").Raw(parts[0]).Raw(") ? (").Raw(parts[1]).Raw(") : (").Raw(parts[2]).Raw("))")
	return nil
}

func (c *Compiler) compileGetAttr(n *types.GetAttrNode) error {
	object, err := c.Subcompile(n.Node)
	if err != nil {
		return err
	}

	switch n.Kind {
	case types.PropertyCall:
		name := identifierName(n.Attribute)
		c.Raw(object)
		if isIdentifier(name) {
			c.Raw(".").Raw(name)
		} else {
			c.Raw("[").Quote(name).Raw("]")
		}
		return nil

	case types.MethodCall:
		c.Raw(object).Raw(".").Raw(identifierName(n.Attribute)).Raw("(")
		if err := c.compileList(n.Arguments.Nodes); err != nil {
			return err
		}
		c.Raw(")")
		return nil

	case types.ArrayCall:
		index, err := c.Subcompile(n.Attribute)
		if err != nil {
			return err
		}
		c.Raw(object).Raw("[").Raw(index).Raw("]")
		return nil

	default:
		return types.Errorf(types.ErrUnsupportedNode, "unknown member access kind %d", int(n.Kind))
	}
}

func (c *Compiler) compileFunction(n *types.FunctionNode) error {
	fn, err := c.Function(n.Name)
	if err != nil {
		return err
	}
	args := make([]string, len(n.Arguments.Nodes))
	for i, arg := range n.Arguments.Nodes {
		s, err := c.Subcompile(arg)
		if err != nil {
			return err
		}
		args[i] = s
	}
	c.Raw(fn.Compiler(args...))
	return nil
}

func (c *Compiler) compileHash(n *types.HashNode) error {
	c.Raw("{")
	for i, entry := range n.Entries {
		if i > 0 {
			c.Raw(", ")
		}
		value, err := c.Subcompile(entry.Value)
		if err != nil {
			return err
		}
		c.Quote(entry.Key).Raw(": ").Raw(value)
	}
	c.Raw("}")
	return nil
}

func (c *Compiler) compileList(nodes []types.Node) error {
	for i, node := range nodes {
		if i > 0 {
			c.Raw(", ")
		}
		if err := c.Compile(node); err != nil {
			return err
		}
	}
	return nil
}

func identifierName(n types.Node) string {
	if constant, ok := n.(*types.ConstantNode); ok {
		if s, ok := constant.Value.(string); ok {
			return s
		}
	}
	return n.String()
}

// isIdentifier reports whether s can be written as a bare identifier.
func isIdentifier(s string) bool {
	if s == "" || keywords[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

func repr(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return types.FormatFloat(val)
	case float32:
		return types.FormatFloat(float64(val))
	case string:
		return strconv.Quote(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = repr(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ": " + repr(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("%q", fmt.Sprint(v))
}
