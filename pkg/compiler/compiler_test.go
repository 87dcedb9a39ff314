package compiler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goel/pkg/compiler"
	"github.com/sandrolain/goel/pkg/functions"
	"github.com/sandrolain/goel/pkg/parser"
	"github.com/sandrolain/goel/pkg/types"
)

func testRegistry(t *testing.T) *functions.Registry {
	t.Helper()
	reg := functions.NewRegistry()
	err := reg.Register("identity",
		func(args ...string) string { return args[0] },
		func(_ map[string]any, args ...any) (any, error) { return args[0], nil },
	)
	require.NoError(t, err)
	err = reg.Register("pair",
		func(args ...string) string { return "[" + strings.Join(args, ", ") + "]" },
		func(_ map[string]any, args ...any) (any, error) { return args, nil },
	)
	require.NoError(t, err)
	return reg
}

func compileSource(t *testing.T, source string, names ...string) string {
	t.Helper()
	expr, err := parser.Parse(source, parser.NewNames(names...))
	require.NoError(t, err)
	out, err := compiler.Compile(expr.Nodes(), testRegistry(t))
	require.NoError(t, err)
	return out
}

func TestCompile(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "null", expected: "nil"},
		{input: "true", expected: "true"},
		{input: "FALSE", expected: "false"},
		{input: "3", expected: "3"},
		{input: "1.5", expected: "1.5"},
		{input: "2.0", expected: "2.0"},
		{input: `"a\"b"`, expected: `"a\"b"`},
		{input: "a", expected: "a"},
		{input: "-a", expected: "(-a)"},
		{input: "not a", expected: "(!a)"},
		{input: "!a", expected: "(!a)"},
		{input: "(3 - 3) * 2", expected: "((3 - 3) * 2)"},
		{input: "a and b or c", expected: "((a && b) || c)"},
		{input: "a && b", expected: "(a && b)"},
		{input: "a ~ b", expected: `(string(a ?? "") + string(b ?? ""))`},
		{input: `null ~ "x" ~ 1`, expected: `(("" + string("x")) + string(1))`},
		{input: "a ** 2", expected: "(a ** 2)"},
		{input: "1..3", expected: "(1 .. 3)"},
		{input: "a in [1, 2]", expected: "(a in [1, 2])"},
		{input: "a not in b", expected: "(a not in b)"},
		{input: `a starts with "x"`, expected: `(a startsWith "x")`},
		{input: `a ends with "x"`, expected: `(a endsWith "x")`},
		{input: `a contains "x"`, expected: `(a contains "x")`},
		{input: `a matches "/^x/i"`, expected: `(a matches "(?i)^x")`},
		{input: "a matches b", expected: "(a matches pcre(b))"},
		{input: "a ? b : c", expected: "((a) ? (b) : (c))"},
		{input: "a ? b", expected: "((a) ? (b) : (nil))"},
		{input: "a ?: b", expected: "((a) ? (a) : (b))"},
		{input: "a.b", expected: "a.b"},
		{input: "a.b(1, c)", expected: "a.b(1, c)"},
		{input: "a[0]", expected: "a[0]"},
		{input: `a["k"]`, expected: `a["k"]`},
		{input: "a.b.c[1 + 1]", expected: "a.b.c[(1 + 1)]"},
		{input: "[1, a, [true]]", expected: "[1, a, [true]]"},
		{input: "[]", expected: "[]"},
		{input: `{"a": 1, b: c, 2: 3}`, expected: `{"a": 1, "b": c, "2": 3}`},
		{input: "{}", expected: "{}"},
		{input: "identity(a)", expected: "a"},
		{input: "pair(1, a + 1)", expected: "[1, (a + 1)]"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, compileSource(t, tt.input, "a", "b", "c"))
		})
	}
}

func TestCompileReservedNames(t *testing.T) {
	node := types.NewBinary("+", types.NewName("nil"), types.NewName("let"))
	out, err := compiler.Compile(node, nil)
	require.NoError(t, err)
	assert.Equal(t, `($env["nil"] + $env["let"])`, out)
}

func TestCompileReservedProperty(t *testing.T) {
	node := types.NewGetAttr(types.NewName("a"), types.NewIdentifier("in"), nil, types.PropertyCall)
	out, err := compiler.Compile(node, nil)
	require.NoError(t, err)
	assert.Equal(t, `a["in"]`, out)
}

func TestCompileUndefinedFunction(t *testing.T) {
	node := types.NewFunction("nope", types.NewArguments(types.NewConstant(1)))
	_, err := compiler.Compile(node, functions.NewRegistry())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	assert.Contains(t, err.Error(), `The function "nope" does not exist`)
}

func TestCompileInvalidPattern(t *testing.T) {
	_, err := compiler.Compile(types.NewBinary("matches", types.NewName("a"), types.NewConstant("nodelim")), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrRuntime)
}

func TestCompileUnsupportedConstant(t *testing.T) {
	_, err := compiler.Compile(types.NewConstant(struct{}{}), nil)
	require.Error(t, err)

	var e *types.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, types.ErrUnsupportedNode, e.Code)
}

func TestCompilerBuffer(t *testing.T) {
	c := compiler.New(nil)
	c.Raw("a").Raw(" == ").Quote("x\ny")
	assert.Equal(t, `a == "x\ny"`, c.Source())

	sub, err := c.Subcompile(types.NewConstant(1.25))
	require.NoError(t, err)
	assert.Equal(t, "1.25", sub)
	assert.Equal(t, `a == "x\ny"`, c.Source(), "subcompile leaves the buffer untouched")

	c.Reset()
	assert.Empty(t, c.Source())

	c.Repr([]any{1, "a", nil}).Raw(" ").Repr(map[string]any{"b": 2.0, "a": true})
	assert.Equal(t, `[1, "a", nil] {"a": true, "b": 2.0}`, c.Source())
}

func TestCompilerFunction(t *testing.T) {
	c := compiler.New(testRegistry(t))
	fn, err := c.Function("identity")
	require.NoError(t, err)
	assert.Equal(t, "x", fn.Compiler("x"))

	_, err = c.Function("missing")
	assert.Error(t, err)
}
