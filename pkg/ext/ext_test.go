package ext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goel"
	"github.com/sandrolain/goel/pkg/ext"
	"github.com/sandrolain/goel/pkg/ext/extstring"
	"github.com/sandrolain/goel/pkg/exprrun"
	"github.com/sandrolain/goel/pkg/parser"
	"github.com/sandrolain/goel/pkg/types"
)

func newLanguage(t *testing.T, opts ...goel.Option) *goel.ExpressionLanguage {
	t.Helper()
	el, err := goel.New(opts...)
	require.NoError(t, err)
	return el
}

func namesOf(values map[string]any) parser.Names {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	return parser.NewNames(names...)
}

// both evaluates expr directly and through the compiled source and
// requires the two results to match.
func both(t *testing.T, el *goel.ExpressionLanguage, expr string, values map[string]any) any {
	t.Helper()

	evaluated, err := el.Evaluate(expr, values)
	require.NoError(t, err, "Evaluate(%q)", expr)

	source, err := el.Compile(expr, namesOf(values))
	require.NoError(t, err, "Compile(%q)", expr)
	ran, err := exprrun.Run(source, values)
	require.NoError(t, err, "Run(%q)", source)

	assert.Equal(t, evaluated, ran, "compiled source: %s", source)
	return evaluated
}

// ── WithAll ────────────────────────────────────────────────────────────────

func TestWithAll_StringFunctions(t *testing.T) {
	el := newLanguage(t, ext.WithAll())
	values := map[string]any{"s": "  Hello World  ", "csv": "a,b,c"}

	tests := []struct {
		expr string
		want any
	}{
		{`lower("HeLLo")`, "hello"},
		{`upper("hello")`, "HELLO"},
		{`trim(s)`, "Hello World"},
		{`trim("xxhixx", "x")`, "hi"},
		{`trimPrefix("prefix-body", "prefix-")`, "body"},
		{`trimSuffix("body.go", ".go")`, "body"},
		{`replace("a-b-c", "-", "+")`, "a+b+c"},
		{`split(csv, ",")`, []string{"a", "b", "c"}},
		{`join(split(csv, ","), "|")`, "a|b|c"},
		{`join(["x", "y"])`, "xy"},
		{`repeat("ab", 3)`, "ababab"},
		{`indexOf("abcabc", "bc")`, 1},
		{`lastIndexOf("abcabc", "bc")`, 4},
		{`indexOf("abc", "z")`, -1},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, both(t, el, tt.expr, values))
		})
	}
}

func TestWithAll_NumericFunctions(t *testing.T) {
	el := newLanguage(t, ext.WithAll())
	values := map[string]any{"n": -3, "f": 2.5, "list": []any{4, 1.5, 9}}

	tests := []struct {
		expr string
		want any
	}{
		{"abs(n)", 3},
		{"abs(-f)", 2.5},
		{"floor(f)", 2.0},
		{"ceil(f)", 3.0},
		{"round(f)", 3.0},
		{"floor(n)", -3.0},
		{"min(3, n, 7)", -3},
		{"max(3, f)", 3},
		{"max(list)", 9},
		{"min(list)", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, both(t, el, tt.expr, values))
		})
	}
}

func TestWithAll_ArrayFunctions(t *testing.T) {
	el := newLanguage(t, ext.WithAll())
	values := map[string]any{
		"items": []any{1, 2, 3, 4, 5},
		"empty": []any{},
		"m":     map[string]any{"a": 1, "b": 2},
	}

	tests := []struct {
		expr string
		want any
	}{
		{"len(items)", 5},
		{`len("héllo")`, 5},
		{"len(m)", 2},
		{"first(items)", 1},
		{"last(items)", 5},
		{"first(empty)", nil},
		{"last(empty)", nil},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, both(t, el, tt.expr, values))
		})
	}
}

// ── Errors ──────────────────────────────────────────────────────────────────

func TestFunctionErrors(t *testing.T) {
	el := newLanguage(t, ext.WithAll())

	tests := []struct {
		expr string
		code types.ErrorCode
	}{
		{`lower(1)`, types.ErrInvalidOperand},
		{`lower("a", "b")`, types.ErrArgumentMismatch},
		{`trim()`, types.ErrArgumentMismatch},
		{`repeat("a", -1)`, types.ErrInvalidOperand},
		{`repeat("a", 1.5)`, types.ErrInvalidOperand},
		{`join([1])`, types.ErrInvalidOperand},
		{`abs("x")`, types.ErrInvalidOperand},
		{`max(1, "x")`, types.ErrInvalidOperand},
		{`len(1)`, types.ErrInvalidOperand},
		{`first(1)`, types.ErrNonArray},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := el.Evaluate(tt.expr, nil)
			require.Error(t, err)
			var e *types.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.code, e.Code)
		})
	}
}

// ── Categories ──────────────────────────────────────────────────────────────

func TestWithCategory(t *testing.T) {
	el := newLanguage(t, ext.WithString())
	assert.Contains(t, el.Functions(), "lower")
	assert.NotContains(t, el.Functions(), "abs")

	el = newLanguage(t, ext.WithNumeric(), ext.WithArray())
	assert.Contains(t, el.Functions(), "abs")
	assert.Contains(t, el.Functions(), "len")
	assert.NotContains(t, el.Functions(), "lower")
}

func TestSingleFunction(t *testing.T) {
	el := newLanguage(t, goel.WithFunctions(extstring.Upper()))
	assert.Equal(t, []string{"upper"}, el.Functions())

	result, err := el.Evaluate(`upper("x")`, nil)
	require.NoError(t, err)
	assert.Equal(t, "X", result)
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"array", "numeric", "string"}, ext.Names())

	p, err := ext.Lookup("numeric")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Functions())

	_, err = ext.Lookup("crypto")
	assert.Error(t, err)
}

func TestAllNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, fn := range ext.All() {
		assert.False(t, seen[fn.Name], "duplicate function %q", fn.Name)
		seen[fn.Name] = true
		assert.NotNil(t, fn.Compiler)
		assert.NotNil(t, fn.Evaluator)
	}
}
