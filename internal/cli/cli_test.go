package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goel/pkg/types"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func assertSyntaxError(t *testing.T, err error) {
	t.Helper()
	var se *types.SyntaxError
	assert.ErrorAs(t, err, &se)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEvaluateCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "arithmetic",
			args:     []string{"evaluate", "a + b * 2", "--set", "a=1", "--set", "b=3"},
			expected: "7\n",
		},
		{
			name:     "string concatenation",
			args:     []string{"eval", `name ~ "!"`, "-s", "name=hi"},
			expected: "hi!\n",
		},
		{
			name:     "quoted scalar stays a string",
			args:     []string{"evaluate", `n ~ n`, "--set", "n='3'"},
			expected: "\"33\"\n",
		},
		{
			name:     "list result",
			args:     []string{"evaluate", "1..3"},
			expected: "- 1\n- 2\n- 3\n",
		},
		{
			name:     "boolean",
			args:     []string{"evaluate", `"a" in ["a", "b"] and not false`},
			expected: "true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestEvaluateVariablesFile(t *testing.T) {
	vars := writeFile(t, "vars.yaml", "user:\n  name: Ada\n  tags: [x, y]\nlimit: 2\n")

	out, _, err := execute(t, "evaluate", `user.name ~ " " ~ user.tags[limit - 1]`, "--vars", vars)
	require.NoError(t, err)
	assert.Equal(t, "Ada y\n", out)

	// assignments override the file
	out, _, err = execute(t, "evaluate", "limit", "--vars", vars, "--set", "limit=5")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestEvaluateErrors(t *testing.T) {
	_, _, err := execute(t, "evaluate", "a +", "--set", "a=1")
	assertSyntaxError(t, err)

	_, _, err = execute(t, "evaluate", "missing")
	assertSyntaxError(t, err)

	_, _, err = execute(t, "evaluate", "1 % 0")
	assert.ErrorIs(t, err, types.ErrRuntime)

	_, _, err = execute(t, "evaluate", "x", "--set", "novalue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected name=value")

	_, _, err = execute(t, "evaluate", "  ")
	assert.ErrorIs(t, err, errNoExpression)

	_, _, err = execute(t, "evaluate")
	assert.Error(t, err)

	_, _, err = execute(t, "evaluate", "1", "--vars", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read variables")
}

func TestCompileCommand(t *testing.T) {
	out, _, err := execute(t, "compile", `a and not b`, "--names", "a,b")
	require.NoError(t, err)
	assert.Equal(t, "(a && (!b))\n", out)

	out, _, err = execute(t, "compile", `x ~ "px"`, "--set", "x=10")
	require.NoError(t, err)
	assert.Equal(t, "(string(x ?? \"\") + string(\"px\"))\n", out)

	out, _, err = execute(t, "compile", `x * 2 + 1`, "--set", "x=10", "--run")
	require.NoError(t, err)
	assert.Equal(t, "21\n", out)

	_, _, err = execute(t, "compile", "x")
	assertSyntaxError(t, err)
}

func TestParseCommand(t *testing.T) {
	out, _, err := execute(t, "parse", "a + b * 2", "--names", "a,b")
	require.NoError(t, err)
	assert.Equal(t, "(a + (b * 2))\n", out)

	out, _, err = execute(t, "parse", "a.b", "-n", "a", "--json")
	require.NoError(t, err)

	var parsed types.ParsedExpression
	require.NoError(t, parsed.UnmarshalBinary([]byte(strings.TrimSpace(out))))
	assert.Equal(t, "a.b", parsed.Source())
}

func TestLintCommand(t *testing.T) {
	out, _, err := execute(t, "lint", "anything + goes")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	_, _, err = execute(t, "lint", "anything + goes", "--names", "anything")
	assertSyntaxError(t, err)

	_, _, err = execute(t, "lint", "(1")
	assertSyntaxError(t, err)
}

func TestTokensCommand(t *testing.T) {
	out, _, err := execute(t, "tokens", `a not in [1]`)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "operator")
	assert.Contains(t, lines[1], "not in")
	assert.Contains(t, lines[5], "end of expression")
}

func TestFunctionsCommand(t *testing.T) {
	out, _, err := execute(t, "functions")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, _, err = execute(t, "functions", "--extensions", "string")
	require.NoError(t, err)
	assert.Contains(t, out, "lower\n")
	assert.NotContains(t, out, "floor\n")

	_, _, err = execute(t, "functions", "--extensions", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extension")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "goel "))
}

func TestConfigFile(t *testing.T) {
	config := writeFile(t, "goel.yaml", `
log:
  format: json
  level: debug
extensions: [numeric]
max_expression_length: 10
`)

	out, stderr, err := execute(t, "--config", config, "evaluate", "abs(-2)")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
	assert.Contains(t, stderr, `"msg":"expression cache miss"`)

	_, _, err = execute(t, "--config", config, "evaluate", "1 + 2 + 3 + 4")
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	// flags take precedence over the file
	_, _, err = execute(t, "--config", config, "--max-expression-length=-1", "evaluate", "1 + 2 + 3 + 4")
	assert.NoError(t, err)
}

func TestConfigErrors(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	_, _, err = execute(t, "--log-format", "xml", "version")
	assert.Error(t, err)

	_, _, err = execute(t, "--log-level", "loud", "version")
	assert.Error(t, err)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("GOEL_EXTENSIONS", "array")

	out, _, err := execute(t, "evaluate", "first([4, 5])")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)
}

func TestUnreachableRedisDegrades(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a closed port")
	}
	out, stderr, err := execute(t, "--redis-addr", "127.0.0.1:1", "evaluate", "2 * 21")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
	assert.Contains(t, stderr, "expression cache fetch failed")
}

func TestLoadValues(t *testing.T) {
	values, err := loadValues("", []string{"a=1", "b=x", "c=[1, 2]", "d=", "e=a=b"})
	require.NoError(t, err)
	assert.Equal(t, 1, values["a"])
	assert.Equal(t, "x", values["b"])
	assert.Equal(t, []any{1, 2}, values["c"])
	assert.Nil(t, values["d"])
	assert.Equal(t, "a=b", values["e"])

	empty := writeFile(t, "empty.yaml", "")
	values, err = loadValues(empty, nil)
	require.NoError(t, err)
	assert.NotNil(t, values)

	bad := writeFile(t, "bad.yaml", "- not\n- a map\n")
	_, err = loadValues(bad, nil)
	assert.Error(t, err)
}
