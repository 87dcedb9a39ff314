package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goel/pkg/pattern"
	"github.com/sandrolain/goel/pkg/types"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "/foo/", expected: "foo"},
		{input: "/^foo$/i", expected: "(?i)^foo$"},
		{input: "#a/b#", expected: "a/b"},
		{input: `/a\/b/`, expected: `a\/b`},
		{input: "{x+}ms", expected: "(?ms)x+"},
		{input: "/x/ii", expected: "(?i)x"},
		{input: "/x/A", expected: `\A(?:x)`},
		{input: "/x/u", expected: "x"},
		{input: "//", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := pattern.Convert(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestConvertErrors(t *testing.T) {
	for _, input := range []string{"", "foo", `\foo\`, "/foo", "/foo/x", " foo "} {
		t.Run(input, func(t *testing.T) {
			_, err := pattern.Convert(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrRuntime)
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		subject string
		match   bool
	}{
		{pattern: "/foo/", subject: "foo", match: true},
		{pattern: "/^foo/", subject: "barfoo", match: false},
		{pattern: "/FOO/i", subject: "xfoo", match: true},
		{pattern: "/x/A", subject: "yx", match: false},
		{pattern: "/x/A", subject: "xy", match: true},
		{pattern: "/^a.b$/s", subject: "a\nb", match: true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.subject, func(t *testing.T) {
			ok, err := pattern.Match(tt.pattern, tt.subject)
			require.NoError(t, err)
			assert.Equal(t, tt.match, ok)
		})
	}
}

func TestCompileMemoizes(t *testing.T) {
	a, err := pattern.Compile("/memo[0-9]+/")
	require.NoError(t, err)
	b, err := pattern.Compile("/memo[0-9]+/")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestCompileRejectsUnsupportedSyntax(t *testing.T) {
	_, err := pattern.Compile(`/(a)\1/`)
	require.Error(t, err)

	var e *types.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, types.ErrInvalidPattern, e.Code)
}
