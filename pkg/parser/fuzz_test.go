package parser_test

import (
	"testing"

	"github.com/sandrolain/goel/pkg/parser"
)

var fuzzSeeds = []string{
	`user.isAdmin() and request.method == 'GET'`,
	`(3 + 5) ~ foo("bar").baz[4]`,
	`a not in [1, 2, 3] ? "x" : {k: 1}`,
	`"foo" matches "/^f/i"`,
	`1..10`,
	`not (a || b) && c`,
	``,
	`(`,
	`foo(`,
	`'unterminated`,
	`a.`,
}

func FuzzTokenize(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		stream, err := parser.Tokenize(input)
		if err != nil {
			return
		}
		tokens := stream.Tokens()
		last := tokens[len(tokens)-1]
		if last.Type != parser.TokenEOF || last.Cursor != len(input)+1 {
			t.Fatalf("stream for %q does not end with EOF at %d: %v", input, len(input)+1, last)
		}
	})
}

func FuzzParse(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}
	p := parser.New(parser.WithIgnoreUnknownVariables())
	f.Fuzz(func(t *testing.T, input string) {
		stream, err := parser.Tokenize(input)
		if err != nil {
			return
		}
		_, _ = p.Parse(stream, parser.Names{})
	})
}
