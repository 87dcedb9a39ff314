// Package pattern converts PCRE-style delimited regular expressions such as
// "/^foo/i" into RE2 syntax and compiles them.
//
// The delimiter is the first character of the pattern. Bracket delimiters
// close with their counterpart: "{foo}i", "(foo)", "[foo]", "<foo>".
// Supported modifiers are i, m, s and U (mapped to RE2 flags), u and D
// (implied by RE2) and A (anchors the match at the start of the subject).
// Patterns using features RE2 lacks, such as backreferences or lookaround,
// fail to compile.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sandrolain/goel/pkg/cache"
	"github.com/sandrolain/goel/pkg/types"
)

var pairs = map[rune]rune{
	'(': ')',
	'[': ']',
	'{': '}',
	'<': '>',
}

// compiled memoizes compiled patterns by their delimited source.
var compiled = cache.NewLRU[*regexp.Regexp](512)

// Convert returns the RE2 equivalent of a delimited pattern.
func Convert(pattern string) (string, error) {
	open, width := utf8.DecodeRuneInString(pattern)
	if width == 0 || open == '\\' || unicode.IsLetter(open) || unicode.IsDigit(open) || unicode.IsSpace(open) {
		return "", invalid(pattern, "delimiter must not be alphanumeric, backslash or whitespace")
	}

	closing := open
	if c, ok := pairs[open]; ok {
		closing = c
	}
	end := strings.LastIndex(pattern, string(closing))
	if end < width {
		return "", invalid(pattern, fmt.Sprintf("no ending delimiter %q found", string(closing)))
	}

	body := pattern[width:end]
	modifiers := pattern[end+utf8.RuneLen(closing):]

	var flags strings.Builder
	var anchored bool
	for _, m := range modifiers {
		switch m {
		case 'i', 'm', 's', 'U':
			if !strings.ContainsRune(flags.String(), m) {
				flags.WriteRune(m)
			}
		case 'u', 'D':
		case 'A':
			anchored = true
		case '\n', ' ', '\r':
		default:
			return "", invalid(pattern, fmt.Sprintf("unknown modifier %q", string(m)))
		}
	}

	var b strings.Builder
	if flags.Len() > 0 {
		b.WriteString("(?")
		b.WriteString(flags.String())
		b.WriteString(")")
	}
	if anchored {
		b.WriteString(`\A(?:`)
		b.WriteString(body)
		b.WriteString(")")
	} else {
		b.WriteString(body)
	}
	return b.String(), nil
}

// Compile converts and compiles a delimited pattern.
// Results are memoized.
func Compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := compiled.Get(pattern); ok {
		return re, nil
	}

	source, err := Convert(pattern)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, invalid(pattern, "cannot compile").WithCause(err)
	}
	compiled.Set(pattern, re)
	return re, nil
}

// Match reports whether subject matches the delimited pattern.
func Match(pattern, subject string) (bool, error) {
	re, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(subject), nil
}

func invalid(pattern, reason string) *types.Error {
	return types.Errorf(types.ErrInvalidPattern, "invalid regular expression %q: %s", pattern, reason)
}
