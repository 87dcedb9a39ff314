package parser

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	TokenEOF         TokenType = iota // end of input
	TokenName                         // foo, true, null
	TokenNumber                       // 123, 3.14, 1e-10
	TokenString                       // "hello" or 'hello'
	TokenOperator                     // +, ==, not in, matches
	TokenPunctuation                  // ( ) [ ] { } . , ? :
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "end of expression"
	case TokenName:
		return "name"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenOperator:
		return "operator"
	case TokenPunctuation:
		return "punctuation"
	default:
		return "unknown"
	}
}

// Token represents a lexical token of an expression.
type Token struct {
	Type  TokenType // Type of the token
	Value string    // Literal value; numbers keep their source text
	// Cursor is the 1-based position of the token's first byte.
	Cursor int
}

// Test reports whether the token has the given type and, when value is
// supplied, the given value.
func (t Token) Test(tt TokenType, value ...string) bool {
	if t.Type != tt {
		return false
	}
	return len(value) == 0 || t.Value == value[0]
}

// Equal reports whether two tokens have the same type and value.
// The cursor is not compared.
func (t Token) Equal(other Token) bool {
	return t.Type == other.Type && t.Value == other.Value
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%3d %-11s %s", t.Cursor, t.Type, t.Value)
}

// wordOperators lists the alphabetic operators, longest first.
var wordOperators = [...]string{
	"starts with",
	"ends with",
	"contains",
	"matches",
	"not in",
	"and",
	"not",
	"or",
	"in",
}

// symbols2 lists the two-character operators.
var symbols2 = [...]string{"**", "..", "==", "!=", ">=", "<=", "||", "&&"}

// isSymbol1 reports whether r is a single-character operator.
func isSymbol1(r rune) bool {
	switch r {
	case '!', '<', '>', '+', '-', '~', '*', '/', '%':
		return true
	default:
		return false
	}
}

func isPunctuation(r rune) bool {
	switch r {
	case '.', ',', '?', ':':
		return true
	default:
		return false
	}
}

// closers maps opening brackets to their closing counterpart.
var closers = map[rune]rune{
	'(': ')',
	'[': ']',
	'{': '}',
}

func isCloser(r rune) bool {
	return r == ')' || r == ']' || r == '}'
}
