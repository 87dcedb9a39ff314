package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/sandrolain/goel/pkg/types"
)

// TokenStream is a cursor over the tokens of a single expression.
//
// A TokenStream is owned by one parse and must not be shared between
// goroutines. Splice returns an independent stream.
type TokenStream struct {
	tokens     []Token
	position   int
	expression string
}

// NewTokenStream creates a stream positioned on the first token.
// A terminal TokenEOF is appended when tokens does not end with one.
func NewTokenStream(tokens []Token, expression string) *TokenStream {
	if n := len(tokens); n == 0 || tokens[n-1].Type != TokenEOF {
		tokens = append(tokens, Token{Type: TokenEOF, Cursor: len(expression) + 1})
	}
	return &TokenStream{
		tokens:     tokens,
		expression: expression,
	}
}

// Current returns the token at the cursor.
func (s *TokenStream) Current() Token {
	return s.tokens[s.position]
}

// Next advances to the next token. It fails when the stream is already
// positioned on the end of the expression.
func (s *TokenStream) Next() error {
	if s.position+1 >= len(s.tokens) {
		return s.syntaxError(types.ErrUnexpectedEnd, "Unexpected end of expression", s.Current().Cursor)
	}
	s.position++
	return nil
}

// Prev moves back to the previous token.
func (s *TokenStream) Prev() error {
	if s.position == 0 {
		return s.syntaxError(types.ErrUnexpectedToken, "Unexpected start of expression", s.Current().Cursor)
	}
	s.position--
	return nil
}

// Position returns the 0-based index of the current token.
func (s *TokenStream) Position() int {
	return s.position
}

// Seek moves the cursor the way io.Seeker does: relative to the first
// token, the current token or the last token (the EOF).
func (s *TokenStream) Seek(offset int, whence int) error {
	var base int
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = s.position
	case io.SeekEnd:
		base = len(s.tokens) - 1
	default:
		return fmt.Errorf("invalid whence %d", whence)
	}

	pos := base + offset
	if pos < 0 || pos >= len(s.tokens) {
		return fmt.Errorf("seek position %d out of range [0, %d]", pos, len(s.tokens)-1)
	}
	s.position = pos
	return nil
}

// Expect asserts that the current token has the given type and, when value
// is not empty, the given value. On success the stream advances past it.
// The optional message prefixes the error text.
func (s *TokenStream) Expect(tt TokenType, value string, message ...string) error {
	token := s.Current()
	if !s.matches(token, tt, value) {
		return s.unexpected(token, tt, value, message)
	}
	if token.Type == TokenEOF {
		return nil
	}
	return s.Next()
}

// ExpectPrev asserts the token before the current one, then moves the
// cursor back to it.
func (s *TokenStream) ExpectPrev(tt TokenType, value string, message ...string) error {
	if s.position == 0 {
		return s.syntaxError(types.ErrUnexpectedToken, "Unexpected start of expression", s.Current().Cursor)
	}
	token := s.tokens[s.position-1]
	if !s.matches(token, tt, value) {
		return s.unexpected(token, tt, value, message)
	}
	s.position--
	return nil
}

// IsEOF reports whether the current token is the end of the expression.
func (s *TokenStream) IsEOF() bool {
	return s.Current().Type == TokenEOF
}

// Splice returns a new stream whose tokens are
// tokens[:start] + replacement + tokens[start+length:], positioned at start.
// The receiver is left untouched.
func (s *TokenStream) Splice(start, length int, replacement ...Token) (*TokenStream, error) {
	if start < 0 || length < 0 || start+length > len(s.tokens) {
		return nil, fmt.Errorf("splice [%d:%d] out of range for %d tokens", start, start+length, len(s.tokens))
	}

	tokens := make([]Token, 0, len(s.tokens)-length+len(replacement))
	tokens = append(tokens, s.tokens[:start]...)
	tokens = append(tokens, replacement...)
	tokens = append(tokens, s.tokens[start+length:]...)

	out := NewTokenStream(tokens, s.expression)
	if start >= len(out.tokens) {
		start = len(out.tokens) - 1
	}
	out.position = start
	return out, nil
}

// Tokens returns a copy of the tokens.
func (s *TokenStream) Tokens() []Token {
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Expression returns the source the tokens were produced from.
func (s *TokenStream) Expression() string {
	return s.expression
}

// String returns one token per line, marking the current one.
func (s *TokenStream) String() string {
	var b strings.Builder
	for i, t := range s.tokens {
		if i == s.position {
			b.WriteString("> ")
		} else {
			b.WriteString("  ")
		}
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (s *TokenStream) matches(token Token, tt TokenType, value string) bool {
	if value == "" {
		return token.Test(tt)
	}
	return token.Test(tt, value)
}

func (s *TokenStream) unexpected(token Token, tt TokenType, value string, message []string) error {
	var b strings.Builder
	if len(message) > 0 && message[0] != "" {
		b.WriteString(message[0])
		b.WriteString(". ")
	}
	fmt.Fprintf(&b, "Unexpected token %q of value %q (%q expected", token.Type.String(), token.Value, tt.String())
	if value != "" {
		fmt.Fprintf(&b, " with value %q", value)
	}
	b.WriteByte(')')

	code := types.ErrUnexpectedToken
	if token.Type == TokenEOF {
		code = types.ErrUnexpectedEnd
	}
	return s.syntaxError(code, b.String(), token.Cursor)
}

func (s *TokenStream) syntaxError(code types.ErrorCode, message string, cursor int) error {
	return types.NewSyntaxError(code, message, cursor, s.expression)
}
