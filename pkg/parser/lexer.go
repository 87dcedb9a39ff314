package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/goel/pkg/types"
)

const eof = -1

// Lexer converts an expression into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input    string    // Input string being scanned
	length   int       // Length of input string
	start    int       // Start position of current token
	current  int       // Current position in input
	width    int       // Width of last rune read
	brackets []bracket // Open brackets, innermost last
	tokens   []Token
}

type bracket struct {
	r      rune
	cursor int
}

// NewLexer creates a new lexer for the provided input string.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Tokenize scans source and returns the resulting token stream.
//
// The stream always ends with a TokenEOF token whose cursor is
// len(source)+1. Unknown characters and unbalanced brackets are reported
// as *types.SyntaxError.
func Tokenize(source string) (*TokenStream, error) {
	l := NewLexer(source)
	tokens, err := l.Tokens()
	if err != nil {
		return nil, err
	}
	return NewTokenStream(tokens, source), nil
}

// Tokens scans the whole input and returns its tokens.
func (l *Lexer) Tokens() ([]Token, error) {
	for {
		l.skipWhitespace()

		ch := l.nextRune()
		if ch == eof {
			break
		}

		var err error
		switch {
		case isDigit(ch):
			l.backup()
			l.scanNumber()
		case closers[ch] != 0:
			l.brackets = append(l.brackets, bracket{r: ch, cursor: l.start + 1})
			l.emit(TokenPunctuation)
		case isCloser(ch):
			err = l.closeBracket(ch)
		case ch == '"' || ch == '\'':
			err = l.scanString(ch)
		default:
			l.backup()
			err = l.scanSymbolOrName()
		}
		if err != nil {
			return nil, err
		}
	}

	if n := len(l.brackets); n > 0 {
		open := l.brackets[n-1]
		return nil, l.errorAt(types.ErrUnclosedBracket, fmt.Sprintf("Unclosed %q", string(open.r)), open.cursor)
	}

	l.tokens = append(l.tokens, Token{Type: TokenEOF, Cursor: l.length + 1})
	return l.tokens, nil
}

func (l *Lexer) closeBracket(ch rune) error {
	n := len(l.brackets)
	if n == 0 {
		return l.errorAt(types.ErrUnexpectedBracket, fmt.Sprintf("Unexpected %q", string(ch)), l.start+1)
	}
	open := l.brackets[n-1]
	if closers[open.r] != ch {
		return l.errorAt(types.ErrUnclosedBracket, fmt.Sprintf("Unclosed %q", string(open.r)), open.cursor)
	}
	l.brackets = l.brackets[:n-1]
	l.emit(TokenPunctuation)
	return nil
}

// scanSymbolOrName reads an operator, a punctuation mark or a name.
// Operators take priority, longest match first.
func (l *Lexer) scanSymbolOrName() error {
	if op, n := l.matchWordOperator(); n > 0 {
		l.current += n
		t := l.newToken(TokenOperator)
		t.Value = op
		l.tokens = append(l.tokens, t)
		return nil
	}

	rest := l.input[l.current:]
	for _, op := range symbols2 {
		if strings.HasPrefix(rest, op) {
			l.current += len(op)
			l.emit(TokenOperator)
			return nil
		}
	}

	ch := l.nextRune()
	switch {
	case isSymbol1(ch):
		l.emit(TokenOperator)
	case isPunctuation(ch):
		l.emit(TokenPunctuation)
	case isNameStart(ch):
		l.acceptAll(isNameChar)
		l.emit(TokenName)
	default:
		return l.errorAt(types.ErrUnexpectedCharacter, fmt.Sprintf("Unexpected character %q", string(ch)), l.start+1)
	}
	return nil
}

// matchWordOperator returns the alphabetic operator starting at the
// current position and the number of bytes it spans. Word operators must
// be preceded by the start of input, whitespace or "(" and followed by
// whitespace or "(". Runs of whitespace inside "not in", "starts with"
// and "ends with" are accepted and normalized to a single space.
func (l *Lexer) matchWordOperator() (string, int) {
	if l.current > 0 {
		if prev := l.input[l.current-1]; prev != '(' && !isWhitespace(rune(prev)) {
			return "", 0
		}
	}

	rest := l.input[l.current:]
	for _, op := range wordOperators {
		head, tail, compound := strings.Cut(op, " ")
		if !strings.HasPrefix(rest, head) {
			continue
		}
		n := len(head)
		if compound {
			ws := n
			for n < len(rest) && isWhitespace(rune(rest[n])) {
				n++
			}
			if n == ws || !strings.HasPrefix(rest[n:], tail) {
				continue
			}
			n += len(tail)
		}
		if n < len(rest) && (rest[n] == '(' || isWhitespace(rune(rest[n]))) {
			return op, n
		}
	}
	return "", 0
}

// scanString reads a string literal. The opening quote has already been
// consumed; the token value holds the unescaped content without quotes.
func (l *Lexer) scanString(quote rune) error {
	cursor := l.start + 1
	l.ignore()
	for {
		switch l.nextRune() {
		case quote:
			l.backup()
			raw := l.input[l.start:l.current]
			l.acceptRune(quote)
			l.tokens = append(l.tokens, Token{Type: TokenString, Value: unescape(raw), Cursor: cursor})
			l.ignore()
			return nil
		case '\\':
			if l.nextRune() != eof {
				break
			}
			fallthrough
		case eof:
			return l.errorAt(types.ErrUnexpectedCharacter, fmt.Sprintf("Unexpected character %q", string(quote)), cursor)
		}
	}
}

// scanNumber reads a number literal. Underscores are accepted between
// digits and removed from the token value.
// Format: [0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (l *Lexer) scanNumber() {
	end := l.digitsFrom(l.current)

	// Decimal part. "1..5" is a range, so the dot must be followed by digits.
	if end < l.length && l.input[end] == '.' {
		if e := l.digitsFrom(end + 1); e > end+1 {
			end = e
		}
	}

	// Exponent part
	if end < l.length && (l.input[end] == 'e' || l.input[end] == 'E') {
		p := end + 1
		if p < l.length && (l.input[p] == '+' || l.input[p] == '-') {
			p++
		}
		if e := l.digitsFrom(p); e > p {
			end = e
		}
	}

	l.current = end
	t := l.newToken(TokenNumber)
	t.Value = strings.ReplaceAll(t.Value, "_", "")
	l.tokens = append(l.tokens, t)
}

// digitsFrom returns the end of the digit run starting at i, or i when
// there is none.
func (l *Lexer) digitsFrom(i int) int {
	if i >= l.length || !isDigit(rune(l.input[i])) {
		return i
	}
	for i < l.length {
		switch c := l.input[i]; {
		case isDigit(rune(c)):
			i++
		case c == '_' && i+1 < l.length && isDigit(rune(l.input[i+1])):
			i++
		default:
			return i
		}
	}
	return i
}

// unescape resolves backslash escapes the way C string literals do:
// \n \t \r \v \f \a \b \e, \xHH and octal \NNN. Any other escaped
// character stands for itself.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch c = s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'v':
			b.WriteByte('\v')
		case 'f':
			b.WriteByte('\f')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'e':
			b.WriteByte(0x1b)
		case 'x':
			var v, n int
			for n < 2 && i+1 < len(s) && isHex(s[i+1]) {
				i++
				v = v*16 + hexValue(s[i])
				n++
			}
			if n == 0 {
				b.WriteByte('x')
			} else {
				b.WriteByte(byte(v))
			}
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := int(c - '0')
			for n := 1; n < 3 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; n++ {
				i++
				v = v*8 + int(s[i]-'0')
			}
			b.WriteByte(byte(v))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Helper methods

func (l *Lexer) emit(tt TokenType) {
	l.tokens = append(l.tokens, l.newToken(tt))
}

func (l *Lexer) errorAt(code types.ErrorCode, message string, cursor int) error {
	return types.NewSyntaxError(code, message, cursor, l.input)
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:   tt,
		Value:  l.input[l.start:l.current],
		Cursor: l.start + 1,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHex(c byte) bool {
	return isDigit(rune(c)) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) int {
	switch {
	case c >= 'a':
		return int(c-'a') + 10
	case c >= 'A':
		return int(c-'A') + 10
	default:
		return int(c - '0')
	}
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= 0x80
}

func isNameChar(r rune) bool {
	return isNameStart(r) || isDigit(r)
}

// IsIdentifier reports whether s is a valid bare name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !isNameStart(r) || i > 0 && !isNameChar(r) {
			return false
		}
	}
	return true
}
