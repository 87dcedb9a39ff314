package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a goel error code.
type ErrorCode string

// Error codes. The leading letter gives the class of the error:
// S for syntax, T for operand types, D for evaluation, U for unknown
// callables and C for the serialization codec.
const (
	// S0xxx: Lexer/Parser errors
	ErrUnexpectedCharacter ErrorCode = "S0101"
	ErrUnclosedBracket     ErrorCode = "S0102"
	ErrUnexpectedBracket   ErrorCode = "S0103"
	ErrUnexpectedToken     ErrorCode = "S0201"
	ErrUnexpectedEnd       ErrorCode = "S0202"
	ErrInvalidVariable     ErrorCode = "S0203"
	ErrExpectedName        ErrorCode = "S0204"
	ErrNestingTooDeep      ErrorCode = "S0205"
	ErrInvalidNumber       ErrorCode = "S0206"

	// T0xxx: Type errors
	ErrInvalidOperand   ErrorCode = "T1001"
	ErrNonObject        ErrorCode = "T1002"
	ErrNonArray         ErrorCode = "T1003"
	ErrUnknownProperty  ErrorCode = "T1004"
	ErrUnknownMethod    ErrorCode = "T1005"
	ErrArgumentMismatch ErrorCode = "T1006"
	ErrUnsupportedNode  ErrorCode = "T1007"

	// D0xxx: Evaluation errors
	ErrDivisionByZero    ErrorCode = "D1001"
	ErrIndexOutOfRange   ErrorCode = "D1002"
	ErrInvalidPattern    ErrorCode = "D1003"
	ErrUndefinedVariable ErrorCode = "D1004"
	ErrStackOverflow     ErrorCode = "D1005"

	// U0xxx: Unknown callables and invalid registrations
	ErrUndefinedFunction ErrorCode = "U1001"
	ErrInvalidFunction   ErrorCode = "U1002"
	ErrExpressionTooLong ErrorCode = "U1003"

	// C0xxx: Codec errors
	ErrUnsupportedVersion ErrorCode = "C0101"
	ErrUnknownNodeKind    ErrorCode = "C0102"
	ErrMalformedPayload   ErrorCode = "C0103"
)

// Sentinel errors matched by errors.Is against *Error values.
var (
	// ErrInvalidArgument is the class of errors raised for well-formed
	// expressions that reference something the engine cannot provide,
	// such as an unregistered function.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRuntime is the class of errors raised while evaluating a tree.
	ErrRuntime = errors.New("runtime error")
	// ErrCodec is the class of serialization errors.
	ErrCodec = errors.New("codec error")
)

// Error represents a structured goel error that is not a syntax error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewError creates a new goel error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new goel error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for the class of e.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidArgument:
		return strings.HasPrefix(string(e.Code), "U")
	case ErrRuntime:
		return strings.HasPrefix(string(e.Code), "T") || strings.HasPrefix(string(e.Code), "D")
	case ErrCodec:
		return strings.HasPrefix(string(e.Code), "C")
	}
	return false
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// UndefinedFunction returns the error raised when a call references a
// function that is not registered.
func UndefinedFunction(name string) *Error {
	return Errorf(ErrUndefinedFunction, "The function %q does not exist", name)
}

// SyntaxError is raised by the lexer and the parser. It always carries
// the cursor of the offending token and, when known, the expression source.
type SyntaxError struct {
	Code       ErrorCode
	Message    string
	Cursor     int
	Expression string

	// Subject and Proposals feed the "Did you mean" hint.
	Subject   string
	Proposals []string
}

// NewSyntaxError creates a syntax error at the given 1-based cursor.
func NewSyntaxError(code ErrorCode, message string, cursor int, expression string) *SyntaxError {
	return &SyntaxError{
		Code:       code,
		Message:    message,
		Cursor:     cursor,
		Expression: expression,
	}
}

// WithProposals attaches the candidates used to suggest a correction for subject.
func (e *SyntaxError) WithProposals(subject string, proposals []string) *SyntaxError {
	e.Subject = subject
	e.Proposals = proposals
	return e
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s around position %d", e.Message, e.Cursor)
	if e.Expression != "" {
		fmt.Fprintf(&b, " for expression `%s`", e.Expression)
	}
	b.WriteByte('.')

	if guess, ok := e.suggestion(); ok {
		fmt.Fprintf(&b, " Did you mean %q?", guess)
	}
	return b.String()
}

// suggestion returns the closest proposal when it is within distance 2.
func (e *SyntaxError) suggestion() (string, bool) {
	if e.Subject == "" || len(e.Proposals) == 0 {
		return "", false
	}
	best, bestScore := "", -1
	for _, p := range e.Proposals {
		d := levenshtein(e.Subject, p)
		if bestScore < 0 || d < bestScore {
			best, bestScore = p, d
		}
	}
	return best, bestScore >= 0 && bestScore < 3
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
