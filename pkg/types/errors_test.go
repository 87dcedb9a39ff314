package types_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandrolain/goel/pkg/types"
)

func TestSyntaxErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *types.SyntaxError
		expected string
	}{
		{
			name:     "with expression",
			err:      types.NewSyntaxError(types.ErrInvalidVariable, `Variable "foo" is not valid`, 1, "foo"),
			expected: "Variable \"foo\" is not valid around position 1 for expression `foo`.",
		},
		{
			name:     "without expression",
			err:      types.NewSyntaxError(types.ErrUnexpectedEnd, "Unexpected end of expression", 1, ""),
			expected: "Unexpected end of expression around position 1.",
		},
		{
			name: "close proposal",
			err: types.NewSyntaxError(types.ErrInvalidVariable, `Variable "usr" is not valid`, 1, "usr").
				WithProposals("usr", []string{"request", "user"}),
			expected: "Variable \"usr\" is not valid around position 1 for expression `usr`. Did you mean \"user\"?",
		},
		{
			name: "distant proposals",
			err: types.NewSyntaxError(types.ErrInvalidVariable, `Variable "foo" is not valid`, 1, "foo").
				WithProposals("foo", []string{"0", "barbaz"}),
			expected: "Variable \"foo\" is not valid around position 1 for expression `foo`.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorClasses(t *testing.T) {
	undefined := types.UndefinedFunction("nope")
	assert.Equal(t, `U1001: The function "nope" does not exist`, undefined.Error())
	assert.ErrorIs(t, undefined, types.ErrInvalidArgument)
	assert.NotErrorIs(t, undefined, types.ErrRuntime)

	div := types.NewError(types.ErrDivisionByZero, "Division by zero")
	assert.ErrorIs(t, div, types.ErrRuntime)
	assert.NotErrorIs(t, div, types.ErrCodec)

	typeErr := types.Errorf(types.ErrInvalidOperand, "cannot add %s", "bool")
	assert.ErrorIs(t, typeErr, types.ErrRuntime)
	assert.Equal(t, "T1001: cannot add bool", typeErr.Error())

	cause := errors.New("boom")
	wrapped := types.NewError(types.ErrMalformedPayload, "cannot decode").WithCause(cause)
	assert.ErrorIs(t, wrapped, types.ErrCodec)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "C0103: cannot decode: boom", wrapped.Error())
}
