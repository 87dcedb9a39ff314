package types_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goel/pkg/types"
)

// sampleTree covers every node kind.
func sampleTree() types.Node {
	return types.NewConditional(
		types.NewBinary("and",
			types.NewUnary("not", types.NewName("a")),
			types.NewBinary("==", types.NewConstant(1), types.NewConstant(1.0)),
		),
		types.NewGetAttr(
			types.NewGetAttr(types.NewName("user"), types.NewIdentifier("roles"), nil, types.PropertyCall),
			types.NewConstant(-1),
			nil,
			types.ArrayCall,
		),
		types.NewHash(
			types.HashEntry{Key: "list", Value: types.NewArray(types.NewConstant("x"), types.NewConstant(nil), types.NewConstant(true))},
			types.HashEntry{Key: "", Value: types.NewFunction("upper", types.NewArguments(types.NewConstant("")))},
			types.HashEntry{Key: "call", Value: types.NewGetAttr(types.NewName("u"), types.NewIdentifier("name"), types.NewArguments(types.NewConstant(2.5e10)), types.MethodCall)},
		),
	)
}

func TestParsedExpressionRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		expr *types.ParsedExpression
	}{
		{name: "every node kind", expr: types.NewParsedExpression("a ? b : c", sampleTree())},
		{name: "int constant", expr: types.NewParsedExpression("1", types.NewConstant(1))},
		{name: "float constant", expr: types.NewParsedExpression("1.0", types.NewConstant(1.0))},
		{name: "empty string", expr: types.NewParsedExpression(`""`, types.NewConstant(""))},
		{name: "empty arguments", expr: types.NewParsedExpression("f()", types.NewFunction("f", nil))},
		{name: "empty hash", expr: types.NewParsedExpression("{}", types.NewHash())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.expr.MarshalBinary()
			require.NoError(t, err)

			var decoded types.ParsedExpression
			require.NoError(t, decoded.UnmarshalBinary(data))
			assert.True(t, tt.expr.Equal(&decoded), "decoded %s, want %s", decoded.Nodes(), tt.expr.Nodes())
			assert.Equal(t, tt.expr.Source(), decoded.Source())
		})
	}
}

func TestConstantTypesSurviveRoundTrip(t *testing.T) {
	for _, v := range []any{1, 1.0, "1", true, nil} {
		data, err := types.MarshalNode(types.NewConstant(v))
		require.NoError(t, err)

		n, err := types.UnmarshalNode(data)
		require.NoError(t, err)
		assert.Equal(t, types.NewConstant(v), n)
	}
}

func TestExpressionRoundTrip(t *testing.T) {
	expr := types.NewExpression("a + b")
	data, err := expr.MarshalBinary()
	require.NoError(t, err)

	var decoded types.Expression
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, *expr, decoded)
	assert.Equal(t, "a + b", decoded.String())
}

func TestSerializedParsedExpression(t *testing.T) {
	tree := sampleTree()
	data, err := types.MarshalNode(tree)
	require.NoError(t, err)

	expr := types.NewSerializedParsedExpression("a ? b : c", data)
	assert.Equal(t, data, expr.Serialized())

	nodes, err := expr.Nodes()
	require.NoError(t, err)
	assert.Equal(t, tree, nodes)

	again, err := expr.Nodes()
	require.NoError(t, err)
	assert.Same(t, nodes, again, "the tree is decoded once")

	parsed, err := expr.Parsed()
	require.NoError(t, err)
	assert.True(t, parsed.Equal(types.NewParsedExpression("a ? b : c", tree)))

	broken := types.NewSerializedParsedExpression("x", []byte("{"))
	_, err = broken.Nodes()
	assert.ErrorIs(t, err, types.ErrCodec)
}

func TestCodecRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		code    types.ErrorCode
	}{
		{name: "not json", payload: "nope", code: types.ErrMalformedPayload},
		{name: "future version", payload: `{"version":2,"source":"a","nodes":{"kind":"name","value":"a"}}`, code: types.ErrUnsupportedVersion},
		{name: "unknown kind", payload: `{"version":1,"nodes":{"kind":"lambda"}}`, code: types.ErrUnknownNodeKind},
		{name: "bad arity", payload: `{"version":1,"nodes":{"kind":"binary","operator":"+","nodes":[{"kind":"name","value":"a"}]}}`, code: types.ErrMalformedPayload},
		{name: "bad constant type", payload: `{"version":1,"nodes":{"kind":"constant","type":"complex","value":"1i"}}`, code: types.ErrMalformedPayload},
		{name: "bad access kind", payload: `{"version":1,"nodes":{"kind":"getattr","access":"slice","nodes":[{"kind":"name","value":"a"},{"kind":"constant","type":"int","value":"1"},{"kind":"arguments"}]}}`, code: types.ErrMalformedPayload},
		{name: "no tree", payload: `{"version":1,"source":"a"}`, code: types.ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := types.UnmarshalNode([]byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrCodec)

			var e *types.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tt.code, e.Code)
		})
	}
}

func TestParsedExpressionEqual(t *testing.T) {
	a := types.NewParsedExpression("1 + 2", types.NewBinary("+", types.NewConstant(1), types.NewConstant(2)))
	b := types.NewParsedExpression("1 + 2", types.NewBinary("+", types.NewConstant(1), types.NewConstant(2)))
	c := types.NewParsedExpression("1 + 2", types.NewBinary("+", types.NewConstant(1), types.NewConstant(2.0)))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "int and float constants differ")
	assert.False(t, a.Equal(nil))
}
