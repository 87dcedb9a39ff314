package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandrolain/goel/pkg/types"
)

func TestNodeString(t *testing.T) {
	tests := []struct {
		node     types.Node
		expected string
	}{
		{node: types.NewConstant(nil), expected: "null"},
		{node: types.NewConstant(3), expected: "3"},
		{node: types.NewConstant(3.0), expected: "3.0"},
		{node: types.NewConstant(1e21), expected: "1e+21"},
		{node: types.NewConstant("a\"b\n"), expected: `"a\"b\n"`},
		{node: types.NewIdentifier("name"), expected: "name"},
		{node: types.NewUnary("-", types.NewName("x")), expected: "(- x)"},
		{node: types.NewGetAttr(types.NewName("o"), types.NewIdentifier("m"), types.NewArguments(types.NewConstant(1), types.NewConstant(2)), types.MethodCall), expected: "o.m(1, 2)"},
		{node: types.NewGetAttr(types.NewName("o"), types.NewConstant("k"), nil, types.ArrayCall), expected: `o["k"]`},
		{node: types.NewHash(types.HashEntry{Key: "k", Value: types.NewConstant(false)}), expected: `{"k": false}`},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.node.String())
		})
	}
}

func TestWalk(t *testing.T) {
	tree := types.NewBinary("and",
		types.NewFunction("f", types.NewArguments(types.NewName("a"))),
		types.NewGetAttr(types.NewName("b"), types.NewIdentifier("c"), nil, types.PropertyCall),
	)

	var names []string
	types.Walk(tree, func(n types.Node) bool {
		if name, ok := n.(*types.NameNode); ok {
			names = append(names, name.Name)
		}
		return true
	})
	assert.Equal(t, []string{"a", "b"}, names)

	var visited int
	types.Walk(tree, func(n types.Node) bool {
		visited++
		return n.Type() != types.NodeFunction
	})
	assert.Equal(t, 5, visited)
}

func TestAttrTypeString(t *testing.T) {
	assert.Equal(t, "property", types.PropertyCall.String())
	assert.Equal(t, "method", types.MethodCall.String())
	assert.Equal(t, "array", types.ArrayCall.String())
	assert.Equal(t, "unknown", types.AttrType(0).String())
}
