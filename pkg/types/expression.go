// Package types defines the core data model of goel.
//
// This package contains type definitions for:
//   - Node: the Abstract Syntax Tree produced by the parser
//   - Expression: raw expression text
//   - ParsedExpression: expression text paired with its tree
//   - SerializedParsedExpression: a parsed expression whose tree is decoded lazily
//   - Error types: syntax errors with cursors and coded runtime errors
package types

import (
	"reflect"
	"sync"
)

// Expression is the raw text of an expression.
type Expression struct {
	source string
}

// NewExpression creates an Expression from its source text.
func NewExpression(source string) *Expression {
	return &Expression{source: source}
}

// Source returns the original source code of the expression.
func (e *Expression) Source() string {
	return e.source
}

// String returns the source of the expression.
func (e *Expression) String() string {
	return e.source
}

// MarshalBinary encodes the expression with the versioned codec.
func (e *Expression) MarshalBinary() ([]byte, error) {
	return marshalEnvelope(e.source, nil)
}

// UnmarshalBinary decodes an expression produced by MarshalBinary.
func (e *Expression) UnmarshalBinary(data []byte) error {
	source, _, err := unmarshalEnvelope(data)
	if err != nil {
		return err
	}
	e.source = source
	return nil
}

// ParsedExpression pairs an expression with the root of its tree.
//
// A ParsedExpression is immutable and safe for concurrent use by multiple
// goroutines.
type ParsedExpression struct {
	Expression
	nodes Node
}

// NewParsedExpression creates a ParsedExpression from source and tree.
func NewParsedExpression(source string, nodes Node) *ParsedExpression {
	return &ParsedExpression{
		Expression: Expression{source: source},
		nodes:      nodes,
	}
}

// Nodes returns the root of the Abstract Syntax Tree.
func (e *ParsedExpression) Nodes() Node {
	return e.nodes
}

// Equal reports whether both expressions have the same source and
// structurally equal trees.
func (e *ParsedExpression) Equal(other *ParsedExpression) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.source == other.source && reflect.DeepEqual(e.nodes, other.nodes)
}

// MarshalBinary encodes the source and the tree with the versioned codec.
func (e *ParsedExpression) MarshalBinary() ([]byte, error) {
	return marshalEnvelope(e.source, e.nodes)
}

// UnmarshalBinary decodes a parsed expression produced by MarshalBinary.
func (e *ParsedExpression) UnmarshalBinary(data []byte) error {
	source, nodes, err := unmarshalEnvelope(data)
	if err != nil {
		return err
	}
	if nodes == nil {
		return NewError(ErrMalformedPayload, "payload carries no tree")
	}
	e.source = source
	e.nodes = nodes
	return nil
}

// SerializedParsedExpression holds an expression together with its
// serialized tree. The tree is decoded on first use, which keeps loading
// large persisted caches cheap.
type SerializedParsedExpression struct {
	Expression
	serialized []byte

	once  sync.Once
	nodes Node
	err   error
}

// NewSerializedParsedExpression creates an expression from source and
// the output of MarshalNode.
func NewSerializedParsedExpression(source string, serialized []byte) *SerializedParsedExpression {
	return &SerializedParsedExpression{
		Expression: Expression{source: source},
		serialized: serialized,
	}
}

// Serialized returns the encoded tree.
func (e *SerializedParsedExpression) Serialized() []byte {
	return e.serialized
}

// Nodes decodes the tree on first call and returns it.
func (e *SerializedParsedExpression) Nodes() (Node, error) {
	e.once.Do(func() {
		e.nodes, e.err = UnmarshalNode(e.serialized)
	})
	return e.nodes, e.err
}

// Parsed returns the equivalent ParsedExpression.
func (e *SerializedParsedExpression) Parsed() (*ParsedExpression, error) {
	nodes, err := e.Nodes()
	if err != nil {
		return nil, err
	}
	return NewParsedExpression(e.source, nodes), nil
}
