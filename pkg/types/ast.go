package types

import (
	"strconv"
	"strings"
)

// NodeType identifies the type of an AST node.
type NodeType string

// AST node types.
const (
	NodeConstant    NodeType = "constant"
	NodeName        NodeType = "name"
	NodeUnary       NodeType = "unary"
	NodeBinary      NodeType = "binary"
	NodeConditional NodeType = "conditional"
	NodeArguments   NodeType = "arguments"
	NodeGetAttr     NodeType = "getattr"
	NodeFunction    NodeType = "function"
	NodeArray       NodeType = "array"
	NodeHash        NodeType = "hash"
)

// AttrType distinguishes the three forms of member access.
type AttrType int

const (
	// PropertyCall is obj.attr.
	PropertyCall AttrType = iota + 1
	// MethodCall is obj.method(args...).
	MethodCall
	// ArrayCall is obj[index].
	ArrayCall
)

// String returns a string representation of the access kind.
func (t AttrType) String() string {
	switch t {
	case PropertyCall:
		return "property"
	case MethodCall:
		return "method"
	case ArrayCall:
		return "array"
	default:
		return "unknown"
	}
}

// Node is a node of the Abstract Syntax Tree.
//
// The set of implementations is closed: only the node types declared in
// this package satisfy Node. Trees are immutable once built and may be
// shared between goroutines.
type Node interface {
	// Type returns the node type.
	Type() NodeType
	// String returns a canonical rendering of the node as expression text.
	String() string

	node()
}

// ConstantNode is a literal scalar, boolean or null. When IsIdentifier is
// set the value is a bare attribute or method name.
type ConstantNode struct {
	Value        any
	IsIdentifier bool
}

// NameNode references a declared variable.
type NameNode struct {
	Name string
}

// UnaryNode applies a prefix operator: -, +, ! or not.
type UnaryNode struct {
	Operator string
	Node     Node
}

// BinaryNode applies an infix operator.
type BinaryNode struct {
	Operator string
	Left     Node
	Right    Node
}

// ConditionalNode is the ternary cond ? then : else.
type ConditionalNode struct {
	Condition Node
	Then      Node
	Else      Node
}

// ArgumentsNode is an ordered call-argument list.
type ArgumentsNode struct {
	Nodes []Node
}

// GetAttrNode is a member access: obj.attr, obj.method(args) or obj[index].
// For property and method access Attribute is an identifier ConstantNode.
type GetAttrNode struct {
	Node      Node
	Attribute Node
	Arguments *ArgumentsNode
	Kind      AttrType
}

// FunctionNode is a call to a registered function.
type FunctionNode struct {
	Name      string
	Arguments *ArgumentsNode
}

// ArrayNode is a list literal.
type ArrayNode struct {
	Elements []Node
}

// HashEntry is a single key/value pair of a HashNode.
type HashEntry struct {
	Key   string
	Value Node
}

// HashNode is a map literal. Entries keep their declaration order.
type HashNode struct {
	Entries []HashEntry
}

// NewConstant creates a literal node.
func NewConstant(value any) *ConstantNode {
	return &ConstantNode{Value: value}
}

// NewIdentifier creates a bare attribute/method name node.
func NewIdentifier(name string) *ConstantNode {
	return &ConstantNode{Value: name, IsIdentifier: true}
}

// NewName creates a variable reference.
func NewName(name string) *NameNode {
	return &NameNode{Name: name}
}

// NewUnary creates a unary node.
func NewUnary(operator string, node Node) *UnaryNode {
	return &UnaryNode{Operator: operator, Node: node}
}

// NewBinary creates a binary node.
func NewBinary(operator string, left, right Node) *BinaryNode {
	return &BinaryNode{Operator: operator, Left: left, Right: right}
}

// NewConditional creates a ternary node.
func NewConditional(condition, then, otherwise Node) *ConditionalNode {
	return &ConditionalNode{Condition: condition, Then: then, Else: otherwise}
}

// NewArguments creates an argument list.
func NewArguments(nodes ...Node) *ArgumentsNode {
	if nodes == nil {
		nodes = []Node{}
	}
	return &ArgumentsNode{Nodes: nodes}
}

// NewGetAttr creates a member access node. A nil arguments list is
// replaced by an empty one.
func NewGetAttr(node, attribute Node, arguments *ArgumentsNode, kind AttrType) *GetAttrNode {
	if arguments == nil {
		arguments = NewArguments()
	}
	return &GetAttrNode{Node: node, Attribute: attribute, Arguments: arguments, Kind: kind}
}

// NewFunction creates a function call node.
func NewFunction(name string, arguments *ArgumentsNode) *FunctionNode {
	if arguments == nil {
		arguments = NewArguments()
	}
	return &FunctionNode{Name: name, Arguments: arguments}
}

// NewArray creates a list literal node.
func NewArray(elements ...Node) *ArrayNode {
	if elements == nil {
		elements = []Node{}
	}
	return &ArrayNode{Elements: elements}
}

// NewHash creates a map literal node.
func NewHash(entries ...HashEntry) *HashNode {
	if entries == nil {
		entries = []HashEntry{}
	}
	return &HashNode{Entries: entries}
}

// Add appends an argument.
func (n *ArgumentsNode) Add(node Node) {
	n.Nodes = append(n.Nodes, node)
}

// Len returns the number of arguments.
func (n *ArgumentsNode) Len() int {
	return len(n.Nodes)
}

func (*ConstantNode) Type() NodeType    { return NodeConstant }
func (*NameNode) Type() NodeType        { return NodeName }
func (*UnaryNode) Type() NodeType       { return NodeUnary }
func (*BinaryNode) Type() NodeType      { return NodeBinary }
func (*ConditionalNode) Type() NodeType { return NodeConditional }
func (*ArgumentsNode) Type() NodeType   { return NodeArguments }
func (*GetAttrNode) Type() NodeType     { return NodeGetAttr }
func (*FunctionNode) Type() NodeType    { return NodeFunction }
func (*ArrayNode) Type() NodeType       { return NodeArray }
func (*HashNode) Type() NodeType        { return NodeHash }

func (*ConstantNode) node()    {}
func (*NameNode) node()        {}
func (*UnaryNode) node()       {}
func (*BinaryNode) node()      {}
func (*ConditionalNode) node() {}
func (*ArgumentsNode) node()   {}
func (*GetAttrNode) node()     {}
func (*FunctionNode) node()    {}
func (*ArrayNode) node()       {}
func (*HashNode) node()        {}

// String renders the literal. Identifiers are rendered bare.
func (n *ConstantNode) String() string {
	if n.IsIdentifier {
		s, _ := n.Value.(string)
		return s
	}
	return DumpValue(n.Value)
}

func (n *NameNode) String() string {
	return n.Name
}

func (n *UnaryNode) String() string {
	return "(" + n.Operator + " " + n.Node.String() + ")"
}

func (n *BinaryNode) String() string {
	return "(" + n.Left.String() + " " + n.Operator + " " + n.Right.String() + ")"
}

func (n *ConditionalNode) String() string {
	return "(" + n.Condition.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}

func (n *ArgumentsNode) String() string {
	parts := make([]string, len(n.Nodes))
	for i, arg := range n.Nodes {
		parts[i] = arg.String()
	}
	return strings.Join(parts, ", ")
}

func (n *GetAttrNode) String() string {
	switch n.Kind {
	case PropertyCall:
		return n.Node.String() + "." + n.Attribute.String()
	case MethodCall:
		return n.Node.String() + "." + n.Attribute.String() + "(" + n.Arguments.String() + ")"
	default:
		return n.Node.String() + "[" + n.Attribute.String() + "]"
	}
}

func (n *FunctionNode) String() string {
	return n.Name + "(" + n.Arguments.String() + ")"
}

func (n *ArrayNode) String() string {
	parts := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (n *HashNode) String() string {
	parts := make([]string, len(n.Entries))
	for i, entry := range n.Entries {
		parts[i] = DumpValue(entry.Key) + ": " + entry.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Children returns the direct children of n in evaluation order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *UnaryNode:
		return []Node{n.Node}
	case *BinaryNode:
		return []Node{n.Left, n.Right}
	case *ConditionalNode:
		return []Node{n.Condition, n.Then, n.Else}
	case *ArgumentsNode:
		return n.Nodes
	case *GetAttrNode:
		return append([]Node{n.Node, n.Attribute}, n.Arguments.Nodes...)
	case *FunctionNode:
		return n.Arguments.Nodes
	case *ArrayNode:
		return n.Elements
	case *HashNode:
		out := make([]Node, len(n.Entries))
		for i, entry := range n.Entries {
			out[i] = entry.Value
		}
		return out
	default:
		return nil
	}
}

// Walk traverses the tree depth-first, calling fn for every node.
// Children of a node are skipped when fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// DumpValue renders a scalar the way it is written in an expression.
func DumpValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case float64:
		return FormatFloat(val)
	case string:
		return dumpString(val)
	default:
		return "<unknown>"
	}
}

// FormatFloat renders f so that it always reads back as a float:
// integral values keep a trailing ".0".
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}

func dumpString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
