package types

import (
	"encoding/json"
	"strconv"
)

// CodecVersion is the version written by MarshalNode and the
// MarshalBinary methods. Payloads with another version are rejected.
const CodecVersion = 1

// envelope is the top level of every encoded payload.
type envelope struct {
	Version int       `json:"version"`
	Source  string    `json:"source"`
	Nodes   *wireNode `json:"nodes,omitempty"`
}

// wireNode is the tagged-union encoding of a Node.
//
// Children are stored positionally in Nodes:
//   - unary: [operand]
//   - binary: [left, right]
//   - conditional: [condition, then, else]
//   - arguments, array: the elements
//   - getattr: [object, attribute, arguments]
//   - function: [arguments]
//   - hash: the values, paired with Keys
type wireNode struct {
	Kind       NodeType    `json:"kind"`
	ValueType  string      `json:"type,omitempty"`
	Value      string      `json:"value,omitempty"`
	Identifier bool        `json:"identifier,omitempty"`
	Operator   string      `json:"operator,omitempty"`
	Access     string      `json:"access,omitempty"`
	Keys       []string    `json:"keys,omitempty"`
	Nodes      []*wireNode `json:"nodes,omitempty"`
}

// MarshalNode encodes a tree with the versioned codec.
func MarshalNode(n Node) ([]byte, error) {
	return marshalEnvelope("", n)
}

// UnmarshalNode decodes a tree produced by MarshalNode.
func UnmarshalNode(data []byte) (Node, error) {
	_, n, err := unmarshalEnvelope(data)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, NewError(ErrMalformedPayload, "payload carries no tree")
	}
	return n, nil
}

func marshalEnvelope(source string, n Node) ([]byte, error) {
	env := envelope{Version: CodecVersion, Source: source}
	if n != nil {
		w, err := encodeNode(n)
		if err != nil {
			return nil, err
		}
		env.Nodes = w
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, NewError(ErrMalformedPayload, "cannot encode expression").WithCause(err)
	}
	return data, nil
}

func unmarshalEnvelope(data []byte) (string, Node, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, NewError(ErrMalformedPayload, "cannot decode expression").WithCause(err)
	}
	if env.Version != CodecVersion {
		return "", nil, Errorf(ErrUnsupportedVersion, "unsupported codec version %d", env.Version)
	}
	if env.Nodes == nil {
		return env.Source, nil, nil
	}
	n, err := decodeNode(env.Nodes)
	if err != nil {
		return "", nil, err
	}
	return env.Source, n, nil
}

func encodeNode(n Node) (*wireNode, error) {
	w := &wireNode{Kind: n.Type()}
	switch n := n.(type) {
	case *ConstantNode:
		typ, val, err := encodeScalar(n.Value)
		if err != nil {
			return nil, err
		}
		w.ValueType, w.Value, w.Identifier = typ, val, n.IsIdentifier
	case *NameNode:
		w.Value = n.Name
	case *UnaryNode:
		w.Operator = n.Operator
		return w, encodeChildren(w, n.Node)
	case *BinaryNode:
		w.Operator = n.Operator
		return w, encodeChildren(w, n.Left, n.Right)
	case *ConditionalNode:
		return w, encodeChildren(w, n.Condition, n.Then, n.Else)
	case *ArgumentsNode:
		return w, encodeChildren(w, n.Nodes...)
	case *GetAttrNode:
		w.Access = n.Kind.String()
		return w, encodeChildren(w, n.Node, n.Attribute, n.Arguments)
	case *FunctionNode:
		w.Value = n.Name
		return w, encodeChildren(w, n.Arguments)
	case *ArrayNode:
		return w, encodeChildren(w, n.Elements...)
	case *HashNode:
		values := make([]Node, len(n.Entries))
		w.Keys = make([]string, len(n.Entries))
		for i, entry := range n.Entries {
			w.Keys[i] = entry.Key
			values[i] = entry.Value
		}
		return w, encodeChildren(w, values...)
	default:
		return nil, Errorf(ErrUnknownNodeKind, "cannot encode node %T", n)
	}
	return w, nil
}

func encodeChildren(w *wireNode, children ...Node) error {
	w.Nodes = make([]*wireNode, len(children))
	for i, child := range children {
		c, err := encodeNode(child)
		if err != nil {
			return err
		}
		w.Nodes[i] = c
	}
	return nil
}

func encodeScalar(v any) (string, string, error) {
	switch val := v.(type) {
	case nil:
		return "null", "", nil
	case bool:
		return "bool", strconv.FormatBool(val), nil
	case int:
		return "int", strconv.Itoa(val), nil
	case float64:
		return "float", strconv.FormatFloat(val, 'g', -1, 64), nil
	case string:
		return "string", val, nil
	default:
		return "", "", Errorf(ErrMalformedPayload, "cannot encode constant of type %T", v)
	}
}

func decodeScalar(typ, val string) (any, error) {
	switch typ {
	case "null":
		return nil, nil
	case "bool":
		return strconv.ParseBool(val)
	case "int":
		return strconv.Atoi(val)
	case "float":
		return strconv.ParseFloat(val, 64)
	case "string":
		return val, nil
	default:
		return nil, Errorf(ErrMalformedPayload, "unknown constant type %q", typ)
	}
}

func decodeNode(w *wireNode) (Node, error) {
	if w == nil {
		return nil, NewError(ErrMalformedPayload, "missing node")
	}
	children, err := decodeChildren(w.Nodes)
	if err != nil {
		return nil, err
	}

	switch w.Kind {
	case NodeConstant:
		v, err := decodeScalar(w.ValueType, w.Value)
		if err != nil {
			return nil, NewError(ErrMalformedPayload, "invalid constant").WithCause(err)
		}
		return &ConstantNode{Value: v, IsIdentifier: w.Identifier}, nil
	case NodeName:
		return NewName(w.Value), nil
	case NodeUnary:
		if err := arity(w, children, 1); err != nil {
			return nil, err
		}
		return NewUnary(w.Operator, children[0]), nil
	case NodeBinary:
		if err := arity(w, children, 2); err != nil {
			return nil, err
		}
		return NewBinary(w.Operator, children[0], children[1]), nil
	case NodeConditional:
		if err := arity(w, children, 3); err != nil {
			return nil, err
		}
		return NewConditional(children[0], children[1], children[2]), nil
	case NodeArguments:
		return NewArguments(children...), nil
	case NodeGetAttr:
		if err := arity(w, children, 3); err != nil {
			return nil, err
		}
		args, ok := children[2].(*ArgumentsNode)
		if !ok {
			return nil, NewError(ErrMalformedPayload, "getattr arguments must be an arguments node")
		}
		kind, err := decodeAccess(w.Access)
		if err != nil {
			return nil, err
		}
		return NewGetAttr(children[0], children[1], args, kind), nil
	case NodeFunction:
		if err := arity(w, children, 1); err != nil {
			return nil, err
		}
		args, ok := children[0].(*ArgumentsNode)
		if !ok {
			return nil, NewError(ErrMalformedPayload, "function arguments must be an arguments node")
		}
		return NewFunction(w.Value, args), nil
	case NodeArray:
		return NewArray(children...), nil
	case NodeHash:
		if len(w.Keys) != len(children) {
			return nil, NewError(ErrMalformedPayload, "hash keys and values differ in length")
		}
		entries := make([]HashEntry, len(children))
		for i := range children {
			entries[i] = HashEntry{Key: w.Keys[i], Value: children[i]}
		}
		return NewHash(entries...), nil
	default:
		return nil, Errorf(ErrUnknownNodeKind, "unknown node kind %q", w.Kind)
	}
}

func decodeChildren(ws []*wireNode) ([]Node, error) {
	if len(ws) == 0 {
		return nil, nil
	}
	out := make([]Node, len(ws))
	for i, w := range ws {
		n, err := decodeNode(w)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func decodeAccess(s string) (AttrType, error) {
	switch s {
	case "property":
		return PropertyCall, nil
	case "method":
		return MethodCall, nil
	case "array":
		return ArrayCall, nil
	default:
		return 0, Errorf(ErrMalformedPayload, "unknown access kind %q", s)
	}
}

func arity(w *wireNode, children []Node, want int) error {
	if len(children) != want {
		return Errorf(ErrMalformedPayload, "%s node expects %d children, got %d", w.Kind, want, len(children))
	}
	return nil
}
