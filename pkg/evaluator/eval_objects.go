package evaluator

import (
	"context"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/goel/pkg/types"
)

// errorType is the reflected error interface.
var errorType = reflect.TypeOf((*error)(nil)).Elem()

func (e *Evaluator) evalGetAttr(ctx context.Context, node *types.GetAttrNode, evalCtx *EvalContext) (any, error) {
	object, err := e.evalNode(ctx, node.Node, evalCtx)
	if err != nil {
		return nil, err
	}

	switch node.Kind {
	case types.PropertyCall:
		return property(object, attributeName(node.Attribute))

	case types.MethodCall:
		args, err := e.evalList(ctx, node.Arguments.Nodes, evalCtx)
		if err != nil {
			return nil, err
		}
		return callMethod(object, attributeName(node.Attribute), args)

	case types.ArrayCall:
		index, err := e.evalNode(ctx, node.Attribute, evalCtx)
		if err != nil {
			return nil, err
		}
		return element(object, index)

	default:
		return nil, types.Errorf(types.ErrUnsupportedNode, "unknown member access kind %d", int(node.Kind))
	}
}

func attributeName(n types.Node) string {
	if c, ok := n.(*types.ConstantNode); ok {
		if s, ok := c.Value.(string); ok {
			return s
		}
	}
	return n.String()
}

// property reads a named field of a map or struct. Missing map keys
// yield the zero value of the element type.
func property(object any, name string) (any, error) {
	rv := indirect(reflect.ValueOf(object))
	switch rv.Kind() {
	case reflect.Map:
		key, ok := mapKey(rv, name)
		if !ok {
			return nil, types.Errorf(types.ErrNonObject, "Unable to get property %q of %s", name, typeName(object))
		}
		return mapIndex(rv, key), nil
	case reflect.Struct:
		if f, ok := field(rv, name); ok {
			return f.Interface(), nil
		}
		return nil, types.Errorf(types.ErrUnknownProperty, "Undefined property %q of %s", name, typeName(object))
	default:
		return nil, types.Errorf(types.ErrNonObject, "Unable to get property %q of non-object %s", name, typeName(object))
	}
}

// element reads an indexed element of a list, string, map or struct.
// Negative list and string indexes count from the end.
func element(object any, index any) (any, error) {
	rv := indirect(reflect.ValueOf(object))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		i, err := position(index, rv.Len(), object)
		if err != nil {
			return nil, err
		}
		return rv.Index(i).Interface(), nil
	case reflect.String:
		s := rv.String()
		i, err := position(index, utf8.RuneCountInString(s), object)
		if err != nil {
			return nil, err
		}
		return string([]rune(s)[i]), nil
	case reflect.Map:
		key, ok := mapKey(rv, index)
		if !ok {
			return nil, nil
		}
		return mapIndex(rv, key), nil
	case reflect.Struct:
		name, ok := toStringValue(index)
		if !ok {
			return nil, types.Errorf(types.ErrInvalidOperand, "Cannot access %s with index of type %s", typeName(object), typeName(index))
		}
		return property(object, name)
	default:
		return nil, types.Errorf(types.ErrNonArray, "Unable to get an item of non-array %s", typeName(object))
	}
}

func position(index any, length int, object any) (int, error) {
	i, ok := toInt(index)
	if !ok {
		return 0, types.Errorf(types.ErrInvalidOperand, "Cannot access %s with index of type %s", typeName(object), typeName(index))
	}
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, types.Errorf(types.ErrIndexOutOfRange, "index out of range: %v (array length is %d)", index, length)
	}
	return i, nil
}

// callMethod invokes a method of object, or a function stored in a map
// under name. A trailing error result is returned as the call error.
func callMethod(object any, name string, args []any) (any, error) {
	if object == nil {
		return nil, types.Errorf(types.ErrNonObject, "Unable to call method %q of null", name)
	}

	rv := reflect.ValueOf(object)
	fn := rv.MethodByName(name)
	if !fn.IsValid() && rv.Kind() == reflect.Struct {
		// methods with pointer receivers need an addressable copy
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		fn = ptr.MethodByName(name)
	}
	if !fn.IsValid() {
		if m := indirect(rv); m.Kind() == reflect.Map {
			if key, ok := mapKey(m, name); ok {
				if v := m.MapIndex(key); v.IsValid() {
					fn = indirect(v)
				}
			}
		}
	}
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, types.Errorf(types.ErrUnknownMethod, "Unable to call method %q of object %s", name, typeName(object))
	}

	in, err := callArguments(fn.Type(), name, args)
	if err != nil {
		return nil, err
	}
	return results(fn.Call(in))
}

func callArguments(ft reflect.Type, name string, args []any) ([]reflect.Value, error) {
	numIn := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, types.Errorf(types.ErrArgumentMismatch, "method %q expects at least %d arguments, got %d", name, numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, types.Errorf(types.ErrArgumentMismatch, "method %q expects %d arguments, got %d", name, numIn, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= numIn-1 {
			pt = ft.In(numIn - 1).Elem()
		} else {
			pt = ft.In(i)
		}
		v, ok := convert(arg, pt)
		if !ok {
			return nil, types.Errorf(types.ErrArgumentMismatch, "argument %d of method %q: cannot use %s as %s", i+1, name, typeName(arg), pt)
		}
		in[i] = v
	}
	return in, nil
}

func convert(arg any, t reflect.Type) (reflect.Value, bool) {
	if arg == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(t) {
		return v, true
	}
	if isNumber(arg) && isNumericKind(t.Kind()) {
		return v.Convert(t), true
	}
	if v.Kind() == reflect.String && t.Kind() == reflect.String {
		return v.Convert(t), true
	}
	return reflect.Value{}, false
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func results(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if err, _ := out[n-1].Interface().(error); err != nil {
			return nil, err
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		result := make([]any, len(out))
		for i, v := range out {
			result[i] = v.Interface()
		}
		return result, nil
	}
}

// field finds an exported struct field by its expr tag or its name.
// Fields promoted from embedded structs are found too.
func field(rv reflect.Value, name string) (reflect.Value, bool) {
	for _, f := range reflect.VisibleFields(rv.Type()) {
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && indirectType(f.Type).Kind() == reflect.Struct {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("expr"), ",")
		if tag == "-" {
			continue
		}
		if tag == name || (tag == "" && f.Name == name) {
			// a nil embedded pointer hides its fields
			v, err := rv.FieldByIndexErr(f.Index)
			if err != nil {
				return reflect.Value{}, false
			}
			return v, true
		}
	}
	return reflect.Value{}, false
}

func indirectType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

// mapKey converts key to the key type of the map m.
func mapKey(m reflect.Value, key any) (reflect.Value, bool) {
	kt := m.Type().Key()
	if key == nil {
		return reflect.Value{}, false
	}
	kv := reflect.ValueOf(key)
	if kv.Type().AssignableTo(kt) {
		return kv, true
	}
	if kv.Type().ConvertibleTo(kt) && (kv.Kind() == kt.Kind() || (isNumber(key) && isNumericKind(kt.Kind()))) {
		return kv.Convert(kt), true
	}
	return reflect.Value{}, false
}

func mapIndex(m, key reflect.Value) any {
	if v := m.MapIndex(key); v.IsValid() {
		return v.Interface()
	}
	return reflect.Zero(m.Type().Elem()).Interface()
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
