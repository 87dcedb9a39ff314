// Package extutil provides shared helpers for the ext sub-packages.
package extutil

import (
	"reflect"
	"strings"

	"github.com/sandrolain/goel/pkg/functions"
	"github.com/sandrolain/goel/pkg/types"
)

// Call returns a compiler that renders a call to the runtime builtin name
// with the compiled arguments unchanged.
func Call(name string) functions.CompilerFunc {
	return func(args ...string) string {
		return name + "(" + strings.Join(args, ", ") + ")"
	}
}

// Arity checks that fn received between min and max arguments.
// A negative max means no upper bound.
func Arity(fn string, args []any, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		if min == max {
			return types.Errorf(types.ErrArgumentMismatch, "%s: expected %d arguments, got %d", fn, min, len(args))
		}
		return types.Errorf(types.ErrArgumentMismatch, "%s: expected between %d and %d arguments, got %d", fn, min, max, len(args))
	}
	return nil
}

// String returns args[i] as a string.
func String(fn string, args []any, i int) (string, error) {
	if s, ok := args[i].(string); ok {
		return s, nil
	}
	return "", types.Errorf(types.ErrInvalidOperand, "%s: argument %d must be a string, got %T", fn, i+1, args[i])
}

// Int returns args[i] as an int. Only integer kinds are accepted.
func Int(fn string, args []any, i int) (int, error) {
	rv := reflect.ValueOf(args[i])
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), nil
	}
	return 0, types.Errorf(types.ErrInvalidOperand, "%s: argument %d must be an integer, got %T", fn, i+1, args[i])
}

// Float returns a numeric value as a float64.
func Float(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// IsList reports whether v is a slice or an array.
func IsList(v any) bool {
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}
