// Package extarray provides functions on lists, maps and strings.
package extarray

import (
	"reflect"
	"unicode/utf8"

	"github.com/sandrolain/goel/pkg/ext/extutil"
	"github.com/sandrolain/goel/pkg/functions"
	"github.com/sandrolain/goel/pkg/types"
)

// All returns all list function definitions.
func All() []functions.Function {
	return []functions.Function{
		Len(),
		First(),
		Last(),
	}
}

// Provider returns a provider of all list functions.
func Provider() functions.Provider {
	return functions.ProviderFunc(All)
}

// Len returns the definition for len(v). Strings count runes.
func Len() functions.Function {
	return functions.Function{
		Name:     "len",
		Compiler: extutil.Call("len"),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity("len", args, 1, 1); err != nil {
				return nil, err
			}
			rv := reflect.ValueOf(args[0])
			switch rv.Kind() {
			case reflect.Slice, reflect.Array, reflect.Map:
				return rv.Len(), nil
			case reflect.String:
				return utf8.RuneCountInString(rv.String()), nil
			}
			return nil, types.Errorf(types.ErrInvalidOperand, "len: invalid argument of type %T", args[0])
		},
	}
}

// First returns the definition for first(list). An empty list yields null.
func First() functions.Function {
	return edge("first", func(n int) int { return 0 })
}

// Last returns the definition for last(list). An empty list yields null.
func Last() functions.Function {
	return edge("last", func(n int) int { return n - 1 })
}

func edge(name string, pick func(n int) int) functions.Function {
	return functions.Function{
		Name:     name,
		Compiler: extutil.Call(name),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity(name, args, 1, 1); err != nil {
				return nil, err
			}
			if !extutil.IsList(args[0]) {
				return nil, types.Errorf(types.ErrNonArray, "%s: argument must be a list, got %T", name, args[0])
			}
			rv := reflect.ValueOf(args[0])
			if rv.Len() == 0 {
				return nil, nil
			}
			return rv.Index(pick(rv.Len())).Interface(), nil
		},
	}
}
