// Package extstring provides string functions. Register them through
// Provider, or through the top-level ext package.
//
// Each function compiles to the runtime builtin of the same name.
package extstring

import (
	"strings"

	"github.com/sandrolain/goel/pkg/ext/extutil"
	"github.com/sandrolain/goel/pkg/functions"
	"github.com/sandrolain/goel/pkg/types"
)

// All returns all string function definitions.
func All() []functions.Function {
	return []functions.Function{
		Lower(),
		Upper(),
		Trim(),
		TrimPrefix(),
		TrimSuffix(),
		Replace(),
		Split(),
		Join(),
		Repeat(),
		IndexOf(),
		LastIndexOf(),
	}
}

// Provider returns a provider of all string functions.
func Provider() functions.Provider {
	return functions.ProviderFunc(All)
}

// unary builds a single-argument string function.
func unary(name string, fn func(string) string) functions.Function {
	return functions.Function{
		Name:     name,
		Compiler: extutil.Call(name),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity(name, args, 1, 1); err != nil {
				return nil, err
			}
			s, err := extutil.String(name, args, 0)
			if err != nil {
				return nil, err
			}
			return fn(s), nil
		},
	}
}

// Lower returns the definition for lower(str).
func Lower() functions.Function {
	return unary("lower", strings.ToLower)
}

// Upper returns the definition for upper(str).
func Upper() functions.Function {
	return unary("upper", strings.ToUpper)
}

// Trim returns the definition for trim(str [, cutset]).
// Without cutset, leading and trailing white space is removed.
func Trim() functions.Function {
	return functions.Function{
		Name:     "trim",
		Compiler: extutil.Call("trim"),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity("trim", args, 1, 2); err != nil {
				return nil, err
			}
			s, err := extutil.String("trim", args, 0)
			if err != nil {
				return nil, err
			}
			if len(args) == 1 {
				return strings.TrimSpace(s), nil
			}
			cutset, err := extutil.String("trim", args, 1)
			if err != nil {
				return nil, err
			}
			return strings.Trim(s, cutset), nil
		},
	}
}

// TrimPrefix returns the definition for trimPrefix(str, prefix).
func TrimPrefix() functions.Function {
	return binary("trimPrefix", strings.TrimPrefix)
}

// TrimSuffix returns the definition for trimSuffix(str, suffix).
func TrimSuffix() functions.Function {
	return binary("trimSuffix", strings.TrimSuffix)
}

func binary(name string, fn func(string, string) string) functions.Function {
	return functions.Function{
		Name:     name,
		Compiler: extutil.Call(name),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity(name, args, 2, 2); err != nil {
				return nil, err
			}
			s, err := extutil.String(name, args, 0)
			if err != nil {
				return nil, err
			}
			t, err := extutil.String(name, args, 1)
			if err != nil {
				return nil, err
			}
			return fn(s, t), nil
		},
	}
}

// Replace returns the definition for replace(str, old, new).
// Every occurrence of old is replaced.
func Replace() functions.Function {
	return functions.Function{
		Name:     "replace",
		Compiler: extutil.Call("replace"),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity("replace", args, 3, 3); err != nil {
				return nil, err
			}
			parts := make([]string, 3)
			for i := range parts {
				s, err := extutil.String("replace", args, i)
				if err != nil {
					return nil, err
				}
				parts[i] = s
			}
			return strings.ReplaceAll(parts[0], parts[1], parts[2]), nil
		},
	}
}

// Split returns the definition for split(str, sep).
func Split() functions.Function {
	return functions.Function{
		Name:     "split",
		Compiler: extutil.Call("split"),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity("split", args, 2, 2); err != nil {
				return nil, err
			}
			s, err := extutil.String("split", args, 0)
			if err != nil {
				return nil, err
			}
			sep, err := extutil.String("split", args, 1)
			if err != nil {
				return nil, err
			}
			return strings.Split(s, sep), nil
		},
	}
}

// Join returns the definition for join(list [, glue]).
// Every element of list must be a string.
func Join() functions.Function {
	return functions.Function{
		Name:     "join",
		Compiler: extutil.Call("join"),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity("join", args, 1, 2); err != nil {
				return nil, err
			}
			glue := ""
			if len(args) == 2 {
				g, err := extutil.String("join", args, 1)
				if err != nil {
					return nil, err
				}
				glue = g
			}
			switch list := args[0].(type) {
			case []string:
				return strings.Join(list, glue), nil
			case []any:
				parts := make([]string, len(list))
				for i, item := range list {
					s, ok := item.(string)
					if !ok {
						return nil, types.Errorf(types.ErrInvalidOperand, "join: element %d must be a string, got %T", i, item)
					}
					parts[i] = s
				}
				return strings.Join(parts, glue), nil
			}
			return nil, types.Errorf(types.ErrInvalidOperand, "join: argument 1 must be a list of strings, got %T", args[0])
		},
	}
}

// Repeat returns the definition for repeat(str, count).
func Repeat() functions.Function {
	return functions.Function{
		Name:     "repeat",
		Compiler: extutil.Call("repeat"),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity("repeat", args, 2, 2); err != nil {
				return nil, err
			}
			s, err := extutil.String("repeat", args, 0)
			if err != nil {
				return nil, err
			}
			n, err := extutil.Int("repeat", args, 1)
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, types.Errorf(types.ErrInvalidOperand, "repeat: count must not be negative, got %d", n)
			}
			return strings.Repeat(s, n), nil
		},
	}
}

// IndexOf returns the definition for indexOf(str, search).
// Returns the byte offset of the first occurrence, or -1 when not found.
func IndexOf() functions.Function {
	return index("indexOf", strings.Index)
}

// LastIndexOf returns the definition for lastIndexOf(str, search).
// Returns the byte offset of the last occurrence, or -1 when not found.
func LastIndexOf() functions.Function {
	return index("lastIndexOf", strings.LastIndex)
}

func index(name string, fn func(string, string) int) functions.Function {
	return functions.Function{
		Name:     name,
		Compiler: extutil.Call(name),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity(name, args, 2, 2); err != nil {
				return nil, err
			}
			s, err := extutil.String(name, args, 0)
			if err != nil {
				return nil, err
			}
			search, err := extutil.String(name, args, 1)
			if err != nil {
				return nil, err
			}
			return fn(s, search), nil
		},
	}
}
