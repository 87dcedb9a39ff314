// Package extnumeric provides numeric functions.
//
// floor, ceil and round always return float64; abs keeps the type of its
// argument; min and max return the selected argument unchanged.
package extnumeric

import (
	"math"
	"reflect"

	"github.com/sandrolain/goel/pkg/ext/extutil"
	"github.com/sandrolain/goel/pkg/functions"
	"github.com/sandrolain/goel/pkg/types"
)

// All returns all numeric function definitions.
func All() []functions.Function {
	return []functions.Function{
		Abs(),
		Floor(),
		Ceil(),
		Round(),
		Min(),
		Max(),
	}
}

// Provider returns a provider of all numeric functions.
func Provider() functions.Provider {
	return functions.ProviderFunc(All)
}

// Abs returns the definition for abs(n).
func Abs() functions.Function {
	return functions.Function{
		Name:     "abs",
		Compiler: extutil.Call("abs"),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity("abs", args, 1, 1); err != nil {
				return nil, err
			}
			switch n := args[0].(type) {
			case int:
				if n < 0 {
					return -n, nil
				}
				return n, nil
			case int64:
				if n < 0 {
					return -n, nil
				}
				return n, nil
			case float64:
				return math.Abs(n), nil
			}
			f, ok := extutil.Float(args[0])
			if !ok {
				return nil, notNumber("abs", args[0])
			}
			return math.Abs(f), nil
		},
	}
}

// Floor returns the definition for floor(n).
func Floor() functions.Function {
	return rounding("floor", math.Floor)
}

// Ceil returns the definition for ceil(n).
func Ceil() functions.Function {
	return rounding("ceil", math.Ceil)
}

// Round returns the definition for round(n). Halves round away from zero.
func Round() functions.Function {
	return rounding("round", math.Round)
}

func rounding(name string, fn func(float64) float64) functions.Function {
	return functions.Function{
		Name:     name,
		Compiler: extutil.Call(name),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity(name, args, 1, 1); err != nil {
				return nil, err
			}
			f, ok := extutil.Float(args[0])
			if !ok {
				return nil, notNumber(name, args[0])
			}
			return fn(f), nil
		},
	}
}

// Min returns the definition for min(n...). Lists are flattened.
func Min() functions.Function {
	return extremum("min", func(candidate, current float64) bool { return candidate < current })
}

// Max returns the definition for max(n...). Lists are flattened.
func Max() functions.Function {
	return extremum("max", func(candidate, current float64) bool { return candidate > current })
}

func extremum(name string, better func(candidate, current float64) bool) functions.Function {
	return functions.Function{
		Name:     name,
		Compiler: extutil.Call(name),
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			if err := extutil.Arity(name, args, 1, -1); err != nil {
				return nil, err
			}
			var best any
			var bestValue float64
			var visit func(v any) error
			visit = func(v any) error {
				if extutil.IsList(v) {
					rv := reflect.ValueOf(v)
					for i := 0; i < rv.Len(); i++ {
						if err := visit(rv.Index(i).Interface()); err != nil {
							return err
						}
					}
					return nil
				}
				f, ok := extutil.Float(v)
				if !ok {
					return notNumber(name, v)
				}
				if best == nil || better(f, bestValue) {
					best, bestValue = v, f
				}
				return nil
			}
			for _, arg := range args {
				if err := visit(arg); err != nil {
					return nil, err
				}
			}
			return best, nil
		},
	}
}

func notNumber(fn string, v any) error {
	return types.Errorf(types.ErrInvalidOperand, "%s: argument must be a number, got %T", fn, v)
}
