// Package exprrun executes compiled expressions on the expr-lang/expr
// virtual machine.
//
// Sources produced by pkg/compiler may call the pcre function, which
// converts a delimited pattern into RE2 syntax at run time. Run registers
// it on every program.
package exprrun

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/sandrolain/goel/pkg/compiler"
	"github.com/sandrolain/goel/pkg/pattern"
	"github.com/sandrolain/goel/pkg/types"
)

// Compile compiles source against the shape of values.
func Compile(source string, values map[string]any) (*vm.Program, error) {
	if values == nil {
		values = map[string]any{}
	}
	program, err := expr.Compile(source,
		expr.Env(values),
		expr.Function(compiler.PatternFunction, pcre, new(func(string) string)),
	)
	if err != nil {
		return nil, types.Errorf(types.ErrInvalidOperand, "cannot compile %q", source).WithCause(err)
	}
	return program, nil
}

// Run compiles source and executes it with values.
func Run(source string, values map[string]any) (any, error) {
	program, err := Compile(source, values)
	if err != nil {
		return nil, err
	}
	return Exec(program, values)
}

// Exec executes a compiled program with values.
func Exec(program *vm.Program, values map[string]any) (any, error) {
	if values == nil {
		values = map[string]any{}
	}
	out, err := expr.Run(program, values)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidOperand, "execution failed").WithCause(err)
	}
	return out, nil
}

func pcre(params ...any) (any, error) {
	if len(params) != 1 {
		return nil, types.Errorf(types.ErrArgumentMismatch, "%s expects 1 argument, got %d", compiler.PatternFunction, len(params))
	}
	p, ok := params[0].(string)
	if !ok {
		return nil, types.Errorf(types.ErrInvalidOperand, "%s expects a string, got %T", compiler.PatternFunction, params[0])
	}
	return pattern.Convert(p)
}
