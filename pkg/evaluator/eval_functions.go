package evaluator

import (
	"context"

	"github.com/sandrolain/goel/pkg/types"
)

// evalFunction calls the evaluator half of a registered function with the
// evaluated arguments and all variables of the evaluation.
func (e *Evaluator) evalFunction(ctx context.Context, node *types.FunctionNode, evalCtx *EvalContext) (any, error) {
	fn, err := e.registry.Lookup(node.Name)
	if err != nil {
		return nil, err
	}

	args, err := e.evalList(ctx, node.Arguments.Nodes, evalCtx)
	if err != nil {
		return nil, err
	}

	result, err := fn.Evaluator(evalCtx.Values(), args...)
	if err != nil {
		if e.opts.Debug {
			e.logger.Debug("function call failed", "function", node.Name, "error", err)
		}
		return nil, err
	}
	return result, nil
}
