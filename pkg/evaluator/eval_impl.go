package evaluator

import (
	"context"

	"github.com/sandrolain/goel/pkg/types"
)

// evalNode evaluates a node in the given context.
func (e *Evaluator) evalNode(ctx context.Context, node types.Node, evalCtx *EvalContext) (any, error) {
	// Check context cancellation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if node == nil {
		return nil, types.NewError(types.ErrUnsupportedNode, "cannot evaluate a nil node")
	}

	evalCtx.enter()
	defer evalCtx.leave()
	if e.opts.MaxDepth > 0 && evalCtx.Depth() > e.opts.MaxDepth {
		return nil, types.Errorf(types.ErrStackOverflow, "maximum evaluation depth of %d exceeded", e.opts.MaxDepth)
	}

	// Debug logging
	if e.opts.Debug {
		e.logger.Debug("evaluating node",
			"type", node.Type(),
			"node", node.String(),
			"depth", evalCtx.Depth())
	}

	// Dispatch based on node type
	switch n := node.(type) {
	case *types.ConstantNode:
		return n.Value, nil
	case *types.NameNode:
		return e.evalName(n, evalCtx)
	case *types.UnaryNode:
		return e.evalUnary(ctx, n, evalCtx)
	case *types.BinaryNode:
		return e.evalBinary(ctx, n, evalCtx)
	case *types.ConditionalNode:
		return e.evalConditional(ctx, n, evalCtx)
	case *types.ArgumentsNode:
		return e.evalList(ctx, n.Nodes, evalCtx)
	case *types.GetAttrNode:
		return e.evalGetAttr(ctx, n, evalCtx)
	case *types.FunctionNode:
		return e.evalFunction(ctx, n, evalCtx)
	case *types.ArrayNode:
		return e.evalList(ctx, n.Elements, evalCtx)
	case *types.HashNode:
		return e.evalHash(ctx, n, evalCtx)
	default:
		return nil, types.Errorf(types.ErrUnsupportedNode, "unknown node type: %s", node.Type())
	}
}

func (e *Evaluator) evalName(node *types.NameNode, evalCtx *EvalContext) (any, error) {
	v, ok := evalCtx.Lookup(node.Name)
	if !ok {
		return nil, types.Errorf(types.ErrUndefinedVariable, "Variable %q is not defined", node.Name)
	}
	return v, nil
}

func (e *Evaluator) evalConditional(ctx context.Context, node *types.ConditionalNode, evalCtx *EvalContext) (any, error) {
	cond, err := e.evalNode(ctx, node.Condition, evalCtx)
	if err != nil {
		return nil, err
	}
	if isTruthy(cond) {
		return e.evalNode(ctx, node.Then, evalCtx)
	}
	return e.evalNode(ctx, node.Else, evalCtx)
}

func (e *Evaluator) evalList(ctx context.Context, nodes []types.Node, evalCtx *EvalContext) ([]any, error) {
	result := make([]any, len(nodes))
	for i, n := range nodes {
		v, err := e.evalNode(ctx, n, evalCtx)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func (e *Evaluator) evalHash(ctx context.Context, node *types.HashNode, evalCtx *EvalContext) (any, error) {
	result := make(map[string]any, len(node.Entries))
	for _, entry := range node.Entries {
		v, err := e.evalNode(ctx, entry.Value, evalCtx)
		if err != nil {
			return nil, err
		}
		result[entry.Key] = v
	}
	return result, nil
}
