package evaluator

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/sandrolain/goel/pkg/pattern"
	"github.com/sandrolain/goel/pkg/types"
)

func (e *Evaluator) evalUnary(ctx context.Context, node *types.UnaryNode, evalCtx *EvalContext) (any, error) {
	operand, err := e.evalNode(ctx, node.Node, evalCtx)
	if err != nil {
		return nil, err
	}

	switch node.Operator {
	case "not", "!":
		return !isTruthy(operand), nil
	case "-":
		n, ok := toNumber(operand)
		if !ok {
			return nil, unsupportedUnary(node.Operator, operand)
		}
		if i, ok := n.(int); ok {
			return -i, nil
		}
		return -n.(float64), nil
	case "+":
		n, ok := toNumber(operand)
		if !ok {
			return nil, unsupportedUnary(node.Operator, operand)
		}
		return n, nil
	default:
		return nil, types.Errorf(types.ErrUnsupportedNode, "unknown unary operator %q", node.Operator)
	}
}

func (e *Evaluator) evalBinary(ctx context.Context, node *types.BinaryNode, evalCtx *EvalContext) (any, error) {
	left, err := e.evalNode(ctx, node.Left, evalCtx)
	if err != nil {
		return nil, err
	}

	// Handle short-circuit operators
	switch node.Operator {
	case "or", "||":
		if isTruthy(left) {
			return true, nil
		}
		right, err := e.evalNode(ctx, node.Right, evalCtx)
		if err != nil {
			return nil, err
		}
		return isTruthy(right), nil
	case "and", "&&":
		if !isTruthy(left) {
			return false, nil
		}
		right, err := e.evalNode(ctx, node.Right, evalCtx)
		if err != nil {
			return nil, err
		}
		return isTruthy(right), nil
	}

	right, err := e.evalNode(ctx, node.Right, evalCtx)
	if err != nil {
		return nil, err
	}

	// Apply operator
	switch node.Operator {
	case "+", "-", "*":
		return arithmetic(node.Operator, left, right)
	case "/":
		return divide(left, right)
	case "%":
		return modulo(left, right)
	case "**":
		return power(left, right)
	case "~":
		return concat(left) + concat(right), nil
	case "==":
		return isEqual(left, right), nil
	case "!=":
		return !isEqual(left, right), nil
	case "<", "<=", ">", ">=":
		return compare(node.Operator, left, right)
	case "in":
		return contains(right, left)
	case "not in":
		found, err := contains(right, left)
		if err != nil {
			return nil, err
		}
		return !found, nil
	case "..":
		return rangeOf(left, right)
	case "matches":
		return matches(left, right)
	case "contains", "starts with", "ends with":
		return stringPredicate(node.Operator, left, right)
	default:
		return nil, types.Errorf(types.ErrUnsupportedNode, "unknown binary operator %q", node.Operator)
	}
}

func arithmetic(op string, left, right any) (any, error) {
	if op == "+" {
		if ls, ok := left.(string); ok {
			if rs, ok := right.(string); ok {
				return ls + rs, nil
			}
		}
	}

	ln, lok := toNumber(left)
	rn, rok := toNumber(right)
	if !lok || !rok {
		return nil, unsupportedBinary(op, left, right)
	}

	li, lint := ln.(int)
	ri, rint := rn.(int)
	if lint && rint {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		default:
			return li * ri, nil
		}
	}

	lf, _ := toFloat(ln)
	rf, _ := toFloat(rn)
	switch op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	default:
		return lf * rf, nil
	}
}

func divide(left, right any) (any, error) {
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, unsupportedBinary("/", left, right)
	}
	// IEEE semantics: x / 0 is ±Inf, 0 / 0 is NaN
	return lf / rf, nil
}

// concat renders an operand of "~"; null renders as the empty string.
func concat(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func modulo(left, right any) (any, error) {
	li, lok := toInt(left)
	ri, rok := toInt(right)
	if !lok || !rok {
		return nil, unsupportedBinary("%", left, right)
	}
	if ri == 0 {
		return nil, types.NewError(types.ErrDivisionByZero, "Modulo by zero")
	}
	return li % ri, nil
}

func power(left, right any) (any, error) {
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if !lok || !rok {
		return nil, unsupportedBinary("**", left, right)
	}
	return math.Pow(lf, rf), nil
}

func compare(op string, left, right any) (any, error) {
	var c int
	switch {
	case isNumber(left) && isNumber(right):
		ln, _ := toNumber(left)
		rn, _ := toNumber(right)
		li, lint := ln.(int)
		ri, rint := rn.(int)
		if lint && rint {
			c = cmpOrdered(li, ri)
		} else {
			lf, _ := toFloat(ln)
			rf, _ := toFloat(rn)
			c = cmpOrdered(lf, rf)
		}
	default:
		ls, lok := toStringValue(left)
		rs, rok := toStringValue(right)
		if !lok || !rok {
			return nil, unsupportedBinary(op, left, right)
		}
		c = strings.Compare(ls, rs)
	}

	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

func cmpOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func isNumber(v any) bool {
	_, ok := toNumber(v)
	return ok
}

// contains reports whether needle is an element of a list or a key of a map.
func contains(haystack, needle any) (bool, error) {
	if haystack == nil {
		return false, nil
	}

	rv := reflect.ValueOf(haystack)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if isEqual(rv.Index(i).Interface(), needle) {
				return true, nil
			}
		}
		return false, nil
	case reflect.Map:
		key, ok := mapKey(rv, needle)
		if !ok {
			return false, nil
		}
		return rv.MapIndex(key).IsValid(), nil
	default:
		return false, types.Errorf(types.ErrNonArray, "operator \"in\" expects an array or a map, got %s", typeName(haystack))
	}
}

func rangeOf(left, right any) (any, error) {
	from, lok := toInt(left)
	to, rok := toInt(right)
	if !lok || !rok {
		return nil, unsupportedBinary("..", left, right)
	}
	if from > to {
		return []int{}, nil
	}
	result := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		result = append(result, i)
	}
	return result, nil
}

func matches(left, right any) (any, error) {
	subject, lok := toStringValue(left)
	p, rok := toStringValue(right)
	if !lok || !rok {
		return nil, unsupportedBinary("matches", left, right)
	}
	return pattern.Match(p, subject)
}

func stringPredicate(op string, left, right any) (any, error) {
	ls, lok := toStringValue(left)
	rs, rok := toStringValue(right)
	if !lok || !rok {
		return nil, unsupportedBinary(op, left, right)
	}
	switch op {
	case "contains":
		return strings.Contains(ls, rs), nil
	case "starts with":
		return strings.HasPrefix(ls, rs), nil
	default:
		return strings.HasSuffix(ls, rs), nil
	}
}

func unsupportedUnary(op string, operand any) error {
	return types.Errorf(types.ErrInvalidOperand, "Unsupported operand type for %s: %s", op, typeName(operand))
}

func unsupportedBinary(op string, left, right any) error {
	return types.Errorf(types.ErrInvalidOperand, "Unsupported operand types for %s: %s and %s", op, typeName(left), typeName(right))
}
