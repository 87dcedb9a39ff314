// Package evaluator computes the value of an expression tree against a set
// of named variables.
//
// The evaluator receives a tree produced by the parser and walks it
// directly. It supports:
//   - Arithmetic, comparison, logical, string and membership operators
//   - Member access on maps, structs and slices, and method calls via reflection
//   - Calls to functions of a functions.Registry
//   - Timeout and cancellation via context.Context
//
// # Example
//
//	ev := evaluator.New(registry)
//	result, err := ev.Eval(ctx, parsed.Nodes(), map[string]any{"a": 1})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Results agree with running the output of pkg/compiler on the expr-lang
// runtime whenever logical operators and conditions receive booleans.
package evaluator

import (
	"context"
	"log/slog"
	"time"

	"github.com/sandrolain/goel/pkg/functions"
	"github.com/sandrolain/goel/pkg/types"
)

// DefaultMaxDepth is the default nesting limit of an evaluation.
const DefaultMaxDepth = 1000

// Evaluator evaluates expression trees against variables.
//
// An Evaluator holds no per-evaluation state and is safe for concurrent use.
type Evaluator struct {
	opts     EvalOptions
	logger   *slog.Logger
	registry *functions.Registry
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// MaxDepth limits the nesting depth of the evaluated tree.
	MaxDepth int
	// Timeout sets the evaluation timeout. Zero means no timeout.
	Timeout time.Duration
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
}

// New creates a new Evaluator resolving function calls against registry.
// A nil registry behaves like an empty one.
func New(registry *functions.Registry, opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if registry == nil {
		registry = functions.NewRegistry()
	}

	return &Evaluator{
		opts:     options,
		logger:   options.Logger,
		registry: registry,
	}
}

// Registry returns the function registry used for calls.
func (e *Evaluator) Registry() *functions.Registry {
	return e.registry
}

// Eval evaluates node with the given variables.
func (e *Evaluator) Eval(ctx context.Context, node types.Node, values map[string]any) (any, error) {
	if node == nil {
		return nil, types.NewError(types.ErrUnsupportedNode, "invalid expression")
	}

	// Apply timeout if configured
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	if values == nil {
		values = map[string]any{}
	}
	return e.evalNode(ctx, node, NewContext(values))
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}
