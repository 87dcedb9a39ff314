// Package goel provides a small, sandboxed expression language for
// evaluating boolean, arithmetic and string expressions against a set of
// caller-supplied variables.
//
//	user.isAdmin() and request.method == "GET"
//
// Expressions are parsed into an Abstract Syntax Tree that can either be
// evaluated directly or compiled into expr-lang/expr source. Parsed trees
// are cached, so repeated evaluations of the same expression skip parsing.
//
// # Quick Start
//
//	// Simple evaluation
//	result, err := goel.Evaluate("1 + a", map[string]any{"a": 2})
//
//	// Parse once, evaluate many times
//	el := goel.MustNew()
//	parsed, err := el.Parse("price > 100", parser.NewNames("price"))
//	result1, _ := el.EvaluateParsed(ctx, parsed, values1)
//	result2, _ := el.EvaluateParsed(ctx, parsed, values2)
//
//	// With functions
//	el, err := goel.New(
//	    goel.WithProviders(extstring.Provider()),
//	    goel.WithCache(cache.New(1024)),
//	)
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/sandrolain/goel/pkg/parser
//   - Evaluator: github.com/sandrolain/goel/pkg/evaluator
//   - Compiler: github.com/sandrolain/goel/pkg/compiler
//   - Functions: github.com/sandrolain/goel/pkg/functions
//   - Types: github.com/sandrolain/goel/pkg/types
package goel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sandrolain/goel/pkg/cache"
	"github.com/sandrolain/goel/pkg/compiler"
	"github.com/sandrolain/goel/pkg/evaluator"
	"github.com/sandrolain/goel/pkg/functions"
	"github.com/sandrolain/goel/pkg/parser"
	"github.com/sandrolain/goel/pkg/types"
)

// DefaultMaxExpressionLength is the longest expression accepted by default.
const DefaultMaxExpressionLength = 10000

// Version returns the current version of goel.
func Version() string {
	return "v0.1.0-dev"
}

// ExpressionLanguage parses, compiles and evaluates expressions.
//
// It is safe for concurrent use. Functions are expected to be registered
// during setup.
type ExpressionLanguage struct {
	opts      options
	logger    *slog.Logger
	cache     cache.ParserCache
	registry  *functions.Registry
	evaluator *evaluator.Evaluator
}

// New creates an ExpressionLanguage.
func New(opts ...Option) (*ExpressionLanguage, error) {
	o := options{
		maxDepth:            parser.DefaultMaxDepth,
		evalMaxDepth:        evaluator.DefaultMaxDepth,
		maxExpressionLength: DefaultMaxExpressionLength,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.cache == nil {
		o.cache = cache.New(cache.DefaultCapacity)
	}

	registry := functions.NewRegistry()
	for _, p := range o.providers {
		if err := registry.AddProvider(p); err != nil {
			return nil, err
		}
	}
	for _, fn := range o.functions {
		if err := registry.Add(fn); err != nil {
			return nil, err
		}
	}

	return &ExpressionLanguage{
		opts:     o,
		logger:   o.logger,
		cache:    o.cache,
		registry: registry,
		evaluator: evaluator.New(registry,
			evaluator.WithLogger(o.logger),
			evaluator.WithDebug(o.debug),
			evaluator.WithMaxDepth(o.evalMaxDepth),
			evaluator.WithTimeout(o.timeout),
		),
	}, nil
}

// MustNew is like New but panics if a function cannot be registered.
// It simplifies safe initialization of global variables.
func MustNew(opts ...Option) *ExpressionLanguage {
	el, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("goel: New: %v", err))
	}
	return el
}

// Parse returns the tree of expression, taking it from the cache when an
// entry for the same expression and names exists. Trees parsed on a miss
// are saved to the cache exactly once.
func (el *ExpressionLanguage) Parse(expression string, names parser.Names) (*types.ParsedExpression, error) {
	if err := el.checkLength(expression); err != nil {
		return nil, err
	}

	key := cache.Key(expression, names.CacheKey())
	if parsed, ok := el.cache.Fetch(key); ok {
		if el.opts.debug {
			el.logger.Debug("expression cache hit", "expression", expression)
		}
		return parsed, nil
	}
	if el.opts.debug {
		el.logger.Debug("expression cache miss", "expression", expression)
	}

	parsed, err := parser.Parse(expression, names, parser.WithMaxDepth(el.opts.maxDepth))
	if err != nil {
		return nil, err
	}
	el.cache.Save(key, parsed)
	return parsed, nil
}

// Lint reports whether expression is valid. With nil names every variable
// is accepted.
func (el *ExpressionLanguage) Lint(expression string, names *parser.Names) error {
	if err := el.checkLength(expression); err != nil {
		return err
	}
	return parser.Lint(expression, names, parser.WithMaxDepth(el.opts.maxDepth))
}

// Compile parses expression and renders it as expr-lang source.
func (el *ExpressionLanguage) Compile(expression string, names parser.Names) (string, error) {
	parsed, err := el.Parse(expression, names)
	if err != nil {
		return "", err
	}
	return el.CompileParsed(parsed)
}

// CompileParsed renders an already parsed expression as expr-lang source.
func (el *ExpressionLanguage) CompileParsed(parsed *types.ParsedExpression) (string, error) {
	return compiler.Compile(parsed.Nodes(), el.registry)
}

// Evaluate parses expression, declaring the keys of values as variable
// names, and evaluates it.
func (el *ExpressionLanguage) Evaluate(expression string, values map[string]any) (any, error) {
	return el.EvaluateContext(context.Background(), expression, values)
}

// EvaluateContext is like Evaluate with a custom context.
func (el *ExpressionLanguage) EvaluateContext(ctx context.Context, expression string, values map[string]any) (any, error) {
	parsed, err := el.Parse(expression, namesOf(values))
	if err != nil {
		return nil, err
	}
	return el.EvaluateParsed(ctx, parsed, values)
}

// EvaluateParsed evaluates an already parsed expression.
func (el *ExpressionLanguage) EvaluateParsed(ctx context.Context, parsed *types.ParsedExpression, values map[string]any) (any, error) {
	return el.evaluator.Eval(ctx, parsed.Nodes(), values)
}

// Register adds a function from its compiler and evaluator halves.
// Registering an existing name replaces it.
func (el *ExpressionLanguage) Register(name string, compile functions.CompilerFunc, evaluate functions.EvaluatorFunc) error {
	return el.registry.Register(name, compile, evaluate)
}

// AddFunction adds a function definition.
func (el *ExpressionLanguage) AddFunction(fn functions.Function) error {
	return el.registry.Add(fn)
}

// RegisterProvider adds every function supplied by p.
func (el *ExpressionLanguage) RegisterProvider(p functions.Provider) error {
	return el.registry.AddProvider(p)
}

// Functions returns the names of the registered functions, sorted.
func (el *ExpressionLanguage) Functions() []string {
	return el.registry.Names()
}

// Registry returns the function registry.
func (el *ExpressionLanguage) Registry() *functions.Registry {
	return el.registry
}

func (el *ExpressionLanguage) checkLength(expression string) error {
	if limit := el.opts.maxExpressionLength; limit > 0 && len(expression) > limit {
		return types.Errorf(types.ErrExpressionTooLong, "expression is %d bytes long, the limit is %d", len(expression), limit)
	}
	return nil
}

func namesOf(values map[string]any) parser.Names {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	return parser.NewNames(names...)
}

var defaultLanguage = sync.OnceValue(func() *ExpressionLanguage {
	return MustNew()
})

// Default returns the shared instance used by the package-level functions.
func Default() *ExpressionLanguage {
	return defaultLanguage()
}

// Evaluate evaluates expression with the default instance.
//
// Example:
//
//	result, err := goel.Evaluate("a * 2", map[string]any{"a": 21})
func Evaluate(expression string, values map[string]any) (any, error) {
	return Default().Evaluate(expression, values)
}

// Compile compiles expression with the default instance.
func Compile(expression string, names ...string) (string, error) {
	return Default().Compile(expression, parser.NewNames(names...))
}

// Parse parses expression with the default instance.
func Parse(expression string, names ...string) (*types.ParsedExpression, error) {
	return Default().Parse(expression, parser.NewNames(names...))
}

// Lint checks expression with the default instance, accepting any variable.
func Lint(expression string) error {
	return Default().Lint(expression, nil)
}
