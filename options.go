package goel

import (
	"log/slog"
	"time"

	"github.com/sandrolain/goel/pkg/cache"
	"github.com/sandrolain/goel/pkg/functions"
)

// Option configures an ExpressionLanguage.
type Option func(*options)

type options struct {
	cache               cache.ParserCache
	providers           []functions.Provider
	functions           []functions.Function
	logger              *slog.Logger
	debug               bool
	maxDepth            int
	evalMaxDepth        int
	maxExpressionLength int
	timeout             time.Duration
}

// WithCache sets the cache of parsed expressions. The default is an
// in-memory LRU of cache.DefaultCapacity entries.
func WithCache(c cache.ParserCache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithProviders registers every function of the given providers.
func WithProviders(providers ...functions.Provider) Option {
	return func(o *options) {
		o.providers = append(o.providers, providers...)
	}
}

// WithFunctions registers the given functions. They are added after the
// providers, so they replace provider functions with the same name.
func WithFunctions(fns ...functions.Function) Option {
	return func(o *options) {
		o.functions = append(o.functions, fns...)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) Option {
	return func(o *options) {
		o.debug = enabled
	}
}

// WithMaxDepth sets the maximum nesting depth accepted by the parser.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithEvalMaxDepth sets the maximum nesting depth of an evaluation.
func WithEvalMaxDepth(depth int) Option {
	return func(o *options) {
		o.evalMaxDepth = depth
	}
}

// WithMaxExpressionLength sets the longest expression, in bytes, accepted
// by Parse, Compile, Evaluate and Lint. Zero disables the limit.
func WithMaxExpressionLength(n int) Option {
	return func(o *options) {
		o.maxExpressionLength = n
	}
}

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}
