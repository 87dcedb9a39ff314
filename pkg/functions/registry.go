// Package functions provides the registry of named functions callable from
// expressions.
//
// Every function has two halves: a Compiler that renders a call as source
// text from the already compiled arguments, and an Evaluator that computes
// the result from evaluated arguments. Both halves must agree on meaning.
//
// # Example
//
//	reg := functions.NewRegistry()
//	err := reg.Register("identity",
//	    func(args ...string) string { return args[0] },
//	    func(_ map[string]any, args ...any) (any, error) { return args[0], nil },
//	)
package functions

import (
	"sort"
	"sync"

	"github.com/sandrolain/goel/pkg/types"
)

// CompilerFunc renders a call to the function as target source text.
// args are the compiled argument expressions in order.
type CompilerFunc func(args ...string) string

// EvaluatorFunc computes the result of a call. values holds every variable
// of the evaluation; args are the evaluated arguments in order.
type EvaluatorFunc func(values map[string]any, args ...any) (any, error)

// Function describes a function together with its two implementations.
type Function struct {
	// Name is the function name as it appears inside expressions.
	Name string
	// Compiler renders calls for the compile backend.
	Compiler CompilerFunc
	// Evaluator computes calls for the evaluate backend.
	Evaluator EvaluatorFunc
}

// Provider supplies a set of functions, typically an extension bundle.
type Provider interface {
	Functions() []Function
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func() []Function

// Functions implements Provider.
func (f ProviderFunc) Functions() []Function {
	return f()
}

// Registry maps function names to their definitions.
//
// Lookups are safe for concurrent use. Registering a name that already
// exists replaces the previous definition.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Function)}
}

// Register adds a function built from its name and halves.
func (r *Registry) Register(name string, compiler CompilerFunc, evaluator EvaluatorFunc) error {
	return r.Add(Function{Name: name, Compiler: compiler, Evaluator: evaluator})
}

// Add registers fn, replacing any function with the same name.
func (r *Registry) Add(fn Function) error {
	if fn.Name == "" {
		return types.NewError(types.ErrInvalidFunction, "function name must not be empty")
	}
	if fn.Compiler == nil || fn.Evaluator == nil {
		return types.Errorf(types.ErrInvalidFunction, "function %q must provide both a compiler and an evaluator", fn.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[fn.Name] = fn
	return nil
}

// AddProvider registers every function supplied by p.
func (r *Registry) AddProvider(p Provider) error {
	for _, fn := range p.Functions() {
		if err := r.Add(fn); err != nil {
			return err
		}
	}
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[name]
	return ok
}

// Get returns the function registered under name.
func (r *Registry) Get(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Lookup is like Get but reports a missing function as the
// undefined-function error.
func (r *Registry) Lookup(name string) (Function, error) {
	fn, ok := r.Get(name)
	if !ok {
		return Function{}, types.UndefinedFunction(name)
	}
	return fn, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &Registry{funcs: make(map[string]Function, len(r.funcs))}
	for name, fn := range r.funcs {
		out.funcs[name] = fn
	}
	return out
}
