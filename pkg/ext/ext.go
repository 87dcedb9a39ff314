// Package ext provides optional function bundles for goel.
//
// The functions live in sub-packages grouped by category:
//   - extstring  – lower, upper, trim, replace, split, join, repeat, indexOf, …
//   - extnumeric – abs, floor, ceil, round, min, max
//   - extarray   – len, first, last
//
// Every function has both halves, and its compiled form calls the expr-lang
// builtin of the same name, so compiled and evaluated results agree.
//
// # Integration – all extensions at once
//
//	el, err := goel.New(ext.WithAll())
//
// # Integration – by category
//
//	el, err := goel.New(
//	    ext.WithString(),
//	    ext.WithNumeric(),
//	)
//
// # Integration – single function from a sub-package
//
//	el, err := goel.New(goel.WithFunctions(extstring.Lower()))
package ext

import (
	"fmt"
	"sort"

	"github.com/sandrolain/goel"
	"github.com/sandrolain/goel/pkg/ext/extarray"
	"github.com/sandrolain/goel/pkg/ext/extnumeric"
	"github.com/sandrolain/goel/pkg/ext/extstring"
	"github.com/sandrolain/goel/pkg/functions"
)

var providers = map[string]func() functions.Provider{
	"string":  extstring.Provider,
	"numeric": extnumeric.Provider,
	"array":   extarray.Provider,
}

// Names returns the names of the available bundles, sorted.
func Names() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the bundle registered under name.
func Lookup(name string) (functions.Provider, error) {
	p, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown extension %q (available: %v)", name, Names())
	}
	return p(), nil
}

// All returns every extension function.
func All() []functions.Function {
	var all []functions.Function
	all = append(all, extstring.All()...)
	all = append(all, extnumeric.All()...)
	all = append(all, extarray.All()...)
	return all
}

// WithAll returns an Option that registers every extension function.
func WithAll() goel.Option {
	return goel.WithFunctions(All()...)
}

// WithString returns an Option for the string functions.
func WithString() goel.Option {
	return goel.WithProviders(extstring.Provider())
}

// WithNumeric returns an Option for the numeric functions.
func WithNumeric() goel.Option {
	return goel.WithProviders(extnumeric.Provider())
}

// WithArray returns an Option for the list functions.
func WithArray() goel.Option {
	return goel.WithProviders(extarray.Provider())
}
