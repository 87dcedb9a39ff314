package parser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Names is the set of variables an expression may reference.
//
// Each entry binds a surface name, the identifier written in the
// expression, to an internal name, the identifier stored in the produced
// NameNode. The zero value declares no names.
type Names struct {
	bindings map[string]string // surface -> internal
}

// NewNames declares each name as its own binding.
func NewNames(names ...string) Names {
	n := Names{bindings: make(map[string]string, len(names))}
	for _, name := range names {
		n.bindings[name] = name
	}
	return n
}

// AliasNames declares names from a map of internal name to surface name:
// AliasNames(map[string]string{"foo": "bar"}) lets the expression write
// bar and produces Name("foo").
func AliasNames(aliases map[string]string) Names {
	n := Names{bindings: make(map[string]string, len(aliases))}
	for internal, surface := range aliases {
		n.bindings[surface] = internal
	}
	return n
}

// NamesFrom builds Names from a loosely typed value, as found in decoded
// configuration. It accepts nil, Names, []string, []any, map[string]string
// and map[string]any. List items and map values that are not strings are
// formatted with %v.
func NamesFrom(v any) (Names, error) {
	switch val := v.(type) {
	case nil:
		return Names{}, nil
	case Names:
		return val, nil
	case []string:
		return NewNames(val...), nil
	case []any:
		names := make([]string, len(val))
		for i, item := range val {
			names[i] = fmt.Sprint(item)
		}
		return NewNames(names...), nil
	case map[string]string:
		return AliasNames(val), nil
	case map[string]any:
		aliases := make(map[string]string, len(val))
		for internal, surface := range val {
			aliases[internal] = fmt.Sprint(surface)
		}
		return AliasNames(aliases), nil
	default:
		return Names{}, fmt.Errorf("unsupported names type %T", v)
	}
}

// Resolve returns the internal name bound to surface.
func (n Names) Resolve(surface string) (string, bool) {
	internal, ok := n.bindings[surface]
	return internal, ok
}

// Surface returns the declared surface names, sorted.
func (n Names) Surface() []string {
	out := make([]string, 0, len(n.bindings))
	for surface := range n.bindings {
		out = append(out, surface)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of declared names.
func (n Names) Len() int {
	return len(n.bindings)
}

// CacheKey returns a stable representation of the declared names:
// sorted entries joined by "|", each written as a quoted "name" or, for
// aliases, "internal":"surface". Quoting keeps names containing the
// separators distinct.
func (n Names) CacheKey() string {
	items := make([]string, 0, len(n.bindings))
	for surface, internal := range n.bindings {
		if surface == internal {
			items = append(items, strconv.Quote(surface))
		} else {
			items = append(items, strconv.Quote(internal)+":"+strconv.Quote(surface))
		}
	}
	sort.Strings(items)
	return strings.Join(items, "|")
}
