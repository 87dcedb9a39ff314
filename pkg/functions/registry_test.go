package functions_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goel/pkg/functions"
	"github.com/sandrolain/goel/pkg/types"
)

func identity() functions.Function {
	return functions.Function{
		Name:     "identity",
		Compiler: func(args ...string) string { return args[0] },
		Evaluator: func(_ map[string]any, args ...any) (any, error) {
			return args[0], nil
		},
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := functions.NewRegistry()
	require.NoError(t, reg.Add(identity()))

	assert.True(t, reg.Has("identity"))
	assert.False(t, reg.Has("missing"))

	fn, ok := reg.Get("identity")
	require.True(t, ok)
	assert.Equal(t, `"foo"`, fn.Compiler(`"foo"`))

	v, err := fn.Evaluator(nil, "foo")
	require.NoError(t, err)
	assert.Equal(t, "foo", v)
}

func TestRegistryLastWriteWins(t *testing.T) {
	reg := functions.NewRegistry()
	for i := range 3 {
		require.NoError(t, reg.Register("f",
			func(...string) string { return fmt.Sprint(i) },
			func(map[string]any, ...any) (any, error) { return i, nil },
		))
	}

	assert.Equal(t, 1, reg.Len())
	fn, ok := reg.Get("f")
	require.True(t, ok)
	assert.Equal(t, "2", fn.Compiler())
	v, err := fn.Evaluator(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestRegistryRejectsIncompleteFunctions(t *testing.T) {
	reg := functions.NewRegistry()

	tests := []struct {
		name string
		fn   functions.Function
	}{
		{name: "no name", fn: functions.Function{Compiler: identity().Compiler, Evaluator: identity().Evaluator}},
		{name: "no compiler", fn: functions.Function{Name: "f", Evaluator: identity().Evaluator}},
		{name: "no evaluator", fn: functions.Function{Name: "f", Compiler: identity().Compiler}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Add(tt.fn)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidArgument)
		})
	}
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryLookup(t *testing.T) {
	reg := functions.NewRegistry()
	_, err := reg.Lookup("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	assert.Contains(t, err.Error(), `The function "nope" does not exist`)
}

func TestRegistryProvider(t *testing.T) {
	provider := functions.ProviderFunc(func() []functions.Function {
		upper := identity()
		upper.Name = "upper"
		return []functions.Function{identity(), upper}
	})

	reg := functions.NewRegistry()
	require.NoError(t, reg.AddProvider(provider))
	assert.Equal(t, []string{"identity", "upper"}, reg.Names())

	clone := reg.Clone()
	require.NoError(t, clone.Register("extra", identity().Compiler, identity().Evaluator))
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 3, clone.Len())
}

func TestRegistryConcurrentReads(t *testing.T) {
	reg := functions.NewRegistry()
	require.NoError(t, reg.Add(identity()))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_, ok := reg.Get("identity")
				assert.True(t, ok)
				_ = reg.Names()
			}
		}()
	}
	wg.Wait()
}
