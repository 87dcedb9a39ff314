package cache_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/goel/pkg/cache"
	"github.com/sandrolain/goel/pkg/types"
)

func parsed(source string) *types.ParsedExpression {
	return types.NewParsedExpression(source, types.NewName(source))
}

func TestCacheNew(t *testing.T) {
	c := cache.New(10)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 10, c.Capacity())
}

func TestCacheDefaultCapacity(t *testing.T) {
	c := cache.New(0)
	assert.Equal(t, cache.DefaultCapacity, c.Capacity())
}

func TestCacheSaveFetch(t *testing.T) {
	c := cache.New(4)
	expr := parsed("a")
	c.Save("a", expr)
	assert.Equal(t, 1, c.Len())

	got, ok := c.Fetch("a")
	require.True(t, ok)
	assert.Same(t, expr, got, "a hit returns the saved instance")

	_, ok = c.Fetch("missing")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate(), 1e-9)
}

func TestCacheLRUEviction(t *testing.T) {
	c := cache.New(3)
	for _, k := range []string{"a", "b", "c"} {
		c.Save(k, parsed(k))
	}
	// touch "a" so "b" becomes the least recently used entry
	_, ok := c.Fetch("a")
	require.True(t, ok)
	c.Save("d", parsed("d"))

	assert.Equal(t, 3, c.Len())
	_, ok = c.Fetch("b")
	assert.False(t, ok, `expected "b" to be evicted`)
	_, ok = c.Fetch("a")
	assert.True(t, ok)
	_, ok = c.Fetch("d")
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestCacheInvalidateAndClear(t *testing.T) {
	c := cache.New(4)
	c.Save("k", parsed("k"))
	c.Save("j", parsed("j"))

	c.Invalidate("k")
	_, ok := c.Fetch("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCacheFetchOrParse(t *testing.T) {
	c := cache.New(4)
	calls := 0
	parse := func() (*types.ParsedExpression, error) {
		calls++
		return parsed("x"), nil
	}

	first, err := c.FetchOrParse("x", parse)
	require.NoError(t, err)
	second, err := c.FetchOrParse("x", parse)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = c.FetchOrParse("y", func() (*types.ParsedExpression, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	_, ok := c.Fetch("y")
	assert.False(t, ok, "errors are not cached")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "a+%2B+b%2F%2Fa%7Cb", cache.Key("a + b", "a|b"))
	assert.NotEqual(t, cache.Key("a", "b"), cache.Key("a", "c"))
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := cache.New(8)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 200 {
				key := fmt.Sprintf("k%d", (i+j)%16)
				if _, ok := c.Fetch(key); !ok {
					c.Save(key, parsed(key))
				}
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 8)
}

func TestLRUGeneric(t *testing.T) {
	l := cache.NewLRU[int](2)
	l.Set("a", 1)
	l.Set("a", 2)
	v, ok := l.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, l.Len())

	_, ok = l.Get("zz")
	assert.False(t, ok)
}
