// Package cache memoizes parsed expressions.
//
// The facade consults a ParserCache before parsing an expression and saves
// the result after a successful parse. Three implementations are provided:
//   - Cache: an in-process LRU that returns the same *ParsedExpression on
//     every hit
//   - RedisCache: a persistent cache shared between processes
//   - Tiered: an in-process front backed by a persistent back
//
// # Example
//
//	c := cache.New(1024)
//	expr, err := c.FetchOrParse(key, func() (*types.ParsedExpression, error) {
//	    return parser.Parse(source, names)
//	})
package cache

import (
	"net/url"

	"github.com/sandrolain/goel/pkg/types"
)

// ParserCache stores parsed expressions by key.
type ParserCache interface {
	// Fetch returns the expression saved under key.
	Fetch(key string) (*types.ParsedExpression, bool)
	// Save stores expr under key.
	Save(key string, expr *types.ParsedExpression)
}

// Key builds the cache key of an expression parsed with a set of declared
// names, given as their CacheKey.
func Key(expression, names string) string {
	return url.QueryEscape(expression + "//" + names)
}

// Cache is an in-memory LRU ParserCache.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	lru *LRU[*types.ParsedExpression]
}

var _ ParserCache = (*Cache)(nil)

// New creates a new cache with the given capacity.
// capacity must be > 0; if <= 0, a default of 256 is used.
func New(capacity int) *Cache {
	return &Cache{lru: NewLRU[*types.ParsedExpression](capacity)}
}

// Fetch retrieves a parsed expression.
// Returns (expr, true) if found and marks it as most recently used.
func (c *Cache) Fetch(key string) (*types.ParsedExpression, bool) {
	return c.lru.Get(key)
}

// Save inserts or replaces an expression.
func (c *Cache) Save(key string, expr *types.ParsedExpression) {
	c.lru.Set(key, expr)
}

// FetchOrParse returns the expression for key from cache, or calls parse()
// to create it, caches the result, and returns it.
// Errors are not cached.
func (c *Cache) FetchOrParse(key string, parse func() (*types.ParsedExpression, error)) (*types.ParsedExpression, error) {
	if expr, ok := c.Fetch(key); ok {
		return expr, nil
	}
	expr, err := parse()
	if err != nil {
		return nil, err
	}
	c.Save(key, expr)
	return expr, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.lru.Capacity()
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key string) {
	c.lru.Invalidate(key)
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.lru.Clear()
}

// Stats returns hit, miss and eviction counters.
func (c *Cache) Stats() Stats {
	return c.lru.Stats()
}
