package cache

import "github.com/sandrolain/goel/pkg/types"

// TieredCache layers two caches: lookups try front first, then back,
// promoting back hits into front. Saves go to both.
//
// With an in-process front, repeated hits within one process return the
// same *ParsedExpression even when back decodes a fresh value each time.
type TieredCache struct {
	front ParserCache
	back  ParserCache
}

var _ ParserCache = (*TieredCache)(nil)

// Tiered creates a TieredCache.
func Tiered(front, back ParserCache) *TieredCache {
	return &TieredCache{front: front, back: back}
}

// Fetch implements ParserCache.
func (c *TieredCache) Fetch(key string) (*types.ParsedExpression, bool) {
	if expr, ok := c.front.Fetch(key); ok {
		return expr, true
	}
	expr, ok := c.back.Fetch(key)
	if !ok {
		return nil, false
	}
	c.front.Save(key, expr)
	return expr, true
}

// Save implements ParserCache.
func (c *TieredCache) Save(key string, expr *types.ParsedExpression) {
	c.front.Save(key, expr)
	c.back.Save(key, expr)
}
