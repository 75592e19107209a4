package templates

// Cache memoizes compiled templates keyed by their exact source text and
// tracks hit/miss statistics. Parse failures are counted as misses and not
// cached, so a corrected source recompiles immediately.
//
// The cache is unbounded: in practice the set of distinct sources equals
// the number of user-authored profiles. It is not safe for concurrent use;
// callers serialize access through the update loop.
type Cache struct {
	engine  Engine
	entries map[string]Template

	hits   int
	misses int
}

func NewCache(engine Engine) *Cache {
	return &Cache{
		engine:  engine,
		entries: make(map[string]Template, 16),
	}
}

// GetOrCompile returns the compiled template for source, compiling and
// caching it on first sight.
func (c *Cache) GetOrCompile(source string) (Template, error) {
	if t, ok := c.entries[source]; ok {
		c.hits++
		return t, nil
	}

	c.misses++
	t, err := c.engine.Compile(source)
	if err != nil {
		return nil, err
	}

	c.entries[source] = t
	return t, nil
}

// Clear drops all cached templates and resets the counters.
func (c *Cache) Clear() {
	c.entries = make(map[string]Template, 16)
	c.hits = 0
	c.misses = 0
}

func (c *Cache) Hits() int   { return c.hits }
func (c *Cache) Misses() int { return c.misses }
func (c *Cache) Len() int    { return len(c.entries) }

// HitRate returns the cache hit percentage, 0 when the cache is untouched.
func (c *Cache) HitRate() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total) * 100
}
