package render

// cacheCapacity bounds the Renderer's page-image cache (spec.md §4.3 step
// 5 / §5 memory model: "bounded to 5 entries").
const cacheCapacity = 5

type cacheKey struct {
	page          int
	width, height int
}

// pageCache is a bounded-size FIFO approximation of LRU: on overflow the
// first key inserted is evicted, deterministically rather than by recency
// (spec.md §3 invariant 7).
type pageCache struct {
	order   []cacheKey
	entries map[cacheKey]Buffer
}

func newPageCache() *pageCache {
	return &pageCache{entries: make(map[cacheKey]Buffer)}
}

func (c *pageCache) get(k cacheKey) (Buffer, bool) {
	buf, ok := c.entries[k]
	return buf, ok
}

func (c *pageCache) put(k cacheKey, buf Buffer) {
	if _, exists := c.entries[k]; !exists {
		if len(c.order) >= cacheCapacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, k)
	}
	c.entries[k] = buf
}

func (c *pageCache) clear() {
	c.order = nil
	c.entries = make(map[cacheKey]Buffer)
}

func (c *pageCache) len() int {
	return len(c.entries)
}
