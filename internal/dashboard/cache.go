package dashboard

// renderKey identifies one rendering of a static page.
type renderKey struct {
	page  Page
	width int
}

// Cache stores rendered static pages keyed by page and width, since glamour
// rendering is too slow to repeat on every frame.
// It is not safe for concurrent use; callers must confine access to the
// Bubble Tea update loop.
type Cache struct {
	entries map[renderKey]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[renderKey]string)}
}

// Get returns the cached rendering, or "" and false on miss.
func (c *Cache) Get(page Page, width int) (string, bool) {
	s, ok := c.entries[renderKey{page, width}]
	return s, ok
}

// Set stores a rendering, replacing any existing entry.
func (c *Cache) Set(page Page, width int, rendered string) {
	c.entries[renderKey{page, width}] = rendered
}

// Invalidate clears all cached entries.
func (c *Cache) Invalidate() {
	c.entries = make(map[renderKey]string)
}
