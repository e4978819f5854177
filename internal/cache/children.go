// Package cache provides the children-discovery cache: a bounded,
// mutex-protected map from a parent record path to its previously discovered
// child record paths, validated against filesystem modification times on every
// read. The cache is scoped to one process and carries no persistence
// guarantee; a cold or absent cache only costs query latency, never
// correctness.
package cache

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// entry records everything needed to revalidate a cached listing.
type entry struct {
	parentMTime time.Time
	children    []string
	childMTimes []time.Time
	cachedAt    time.Time
}

// Stats is a consistent snapshot of cache counters, taken under the same lock
// that guards mutation.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// ChildrenCache caches "list immediate children of P" results keyed by P's
// resolved record path. All methods are safe for concurrent use.
type ChildrenCache struct {
	mu        sync.Mutex
	lru       *simplelru.LRU[string, entry]
	maxSize   int
	hits      uint64
	misses    uint64
	evictions uint64
	now       func() time.Time
}

// New constructs a cache bounded to maxEntries. Zero or negative sizes are
// rejected immediately.
func New(maxEntries int) (*ChildrenCache, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("cache: max entries must be positive, got %d", maxEntries)
	}
	c := &ChildrenCache{maxSize: maxEntries, now: time.Now}
	lru, err := simplelru.NewLRU[string, entry](maxEntries, func(string, entry) {
		c.evictions++
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	c.lru = lru
	return c, nil
}

// Get returns the cached children of parentPath if the entry is still
// coherent with the filesystem. The parent and every cached child are
// re-stated; a missing path, a changed mtime, or any stat error makes the
// entry stale and Get reports a miss without serving it. Stale entries are
// left in place for the next Set to overwrite.
func (c *ChildrenCache) Get(parentPath string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Peek(parentPath)
	if !ok {
		c.misses++
		return nil, false
	}
	if !c.valid(parentPath, e) {
		c.misses++
		return nil, false
	}
	// Bump recency only for genuine hits.
	c.lru.Get(parentPath)
	c.hits++
	children := make([]string, len(e.children))
	copy(children, e.children)
	return children, true
}

// valid re-stats the parent and every child against the recorded mtimes.
func (c *ChildrenCache) valid(parentPath string, e entry) bool {
	info, err := os.Stat(parentPath)
	if err != nil || !info.ModTime().Equal(e.parentMTime) {
		return false
	}
	for i, child := range e.children {
		info, err := os.Stat(child)
		if err != nil || !info.ModTime().Equal(e.childMTimes[i]) {
			return false
		}
	}
	return true
}

// Set records the children of parentPath, stating everything now so later
// Gets can detect drift. Inserting beyond the bound evicts the least recently
// used entry.
func (c *ChildrenCache) Set(parentPath string, children []string) error {
	info, err := os.Stat(parentPath)
	if err != nil {
		return fmt.Errorf("cache: stat parent %s: %w", parentPath, err)
	}
	mtimes := make([]time.Time, len(children))
	for i, child := range children {
		ci, err := os.Stat(child)
		if err != nil {
			return fmt.Errorf("cache: stat child %s: %w", child, err)
		}
		mtimes[i] = ci.ModTime()
	}
	stored := make([]string, len(children))
	copy(stored, children)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(parentPath, entry{
		parentMTime: info.ModTime(),
		children:    stored,
		childMTimes: mtimes,
		cachedAt:    c.now(),
	})
	return nil
}

// Invalidate drops the entry for parentPath, if any.
func (c *ChildrenCache) Invalidate(parentPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lru.Contains(parentPath) {
		// Remove fires the eviction callback; explicit invalidation is not
		// an eviction, so compensate.
		c.lru.Remove(parentPath)
		c.evictions--
	}
}

// Clear empties the cache without touching the counters' hit/miss history.
func (c *ChildrenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := c.evictions
	c.lru.Purge()
	c.evictions = before
}

// Stats returns a snapshot of cache size and counters.
func (c *ChildrenCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{
		Size:      c.lru.Len(),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
