package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func fixture(t *testing.T) (parent string, children []string) {
	t.Helper()
	dir := t.TempDir()
	parent = writeFile(t, filepath.Join(dir, "feature.md"))
	children = []string{
		writeFile(t, filepath.Join(dir, "tasks-open", "T-a.md")),
		writeFile(t, filepath.Join(dir, "tasks-open", "T-b.md")),
	}
	return parent, children
}

func TestNewRejectsNonPositiveSize(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		_, err := New(n)
		assert.Error(t, err, "max entries %d", n)
	}
}

func TestSetThenGetCoherent(t *testing.T) {
	parent, children := fixture(t)
	c, err := New(8)
	require.NoError(t, err)

	require.NoError(t, c.Set(parent, children))
	got, ok := c.Get(parent)
	require.True(t, ok)
	assert.Equal(t, children, got)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 1.0, stats.HitRate)
}

func TestGetMissOnAbsentKey(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	_, ok := c.Get("/nowhere/feature.md")
	assert.False(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Misses)
}

func TestChildMTimeChangeForcesMiss(t *testing.T) {
	parent, children := fixture(t)
	c, err := New(8)
	require.NoError(t, err)
	require.NoError(t, c.Set(parent, children))

	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(children[1], future, future))

	_, ok := c.Get(parent)
	assert.False(t, ok, "touched child must invalidate the entry")
	assert.Equal(t, uint64(1), c.Stats().Misses)
}

func TestDeletedChildForcesMiss(t *testing.T) {
	parent, children := fixture(t)
	c, err := New(8)
	require.NoError(t, err)
	require.NoError(t, c.Set(parent, children))

	require.NoError(t, os.Remove(children[0]))
	_, ok := c.Get(parent)
	assert.False(t, ok)
}

func TestParentChangeForcesMiss(t *testing.T) {
	parent, children := fixture(t)
	c, err := New(8)
	require.NoError(t, err)
	require.NoError(t, c.Set(parent, children))

	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(parent, future, future))
	_, ok := c.Get(parent)
	assert.False(t, ok)

	// Re-set after the mutation serves again.
	require.NoError(t, c.Set(parent, children))
	_, ok = c.Get(parent)
	assert.True(t, ok)
}

func TestLRUBoundEvictsOldest(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	var parents []string
	for i := 0; i < 3; i++ {
		parent, children := fixture(t)
		parents = append(parents, parent)
		require.NoError(t, c.Set(parent, children))
	}

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, uint64(1), stats.Evictions, "one insert past the bound evicts exactly one entry")

	_, ok := c.Get(parents[0])
	assert.False(t, ok, "least recently used entry should be gone")
	_, ok = c.Get(parents[2])
	assert.True(t, ok)
}

func TestInvalidateAndClear(t *testing.T) {
	parent, children := fixture(t)
	c, err := New(4)
	require.NoError(t, err)
	require.NoError(t, c.Set(parent, children))

	c.Invalidate(parent)
	_, ok := c.Get(parent)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), c.Stats().Evictions, "invalidation is not an eviction")

	require.NoError(t, c.Set(parent, children))
	c.Clear()
	assert.Equal(t, 0, c.Stats().Size)
	assert.Equal(t, uint64(0), c.Stats().Evictions)
}

func TestSetFailsOnMissingPaths(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)
	assert.Error(t, c.Set("/nowhere/feature.md", nil))

	parent, _ := fixture(t)
	assert.Error(t, c.Set(parent, []string{"/nowhere/T-x.md"}))
}
