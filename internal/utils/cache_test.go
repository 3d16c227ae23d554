package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryPosterCache(t *testing.T) {
	c := NewMemoryPosterCache()

	_, found := c.Get("https://x/heat")
	assert.False(t, found)

	c.Set("https://x/heat", "https://img/heat.jpg")
	url, found := c.Get("https://x/heat")
	assert.True(t, found)
	assert.Equal(t, "https://img/heat.jpg", url)

	c.SetMissing("https://x/alien")
	url, found = c.Get("https://x/alien")
	assert.True(t, found)
	assert.Empty(t, url)

	assert.Equal(t, 2, c.Len())
}

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache[[]string](1, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("feed", []string{"a"})
	v, ok := c.Get("feed")
	assert.True(t, ok)
	assert.Equal(t, []string{"a"}, v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("feed")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLCacheEvictsLeastRecent(t *testing.T) {
	c := NewTTLCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	c.Delete("b")
	_, ok = c.Get("b")
	assert.False(t, ok)
}
