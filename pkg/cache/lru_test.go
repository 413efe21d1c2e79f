package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewLRU[string, int]("test_evict", 2)
	require.NoError(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	_, ok := c.Get("a") // a is now most recent
	require.True(t, ok)

	c.Add("c", 3) // evicts b

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Evictions)
	assert.Equal(t, 2, stats.Size)

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRU_MissCounting(t *testing.T) {
	c, err := NewLRU[string, *int]("test_miss", 4)
	require.NoError(t, err)

	v, ok := c.Get("absent")
	assert.False(t, ok)
	assert.Nil(t, v)

	// A cached nil is a hit, not a miss.
	c.Add("none", nil)
	v, ok = c.Get("none")
	assert.True(t, ok)
	assert.Nil(t, v)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Hits)
}

func TestNewLRU_RejectsNonPositiveSize(t *testing.T) {
	_, err := NewLRU[string, int]("bad", 0)
	assert.Error(t, err)
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c, err := NewLRU[string, int]("test_concurrent", 16)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (w*7+i)%40)
				if v, ok := c.Get(key); ok {
					assert.Equal(t, len(key), v)
					continue
				}
				c.Add(key, len(key))
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Stats().Size, 16)
}
