package shardmap_test

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonoton/go-pubsublatest/internal/shardmap"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rounds shard count up to a power of two", func(t *testing.T) {
		t.Parallel()

		m := shardmap.New[int](5, 0)
		assert.Equal(t, 8, m.ShardCount())
	})

	t.Run("uses default shard count for zero", func(t *testing.T) {
		t.Parallel()

		m := shardmap.New[int](0, 16)
		assert.Equal(t, shardmap.DefaultShardCount(), m.ShardCount())
	})

	t.Run("single shard", func(t *testing.T) {
		t.Parallel()

		m := shardmap.New[int](1, 4)
		assert.Equal(t, 1, m.ShardCount())
		assert.Equal(t, 0, m.Len())
	})
}

func TestLoadOrStore(t *testing.T) {
	t.Parallel()

	m := shardmap.New[string](4, 8)

	v, loaded := m.LoadOrStore("a", "first")
	assert.False(t, loaded)
	assert.Equal(t, "first", v)

	v, loaded = m.LoadOrStore("a", "second")
	assert.True(t, loaded)
	assert.Equal(t, "first", v)

	got, ok := m.Load("a")
	require.True(t, ok)
	assert.Equal(t, "first", got)

	_, ok = m.Load("missing")
	assert.False(t, ok)
}

func TestLoadOrStore_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	m := shardmap.New[*int](8, 0)

	const workers = 64
	results := make([]*int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			candidate := new(int)
			*candidate = i
			results[i], _ = m.LoadOrStore("contended", candidate)
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, 1, m.Len())
}

func TestLoadAndDelete(t *testing.T) {
	t.Parallel()

	m := shardmap.New[int](2, 0)
	m.LoadOrStore("x", 42)

	v, ok := m.LoadAndDelete("x")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = m.LoadAndDelete("x")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestDeleteIf(t *testing.T) {
	t.Parallel()

	m := shardmap.New[int](4, 0)
	for i := 0; i < 10; i++ {
		m.LoadOrStore(fmt.Sprintf("k%d", i), i)
	}

	removed := m.DeleteIf(func(_ string, v int) bool { return v%2 == 0 })
	sort.Ints(removed)
	assert.Equal(t, []int{0, 2, 4, 6, 8}, removed)
	assert.Equal(t, 5, m.Len())

	removed = m.DeleteIf(func(string, int) bool { return false })
	assert.Empty(t, removed)
}

func TestKeysAndRange(t *testing.T) {
	t.Parallel()

	m := shardmap.New[int](4, 0)
	m.LoadOrStore("", 0)
	m.LoadOrStore("events", 1)
	m.LoadOrStore("测试🚀", 2)

	keys := m.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"", "events", "测试🚀"}, keys)

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)

	sum := 0
	m.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	assert.Equal(t, 3, sum)
}
