package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlot_EmptyByDefault(t *testing.T) {
	slot := NewSlot[[]string](time.Hour)

	value, ok := slot.Get()
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestSlot_PutThenGet(t *testing.T) {
	slot := NewSlot[[]string](time.Hour)

	slot.Put([]string{"Electronics", "Books"})

	value, ok := slot.Get()
	require.True(t, ok)
	assert.Equal(t, []string{"Electronics", "Books"}, value)
}

func TestSlot_WriteThroughReplacesContent(t *testing.T) {
	slot := NewSlot[string](time.Hour)

	slot.Put("old")
	slot.Put("new")

	value, ok := slot.Get()
	require.True(t, ok)
	assert.Equal(t, "new", value)
}

func TestSlot_EvictEmptiesSlot(t *testing.T) {
	slot := NewSlot[string](time.Hour)

	slot.Put("value")
	slot.Evict()

	_, ok := slot.Get()
	assert.False(t, ok)
}

func TestSlot_EvictIdempotent(t *testing.T) {
	slot := NewSlot[string](time.Hour)

	// Вытеснение пустой ячейки не должно паниковать или менять состояние
	slot.Evict()
	slot.Evict()

	_, ok := slot.Get()
	assert.False(t, ok)

	slot.Put("value")
	slot.Evict()
	slot.Evict()

	_, ok = slot.Get()
	assert.False(t, ok)
}

func TestSlot_ExpiredReadsAsEmpty(t *testing.T) {
	slot := NewSlot[string](10 * time.Millisecond)

	slot.Put("value")
	time.Sleep(20 * time.Millisecond)

	_, ok := slot.Get()
	assert.False(t, ok)
}

func TestSlot_ZeroTTLNeverExpires(t *testing.T) {
	slot := NewSlot[string](0)

	slot.Put("value")
	time.Sleep(10 * time.Millisecond)

	value, ok := slot.Get()
	require.True(t, ok)
	assert.Equal(t, "value", value)
}

func TestSlot_PurgeExpired(t *testing.T) {
	slot := NewSlot[string](10 * time.Millisecond)

	slot.Put("value")
	time.Sleep(20 * time.Millisecond)
	slot.PurgeExpired()

	_, ok := slot.Get()
	assert.False(t, ok)
}

func TestSlot_PurgeKeepsFreshValue(t *testing.T) {
	slot := NewSlot[string](time.Hour)

	slot.Put("value")
	slot.PurgeExpired()

	value, ok := slot.Get()
	require.True(t, ok)
	assert.Equal(t, "value", value)
}

func TestMap_GetMissOnUnknownKey(t *testing.T) {
	m := NewMap[int64, string](time.Hour)

	_, ok := m.Get(42)
	assert.False(t, ok)
}

func TestMap_PutThenGet(t *testing.T) {
	m := NewMap[int64, string](time.Hour)

	m.Put(1, "Electronics")
	m.Put(2, "Books")

	value, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Electronics", value)

	value, ok = m.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Books", value)
}

func TestMap_EvictSingleKey(t *testing.T) {
	m := NewMap[int64, string](time.Hour)

	m.Put(1, "Electronics")
	m.Put(2, "Books")
	m.Evict(1)

	_, ok := m.Get(1)
	assert.False(t, ok)

	// Соседние ключи не затрагиваются
	value, ok := m.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Books", value)
}

func TestMap_EvictIdempotent(t *testing.T) {
	m := NewMap[int64, string](time.Hour)

	m.Evict(99)
	m.Evict(99)

	m.Put(99, "value")
	m.Evict(99)
	m.Evict(99)

	_, ok := m.Get(99)
	assert.False(t, ok)
}

func TestMap_PurgeExpiredDropsOnlyExpired(t *testing.T) {
	m := NewMap[int64, string](50 * time.Millisecond)

	m.Put(1, "old")
	time.Sleep(100 * time.Millisecond)
	m.Put(2, "fresh")

	m.PurgeExpired()

	assert.Equal(t, 1, m.Len())

	_, ok := m.Get(1)
	assert.False(t, ok)

	value, ok := m.Get(2)
	require.True(t, ok)
	assert.Equal(t, "fresh", value)
}

func TestMap_ConcurrentAccess(t *testing.T) {
	m := NewMap[int64, string](time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Put(n, "value-"+strconv.FormatInt(n, 10))
				m.Get(n)
				if j%10 == 0 {
					m.Evict(n)
				}
			}
		}(int64(i % 10))
	}
	wg.Wait()
}

func TestSlot_ConcurrentAccess(t *testing.T) {
	slot := NewSlot[int](time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				slot.Put(n)
				slot.Get()
				if j%10 == 0 {
					slot.Evict()
				}
			}
		}(i)
	}
	wg.Wait()
}
