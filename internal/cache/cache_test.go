package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palisade-db/palisade/internal/container"
	"github.com/palisade-db/palisade/internal/status"
)

type fakeIndex struct {
	existing map[string]container.Existence
}

func (f *fakeIndex) GetExistence(name string) container.Existence {
	if e, ok := f.existing[name]; ok {
		return e
	}
	return container.NotExists
}

func newLiveIndex(names ...string) *fakeIndex {
	f := &fakeIndex{existing: make(map[string]container.Existence)}
	for _, n := range names {
		f.existing[n] = container.AlreadyExists
	}
	return f
}

func TestPutGetRoundTrip(t *testing.T) {
	idx := newLiveIndex("c")
	c := New(4, 1<<20, 1<<10, idx)

	assert.Equal(t, status.OK, c.Put("c", "k", []byte("v")))
	got, ok := c.Get("c", "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestPutRejectsOversizedObject(t *testing.T) {
	idx := newLiveIndex("c")
	c := New(4, 1<<20, 4, idx)

	assert.Equal(t, status.ObjectDataSizeExceedsCacheLimit, c.Put("c", "k", []byte("toolong")))
}

func TestPutGetRejectUnknownContainer(t *testing.T) {
	idx := newLiveIndex() // nothing live
	c := New(4, 1<<20, 1<<10, idx)

	assert.Equal(t, status.ContainerNotExists, c.Put("ghost", "k", []byte("v")))
	_, ok := c.Get("ghost", "k")
	assert.False(t, ok)
}

// The sum of payload sizes per shard never exceeds the shard byte bound.
func TestShardByteBoundInvariant(t *testing.T) {
	idx := newLiveIndex("c")
	c := New(1, 1024, 512, idx)

	c.Put("c", "a", make([]byte, 400))
	c.Put("c", "b", make([]byte, 400))
	c.Put("c", "c", make([]byte, 400))

	assert.LessOrEqual(t, c.ShardBytes(0), int64(1024))
}

// With shard bytes = 1024 and max object 512, inserting "a","b","c" at 400
// bytes each evicts "a" before "c" lands.
func TestEvictionDropsLRUTail(t *testing.T) {
	idx := newLiveIndex("c")
	c := New(1, 1024, 512, idx)

	c.Put("c", "a", make([]byte, 400))
	c.Put("c", "b", make([]byte, 400))
	c.Put("c", "c", make([]byte, 400))

	_, ok := c.Get("c", "a")
	assert.False(t, ok, "a should have been evicted to make room for c")

	_, ok = c.Get("c", "b")
	assert.True(t, ok)
	_, ok = c.Get("c", "c")
	assert.True(t, ok)
}

// A got key is promoted to the head of its shard's list, so it outlives an
// untouched sibling under eviction pressure.
func TestGetPromotesToHead(t *testing.T) {
	idx := newLiveIndex("c")
	c := New(1, 1024, 512, idx)

	c.Put("c", "a", make([]byte, 300))
	c.Put("c", "b", make([]byte, 300))

	// Touch "a" so it becomes MRU. "c" still fits (900 bytes); "d" brings
	// the shard over budget and evicts the LRU tail, "b".
	_, _ = c.Get("c", "a")
	c.Put("c", "c", make([]byte, 300))
	c.Put("c", "d", make([]byte, 300))

	_, aStillPresent := c.Get("c", "a")
	assert.True(t, aStillPresent, "recently-used a should survive eviction over untouched b")
	_, bEvicted := c.Get("c", "b")
	assert.False(t, bEvicted)
}

func TestInvalidateRemovesEntry(t *testing.T) {
	idx := newLiveIndex("c")
	c := New(1, 1024, 512, idx)

	c.Put("c", "a", []byte("v"))
	c.Invalidate("c", "a")

	_, ok := c.Get("c", "a")
	assert.False(t, ok)
}

func TestCrossContainerSameIDColocateInOneShard(t *testing.T) {
	idx := newLiveIndex("c1", "c2")
	c := New(4, 1<<20, 1<<10, idx)

	require.Equal(t, status.OK, c.Put("c1", "shared", []byte("one")))
	require.Equal(t, status.OK, c.Put("c2", "shared", []byte("two")))

	v1, ok := c.Get("c1", "shared")
	require.True(t, ok)
	assert.Equal(t, []byte("one"), v1)

	v2, ok := c.Get("c2", "shared")
	require.True(t, ok)
	assert.Equal(t, []byte("two"), v2)

	nonEmpty := 0
	for i := 0; i < c.ShardCount(); i++ {
		if c.ShardBytes(i) > 0 {
			nonEmpty++
		}
	}
	assert.Equal(t, 1, nonEmpty, "both entries should live in the same shard")
}
