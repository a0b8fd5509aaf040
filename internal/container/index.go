package container

import (
	"hash/fnv"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// Existence is the result of checking whether a name is present in the
// index, and if so, in what state.
type Existence int

const (
	NotExists Existence = iota
	AlreadyExists
	InDeletionProcess
)

// InsertResult is the outcome of Index.Insert.
type InsertResult int

const (
	InsertSuccess InsertResult = iota
	InsertCollision
)

// bucket is one shard of the container index: a fine-grained, lock-striped
// concurrent map from container name to record.
type bucket struct {
	m *xsync.MapOf[string, *Container]
}

func newBucket() *bucket {
	return &bucket{m: xsync.NewMapOf[string, *Container]()}
}

// Index is a fixed vector of B buckets, each an independently-locked
// concurrent map. totalCount mirrors the sum of all buckets' sizes as a
// single atomic counter.
type Index struct {
	buckets    []*bucket
	totalCount int64
}

// NewIndex builds an index with the given number of buckets. bucketCount is
// clamped to at least 1.
func NewIndex(bucketCount int) *Index {
	if bucketCount < 1 {
		bucketCount = 1
	}
	idx := &Index{buckets: make([]*bucket, bucketCount)}
	for i := range idx.buckets {
		idx.buckets[i] = newBucket()
	}
	return idx
}

// BucketCount returns B, the fixed number of buckets.
func (idx *Index) BucketCount() int { return len(idx.buckets) }

// TotalCount returns the current number of entries across every bucket.
func (idx *Index) TotalCount() int64 { return atomic.LoadInt64(&idx.totalCount) }

func (idx *Index) bucketFor(name string) *bucket {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return idx.buckets[h.Sum64()%uint64(len(idx.buckets))]
}

// GetExistence reports whether name is absent, live, or tombstoned.
func (idx *Index) GetExistence(name string) Existence {
	c, ok := idx.bucketFor(name).m.Load(name)
	if !ok {
		return NotExists
	}
	if c.IsDeleted() {
		return InDeletionProcess
	}
	return AlreadyExists
}

// Get returns the container record for name, if any.
func (idx *Index) Get(name string) (*Container, bool) {
	return idx.bucketFor(name).m.Load(name)
}

// Insert adds c to the index, routed by hash(name) mod B. Fails with
// InsertCollision if an entry for the same name already exists in that
// bucket. A tombstoned entry still occupies its slot until the garbage
// collector evicts it, so the name stays reserved through the whole
// deletion window; the serializer observes InDeletionProcess via
// GetExistence and rejects creates before Insert is ever reached.
func (idx *Index) Insert(c *Container) InsertResult {
	b := idx.bucketFor(c.Name())
	var collided bool
	b.m.Compute(c.Name(), func(old *Container, loaded bool) (*Container, bool) {
		if loaded {
			collided = true
			return old, false
		}
		return c, false
	})
	if collided {
		return InsertCollision
	}
	atomic.AddInt64(&idx.totalCount, 1)
	return InsertSuccess
}

// Remove deletes name from the index and decrements total_count. Reports
// false if name was not present.
func (idx *Index) Remove(name string) bool {
	b := idx.bucketFor(name)
	_, existed := b.m.LoadAndDelete(name)
	if existed {
		atomic.AddInt64(&idx.totalCount, -1)
	}
	return existed
}

// AllInBucket snapshots every container currently in bucket i, for the
// garbage collector's sweep.
func (idx *Index) AllInBucket(i int) []*Container {
	b := idx.buckets[i]
	out := make([]*Container, 0)
	b.m.Range(func(_ string, c *Container) bool {
		out = append(out, c)
		return true
	})
	return out
}
