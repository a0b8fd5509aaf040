// Package cache implements the sharded frontline cache: an S-way-sharded,
// byte-bounded LRU that short-circuits object reads and is kept eventually
// consistent with writes.
package cache

import (
	"hash/fnv"

	"github.com/palisade-db/palisade/internal/container"
	"github.com/palisade-db/palisade/internal/metrics"
	"github.com/palisade-db/palisade/internal/status"
)

// ContainerIndex is the subset of *container.Index the cache's public
// wrapper needs to reject puts/gets against deleted or unknown containers.
type ContainerIndex interface {
	GetExistence(name string) container.Existence
}

// Cache is the frontline cache: S independently-locked shards, selected by
// hash(object_id) mod S — intentionally ignoring container name, so that
// cross-container collisions on the same id colocate in one shard.
type Cache struct {
	shards        []*shard
	maxObjectSize int64
	index         ContainerIndex
	metrics       *metrics.Metrics
}

// SetMetrics attaches the store's Prometheus collectors so Get records a hit
// or a miss. Optional: a Cache with no metrics attached behaves identically,
// just without the counters.
func (c *Cache) SetMetrics(m *metrics.Metrics) { c.metrics = m }

// New builds a cache with shardCount shards, each bounded to maxShardBytes,
// rejecting any object over maxObjectSize. index is consulted before every
// put/get so the cache never serves or populates stale data for a deleted
// or unknown container.
func New(shardCount int, maxShardBytes, maxObjectSize int64, index ContainerIndex) *Cache {
	if shardCount < 1 {
		shardCount = 1
	}
	c := &Cache{
		shards:        make([]*shard, shardCount),
		maxObjectSize: maxObjectSize,
		index:         index,
	}
	for i := range c.shards {
		c.shards[i] = newShard(maxShardBytes)
	}
	return c
}

func (c *Cache) shardFor(objectID string) *shard {
	h := fnv.New64a()
	_, _ = h.Write([]byte(objectID))
	return c.shards[h.Sum64()%uint64(len(c.shards))]
}

// Put inserts data for (containerName, objectID). Returns
// status.ObjectDataSizeExceedsCacheLimit if data is larger than the
// per-object cache limit, or status.ContainerNotExists if the container is
// not currently live.
func (c *Cache) Put(containerName, objectID string, data []byte) status.Code {
	if int64(len(data)) > c.maxObjectSize {
		return status.ObjectDataSizeExceedsCacheLimit
	}
	if c.index.GetExistence(containerName) != container.AlreadyExists {
		return status.ContainerNotExists
	}
	c.shardFor(objectID).put(entryKey{containerName: containerName, objectID: objectID}, data)
	return status.OK
}

// Get returns the cached payload for (containerName, objectID), promoting
// it to its shard's LRU head on a hit. The second return is false on a
// cache miss or when the container is not currently live.
func (c *Cache) Get(containerName, objectID string) ([]byte, bool) {
	if c.index.GetExistence(containerName) != container.AlreadyExists {
		return nil, false
	}
	data, hit := c.shardFor(objectID).get(entryKey{containerName: containerName, objectID: objectID})
	if c.metrics != nil {
		if hit {
			c.metrics.CacheHitsTotal.Inc()
		} else {
			c.metrics.CacheMissesTotal.Inc()
		}
	}
	return data, hit
}

// Invalidate drops (containerName, objectID) from the cache if present. Used
// by the write dispatcher after a successful remove commits to the engine.
func (c *Cache) Invalidate(containerName, objectID string) {
	c.shardFor(objectID).invalidate(entryKey{containerName: containerName, objectID: objectID})
}

// ShardBytes returns the current byte total for shard i, for tests and
// metrics.
func (c *Cache) ShardBytes(i int) int64 { return c.shards[i].bytes() }

// ShardCount returns S.
func (c *Cache) ShardCount() int { return len(c.shards) }
