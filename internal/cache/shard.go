package cache

import (
	"container/list"
	"sync"
)

// entryKey is the frontline-cache lookup key: (container_name, object_id).
// Shard routing uses only the object_id half — see shardFor in cache.go —
// but within a shard, entries for the same id in different containers are
// distinct map entries.
type entryKey struct {
	containerName string
	objectID      string
}

type entry struct {
	key  entryKey
	data []byte
}

// shard is a strict byte-bounded LRU: a doubly-linked list (most-recently
// used at the head) plus a lookup map, one mutex, and a running byte total.
type shard struct {
	mu            sync.Mutex
	lru           *list.List
	index         map[entryKey]*list.Element
	currentBytes  int64
	maxShardBytes int64
}

func newShard(maxShardBytes int64) *shard {
	return &shard{
		lru:           list.New(),
		index:         make(map[entryKey]*list.Element),
		maxShardBytes: maxShardBytes,
	}
}

// put inserts or overwrites data for key, evicting LRU tail entries until
// the shard is back within maxShardBytes. Caller has already checked data
// fits within the per-object cache limit.
func (s *shard) put(key entryKey, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.index[key]; ok {
		old := el.Value.(*entry)
		s.currentBytes += int64(len(data)) - int64(len(old.data))
		old.data = data
		s.lru.MoveToFront(el)
		s.evictToFit()
		return
	}

	el := s.lru.PushFront(&entry{key: key, data: data})
	s.index[key] = el
	s.currentBytes += int64(len(data))
	s.evictToFit()
}

// evictToFit drops LRU-tail entries until currentBytes <= maxShardBytes.
// Must be called with s.mu held.
func (s *shard) evictToFit() {
	for s.currentBytes > s.maxShardBytes && s.lru.Len() > 0 {
		back := s.lru.Back()
		e := back.Value.(*entry)
		s.lru.Remove(back)
		delete(s.index, e.key)
		s.currentBytes -= int64(len(e.data))
	}
}

// get returns a copy of the payload for key, promoting it to the head of
// the LRU list on a hit.
func (s *shard) get(key entryKey) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.index[key]
	if !ok {
		return nil, false
	}
	s.lru.MoveToFront(el)
	e := el.Value.(*entry)
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, true
}

// invalidate removes key from the shard if present, used when the write
// dispatcher commits a remove so readers never see the deleted value.
func (s *shard) invalidate(key entryKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.index[key]
	if !ok {
		return
	}
	e := el.Value.(*entry)
	s.lru.Remove(el)
	delete(s.index, key)
	s.currentBytes -= int64(len(e.data))
}

func (s *shard) bytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentBytes
}
