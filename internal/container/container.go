// Package container implements the in-memory container record and the
// sharded container index the rest of the store is built around.
package container

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/palisade-db/palisade/internal/storageengine"
)

// Metadata is the persistent record stored in the internal-metadata
// partition for each container, keyed by container name.
type Metadata struct {
	Name string `json:"name"`
}

// CloseFunc releases a container's engine handle exactly once. Supplied by
// whoever owns the engine so the container package stays engine-agnostic.
type CloseFunc func(ctx context.Context, h storageengine.Handle) error

// Container is the per-container in-memory record: persistent metadata, the
// engine handle, and the soft-deletion flag. It is shared by reference —
// many readers/writers may hold concurrent aliases to the same *Container —
// and is destroyed (its engine handle released) exactly once, when the last
// reference drops after the index has forgotten it.
type Container struct {
	name   string
	handle storageengine.Handle
	close  CloseFunc

	mu        sync.RWMutex
	metadata  Metadata
	isDeleted bool

	refcount int32 // acquired by every holder, released on drop
	closed   int32 // 0/1 guard so close runs exactly once
}

// New constructs a container record with one implicit reference, owned by
// the caller (typically the serializer or startup reconciliation).
func New(name string, handle storageengine.Handle, metadata Metadata, closeFn CloseFunc) *Container {
	return &Container{
		name:     name,
		handle:   handle,
		close:    closeFn,
		metadata: metadata,
		refcount: 1,
	}
}

// Name returns the container's name. Immutable for the life of the record.
func (c *Container) Name() string { return c.name }

// EngineHandle returns the engine handle, shared-locked against a concurrent
// mark-deleted flip (the handle itself never changes, but this keeps the
// lock discipline symmetric with the real field it guards).
func (c *Container) EngineHandle() storageengine.Handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handle
}

// IsDeleted reports the soft-deletion flag.
func (c *Container) IsDeleted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isDeleted
}

// MarkDeleted flips is_deleted to true. One-way: calling it again is a no-op.
func (c *Container) MarkDeleted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isDeleted = true
}

// Metadata returns a copy of the persistent metadata record.
func (c *Container) Metadata() Metadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metadata
}

// Acquire adds a reference. Every holder of a *Container beyond the index
// itself (an in-flight object_io_task, for instance) must Acquire before use
// and Release when done.
func (c *Container) Acquire() *Container {
	atomic.AddInt32(&c.refcount, 1)
	return c
}

// Release drops a reference. When the count reaches zero, the engine handle
// is released exactly once via the CloseFunc supplied at construction.
func (c *Container) Release(ctx context.Context) error {
	if atomic.AddInt32(&c.refcount, -1) > 0 {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.close == nil {
		return nil
	}
	return c.close(ctx, c.handle)
}
