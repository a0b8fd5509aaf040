// Package storageengine defines the abstract partitioned key/value
// interface the rest of the store depends on. Concrete engines live in its
// memory and boltengine subpackages.
package storageengine

import "context"

// Handle is an opaque reference to an open partition, analogous to the
// column-family handle of an LSM engine.
type Handle interface {
	// Name is the partition name this handle was opened for.
	Name() string
}

// Mutation is a single put or delete inside a WriteBatch.
type Mutation struct {
	Handle Handle
	Key    string
	Value  []byte // nil means delete
}

// WriteBatch groups mutations, possibly across several partitions, for a
// single call to ExecuteWriteBatch. Mutations are applied atomically per the
// underlying engine's transaction guarantees.
type WriteBatch struct {
	Mutations []Mutation
}

// Put appends an insert mutation to the batch.
func (b *WriteBatch) Put(h Handle, key string, value []byte) {
	b.Mutations = append(b.Mutations, Mutation{Handle: h, Key: key, Value: value})
}

// Delete appends a delete mutation to the batch.
func (b *WriteBatch) Delete(h Handle, key string) {
	b.Mutations = append(b.Mutations, Mutation{Handle: h, Key: key, Value: nil})
}

// Engine is the storage-engine adapter contract. All calls are synchronous
// and may block; implementations must make a successful Put durable
// (write-ahead-logged) before returning.
type Engine interface {
	// Start opens every partition named in partitionNames and returns a
	// handle per name, creating a partition that does not yet exist (the
	// first-boot path hands Start a default partition name before anything
	// is on disk).
	Start(ctx context.Context, partitionNames []string) (map[string]Handle, error)

	// ListPartitions enumerates every partition that exists on disk,
	// independent of whether it has been opened via Start.
	ListPartitions(ctx context.Context) ([]string, error)

	// CreatePartition creates and opens a new, empty partition.
	CreatePartition(ctx context.Context, name string) (Handle, error)

	// DropPartition permanently removes a partition and every key inside it.
	DropPartition(ctx context.Context, h Handle) error

	// CloseHandle releases a handle without dropping the partition's data.
	CloseHandle(ctx context.Context, h Handle) error

	Put(ctx context.Context, h Handle, key string, value []byte) error
	Get(ctx context.Context, h Handle, key string) ([]byte, bool, error)
	Delete(ctx context.Context, h Handle, key string) error

	// IterateAll returns every key/value pair currently stored in h.
	IterateAll(ctx context.Context, h Handle) (map[string][]byte, error)

	// ExecuteWriteBatch commits every mutation in batch as a single unit of
	// work, grouped by partition where the underlying engine supports it.
	ExecuteWriteBatch(ctx context.Context, batch *WriteBatch) error

	// Close shuts the engine down entirely, flushing and closing every
	// still-open handle.
	Close() error
}
