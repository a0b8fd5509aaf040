// Package boltengine implements storageengine.Engine on top of
// go.etcd.io/bbolt. A partition is a top-level bucket inside one shared
// database file; ExecuteWriteBatch opens a single bolt.Update transaction
// spanning every partition touched by the batch, so the write dispatcher
// gets single-writer group-commit without any extra coordination.
package boltengine

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/palisade-db/palisade/internal/storageengine"
)

type handle struct {
	name []byte
}

func (h *handle) Name() string { return string(h.name) }

// Engine is a bbolt-backed storageengine.Engine. All partitions live as
// top-level buckets inside a single *bolt.DB.
type Engine struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bbolt database file at path.
// blockCacheSizeMiB sizes the initial mmap so a store that fits in it never
// remaps mid-write; 0 leaves bbolt's default growth behavior.
func Open(path string, blockCacheSizeMiB int) (*Engine, error) {
	opts := *bolt.DefaultOptions
	if blockCacheSizeMiB > 0 {
		opts.InitialMmapSize = blockCacheSizeMiB << 20
	}
	db, err := bolt.Open(path, 0o600, &opts)
	if err != nil {
		return nil, fmt.Errorf("boltengine: open %q: %w", path, err)
	}
	return &Engine{db: db}, nil
}

func (e *Engine) Start(_ context.Context, partitionNames []string) (map[string]storageengine.Handle, error) {
	out := make(map[string]storageengine.Handle, len(partitionNames))
	err := e.db.Update(func(tx *bolt.Tx) error {
		for _, name := range partitionNames {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("boltengine: open partition %q: %w", name, err)
			}
			out[name] = &handle{name: []byte(name)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) ListPartitions(_ context.Context) ([]string, error) {
	var names []string
	err := e.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (e *Engine) CreatePartition(_ context.Context, name string) (storageengine.Handle, error) {
	err := e.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucket([]byte(name))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("boltengine: create partition %q: %w", name, err)
	}
	return &handle{name: []byte(name)}, nil
}

func (e *Engine) DropPartition(_ context.Context, h storageengine.Handle) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(h.Name()))
		if err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		return nil
	})
}

func (e *Engine) CloseHandle(_ context.Context, _ storageengine.Handle) error {
	// bbolt buckets have no per-handle resource beyond the shared *DB.
	return nil
}

func (e *Engine) Put(_ context.Context, h storageengine.Handle, key string, value []byte) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(h.Name()))
		if b == nil {
			return fmt.Errorf("boltengine: no such partition %q", h.Name())
		}
		return b.Put([]byte(key), value)
	})
}

func (e *Engine) Get(_ context.Context, h storageengine.Handle, key string) ([]byte, bool, error) {
	var value []byte
	err := e.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(h.Name()))
		if b == nil {
			return fmt.Errorf("boltengine: no such partition %q", h.Name())
		}
		if v := b.Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

func (e *Engine) Delete(_ context.Context, h storageengine.Handle, key string) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(h.Name()))
		if b == nil {
			return fmt.Errorf("boltengine: no such partition %q", h.Name())
		}
		return b.Delete([]byte(key))
	})
}

func (e *Engine) IterateAll(_ context.Context, h storageengine.Handle) (map[string][]byte, error) {
	out := make(map[string][]byte)
	err := e.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(h.Name()))
		if b == nil {
			return fmt.Errorf("boltengine: no such partition %q", h.Name())
		}
		return b.ForEach(func(k, v []byte) error {
			out[string(k)] = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExecuteWriteBatch commits every mutation in one transaction, spanning as
// many buckets as the batch touches.
func (e *Engine) ExecuteWriteBatch(_ context.Context, batch *storageengine.WriteBatch) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		for _, m := range batch.Mutations {
			b := tx.Bucket([]byte(m.Handle.Name()))
			if b == nil {
				return fmt.Errorf("boltengine: no such partition %q", m.Handle.Name())
			}
			if m.Value == nil {
				if err := b.Delete([]byte(m.Key)); err != nil {
					return err
				}
				continue
			}
			if err := b.Put([]byte(m.Key), m.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Engine) Close() error { return e.db.Close() }
