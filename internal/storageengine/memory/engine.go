// Package memory implements storageengine.Engine entirely in process
// memory. It backs unit tests and runs without a kv_store_path
// configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/palisade-db/palisade/internal/storageengine"
)

type handle struct {
	name string
}

func (h *handle) Name() string { return h.name }

type partition struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// Engine is an in-memory, non-persistent storageengine.Engine.
type Engine struct {
	mu         sync.Mutex
	partitions map[string]*partition
}

// New returns an empty in-memory engine.
func New() *Engine {
	return &Engine{partitions: make(map[string]*partition)}
}

func (e *Engine) Start(_ context.Context, partitionNames []string) (map[string]storageengine.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]storageengine.Handle, len(partitionNames))
	for _, name := range partitionNames {
		if _, ok := e.partitions[name]; !ok {
			e.partitions[name] = &partition{data: make(map[string][]byte)}
		}
		out[name] = &handle{name: name}
	}
	return out, nil
}

func (e *Engine) ListPartitions(_ context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.partitions))
	for name := range e.partitions {
		names = append(names, name)
	}
	return names, nil
}

func (e *Engine) CreatePartition(_ context.Context, name string) (storageengine.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.partitions[name]; ok {
		return nil, fmt.Errorf("memory engine: partition %q already exists", name)
	}
	e.partitions[name] = &partition{data: make(map[string][]byte)}
	return &handle{name: name}, nil
}

func (e *Engine) DropPartition(_ context.Context, h storageengine.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.partitions, h.Name())
	return nil
}

func (e *Engine) CloseHandle(_ context.Context, _ storageengine.Handle) error {
	return nil
}

func (e *Engine) lookup(h storageengine.Handle) (*partition, error) {
	e.mu.Lock()
	p, ok := e.partitions[h.Name()]
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("memory engine: no such partition %q", h.Name())
	}
	return p, nil
}

func (e *Engine) Put(_ context.Context, h storageengine.Handle, key string, value []byte) error {
	p, err := e.lookup(h)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	p.data[key] = cp
	return nil
}

func (e *Engine) Get(_ context.Context, h storageengine.Handle, key string) ([]byte, bool, error) {
	p, err := e.lookup(h)
	if err != nil {
		return nil, false, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (e *Engine) Delete(_ context.Context, h storageengine.Handle, key string) error {
	p, err := e.lookup(h)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data, key)
	return nil
}

func (e *Engine) IterateAll(_ context.Context, h storageengine.Handle) (map[string][]byte, error) {
	p, err := e.lookup(h)
	if err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string][]byte, len(p.data))
	for k, v := range p.data {
		cp := make([]byte, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out, nil
}

// ExecuteWriteBatch applies the mutations one by one, in batch order. It is
// not transactional: a mutation whose partition is missing stops the batch
// with an error, and the mutations applied before it stay applied.
func (e *Engine) ExecuteWriteBatch(ctx context.Context, batch *storageengine.WriteBatch) error {
	for _, m := range batch.Mutations {
		if m.Value == nil {
			if err := e.Delete(ctx, m.Handle, m.Key); err != nil {
				return err
			}
			continue
		}
		if err := e.Put(ctx, m.Handle, m.Key, m.Value); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) Close() error { return nil }
