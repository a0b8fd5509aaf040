package dispatch

import (
	"context"

	"github.com/palisade-db/palisade/internal/logging"
	"github.com/palisade-db/palisade/internal/status"
	"github.com/palisade-db/palisade/internal/storageengine"
)

// CacheWriteThrough is the cache surface the write dispatcher drives after a
// batch commits: Put on a successful insert, Invalidate on a successful
// remove.
type CacheWriteThrough interface {
	Put(containerName, objectID string, data []byte) status.Code
	Invalidate(containerName, objectID string)
}

// maxBatchSize bounds how many tasks a single drain cycle aggregates into
// one engine write-batch, so one slow burst doesn't delay every task queued
// behind it indefinitely.
const maxBatchSize = 256

// WriteDispatcher is the single master goroutine draining a queue of
// insert/remove tasks, aggregating them into engine write-batches. The channel carries a large fixed buffer rather than an
// unbounded queue; callers are already admission-controlled by request
// size limits upstream, so the buffer only fills under sustained engine
// stalls.
type WriteDispatcher struct {
	engine storageengine.Engine
	cache  CacheWriteThrough
	log    *logging.Logger

	tasks chan *Task
	stop  chan struct{}
	done  chan struct{}
}

// NewWriteDispatcher starts the single write-master goroutine.
func NewWriteDispatcher(engine storageengine.Engine, cache CacheWriteThrough, log *logging.Logger, queueSize int) *WriteDispatcher {
	if queueSize < 1 {
		queueSize = 65536
	}
	d := &WriteDispatcher{
		engine: engine,
		cache:  cache,
		log:    log,
		tasks:  make(chan *Task, queueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Enqueue submits an insert or remove task. Blocks if the queue is full.
func (d *WriteDispatcher) Enqueue(t *Task) {
	d.tasks <- t
}

func (d *WriteDispatcher) run() {
	defer close(d.done)
	for {
		first, ok := d.waitForFirst()
		if !ok {
			return
		}
		batch := []*Task{first}
		batch = d.drainUpTo(batch, maxBatchSize-1)
		d.commit(batch)
	}
}

// waitForFirst blocks until at least one task is available or Stop has been
// requested and the queue is empty.
func (d *WriteDispatcher) waitForFirst() (*Task, bool) {
	select {
	case t, ok := <-d.tasks:
		return t, ok
	case <-d.stop:
		select {
		case t, ok := <-d.tasks:
			return t, ok
		default:
			return nil, false
		}
	}
}

// drainUpTo opportunistically grabs up to n more already-queued tasks
// without blocking, so a burst of writes commits as one batch.
func (d *WriteDispatcher) drainUpTo(batch []*Task, n int) []*Task {
	for i := 0; i < n; i++ {
		select {
		case t, ok := <-d.tasks:
			if !ok {
				return batch
			}
			batch = append(batch, t)
		default:
			return batch
		}
	}
	return batch
}

// commit aggregates batch into one engine write-batch, each mutation tagged
// with its partition handle and kept in enqueue order, executes it, and
// replies to every task with the batch's status.
func (d *WriteDispatcher) commit(batch []*Task) {
	ctx := context.Background()
	defer func() {
		for _, t := range batch {
			t.Container.Release(ctx)
		}
	}()

	wb := &storageengine.WriteBatch{}
	for _, t := range batch {
		handle := t.Container.EngineHandle()
		switch t.Op {
		case OpInsert:
			wb.Put(handle, t.ObjectID, t.Data)
		case OpRemove:
			wb.Delete(handle, t.ObjectID)
		}
	}

	err := d.engine.ExecuteWriteBatch(ctx, wb)
	code := status.OK
	if err != nil {
		code = status.ObjectWriteBatchFailed
	}

	for _, t := range batch {
		t.Reply(nil, code)
		if code.Failed() {
			continue
		}
		switch t.Op {
		case OpInsert:
			if putCode := d.cache.Put(t.ContainerName, t.ObjectID, t.Data); putCode.Failed() {
				d.log.Warnf("cache write-through failed for %s/%s: %s", t.ContainerName, t.ObjectID, putCode)
			}
		case OpRemove:
			d.cache.Invalidate(t.ContainerName, t.ObjectID)
		}
	}
}

// Stop signals the write master to exit once the queue drains, then waits
// for it to do so.
func (d *WriteDispatcher) Stop() {
	close(d.stop)
	<-d.done
}
