package dispatch

import (
	"context"
	"sync"

	"github.com/palisade-db/palisade/internal/logging"
	"github.com/palisade-db/palisade/internal/status"
	"github.com/palisade-db/palisade/internal/storageengine"
)

// CachePutter is the write-through target a read dispatcher populates after
// a successful engine get. Satisfied by *cache.Cache.
type CachePutter interface {
	Put(containerName, objectID string, data []byte) status.Code
}

// ReadDispatcher is a fixed-size worker pool servicing get-object tasks.
type ReadDispatcher struct {
	engine storageengine.Engine
	cache  CachePutter
	log    *logging.Logger

	tasks chan *Task
	wg    sync.WaitGroup
}

// NewReadDispatcher starts workerCount goroutines pulling from an internal
// task queue.
func NewReadDispatcher(engine storageengine.Engine, cache CachePutter, log *logging.Logger, workerCount, queueSize int) *ReadDispatcher {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 1024
	}
	d := &ReadDispatcher{
		engine: engine,
		cache:  cache,
		log:    log,
		tasks:  make(chan *Task, queueSize),
	}
	for i := 0; i < workerCount; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *ReadDispatcher) worker() {
	defer d.wg.Done()
	for t := range d.tasks {
		d.serve(t)
	}
}

func (d *ReadDispatcher) serve(t *Task) {
	ctx := context.Background()
	defer t.Container.Release(ctx)

	data, found, err := d.engine.Get(ctx, t.Container.EngineHandle(), t.ObjectID)
	if err != nil {
		t.Reply(nil, status.ObjectRetrievalFailed)
		return
	}
	if !found {
		t.Reply(nil, status.ObjectRetrievalFailed)
		return
	}

	t.Reply(data, status.OK)

	// Cache write-through. Failure is logged, not surfaced.
	if code := d.cache.Put(t.ContainerName, t.ObjectID, data); code.Failed() {
		d.log.Warnf("cache write-through failed for %s/%s: %s", t.ContainerName, t.ObjectID, code)
	}
}

// Enqueue submits a get task. Blocks if the internal queue is full.
func (d *ReadDispatcher) Enqueue(t *Task) {
	d.tasks <- t
}

// Stop closes the queue and blocks until every worker has drained it.
func (d *ReadDispatcher) Stop() {
	close(d.tasks)
	d.wg.Wait()
}
