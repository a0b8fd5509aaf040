// Package gc implements the garbage collector: a single long-running
// goroutine that, each iteration, drops engine partitions for soft-deleted
// containers and then evicts their records from the index.
package gc

import (
	"context"
	"time"

	"github.com/palisade-db/palisade/internal/container"
	"github.com/palisade-db/palisade/internal/logging"
	"github.com/palisade-db/palisade/internal/metrics"
	"github.com/palisade-db/palisade/internal/status"
	"github.com/palisade-db/palisade/internal/storageengine"
)

// Collector runs the periodic tombstone sweep.
type Collector struct {
	index    *container.Index
	engine   storageengine.Engine
	log      *logging.Logger
	interval time.Duration

	stop chan struct{}
	done chan struct{}

	metrics *metrics.Metrics
}

// SetMetrics attaches the store's Prometheus collectors so every sweep and
// every dropped partition is counted. Optional.
func (c *Collector) SetMetrics(m *metrics.Metrics) { c.metrics = m }

// New constructs a Collector. Call Start to launch its goroutine.
func New(idx *container.Index, engine storageengine.Engine, log *logging.Logger, interval time.Duration) *Collector {
	return &Collector{
		index:    idx,
		engine:   engine,
		log:      log,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the collector's goroutine.
func (c *Collector) Start() {
	go c.run()
}

func (c *Collector) run() {
	defer close(c.done)
	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			c.sweepOnce()
			timer.Reset(c.interval)
		case <-c.stop:
			return
		}
	}
}

// sweepOnce performs one full pass over every bucket, dropping the engine
// partition and evicting the index record for every tombstoned container.
func (c *Collector) sweepOnce() {
	if c.metrics != nil {
		c.metrics.GCSweepsTotal.Inc()
	}
	ctx := context.Background()
	for i := 0; i < c.index.BucketCount(); i++ {
		for _, rec := range c.index.AllInBucket(i) {
			if !rec.IsDeleted() {
				continue
			}
			if err := c.engine.DropPartition(ctx, rec.EngineHandle()); err != nil {
				c.log.Warnf("gc: drop partition %q failed, retrying next iteration: %v", rec.Name(), err)
				continue
			}
			if c.metrics != nil {
				c.metrics.GCDroppedTotal.Inc()
			}
			if !c.index.Remove(rec.Name()) {
				c.log.Errorf("gc: index entry for %q vanished before eviction", rec.Name())
				continue
			}
			if c.metrics != nil {
				c.metrics.ContainersTotal.Set(float64(c.index.TotalCount()))
			}
			// Dropping the index's own reference; CloseHandle runs via
			// Container.Release once in-flight tasks release theirs too.
			if err := rec.Release(ctx); err != nil {
				c.log.Warnf("gc: %s for %q: %v", status.StorageEngineReferenceCloseFailed, rec.Name(), err)
			}
		}
	}
}

// Stop signals the goroutine to exit and waits for it.
func (c *Collector) Stop() {
	close(c.stop)
	<-c.done
}
