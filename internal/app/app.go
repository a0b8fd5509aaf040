// Package app wires configuration, the storage engine, the container
// index, caches, dispatchers, the garbage collector, and the HTTP surface
// into one process.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/palisade-db/palisade/internal/cache"
	"github.com/palisade-db/palisade/internal/config"
	"github.com/palisade-db/palisade/internal/container"
	"github.com/palisade-db/palisade/internal/dispatch"
	"github.com/palisade-db/palisade/internal/gc"
	"github.com/palisade-db/palisade/internal/httpapi"
	"github.com/palisade-db/palisade/internal/idgen"
	"github.com/palisade-db/palisade/internal/logging"
	"github.com/palisade-db/palisade/internal/metrics"
	"github.com/palisade-db/palisade/internal/serializer"
	"github.com/palisade-db/palisade/internal/service"
	"github.com/palisade-db/palisade/internal/storageengine"
	"github.com/palisade-db/palisade/internal/storageengine/boltengine"
	"github.com/palisade-db/palisade/internal/storageengine/memory"
)

// Application is the fully-wired process, constructed from a
// config.Config.
type Application struct {
	cfg *config.Config
	log *logging.Logger

	engine storageengine.Engine
	index  *container.Index
	cache  *cache.Cache
	ids    *idgen.Generator

	serializer *serializer.Serializer
	read       *dispatch.ReadDispatcher
	write      *dispatch.WriteDispatcher

	containers *service.ContainerService
	objects    *service.ObjectService

	collector *gc.Collector
	http      *httpapi.Service
}

// New constructs every component but does not start any background
// goroutines beyond what construction itself requires (dispatchers and the
// serializer start their goroutines at construction per their own
// packages; the GC and HTTP surface wait for Start).
func New(cfg *config.Config) (*Application, error) {
	log, err := logging.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("app: build logger: %w", err)
	}

	var engine storageengine.Engine
	if cfg.Storage.KVStorePath == "" {
		log.Warnf("no kv_store_path configured, using a non-persistent in-memory engine")
		engine = memory.New()
	} else {
		engine, err = boltengine.Open(cfg.Storage.KVStorePath, cfg.Storage.StorageEngineBlockCacheSizeMiB)
		if err != nil {
			return nil, fmt.Errorf("app: open storage engine: %w", err)
		}
	}

	idx := container.NewIndex(cfg.Storage.ContainerIndexNumberBuckets)
	ser := serializer.New(0)

	containers := service.NewContainerService(idx, ser, engine, log, cfg.Storage.MaxContainerNameSizeBytes, cfg.Storage.MaxNumberContainers)

	frontCache := cache.New(
		cfg.Storage.NumberFrontlineCacheShards,
		int64(cfg.Storage.MaxFrontlineCacheShardSizeMiB)<<20,
		int64(cfg.Storage.MaxFrontlineCacheShardObjectSizeBytes),
		idx,
	)

	readDispatcher := dispatch.NewReadDispatcher(engine, frontCache, log, cfg.Storage.NumberReadIOThreads, 0)
	writeDispatcher := dispatch.NewWriteDispatcher(engine, frontCache, log, 0)

	objects := service.NewObjectService(
		idx, frontCache, readDispatcher, writeDispatcher,
		cfg.Storage.MaxContainerNameSizeBytes, cfg.Storage.MaxObjectIDSizeBytes, cfg.Storage.MaxObjectDataSizeBytes,
	)

	gcInterval := time.Duration(cfg.Storage.GarbageCollectorPeriodicIntervalMs) * time.Millisecond
	collector := gc.New(idx, engine, log, gcInterval)

	m := metrics.New(prometheus.DefaultRegisterer)
	frontCache.SetMetrics(m)
	containers.SetMetrics(m)
	objects.SetMetrics(m)
	collector.SetMetrics(m)

	ids := idgen.New()
	rawHandler := httpapi.NewHandler(containers, objects)
	var handler http.Handler = httpapi.Observe(rawHandler, ids, log, m)
	addr := fmt.Sprintf("%s:%d", cfg.Server.ServerListenerIPAddress, cfg.Server.PortNumber)
	httpSvc := httpapi.NewService(addr, handler, log)

	return &Application{
		cfg:        cfg,
		log:        log,
		engine:     engine,
		index:      idx,
		cache:      frontCache,
		ids:        ids,
		serializer: ser,
		read:       readDispatcher,
		write:      writeDispatcher,
		containers: containers,
		objects:    objects,
		collector:  collector,
		http:       httpSvc,
	}, nil
}

// Start runs startup reconciliation, then launches the garbage collector
// and the HTTP surface.
func (a *Application) Start(ctx context.Context) error {
	if err := a.containers.Reconcile(ctx); err != nil {
		return fmt.Errorf("app: startup reconciliation: %w", err)
	}
	a.collector.Start()
	if err := a.http.Start(ctx); err != nil {
		return fmt.Errorf("app: start http surface: %w", err)
	}
	a.log.Infof("palisade listening on %s:%d", a.cfg.Server.ServerListenerIPAddress, a.cfg.Server.PortNumber)
	return nil
}

// Stop tears every component down in reverse dependency order: HTTP first
// (stop accepting new work), then the dispatchers and GC, then the
// serializer, then the engine itself.
func (a *Application) Stop(ctx context.Context) error {
	if err := a.http.Stop(ctx); err != nil {
		a.log.Warnf("http shutdown: %v", err)
	}
	a.collector.Stop()
	a.write.Stop()
	a.read.Stop()
	a.serializer.Stop()
	return a.engine.Close()
}
