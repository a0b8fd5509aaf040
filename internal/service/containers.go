// Package service implements the container management service (including
// startup reconciliation) and the object management service: request
// validation, container lookup, and dispatch to the serializer or the
// read/write dispatchers.
package service

import (
	"context"
	"encoding/json"

	"github.com/palisade-db/palisade/internal/container"
	"github.com/palisade-db/palisade/internal/logging"
	"github.com/palisade-db/palisade/internal/metrics"
	"github.com/palisade-db/palisade/internal/serializer"
	"github.com/palisade-db/palisade/internal/status"
	"github.com/palisade-db/palisade/internal/storageengine"
)

// DefaultPartitionName is the LSM engine's default partition, always opened
// so the engine has somewhere to start even on a genuinely empty disk.
const DefaultPartitionName = "_default"

// InternalMetadataPartitionName is the reserved container holding the
// "which user containers exist" source of truth.
const InternalMetadataPartitionName = "_internal_metadata_:object_containers"

// ContainerService validates container create/remove requests and
// delegates the actual work to the serializer.
type ContainerService struct {
	index      *container.Index
	serializer *serializer.Serializer
	engine     storageengine.Engine
	log        *logging.Logger

	maxNameBytes  int
	maxContainers int64

	metadataHandle storageengine.Handle
	metrics        *metrics.Metrics
}

// SetMetrics attaches the store's Prometheus collectors so every successful
// create and every reconciliation refreshes the containers-total gauge.
// Remove leaves the gauge alone. Optional.
func (s *ContainerService) SetMetrics(m *metrics.Metrics) { s.metrics = m }

// NewContainerService constructs the service. Reconcile must be called
// before the service is used to create or remove containers.
func NewContainerService(idx *container.Index, ser *serializer.Serializer, engine storageengine.Engine, log *logging.Logger, maxNameBytes int, maxContainers int64) *ContainerService {
	return &ContainerService{
		index:         idx,
		serializer:    ser,
		engine:        engine,
		log:           log,
		maxNameBytes:  maxNameBytes,
		maxContainers: maxContainers,
	}
}

func (s *ContainerService) closeHandle(ctx context.Context, h storageengine.Handle) error {
	return s.engine.CloseHandle(ctx, h)
}

func (s *ContainerService) validateName(name string) status.Code {
	if name == "" {
		return status.ContainerNameEmpty
	}
	if len(name) > s.maxNameBytes {
		return status.ContainerNameExceedsSizeLimit
	}
	return status.OK
}

// Create validates and dispatches a container creation to the serializer.
func (s *ContainerService) Create(ctx context.Context, name string) status.Code {
	if code := s.validateName(name); code.Failed() {
		return code
	}
	if s.index.TotalCount() >= s.maxContainers {
		return status.MaxNumberContainersReached
	}

	var result status.Code
	err := s.serializer.Submit(ctx, func() {
		if s.metadataHandle == nil {
			result = status.MissingStorageEngineReference
			return
		}
		switch s.index.GetExistence(name) {
		case container.AlreadyExists:
			result = status.ContainerAlreadyExists
			return
		case container.InDeletionProcess:
			result = status.ContainerInDeletionProcess
			return
		}

		handle, err := s.engine.CreatePartition(ctx, name)
		if err != nil {
			s.log.Errorf("create partition %q: %v", name, err)
			result = status.ContainerCreationFailed
			return
		}

		meta := container.Metadata{Name: name}
		raw, err := json.Marshal(meta)
		if err != nil {
			result = status.SerializationFailed
			return
		}
		if err := s.engine.Put(ctx, s.metadataHandle, name, raw); err != nil {
			// Partition exists but metadata row does not: an orphan, swept
			// by GC or the next boot's reconciliation. No rollback here.
			s.log.Errorf("persist metadata for %q: %v", name, err)
			result = status.ContainerCreationFailed
			return
		}

		c := container.New(name, handle, meta, s.closeHandle)
		if s.index.Insert(c) == container.InsertCollision {
			// The partition and metadata row stay behind as an orphan for GC
			// to sweep; only the record's own handle reference is dropped.
			_ = c.Release(ctx)
			result = status.ContainerInsertionCollision
			return
		}
		result = status.OK
	})
	if err != nil {
		return status.Unreachable
	}
	if result == status.OK {
		s.reportGauge()
	}
	return result
}

// Remove validates and dispatches a container removal to the serializer.
// Success only tombstones the record; the partition drop and index
// eviction happen later, on the garbage collector's clock.
func (s *ContainerService) Remove(ctx context.Context, name string) status.Code {
	if code := s.validateName(name); code.Failed() {
		return code
	}

	var result status.Code
	err := s.serializer.Submit(ctx, func() {
		if s.metadataHandle == nil {
			result = status.MissingStorageEngineReference
			return
		}
		switch s.index.GetExistence(name) {
		case container.NotExists:
			result = status.ContainerNotExists
			return
		case container.InDeletionProcess:
			result = status.ContainerInDeletionProcess
			return
		}

		if err := s.engine.Delete(ctx, s.metadataHandle, name); err != nil {
			s.log.Errorf("delete metadata row for %q: %v", name, err)
			result = status.ContainerStorageEngineDeletionFailed
			return
		}

		c, ok := s.index.Get(name)
		if !ok {
			result = status.Unreachable
			return
		}
		// A crash here leaves an orphan: metadata row gone, is_deleted not
		// yet set. Reconciliation covers it on next boot.
		c.MarkDeleted()
		result = status.OK
	})
	if err != nil {
		return status.Unreachable
	}
	// Remove only tombstones the record; the index entry (and the gauge)
	// doesn't drop until the garbage collector evicts it.
	return result
}

func (s *ContainerService) reportGauge() {
	if s.metrics == nil {
		return
	}
	s.metrics.ContainersTotal.Set(float64(s.index.TotalCount()))
}

// Reconcile runs the startup reconciliation procedure: enumerate
// partitions, create the internal-metadata partition on first boot, rebuild
// the index from it, and flag orphans discovered on disk as tombstoned.
func (s *ContainerService) Reconcile(ctx context.Context) error {
	partitions, err := s.engine.ListPartitions(ctx)
	if err != nil {
		return status.Wrap(status.FetchContainersFromDiskFailed, err)
	}

	firstBoot := len(partitions) == 0
	if firstBoot {
		partitions = append(partitions, DefaultPartitionName)
	}

	handles, err := s.engine.Start(ctx, partitions)
	if err != nil {
		return status.Wrap(status.StorageEngineStartupFailed, err)
	}

	_, hasDefault := handles[DefaultPartitionName]
	trueFirstBoot := len(handles) == 1 && hasDefault
	if trueFirstBoot {
		metaHandle, err := s.engine.CreatePartition(ctx, InternalMetadataPartitionName)
		if err != nil {
			return status.Wrap(status.StorageEngineStartupFailed, err)
		}
		handles[InternalMetadataPartitionName] = metaHandle
	}

	metaHandle, ok := handles[InternalMetadataPartitionName]
	if !ok {
		return status.New(status.ContainersInternalMetadataLookupFailed)
	}
	s.metadataHandle = metaHandle

	known, err := s.engine.IterateAll(ctx, metaHandle)
	if err != nil {
		return status.Wrap(status.FetchContainersFromDiskFailed, err)
	}

	for name, handle := range handles {
		if name == InternalMetadataPartitionName {
			c := container.New(name, handle, container.Metadata{Name: name}, s.closeHandle)
			s.index.Insert(c)
			continue
		}

		if raw, ok := known[name]; ok {
			var meta container.Metadata
			if err := json.Unmarshal(raw, &meta); err != nil {
				s.log.Errorf("parse metadata for %q: %v", name, err)
				meta = container.Metadata{Name: name}
			}
			c := container.New(name, handle, meta, s.closeHandle)
			s.index.Insert(c)
			continue
		}

		// Orphan: a partition on disk with no metadata row.
		meta := container.Metadata{Name: name}
		c := container.New(name, handle, meta, s.closeHandle)
		s.index.Insert(c)
		if name != DefaultPartitionName && name != InternalMetadataPartitionName {
			c.MarkDeleted()
		}
	}

	s.reportGauge()
	return nil
}
