package service

import (
	"context"

	"github.com/palisade-db/palisade/internal/container"
	"github.com/palisade-db/palisade/internal/dispatch"
	"github.com/palisade-db/palisade/internal/metrics"
	"github.com/palisade-db/palisade/internal/status"
)

// ObjectCache is the subset of *cache.Cache the object service needs for its
// read fast-path.
type ObjectCache interface {
	Get(containerName, objectID string) ([]byte, bool)
}

// ObjectService validates object requests, looks up the container, and
// dispatches to the cache fast-path, read dispatcher, or write dispatcher.
type ObjectService struct {
	index *container.Index
	cache ObjectCache
	read  *dispatch.ReadDispatcher
	write *dispatch.WriteDispatcher

	maxContainerNameBytes int
	maxObjectIDBytes      int
	maxObjectDataBytes    int

	metrics *metrics.Metrics
}

// SetMetrics attaches the store's Prometheus collectors so every
// insert/get/remove records an outcome-labeled counter. Optional.
func (s *ObjectService) SetMetrics(m *metrics.Metrics) { s.metrics = m }

func outcomeLabel(code status.Code) string {
	if code.Failed() {
		return "fail"
	}
	return "ok"
}

// NewObjectService constructs the service.
func NewObjectService(idx *container.Index, cache ObjectCache, read *dispatch.ReadDispatcher, write *dispatch.WriteDispatcher, maxContainerNameBytes, maxObjectIDBytes, maxObjectDataBytes int) *ObjectService {
	return &ObjectService{
		index:                 idx,
		cache:                 cache,
		read:                  read,
		write:                 write,
		maxContainerNameBytes: maxContainerNameBytes,
		maxObjectIDBytes:      maxObjectIDBytes,
		maxObjectDataBytes:    maxObjectDataBytes,
	}
}

func (s *ObjectService) validateCommon(containerName, objectID string) status.Code {
	if containerName == "" {
		return status.ContainerNameEmpty
	}
	if len(containerName) > s.maxContainerNameBytes {
		return status.ContainerNameExceedsSizeLimit
	}
	if objectID == "" {
		return status.ObjectIDEmpty
	}
	if len(objectID) > s.maxObjectIDBytes {
		return status.ObjectIDExceedsSizeLimit
	}
	return status.OK
}

// lookupLive resolves containerName to a live, reference-acquired
// *container.Container, or a failure status if it is absent or tombstoned.
func (s *ObjectService) lookupLive(containerName string) (*container.Container, status.Code) {
	c, ok := s.index.Get(containerName)
	if !ok || c.IsDeleted() {
		return nil, status.ContainerNotExists
	}
	return c.Acquire(), status.OK
}

// Insert validates and dispatches an object insert to the write dispatcher.
func (s *ObjectService) Insert(ctx context.Context, containerName, objectID string, data []byte) status.Code {
	code := s.insert(ctx, containerName, objectID, data)
	if s.metrics != nil {
		s.metrics.ObjectInsertTotal.WithLabelValues(outcomeLabel(code)).Inc()
	}
	return code
}

func (s *ObjectService) insert(ctx context.Context, containerName, objectID string, data []byte) status.Code {
	if code := s.validateCommon(containerName, objectID); code.Failed() {
		return code
	}
	if len(data) == 0 {
		return status.ObjectDataEmpty
	}
	if len(data) > s.maxObjectDataBytes {
		return status.ObjectDataExceedsSizeLimit
	}

	c, code := s.lookupLive(containerName)
	if code.Failed() {
		return code
	}

	reply := make(chan status.Code, 1)
	s.write.Enqueue(&dispatch.Task{
		Op: dispatch.OpInsert, Container: c, ContainerName: containerName, ObjectID: objectID, Data: data,
		Reply: func(_ []byte, code status.Code) { reply <- code },
	})

	select {
	case code := <-reply:
		return code
	case <-ctx.Done():
		return status.Unreachable
	}
}

// Remove validates and dispatches an object remove to the write dispatcher.
func (s *ObjectService) Remove(ctx context.Context, containerName, objectID string) status.Code {
	code := s.remove(ctx, containerName, objectID)
	if s.metrics != nil {
		s.metrics.ObjectRemoveTotal.WithLabelValues(outcomeLabel(code)).Inc()
	}
	return code
}

func (s *ObjectService) remove(ctx context.Context, containerName, objectID string) status.Code {
	if code := s.validateCommon(containerName, objectID); code.Failed() {
		return code
	}

	c, code := s.lookupLive(containerName)
	if code.Failed() {
		return code
	}

	reply := make(chan status.Code, 1)
	s.write.Enqueue(&dispatch.Task{
		Op: dispatch.OpRemove, Container: c, ContainerName: containerName, ObjectID: objectID,
		Reply: func(_ []byte, code status.Code) { reply <- code },
	})

	select {
	case code := <-reply:
		return code
	case <-ctx.Done():
		return status.Unreachable
	}
}

// Get serves the cache fast-path for a hit; on a miss it dispatches to the
// read dispatcher.
func (s *ObjectService) Get(ctx context.Context, containerName, objectID string) ([]byte, status.Code) {
	data, code := s.get(ctx, containerName, objectID)
	if s.metrics != nil {
		s.metrics.ObjectGetTotal.WithLabelValues(outcomeLabel(code)).Inc()
	}
	return data, code
}

func (s *ObjectService) get(ctx context.Context, containerName, objectID string) ([]byte, status.Code) {
	if code := s.validateCommon(containerName, objectID); code.Failed() {
		return nil, code
	}

	if data, hit := s.cache.Get(containerName, objectID); hit {
		return data, status.OK
	}

	c, code := s.lookupLive(containerName)
	if code.Failed() {
		return nil, code
	}

	type result struct {
		data []byte
		code status.Code
	}
	reply := make(chan result, 1)
	s.read.Enqueue(&dispatch.Task{
		Op: dispatch.OpGet, Container: c, ContainerName: containerName, ObjectID: objectID,
		Reply: func(data []byte, code status.Code) { reply <- result{data: data, code: code} },
	})

	select {
	case r := <-reply:
		return r.data, r.code
	case <-ctx.Done():
		return nil, status.Unreachable
	}
}
