// Package serializer implements the container-operation serializer: a
// single-threaded FIFO executor that linearizes container create/remove
// against the storage engine, which offers no atomic partition lifecycle of
// its own.
package serializer

import "context"

// Serializer runs arbitrary closures one at a time, in submission order, on
// a single dedicated goroutine.
type Serializer struct {
	jobs chan func()
	done chan struct{}
}

// New starts the serializer's goroutine. queueSize bounds how many pending
// jobs may be enqueued before Submit blocks; 0 means unbounded in practice
// is not supported by Go channels, so a large default is used instead.
func New(queueSize int) *Serializer {
	if queueSize <= 0 {
		queueSize = 4096
	}
	s := &Serializer{
		jobs: make(chan func(), queueSize),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Serializer) run() {
	defer close(s.done)
	for job := range s.jobs {
		job()
	}
}

// Submit enqueues fn to run on the serializer goroutine and blocks the
// caller until fn has completed, giving callers read-your-writes semantics
// against the index without exposing any locking of their own.
func (s *Serializer) Submit(ctx context.Context, fn func()) error {
	reply := make(chan struct{})
	wrapped := func() {
		fn()
		close(reply)
	}
	select {
	case s.jobs <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the job queue and waits for the goroutine to drain and exit.
func (s *Serializer) Stop() {
	close(s.jobs)
	<-s.done
}
