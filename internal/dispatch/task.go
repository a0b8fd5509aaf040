// Package dispatch implements the read dispatcher and write dispatcher:
// the fixed worker pool that services get-object tasks and the single
// master goroutine that drains a write queue into engine write-batches.
package dispatch

import (
	"github.com/palisade-db/palisade/internal/container"
	"github.com/palisade-db/palisade/internal/status"
)

// Op identifies what a Task asks the engine to do.
type Op int

const (
	OpGet Op = iota
	OpInsert
	OpRemove
)

// Reply is invoked exactly once with the task's final outcome.
type Reply func(data []byte, code status.Code)

// Task is an object_io_task: the parsed request, a reference-counted hold on
// the container (keeping its engine handle alive for the task's duration),
// and a reply callback. A Task is handed to a dispatcher exactly once.
type Task struct {
	Op            Op
	Container     *container.Container
	ContainerName string
	ObjectID      string
	Data          []byte // populated for OpInsert
	Reply         Reply
}
