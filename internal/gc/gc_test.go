package gc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palisade-db/palisade/internal/container"
	"github.com/palisade-db/palisade/internal/logging"
	"github.com/palisade-db/palisade/internal/storageengine"
	"github.com/palisade-db/palisade/internal/storageengine/memory"
)

func TestSweepDropsTombstonedContainers(t *testing.T) {
	idx := container.NewIndex(2)
	eng := memory.New()
	ctx := context.Background()

	handles, err := eng.Start(ctx, []string{"gone"})
	require.NoError(t, err)

	rec := container.New("gone", handles["gone"], container.Metadata{Name: "gone"}, func(ctx context.Context, h storageengine.Handle) error {
		return eng.CloseHandle(ctx, h)
	})
	require.Equal(t, container.InsertSuccess, idx.Insert(rec))
	rec.MarkDeleted()

	c := New(idx, eng, logging.NewNop(), time.Hour)
	c.sweepOnce()

	assert.Equal(t, container.NotExists, idx.GetExistence("gone"))

	partitions, err := eng.ListPartitions(ctx)
	require.NoError(t, err)
	assert.NotContains(t, partitions, "gone")
}

func TestSweepSkipsLiveContainers(t *testing.T) {
	idx := container.NewIndex(2)
	eng := memory.New()
	ctx := context.Background()

	handles, err := eng.Start(ctx, []string{"alive"})
	require.NoError(t, err)
	rec := container.New("alive", handles["alive"], container.Metadata{Name: "alive"}, func(ctx context.Context, h storageengine.Handle) error {
		return eng.CloseHandle(ctx, h)
	})
	require.Equal(t, container.InsertSuccess, idx.Insert(rec))

	c := New(idx, eng, logging.NewNop(), time.Hour)
	c.sweepOnce()

	assert.Equal(t, container.AlreadyExists, idx.GetExistence("alive"))
}

func TestCollectorStartStop(t *testing.T) {
	idx := container.NewIndex(1)
	eng := memory.New()
	c := New(idx, eng, logging.NewNop(), 10*time.Millisecond)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()
}
