package boltengine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palisade-db/palisade/internal/storageengine"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(filepath.Join(t.TempDir(), "store.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestPutSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	e, err := Open(path, 0)
	require.NoError(t, err)
	h, err := e.CreatePartition(ctx, "p")
	require.NoError(t, err)
	require.NoError(t, e.Put(ctx, h, "k", []byte("v")))
	require.NoError(t, e.Close())

	e2, err := Open(path, 0)
	require.NoError(t, err)
	defer e2.Close()

	names, err := e2.ListPartitions(ctx)
	require.NoError(t, err)
	require.Contains(t, names, "p")

	handles, err := e2.Start(ctx, names)
	require.NoError(t, err)
	v, found, err := e2.Get(ctx, handles["p"], "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v"), v)
}

func TestDropPartitionPermanentlyRemovesKeys(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	h, err := e.CreatePartition(ctx, "p")
	require.NoError(t, err)
	require.NoError(t, e.Put(ctx, h, "k", []byte("v")))

	require.NoError(t, e.DropPartition(ctx, h))

	names, err := e.ListPartitions(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, "p")
}

func TestCreatePartitionRejectsDuplicate(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	_, err := e.CreatePartition(ctx, "p")
	require.NoError(t, err)
	_, err = e.CreatePartition(ctx, "p")
	assert.Error(t, err)
}

func TestExecuteWriteBatchSpansPartitions(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	h1, err := e.CreatePartition(ctx, "p1")
	require.NoError(t, err)
	h2, err := e.CreatePartition(ctx, "p2")
	require.NoError(t, err)
	require.NoError(t, e.Put(ctx, h2, "gone", []byte("x")))

	batch := &storageengine.WriteBatch{}
	batch.Put(h1, "a", []byte("1"))
	batch.Delete(h2, "gone")
	require.NoError(t, e.ExecuteWriteBatch(ctx, batch))

	v, found, err := e.Get(ctx, h1, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("1"), v)

	_, found, err = e.Get(ctx, h2, "gone")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIterateAllReadsEveryRow(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	h, err := e.CreatePartition(ctx, "p")
	require.NoError(t, err)
	require.NoError(t, e.Put(ctx, h, "a", []byte("1")))
	require.NoError(t, e.Put(ctx, h, "b", []byte("2")))

	all, err := e.IterateAll(ctx, h)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, []byte("2"), all["b"])
}
