package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palisade-db/palisade/internal/storageengine"
)

func TestPutGetDeleteRoundTrip(t *testing.T) {
	e := New()
	ctx := context.Background()

	h, err := e.CreatePartition(ctx, "p")
	require.NoError(t, err)

	require.NoError(t, e.Put(ctx, h, "k", []byte("v")))
	v, found, err := e.Get(ctx, h, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, e.Delete(ctx, h, "k"))
	_, found, err = e.Get(ctx, h, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreatePartitionRejectsDuplicate(t *testing.T) {
	e := New()
	ctx := context.Background()

	_, err := e.CreatePartition(ctx, "p")
	require.NoError(t, err)
	_, err = e.CreatePartition(ctx, "p")
	assert.Error(t, err)
}

func TestDropPartitionRemovesKeys(t *testing.T) {
	e := New()
	ctx := context.Background()

	h, err := e.CreatePartition(ctx, "p")
	require.NoError(t, err)
	require.NoError(t, e.Put(ctx, h, "k", []byte("v")))

	require.NoError(t, e.DropPartition(ctx, h))

	names, err := e.ListPartitions(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, "p")

	_, _, err = e.Get(ctx, h, "k")
	assert.Error(t, err)
}

func TestExecuteWriteBatchAppliesMixedMutations(t *testing.T) {
	e := New()
	ctx := context.Background()

	h1, err := e.CreatePartition(ctx, "p1")
	require.NoError(t, err)
	h2, err := e.CreatePartition(ctx, "p2")
	require.NoError(t, err)
	require.NoError(t, e.Put(ctx, h2, "gone", []byte("x")))

	batch := &storageengine.WriteBatch{}
	batch.Put(h1, "a", []byte("1"))
	batch.Put(h2, "b", []byte("2"))
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

func TestIterateAllSnapshotsPartition(t *testing.T) {
	e := New()
	ctx := context.Background()

	h, err := e.CreatePartition(ctx, "p")
	require.NoError(t, err)
	require.NoError(t, e.Put(ctx, h, "a", []byte("1")))
	require.NoError(t, e.Put(ctx, h, "b", []byte("2")))

	all, err := e.IterateAll(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, all)
}

func TestGetReturnsCopyNotAlias(t *testing.T) {
	e := New()
	ctx := context.Background()

	h, err := e.CreatePartition(ctx, "p")
	require.NoError(t, err)
	require.NoError(t, e.Put(ctx, h, "k", []byte("abc")))

	v, _, err := e.Get(ctx, h, "k")
	require.NoError(t, err)
	v[0] = 'z'

	again, _, err := e.Get(ctx, h, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}
