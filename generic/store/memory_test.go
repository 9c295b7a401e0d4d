package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tjwilli6/Fitness/generic"
	"github.com/tjwilli6/Fitness/generic/store"
)

func TestMemory_LogsAreIndependent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	a, b := mem.Log("a"), mem.Log("b")

	require.NoError(t, a.Append(ctx, "1"))
	require.NoError(t, a.Append(ctx, "2"))
	require.NoError(t, b.Append(ctx, "x"))

	assert.Equal(t, []string{"1", "2"}, mem.Lines("a"))
	assert.Equal(t, []string{"x"}, mem.Lines("b"))
	assert.Equal(t, "a", a.Name())
}

func TestMemory_RemoveLast(t *testing.T) {
	ctx := context.Background()
	log := store.NewMemory().Log("a")

	_, err := log.RemoveLast(ctx)
	assert.ErrorIs(t, err, generic.ErrEmptyLog)

	require.NoError(t, log.Append(ctx, "1"))
	last, err := log.RemoveLast(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", last)

	exists, err := log.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemory_ReadAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	log := store.NewMemory().Log("a")
	require.NoError(t, log.Append(ctx, "1"))

	lines, err := log.ReadAll(ctx)
	require.NoError(t, err)
	lines[0] = "changed"

	again, err := log.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, again)
}
