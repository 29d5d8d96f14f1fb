package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuwenbin0122/goal-planner/internal/models"
)

func TestMemoryStoreContract(t *testing.T) {
	store, err := NewMemoryStore(128)
	require.NoError(t, err)

	runStoreContract(t, store)
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(2)
	require.NoError(t, err)

	require.NoError(t, store.Append(ctx, "a", models.Turn{Role: models.RoleUser, Content: "a1"}))
	require.NoError(t, store.Append(ctx, "b", models.Turn{Role: models.RoleUser, Content: "b1"}))

	// Touch "a" so "b" becomes the eviction candidate.
	_, err = store.GetOrCreate(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, store.Append(ctx, "c", models.Turn{Role: models.RoleUser, Content: "c1"}))
	assert.Equal(t, 2, store.Len())

	a, err := store.GetOrCreate(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, a, 1)

	b, err := store.GetOrCreate(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, b, "evicted session should restart empty")
}

func TestMemoryStoreRejectsNonPositiveCapacity(t *testing.T) {
	_, err := NewMemoryStore(0)
	assert.Error(t, err)
}
