package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuwenbin0122/goal-planner/internal/models"
)

// runStoreContract checks the behaviour every Store backend must share.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	t.Run("unseen session starts empty", func(t *testing.T) {
		turns, err := store.GetOrCreate(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.NotNil(t, turns)
		assert.Empty(t, turns)
	})

	t.Run("turns keep append order", func(t *testing.T) {
		sessionID := uuid.NewString()
		_, err := store.GetOrCreate(ctx, sessionID)
		require.NoError(t, err)

		want := []models.Turn{
			{Role: models.RoleUser, Content: "one", CreatedAt: at},
			{Role: models.RoleAssistant, Content: "two", CreatedAt: at.Add(time.Second)},
			{Role: models.RoleUser, Content: "three", CreatedAt: at.Add(2 * time.Second)},
		}
		for _, turn := range want {
			require.NoError(t, store.Append(ctx, sessionID, turn))
		}

		got, err := store.GetOrCreate(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].Role, got[i].Role)
			assert.Equal(t, want[i].Content, got[i].Content)
			assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt), "turn %d timestamp", i)
		}
	})

	t.Run("append without prior get creates the session", func(t *testing.T) {
		sessionID := uuid.NewString()
		require.NoError(t, store.Append(ctx, sessionID, models.Turn{Role: models.RoleUser, Content: "hello", CreatedAt: at}))

		got, err := store.GetOrCreate(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "hello", got[0].Content)
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		a, b := uuid.NewString(), uuid.NewString()
		require.NoError(t, store.Append(ctx, a, models.Turn{Role: models.RoleUser, Content: "for a", CreatedAt: at}))

		got, err := store.GetOrCreate(ctx, b)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("returned history is a copy", func(t *testing.T) {
		sessionID := uuid.NewString()
		require.NoError(t, store.Append(ctx, sessionID, models.Turn{Role: models.RoleUser, Content: "original", CreatedAt: at}))

		got, err := store.GetOrCreate(ctx, sessionID)
		require.NoError(t, err)
		got[0].Content = "mutated"

		again, err := store.GetOrCreate(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "original", again[0].Content)
	})
}
