package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
)

func entry(userID int64, id, op string, sec int64) models.HistoryEntry {
	return models.HistoryEntry{
		ID:        id,
		UserID:    userID,
		Time:      time.Unix(sec, 0).UTC(),
		Operation: op,
		Details:   op + " details",
	}
}

// runContract checks the behavior every Repository must share.
func runContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("missing log", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Append(ctx, entry(1, "01", models.OpGenerate, 1)), "append to missing log is a no-op")

		_, err := repo.List(ctx, 1)
		assert.ErrorIs(t, err, common.ErrorNotFound)

	})

	t.Run("clear creates a missing log", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.Clear(ctx, 1))
		got, err := repo.List(ctx, 1)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)

		require.NoError(t, repo.Append(ctx, entry(1, "01", models.OpGenerate, 1)))
		got, err = repo.List(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		_, err = repo.List(ctx, 2)
		assert.ErrorIs(t, err, common.ErrorNotFound, "other logs stay missing")
	})

	t.Run("append and list oldest first", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, 1))
		require.NoError(t, repo.Create(ctx, 2))

		empty, err := repo.List(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, empty)
		assert.NotNil(t, empty)

		require.NoError(t, repo.Append(ctx, entry(1, "01", models.OpRegister, 1)))
		require.NoError(t, repo.Append(ctx, entry(2, "02", models.OpRegister, 2)))
		require.NoError(t, repo.Append(ctx, entry(1, "03", models.OpGenerate, 3)))

		got, err := repo.List(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, entry(1, "01", models.OpRegister, 1), got[0])
		assert.Equal(t, entry(1, "03", models.OpGenerate, 3), got[1])
	})

	t.Run("create is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, 1))
		require.NoError(t, repo.Append(ctx, entry(1, "01", models.OpRegister, 1)))
		require.NoError(t, repo.Create(ctx, 1))

		got, err := repo.List(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("clear keeps the log", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, 1))
		require.NoError(t, repo.Append(ctx, entry(1, "01", models.OpRegister, 1)))

		require.NoError(t, repo.Clear(ctx, 1))

		got, err := repo.List(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, got)

		require.NoError(t, repo.Append(ctx, entry(1, "02", models.OpGenerate, 2)))
		got, err = repo.List(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
