package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hintwise/hintgate/internal/db/bunx"
	"github.com/hintwise/hintgate/internal/db/models"
)

func newTestRepository(t *testing.T) *BunHintRepository {
	t.Helper()
	db, err := bunx.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	repo := NewBunHintRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))

	// EnsureSchema is idempotent; a second pass must not fail.
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestCreateFillsGeneratedID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := &models.Hint{Question: "What are office hours?", Reply: "Tuesdays 2-4pm"}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)

	second := &models.Hint{Question: "Where is the lab?", Reply: "McBryde 104"}
	require.NoError(t, repo.Create(ctx, second))
	assert.Greater(t, second.ID, first.ID)
}

func TestUpdateReportsMatchedRows(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	hint := &models.Hint{Question: "old q", Reply: "old r"}
	require.NoError(t, repo.Create(ctx, hint))

	affected, err := repo.Update(ctx, hint.ID, "new q", "new r")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.Update(ctx, hint.ID+1000, "q", "r")
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestDeleteReportsRemovedRows(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	hint := &models.Hint{Question: "q", Reply: "r"}
	require.NoError(t, repo.Create(ctx, hint))

	affected, err := repo.Delete(ctx, hint.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Deleting the same row again matches nothing.
	affected, err = repo.Delete(ctx, hint.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)
}
