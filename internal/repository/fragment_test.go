//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridaworks/talentd/internal/domain"
	"github.com/meridaworks/talentd/internal/testutil"
)

func TestFragmentRepository_SearchAndList(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewFragmentRepository(pool)

	require.NoError(t, repo.ReplaceAll(ctx, []domain.Fragment{
		{EmployeeID: "E001", Filename: "maria_cv.pdf", Seq: 0, Page: 1, Text: "led kubernetes migrations", Embedding: testVector(1, 0)},
		{EmployeeID: "E001", Filename: "maria_cv.pdf", Seq: 1, Page: 2, Text: "designed ci pipelines", Embedding: testVector(0.8, 0.2)},
		{EmployeeID: "E002", Filename: "juan_cv.txt", Seq: 0, Page: 0, Text: "built payment services", Embedding: testVector(0, 1)},
	}))

	hits, err := repo.SearchNearest(ctx, testVector(1, 0), 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "maria_cv.pdf", hits[0].Filename)
	assert.Equal(t, 1, hits[0].Page)
	assert.Equal(t, "led kubernetes migrations", hits[0].Text)

	fragments, err := repo.ListByFilename(ctx, "maria_cv.pdf")
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Equal(t, 0, fragments[0].Seq)
	assert.Equal(t, 1, fragments[1].Seq)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	docs, err := repo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, docs)
}

func TestFragmentRepository_ReplaceAllSwapsFully(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewFragmentRepository(pool)

	require.NoError(t, repo.ReplaceAll(ctx, []domain.Fragment{
		{EmployeeID: "E001", Filename: "old_cv.pdf", Seq: 0, Text: "stale", Embedding: testVector(1, 0)},
	}))
	require.NoError(t, repo.ReplaceAll(ctx, nil))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "an empty swap clears the index")
}
