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

// testVector builds a 1536-dim vector whose first component carries the
// signal; everything else is zero so cosine distances are predictable.
func testVector(x, y float32) []float32 {
	vec := make([]float32, 1536)
	vec[0] = x
	vec[1] = y
	return vec
}

func seedCredentials(ctx context.Context, t *testing.T, repo *CredentialRepository) {
	t.Helper()
	require.NoError(t, repo.ReplaceAll(ctx, []domain.CredentialRecord{
		{
			Credential: domain.Credential{EmployeeID: "E001", Name: "CKA", Issuer: "CNCF"},
			Country:    "MX",
			Context:    "Backend Developer CKA CNCF MX",
			Embedding:  testVector(1, 0),
		},
		{
			Credential: domain.Credential{EmployeeID: "E002", Name: "AWS SA", Issuer: "AWS"},
			Country:    "AR",
			Context:    "DevOps Engineer AWS SA AWS AR",
			Embedding:  testVector(0, 1),
		},
	}))
}

func TestCredentialRepository_SearchNearest(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCredentialRepository(pool)
	seedCredentials(ctx, t, repo)

	hits, err := repo.SearchNearest(ctx, testVector(1, 0), "", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "E001", hits[0].EmployeeID)
	assert.Equal(t, "CKA", hits[0].Label)
	assert.InDelta(t, 0, hits[0].Distance, 0.0001, "identical vector has zero cosine distance")
	assert.Equal(t, "E002", hits[1].EmployeeID)
	assert.Greater(t, hits[1].Distance, hits[0].Distance)
}

func TestCredentialRepository_SearchNearest_CountryFilter(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCredentialRepository(pool)
	seedCredentials(ctx, t, repo)

	hits, err := repo.SearchNearest(ctx, testVector(1, 0), "AR", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1, "rows outside the country never enter the ranking")
	assert.Equal(t, "E002", hits[0].EmployeeID)
}

func TestCredentialRepository_ListByEmployeeAndCountries(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCredentialRepository(pool)
	seedCredentials(ctx, t, repo)

	creds, err := repo.ListByEmployee(ctx, "E001")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "CKA", creds[0].Name)
	assert.Equal(t, "CNCF", creds[0].Issuer)

	countries, err := repo.DistinctCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AR", "MX"}, countries)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCredentialRepository_ReplaceAllSwapsFully(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCredentialRepository(pool)
	seedCredentials(ctx, t, repo)

	require.NoError(t, repo.ReplaceAll(ctx, []domain.CredentialRecord{
		{
			Credential: domain.Credential{EmployeeID: "E003", Name: "Terraform Associate"},
			Context:    "Terraform Associate",
			Embedding:  testVector(0.5, 0.5),
		},
	}))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	creds, err := repo.ListByEmployee(ctx, "E001")
	require.NoError(t, err)
	assert.Empty(t, creds)
}
