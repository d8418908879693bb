package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propel-insights/internal/db"
	"propel-insights/internal/domain"
)

func hashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func TestCreateAndGetTenant(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewTenantRepo(writeDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, "Alpha Estates")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Alpha Estates", created.Name)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestGetUnknownTenantIsNotFound(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewTenantRepo(writeDB)

	_, err := repo.GetByID(context.Background(), "missing")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestGetByAPIKeyHash(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewTenantRepo(writeDB)
	ctx := context.Background()

	tenant, err := repo.Create(ctx, "Alpha Estates")
	require.NoError(t, err)
	require.NoError(t, repo.CreateAPIKey(ctx, tenant.ID, hashKey("raw-key")))

	got, err := repo.GetByAPIKeyHash(ctx, hashKey("raw-key"))
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)

	_, err = repo.GetByAPIKeyHash(ctx, hashKey("wrong-key"))
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestDuplicateAPIKeyHashRejected(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewTenantRepo(writeDB)
	ctx := context.Background()

	a, err := repo.Create(ctx, "Alpha Estates")
	require.NoError(t, err)
	b, err := repo.Create(ctx, "Beta Homes")
	require.NoError(t, err)

	require.NoError(t, repo.CreateAPIKey(ctx, a.ID, hashKey("shared")))
	err = repo.CreateAPIKey(ctx, b.ID, hashKey("shared"))
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestListOrdersByName(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewTenantRepo(writeDB)
	ctx := context.Background()

	_, err := repo.Create(ctx, "Zeta Builders")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "Alpha Estates")
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha Estates", all[0].Name)
	assert.Equal(t, "Zeta Builders", all[1].Name)
}
