package catalog

import (
	"context"
	"testing"

	"github.com/fjod/storefront/internal/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func TestMongo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	defer func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}()

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := database.ConnectMongoDB(ctx, uri, "catalog_test")
	require.NoError(t, err)

	repo := NewMongo(db)
	require.NoError(t, repo.CreateIndexes(ctx))
	require.NoError(t, repo.Seed(ctx, DefaultProducts()))
	// seeding twice must not duplicate
	require.NoError(t, repo.Seed(ctx, DefaultProducts()))

	testProvider(t, repo)
}
