package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/mongodb"
	"github.com/qolzam/forum/internal/platform/config"
	"github.com/stretchr/testify/require"
)

// MongoClient connects to MONGODB_URI with a throwaway database that is dropped when the
// test ends. The test is skipped unless RUN_DB_TESTS=1.
func MongoClient(t *testing.T) *mongodb.Client {
	t.Helper()
	if os.Getenv("RUN_DB_TESTS") != "1" || os.Getenv("MONGODB_URI") == "" {
		t.Skip("set RUN_DB_TESTS=1 and MONGODB_URI to run MongoDB integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := fmt.Sprintf("forum_test_%s", uuid.Must(uuid.NewV4()).String()[:8])
	forceNonTx := os.Getenv("DB_FORCE_NON_TRANSACTIONAL") == "true"
	client, err := mongodb.Connect(ctx, config.MongoDBConfig{URI: os.Getenv("MONGODB_URI"), Database: dbName}, forceNonTx)
	require.NoError(t, err, "failed to connect to MongoDB")

	t.Cleanup(func() {
		_ = client.Database().Drop(context.Background())
		_ = client.Close(context.Background())
	})
	return client
}
