// Package mongotest starts throwaway MongoDB servers for integration tests.
package mongotest

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"liyu1981.xyz/energy-opdb-service/pkg/common"
)

const mongoImage = "mongo:7"

// SkipUnlessIntegration skips t unless RUN_INTEGRATION_TESTS=true.
func SkipUnlessIntegration(t testing.TB) {
	t.Helper()
	if os.Getenv(common.EnvKeyRunIntegrationTests) != "true" {
		t.Skip("Skipping integration test: RUN_INTEGRATION_TESTS environment variable not set")
	}
}

// StartMongo runs a single-node replica set for the lifetime of t and
// returns a URI for it. Transactions need the replica set.
func StartMongo(t testing.TB) string {
	t.Helper()
	SkipUnlessIntegration(t)

	ctx := context.Background()
	container, err := mongodb.Run(ctx, mongoImage, mongodb.WithReplicaSet("rs0"))
	if err != nil {
		t.Fatalf("Failed to start mongodb container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get mongodb connection string: %v", err)
	}
	// the replica set advertises the container hostname, so talk to the
	// mapped port directly
	return strings.TrimSuffix(uri, "/") + "/?directConnection=true"
}
