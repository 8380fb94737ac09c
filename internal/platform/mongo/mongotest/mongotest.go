// Package mongotest starts a disposable MongoDB for integration tests.
package mongotest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/mongo"

	mongoclient "blog_backend/internal/platform/mongo"
)

const image = "mongo:7"

// Database starts a MongoDB container and returns a database named after the test.
// The test is skipped under -short or when no container runtime is available.
func Database(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := mongodb.Run(ctx, image)
	if err != nil {
		t.Skipf("MongoDB container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to obtain connection string: %v", err)
	}

	client, db, err := mongoclient.Connect(ctx, uri, dbName(t))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB container: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})
	return db
}

func dbName(t *testing.T) string {
	r := strings.NewReplacer("/", "_", " ", "_", ".", "_")
	name := r.Replace(t.Name())
	if len(name) > 60 {
		name = name[:60]
	}
	return name
}
