package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/imghost/internal/infrastructure/mongodb"
)

// MongoDB test configuration constants
const (
	mongoCtxTimeout                = 10 * time.Second
	mongoPingTimeout               = 2 * time.Second
	mongoContainerStartupTimeout   = 60 * time.Second
	mongoContainerTerminateTimeout = 10 * time.Second
	pingRetryDelay                 = 500 * time.Millisecond
	maxTestNameLength              = 40
	mongoPingRetries               = 5
)

var (
	sharedContainer     *SharedMongoContainer
	sharedContainerOnce sync.Once
	errSharedContainer  error
)

// SharedMongoContainer represents a reusable MongoDB container for tests
type SharedMongoContainer struct {
	Container testcontainers.Container
	URI       string
}

// GetSharedMongoContainer returns a singleton MongoDB container.
// The container is started once and reused across all tests.
func GetSharedMongoContainer(ctx context.Context) (*SharedMongoContainer, error) {
	sharedContainerOnce.Do(func() {
		sharedContainer, errSharedContainer = startMongoContainer(ctx)
	})

	return sharedContainer, errSharedContainer
}

func startMongoContainer(ctx context.Context) (*SharedMongoContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "mongo:8",
		Name:         "imghost-test-mongodb", // Required for Reuse mode
		ExposedPorts: []string{"27017/tcp"},
		Env: map[string]string{
			"MONGO_INITDB_ROOT_USERNAME": "admin",
			"MONGO_INITDB_ROOT_PASSWORD": "admin123",
		},
		WaitingFor: wait.ForLog("Waiting for connections").WithStartupTimeout(mongoContainerStartupTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
		Reuse:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &SharedMongoContainer{
		Container: container,
		URI:       fmt.Sprintf("mongodb://admin:admin123@%s", net.JoinHostPort(host, port.Port())),
	}, nil
}

// SetupSharedTestMongoDB creates a test database using the shared MongoDB container.
// Each test gets its own database which is dropped on cleanup.
func SetupSharedTestMongoDB(t *testing.T) *mongo.Database {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), mongoCtxTimeout)
	defer cancel()

	container, err := GetSharedMongoContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to get shared MongoDB container: %v", err)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(container.URI))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	for i := range mongoPingRetries {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), mongoPingTimeout)
		err = client.Ping(pingCtx, nil)
		pingCancel()
		if err == nil {
			break
		}
		if i < mongoPingRetries-1 {
			time.Sleep(pingRetryDelay)
		}
	}
	if err != nil {
		t.Fatalf("Failed to ping MongoDB after %d retries: %v", mongoPingRetries, err)
	}

	db := client.Database(generateTestDBName(t.Name()))

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), mongoCtxTimeout)
		defer cleanupCancel()
		_ = db.Drop(cleanupCtx)
		_ = client.Disconnect(cleanupCtx)
	})

	return db
}

// SetupTestDatabase is SetupSharedTestMongoDB with all production indexes created.
func SetupTestDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	db := SetupSharedTestMongoDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), mongoCtxTimeout)
	defer cancel()

	if err := mongodb.CreateAllIndexes(ctx, db); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}

	return db
}

// generateTestDBName creates a unique database name from test name
func generateTestDBName(testName string) string {
	testName = strings.NewReplacer("/", "_", " ", "_", ".", "_").Replace(testName)
	if len(testName) > maxTestNameLength {
		// MongoDB limits database names to 63 bytes
		hash := sha256.Sum256([]byte(testName))
		testName = testName[:20] + "_" + hex.EncodeToString(hash[:])[:12]
	}
	return "imghost_test_" + testName
}

// CleanupSharedContainer terminates the shared container.
// With Reuse=true the container may outlive the test binary.
func CleanupSharedContainer() {
	if sharedContainer != nil && sharedContainer.Container != nil {
		ctx, cancel := context.WithTimeout(context.Background(), mongoContainerTerminateTimeout)
		defer cancel()
		_ = sharedContainer.Container.Terminate(ctx)
	}
}
