package testutil

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Redis test configuration constants
const (
	redisCtxTimeout                = 10 * time.Second
	redisContainerStartupTimeout   = 60 * time.Second
	redisContainerTerminateTimeout = 5 * time.Second
	redisContainerMemoryLimit      = 128 * 1024 * 1024 // 128MB
	redisTestPoolSize              = 10
	redisScanBatch                 = 100
)

var (
	sharedRedisContainer   *SharedRedisContainer
	sharedRedisContainerMu sync.Mutex
)

// SharedRedisContainer represents a reusable Redis container for tests
type SharedRedisContainer struct {
	Container testcontainers.Container
	Addr      string
}

// GetSharedRedisContainer returns a singleton Redis container. A container
// that stopped running since the last call is replaced.
func GetSharedRedisContainer(ctx context.Context) (*SharedRedisContainer, error) {
	sharedRedisContainerMu.Lock()
	defer sharedRedisContainerMu.Unlock()

	if sharedRedisContainer != nil {
		state, err := sharedRedisContainer.Container.State(ctx)
		if err == nil && state.Running {
			return sharedRedisContainer, nil
		}
		terminateCtx, cancel := context.WithTimeout(context.Background(), redisContainerTerminateTimeout)
		_ = sharedRedisContainer.Container.Terminate(terminateCtx)
		cancel()
		sharedRedisContainer = nil
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), redisContainerStartupTimeout)
	defer cancel()

	cont, err := startRedisContainer(startupCtx)
	if err != nil {
		return nil, err
	}
	sharedRedisContainer = cont
	return cont, nil
}

func startRedisContainer(ctx context.Context) (*SharedRedisContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		HostConfigModifier: func(hc *container.HostConfig) {
			hc.Memory = redisContainerMemoryLimit
			hc.MemorySwap = redisContainerMemoryLimit
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(redisContainerStartupTimeout),
			wait.ForListeningPort("6379/tcp").WithStartupTimeout(redisContainerStartupTimeout),
		),
	}

	cont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Redis container: %w", err)
	}

	host, err := cont.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := cont.MappedPort(ctx, "6379")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &SharedRedisContainer{
		Container: cont,
		Addr:      net.JoinHostPort(host, port.Port()),
	}, nil
}

// SetupTestRedisWithPrefix returns a client of the shared container and a key
// prefix unique to the test. Keys under the prefix are removed on cleanup, so
// tests using it may run in parallel.
func SetupTestRedisWithPrefix(t *testing.T) (*redis.Client, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), redisCtxTimeout)
	defer cancel()

	cont, err := GetSharedRedisContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to get shared Redis container: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cont.Addr,
		PoolSize: redisTestPoolSize,
	})
	if err = client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to ping Redis: %v", err)
	}

	prefix := "test:" + strings.ReplaceAll(t.Name(), "/", ":") + ":"

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), redisCtxTimeout)
		defer cleanupCancel()

		iter := client.Scan(cleanupCtx, 0, prefix+"*", redisScanBatch).Iterator()
		for iter.Next(cleanupCtx) {
			_ = client.Del(cleanupCtx, iter.Val()).Err()
		}
		_ = client.Close()
	})

	return client, prefix
}

// CleanupSharedRedisContainer terminates the shared container.
func CleanupSharedRedisContainer() {
	sharedRedisContainerMu.Lock()
	defer sharedRedisContainerMu.Unlock()

	if sharedRedisContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), redisContainerTerminateTimeout)
		defer cancel()
		_ = sharedRedisContainer.Container.Terminate(ctx)
		sharedRedisContainer = nil
	}
}
