//go:build integration

package redis_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/marcelsud/message-relay/webhook/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	testcontainersredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// testRedis is a throwaway Redis server plus a raw client for inspecting keys
type testRedis struct {
	Addr   string
	client *goredis.Client
}

// startRedis runs a Redis container for the lifetime of t
func startRedis(t *testing.T, ctx context.Context) *testRedis {
	t.Helper()

	container, err := testcontainersredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	})

	conn, err := container.ConnectionString(ctx)
	require.NoError(t, err, "failed to get Redis connection string")

	tr := &testRedis{Addr: strings.TrimPrefix(conn, "redis://")}
	tr.client = goredis.NewClient(&goredis.Options{Addr: tr.Addr})
	t.Cleanup(func() { tr.client.Close() })

	require.Eventually(t, func() bool {
		return tr.client.Ping(ctx).Err() == nil
	}, 10*time.Second, 100*time.Millisecond, "redis never answered PING")

	return tr
}

// repository returns a store on the container, closed when t ends.
// opts run before the store is handed out.
func (tr *testRedis) repository(t *testing.T, opts ...func(*redis.Repository)) *redis.Repository {
	t.Helper()

	repo, err := redis.NewRepository(tr.Addr, "", 0)
	require.NoError(t, err, "failed to create Redis repository")
	t.Cleanup(func() { repo.Close(context.Background()) })

	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ttl reports the remaining lifetime of key; -1ns means no expiry, -2ns a missing key
func (tr *testRedis) ttl(t *testing.T, key string) time.Duration {
	t.Helper()

	ttl, err := tr.client.TTL(context.Background(), key).Result()
	require.NoError(t, err)
	return ttl
}

func (tr *testRedis) exists(t *testing.T, key string) bool {
	t.Helper()

	n, err := tr.client.Exists(context.Background(), key).Result()
	require.NoError(t, err)
	return n > 0
}
