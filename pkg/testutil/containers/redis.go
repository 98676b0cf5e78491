//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisContainer is the shared cache backend for passport cache suites.
type RedisContainer struct {
	Container *tcredis.RedisContainer
	URL       string
	Client    *redis.Client
}

// NewRedisContainer boots redis and returns a connected client. The manager
// owns termination, so nothing is registered with t.Cleanup here.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("redis container: %v", err)
	}
	abort := func(step string, err error) {
		_ = container.Terminate(ctx)
		t.Fatalf("redis container %s: %v", step, err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		abort("connection string", err)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		abort("parse url", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		abort("ping", err)
	}
	return &RedisContainer{Container: container, URL: url, Client: client}
}

// FlushAll empties the keyspace between tests sharing the container.
func (c *RedisContainer) FlushAll(ctx context.Context) error {
	return c.Client.FlushAll(ctx).Err()
}
