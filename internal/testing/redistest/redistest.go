// Package redistest connects tests to a real Redis server. Tests using it are
// skipped unless BOLSILLO_TEST_REDIS_ADDR points at a reachable server.
package redistest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

const AddrEnv = "BOLSILLO_TEST_REDIS_ADDR"

// Setup returns a client on a flushed database, closed when t ends.
func Setup(t testing.TB) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}

	addr := os.Getenv(AddrEnv)
	if len(addr) == 0 {
		t.Skipf("%s not set", AddrEnv)
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   15,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client after ping error: %v", cerr)
		}
		t.Skipf("redis not available at %s: %v", addr, err)
	}

	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}
