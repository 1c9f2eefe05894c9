package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// newTestRedisClient starts an in-memory Redis for one test. Both the
// server and the client are closed on cleanup; use FastForward on the
// returned server to expire drafts and idempotency keys.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr:       mr.Addr(),
		ClientName: "gobooks-test",
	})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}
