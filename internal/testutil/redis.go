//go:build integration

package testutil

import (
	"context"
	"testing"
)

// FlushDB flushes a specific Redis database.
func FlushDB(t *testing.T, db int) {
	t.Helper()

	if err := RedisClient(t, db).FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flushing DB %d: %v", db, err)
	}
}

// KeyExists checks if a key exists in a specific Redis DB.
func KeyExists(t *testing.T, db int, key string) bool {
	t.Helper()

	n, err := RedisClient(t, db).Exists(context.Background(), key).Result()
	if err != nil {
		t.Fatalf("checking existence of %s: %v", key, err)
	}
	return n > 0
}

// TTL returns the remaining time to live of a key in seconds, or a negative
// value when the key has none.
func TTL(t *testing.T, db int, key string) float64 {
	t.Helper()

	d, err := RedisClient(t, db).TTL(context.Background(), key).Result()
	if err != nil {
		t.Fatalf("reading TTL of %s: %v", key, err)
	}
	return d.Seconds()
}
