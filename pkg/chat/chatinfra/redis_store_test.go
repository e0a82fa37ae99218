package chatinfra_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Abraxas-365/debelu/pkg/chat/chatinfra"
	"github.com/redis/go-redis/v9"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() {
		rdb.Del(context.Background(), "chat:session:u1/s1:messages", "chat:session:u1/other:messages")
	})

	exerciseStore(t, chatinfra.NewRedisStore(rdb, time.Minute))
}
