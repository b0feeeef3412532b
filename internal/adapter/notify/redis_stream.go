package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultMaxLen = 10000

// RedisStreamNotifier appends one entry per store message to "<prefix>:<storeID>".
// The push/LINE delivery workers consume those streams; this service only produces.
type RedisStreamNotifier struct {
	rdb    *redis.Client
	prefix string
	maxLen int64
}

func NewRedisStreamNotifier(rdb *redis.Client, prefix string) *RedisStreamNotifier {
	if prefix == "" {
		prefix = "notify:store"
	}
	return &RedisStreamNotifier{rdb: rdb, prefix: prefix, maxLen: defaultMaxLen}
}

func (n *RedisStreamNotifier) Stream(storeID string) string { return n.prefix + ":" + storeID }

func (n *RedisStreamNotifier) NotifyStore(ctx context.Context, storeID, title, body string, data map[string]string, excludeActorID string) error {
	if storeID == "" {
		return fmt.Errorf("notify: empty store id")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("notify: marshal data: %w", err)
	}
	err = n.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: n.Stream(storeID),
		MaxLen: n.maxLen,
		Approx: true,
		Values: map[string]any{
			"title":            title,
			"body":             body,
			"data":             string(raw),
			"exclude_actor_id": excludeActorID,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("notify: xadd %s: %w", n.Stream(storeID), err)
	}
	return nil
}
