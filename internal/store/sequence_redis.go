package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// reserveScript raises the counter to the floor when needed, then advances it
// by n and returns the new value (the last reserved id).
var reserveScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if cur < floor then cur = floor end
cur = cur + tonumber(ARGV[2])
redis.call('SET', KEYS[1], cur)
return cur
`)

// RedisSequencer keeps counters under "<prefix><collection>" keys.
type RedisSequencer struct {
	client *redis.Client
	prefix string
}

// NewRedisSequencer creates a Redis-based sequencer. Prefix may be empty.
func NewRedisSequencer(client *redis.Client, prefix string) *RedisSequencer {
	if prefix == "" {
		prefix = "bakehouse:seq:"
	}
	return &RedisSequencer{client: client, prefix: prefix}
}

func (r *RedisSequencer) Reserve(ctx context.Context, collection string, floor int64, n int) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("reserve %s: n must be positive, got %d", collection, n)
	}
	last, err := reserveScript.Run(ctx, r.client, []string{r.prefix + collection}, floor, n).Int64()
	if err != nil {
		return 0, fmt.Errorf("reserve %s: %w", collection, err)
	}
	return last - int64(n) + 1, nil
}
