package dedupe

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

// checkAndSet returns 1 when ARGV[1] equals the stored digest, otherwise
// stores it with a PX expiry of ARGV[2] and returns 0.
var checkAndSet = redis.NewScript(`
local prev = redis.call('GET', KEYS[1])
if prev == ARGV[1] then
  return 1
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 0
`)

// releaseIfSame deletes KEYS[1] only while it still holds ARGV[1].
var releaseIfSame = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisGuard shares the last-submission record between instances. The key
// expiry is the window, so an absent key means no recent submission.
type RedisGuard struct {
	client *redis.Client
	window time.Duration
	prefix string
}

func NewRedisGuard(client *redis.Client, window time.Duration) *RedisGuard {
	return &RedisGuard{client: client, window: window, prefix: "dws:dedupe:"}
}

func (g *RedisGuard) Check(ctx context.Context, userID string, payload []byte) error {
	digest := digestOf(payload)
	dup, err := checkAndSet.Run(ctx, g.client, []string{g.prefix + userID}, digest, g.window.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("dedupe: redis check failed: %w", err)
	}
	if dup == 1 {
		return ErrDuplicate
	}
	return nil
}

func (g *RedisGuard) Release(ctx context.Context, userID string, payload []byte) error {
	if err := releaseIfSame.Run(ctx, g.client, []string{g.prefix + userID}, digestOf(payload)).Err(); err != nil {
		return fmt.Errorf("dedupe: redis release failed: %w", err)
	}
	return nil
}

func digestOf(payload []byte) string {
	return strconv.FormatUint(xxhash.Sum64(payload), 16)
}
