// internal/pkg/lock/redis.go
package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only if it still holds our token, so a
// lock that expired and was re-acquired by another request is never released
// by the original holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker backed by Redis SET NX with expiry. Used when
// multiple API instances share the same carts.
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker creates a new Redis-backed locker
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// Acquire polls SET NX until the lock is held or the context is done. The
// TTL bounds how long a crashed holder can block other requests.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				releaseScript.Run(releaseCtx, l.client, []string{key}, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrNotAcquired
		case <-time.After(25 * time.Millisecond):
		}
	}
}
