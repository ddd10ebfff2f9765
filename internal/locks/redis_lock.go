package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymquest/pkg"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "gymquest-lock||"

// deletes the key only while it still holds our token
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

var (
	ErrNotAcquired = errors.New("lock held by someone else")
	ErrNotHeld     = errors.New("lock not held")
)

// RedisLock is a best effort mutual exclusion between service replicas (SET NX with a TTL).
type RedisLock struct {
	redisClient redis.Cmdable
	// ability to inject random string generator func for tokens (for unit testing)
	RandStringFunc func(s int) (string, error)
}

func NewRedisLock(redisClient redis.Cmdable) *RedisLock {
	return &RedisLock{
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// Acquire takes the named lock for ttl and returns the token needed to release it.
func (l *RedisLock) Acquire(ctx context.Context, name string, ttl time.Duration) (string, error) {
	token, err := l.RandStringFunc(24)
	if err != nil {
		return "", fmt.Errorf("generate lock token: %w", err)
	}

	acquired, err := l.redisClient.SetNX(ctx, keyPrefix+name, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("set lock %s: %w", name, err)
	}
	if !acquired {
		return "", ErrNotAcquired
	}
	return token, nil
}

// Release frees the named lock if it is still held with token.
func (l *RedisLock) Release(ctx context.Context, name, token string) error {
	deleted, err := l.redisClient.Eval(ctx, releaseScript, []string{keyPrefix + name}, token).Int()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	if deleted == 0 {
		return ErrNotHeld
	}
	return nil
}
