// Package lock serializes simulation runs. RedisLocker coordinates every API
// replica through one key; LocalLocker covers single-process deployments.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greencart-ops-api/internal/apperr"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultRetryInterval = 100 * time.Millisecond

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another run is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ErrBusy is returned once the wait budget is spent.
var ErrBusy = errors.New("lock held by another run")

type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	logger *zap.Logger
}

// NewRedisLocker holds each lock for at most ttl and waits up to wait for a
// busy lock before giving up.
func NewRedisLocker(client *redis.Client, ttl, wait time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		retry:  defaultRetryInterval,
		logger: logger,
	}
}

// Connect opens a client and verifies the server answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connect: %s: %w", addr, err)
	}
	return client, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, fmt.Errorf("redis lock: %s: %w", key, err), "acquire run lock")
		}
		if ok {
			return l.releaser(key, token), nil
		}

		if !time.Now().Before(deadline) {
			return nil, busy(ErrBusy)
		}
		select {
		case <-ctx.Done():
			return nil, busy(ctx.Err())
		case <-time.After(l.retry):
		}
	}
}

func (l *RedisLocker) releaser(key, token string) func() {
	return func() {
		// The request context may already be cancelled when release runs.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("release run lock", zap.String("key", key), zap.Error(err))
		}
	}
}

func busy(err error) error {
	return apperr.Wrap(apperr.Conflict, err, "A simulation is already running. Try again shortly.")
}
