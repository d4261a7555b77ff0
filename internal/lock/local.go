package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker is an in-process lock per key with the same wait semantics as
// RedisLocker.
type LocalLocker struct {
	wait time.Duration

	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{wait: wait, slots: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-timer.C:
		return nil, busy(ErrBusy)
	case <-ctx.Done():
		return nil, busy(ctx.Err())
	}
}
