package lock

import (
	"context"
	"sync"
	"time"
)

// ttlMargin covers work after the last strategy gives up, such as
// releasing the device and recording the job.
const ttlMargin = 10 * time.Second

// CoveringTTL returns a lease long enough for a print chain that may run for
// budget. The configured value wins when it is already longer.
func CoveringTTL(configured, budget time.Duration) time.Duration {
	return max(configured, budget+ttlMargin)
}

// DeviceLock serializes print jobs per physical device.
type DeviceLock interface {
	// Acquire blocks until key is free or ctx ends. The returned func releases it.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// LocalLock is an in-process DeviceLock.
type LocalLock struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalLock() *LocalLock {
	return &LocalLock{slots: make(map[string]chan struct{})}
}

func (l *LocalLock) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
