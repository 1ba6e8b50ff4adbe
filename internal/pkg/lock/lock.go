// internal/pkg/lock/lock.go
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotAcquired is returned when a lock could not be acquired before the
// context expired.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker serializes access to a keyed resource. Cart mutations and checkout
// acquire the lock for the owning user so concurrent requests for the same
// cart never interleave.
type Locker interface {
	// Acquire blocks until the lock for key is held, the context is done,
	// or the attempt times out. The returned function releases the lock.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// MemoryLocker is an in-process Locker backed by a mutex per key. Suitable
// for single-node deployments and tests.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMemoryLocker creates a new in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]*sync.Mutex),
	}
}

// Acquire locks the mutex for key, creating it on first use. Key mutexes are
// never evicted; the key space (one per active user) is small.
func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	locked := make(chan struct{})
	go func() {
		m.Lock()
		close(locked)
	}()

	select {
	case <-locked:
		return m.Unlock, nil
	case <-ctx.Done():
		// The goroutine still takes the mutex eventually; release it then.
		go func() {
			<-locked
			m.Unlock()
		}()
		return nil, ErrNotAcquired
	}
}
