// internal/pkg/lock/lock_test.go
package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_SerializesSameKey(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "cart:lock:user:1", time.Second)
			require.NoError(t, err)
			defer release()

			v := counter
			time.Sleep(time.Millisecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, counter)
}

func TestMemoryLocker_IndependentKeys(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	release1, err := locker.Acquire(ctx, "cart:lock:user:1", time.Second)
	require.NoError(t, err)
	defer release1()

	// A different key is not blocked by the held lock
	release2, err := locker.Acquire(ctx, "cart:lock:user:2", time.Second)
	require.NoError(t, err)
	release2()
}

func TestMemoryLocker_ContextCancel(t *testing.T) {
	locker := NewMemoryLocker()

	release, err := locker.Acquire(context.Background(), "cart:lock:user:1", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "cart:lock:user:1", time.Second)
	assert.True(t, errors.Is(err, ErrNotAcquired))

	release()

	// Lock is usable again after release
	release2, err := locker.Acquire(context.Background(), "cart:lock:user:1", time.Second)
	require.NoError(t, err)
	release2()
}
