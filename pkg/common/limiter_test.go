package common

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeClock(start time.Time) (func() time.Time, func(time.Duration)) {
	var mu sync.Mutex
	now := start
	return func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}, func(d time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			now = now.Add(d)
		}
}

func TestRateLimiterStore_DefaultPerClientAddress(t *testing.T) {
	store := NewRateLimiterStore(1, 2)

	limiter := store.GetLimiter("10.0.0.1")
	require.NotNil(t, limiter)
	assert.EqualValues(t, 1, limiter.Limit())
	assert.Equal(t, 2, limiter.Burst())

	// the same address keeps its bucket, another address gets its own
	assert.Same(t, limiter, store.GetLimiter("10.0.0.1"))
	assert.NotSame(t, limiter, store.GetLimiter("10.0.0.2"))
	assert.Equal(t, 2, store.Len())
}

func TestRateLimiterStore_OverrideOneClient(t *testing.T) {
	store := NewRateLimiterStore(1, 2)

	store.SetLimiter("192.168.1.20", 5, 10)
	limiter := store.GetLimiter("192.168.1.20")
	assert.EqualValues(t, 5, limiter.Limit())
	assert.Equal(t, 10, limiter.Burst())

	assert.EqualValues(t, 1, store.GetLimiter("192.168.1.21").Limit())
}

func TestRateLimiterStore_ClientsDoNotShareTokens(t *testing.T) {
	store := NewRateLimiterStore(0.001, 2)

	for range 2 {
		assert.True(t, store.Allow("10.0.0.1"))
	}
	assert.False(t, store.Allow("10.0.0.1"))

	// a second client behind another address still has a full bucket
	assert.True(t, store.Allow("10.0.0.2"))
	assert.True(t, store.Allow("10.0.0.2"))
}

func TestRateLimiterStore_Refill(t *testing.T) {
	store := NewRateLimiterStore(2, 2)

	assert.True(t, store.Allow("10.0.0.1"))
	assert.True(t, store.Allow("10.0.0.1"))
	assert.False(t, store.Allow("10.0.0.1"))

	time.Sleep(600 * time.Millisecond)
	assert.True(t, store.Allow("10.0.0.1"))
}

func TestRateLimiterStore_ConcurrentAccessSharesOneBucket(t *testing.T) {
	store := NewRateLimiterStore(0.001, 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Allow("10.0.0.1") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, allowed)
	assert.Equal(t, 1, store.Len())
}

func TestRateLimiterStore_SweepDropsIdleDefaultsOnly(t *testing.T) {
	store := NewRateLimiterStore(0.001, 1)
	now, advance := fakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	store.now = now

	assert.True(t, store.Allow("10.0.0.1"))
	assert.False(t, store.Allow("10.0.0.1"))
	store.SetLimiter("10.0.0.9", 0.001, 1)

	advance(time.Minute)
	store.GetLimiter("10.0.0.2")

	assert.Equal(t, 1, store.Sweep(30*time.Second))
	assert.Equal(t, 2, store.Len())

	// the swept client comes back with a fresh bucket
	assert.True(t, store.Allow("10.0.0.1"))

	advance(time.Hour)
	assert.Equal(t, 2, store.Sweep(30*time.Second))
	assert.Equal(t, 1, store.Len())
	assert.EqualValues(t, 0.001, store.GetLimiter("10.0.0.9").Limit())
}

func TestRateLimiterStore_SweepEveryStopsWithContext(t *testing.T) {
	SetTestLoggerNop()
	store := NewRateLimiterStore(1, 1)
	now, advance := fakeClock(time.Now())
	store.now = now
	store.GetLimiter("10.0.0.1")
	advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.SweepEvery(ctx, 5*time.Millisecond, time.Minute)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SweepEvery did not return after cancel")
	}
}

func TestRateLimiterStore_NilAllowsEverything(t *testing.T) {
	var store *RateLimiterStore
	for range 10 {
		assert.True(t, store.Allow("anyone"))
	}
}
