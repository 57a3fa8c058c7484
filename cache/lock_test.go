package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldingKey(t *testing.T) {
	assert.Equal(t, "holding:42:AAPL", HoldingKey(42, "AAPL"))
}

func TestLocalLockerExcludes(t *testing.T) {
	l := NewLocalLocker(time.Second)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Acquire(ctx, "holding:1:AAPL", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, l.entries)
}

func TestLocalLockerIndependentKeys(t *testing.T) {
	l := NewLocalLocker(50 * time.Millisecond)
	ctx := context.Background()

	unlockA, err := l.Acquire(ctx, "holding:1:AAPL", time.Second)
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := l.Acquire(ctx, "holding:1:MSFT", time.Second)
	require.NoError(t, err)
	unlockB()
}

func TestLocalLockerTimeout(t *testing.T) {
	l := NewLocalLocker(20 * time.Millisecond)
	ctx := context.Background()

	unlock, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "k", time.Second)
	assert.True(t, errors.Is(err, ErrLockTimeout))

	unlock()
	unlock()

	unlock, err = l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	unlock()
}

func TestLocalLockerContextCancelled(t *testing.T) {
	l := NewLocalLocker(time.Second)

	unlock, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

// redisClient returns a client for PORTFOLIO_TEST_REDIS_ADDR or skips.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("PORTFOLIO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PORTFOLIO_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisLocker(t *testing.T) {
	rdb := redisClient(t)
	ctx := context.Background()
	l := NewRedisLocker(rdb, 50*time.Millisecond)
	key := "test:" + t.Name()

	unlock, err := l.Acquire(ctx, key, time.Second)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, key, time.Second)
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	unlock, err = l.Acquire(ctx, key, time.Second)
	require.NoError(t, err)
	unlock()
}

func TestRedisPriceCache(t *testing.T) {
	rdb := redisClient(t)
	ctx := context.Background()
	c := NewPriceCache(rdb, time.Minute, time.Minute)
	symbol := "TST" + time.Now().Format("150405")
	t.Cleanup(func() { rdb.Del(ctx, priceKey(symbol), historyKey(symbol)) })

	_, err := c.GetQuote(ctx, symbol)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.SetQuote(ctx, symbol, decimal.RequireFromString("123.45")))
	got, err := c.GetQuote(ctx, symbol)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("123.45")))

	quotes, err := c.GetQuotes(ctx, []string{symbol, symbol + "X"})
	require.NoError(t, err)
	assert.Len(t, quotes, 1)
}
