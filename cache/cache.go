// Package cache holds the Redis-backed price cache and the per-key locks that
// serialize updates to one holding.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"
)

var (
	// ErrMiss is returned when a key is not cached.
	ErrMiss = errors.New("cache: miss")
	// ErrLockTimeout is returned when a lock could not be taken before the
	// wait deadline.
	ErrLockTimeout = errors.New("cache: timed out waiting for lock")
)

// Locker hands out mutually exclusive locks by key. The returned unlock
// function is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// HoldingKey is the lock key guarding one (portfolio, symbol) position.
func HoldingKey(portfolioID uint, symbol string) string {
	return "holding:" + strconv.FormatUint(uint64(portfolioID), 10) + ":" + symbol
}
