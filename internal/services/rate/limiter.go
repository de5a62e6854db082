package rate

import (
	"context"
	"fmt"
	"time"
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter caps how often a user may enter the matching pipeline. The cap
// exists because the client retries on a short timer; without it a stuck
// client could hammer the candidate scan.
type Limiter struct {
	store     WindowStore
	perWindow int
	window    time.Duration
}

func NewLimiter(store WindowStore, perWindow int, window time.Duration) *Limiter {
	if perWindow < 0 {
		perWindow = 0
	}
	if window <= 0 {
		window = 2 * time.Second
	}

	return &Limiter{
		store:     store,
		perWindow: perWindow,
		window:    window,
	}
}

// AllowAttempt reports whether the user may run a match attempt now. When
// denied, the first return value is the suggested retry-after in seconds.
func (l *Limiter) AllowAttempt(ctx context.Context, userID string) (int64, bool, error) {
	if userID == "" {
		return 0, false, fmt.Errorf("user id is required")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}
	if l.perWindow == 0 {
		return 0, true, nil
	}

	count, ttl, err := l.store.IncrementWindow(ctx, attemptKey(userID), l.window)
	if err != nil {
		return 0, false, err
	}
	if count > int64(l.perWindow) {
		return ceilSeconds(ttl), false, nil
	}

	return 0, true, nil
}

func attemptKey(userID string) string {
	return "rate:match_attempt:" + userID
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
