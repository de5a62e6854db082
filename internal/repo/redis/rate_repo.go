package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type RateRepo struct {
	client *goredis.Client
}

func NewRateRepo(client *goredis.Client) *RateRepo {
	return &RateRepo{client: client}
}

// IncrementWindow bumps a fixed-window counter and returns the count within
// the window plus its remaining TTL. One pipelined round trip; EXPIRE NX
// starts the window on the first hit and cannot leave the key without a TTL
// if the process dies mid-call.
func (r *RateRepo) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if r.client == nil {
		return 0, 0, fmt.Errorf("redis client is nil")
	}
	if key == "" || window <= 0 {
		return 0, 0, fmt.Errorf("invalid rate window payload")
	}

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttlCmd := pipe.TTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("bump rate window %q: %w", key, err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}

	return incr.Val(), ttl, nil
}
