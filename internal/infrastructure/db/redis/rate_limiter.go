package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
)

// fixedWindow increments the counter for KEYS[1], starting a window of
// ARGV[1] milliseconds on the first hit, and returns {count, pttl}.
var fixedWindow = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

var _ ports.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter shared by every API instance.
// Key format: ratelimit:<name>:<client key>
type RateLimiter struct {
	client redis.Scripter
	name   string
	limit  int
	window time.Duration
}

func NewRateLimiter(client redis.Scripter, name string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, name: name, limit: limit, window: window}
}

func (l *RateLimiter) Allow(ctx context.Context, key string) (ports.RateDecision, error) {
	res, err := fixedWindow.Run(ctx, l.client, []string{l.key(key)}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return ports.RateDecision{}, fmt.Errorf("rate limit %s: %w", l.name, err)
	}
	if len(res) != 2 {
		return ports.RateDecision{}, fmt.Errorf("rate limit %s: unexpected script reply %v", l.name, res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	d := ports.RateDecision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: max(l.limit-count, 0),
	}
	if !d.Allowed {
		d.RetryAfter = ttl
		return d, domain.ErrRateLimited
	}
	return d, nil
}

func (l *RateLimiter) key(key string) string {
	return "ratelimit:" + l.name + ":" + key
}
