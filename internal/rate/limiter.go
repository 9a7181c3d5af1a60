package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClassConfig holds the window and burst budget for one endpoint class.
type ClassConfig struct {
	Limit       int
	Window      time.Duration
	Burst       int
	BurstWindow time.Duration
}

// Config holds rate limiter tuning parameters.
type Config struct {
	Prefix    string
	Classes   map[string]ClassConfig
	OpTimeout time.Duration
}

// Decision is the outcome of a single Allow call. RetryAfter is only
// meaningful when Permitted is false.
type Decision struct {
	Permitted  bool
	RetryAfter time.Duration
}

// Limiter enforces per-(client key, endpoint class) fixed-window limits
// with a burst allowance using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// ARGV: window ms, burst window ms, burst enabled ("0"/"1").
// Returns {window count, burst count, window pttl, burst pttl}.
const allowScript = `
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local burst = 0
local burst_ttl = 0
if ARGV[3] == "1" then
  burst = redis.call("INCR", KEYS[2])
  if burst == 1 then
    redis.call("PEXPIRE", KEYS[2], ARGV[2])
  end
  burst_ttl = redis.call("PTTL", KEYS[2])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, burst, ttl, burst_ttl}
`

var allowLua = redis.NewScript(allowScript)

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "ac"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

func (l *Limiter) windowKey(clientKey, class string) string {
	return l.config.Prefix + ":rl:" + class + ":" + clientKey
}

func (l *Limiter) burstKey(clientKey, class string) string {
	return l.config.Prefix + ":rlb:" + class + ":" + clientKey
}

// Allow atomically counts the request against the class budget for the
// client key. On Redis failure it returns a permitted Decision together
// with a wrapped ErrRedisUnavailable so the caller can log the degraded
// condition; it never blocks the request on a counting outage.
func (l *Limiter) Allow(ctx context.Context, clientKey, class string) (Decision, error) {
	cfg, ok := l.config.Classes[class]
	if !ok {
		return Decision{Permitted: true}, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}

	if l.config.OpTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.config.OpTimeout)
		defer cancel()
	}

	burstEnabled := "0"
	if cfg.Burst > 0 && cfg.BurstWindow > 0 {
		burstEnabled = "1"
	}

	values, err := allowLua.Run(
		ctx,
		l.redis,
		[]string{l.windowKey(clientKey, class), l.burstKey(clientKey, class)},
		cfg.Window.Milliseconds(),
		cfg.BurstWindow.Milliseconds(),
		burstEnabled,
	).Int64Slice()
	if err != nil {
		return Decision{Permitted: true}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(values) != 4 {
		return Decision{Permitted: true}, fmt.Errorf("%w: unexpected script reply", ErrRedisUnavailable)
	}

	count, burst := values[0], values[1]
	windowTTL := time.Duration(values[2]) * time.Millisecond
	burstTTL := time.Duration(values[3]) * time.Millisecond

	// The window may absorb the full burst allowance on top of the
	// sustained limit, never more.
	if count > int64(cfg.Limit+cfg.Burst) {
		return Decision{RetryAfter: nonNegative(windowTTL, cfg.Window)}, nil
	}

	if burstEnabled == "1" && burst > int64(cfg.Burst) {
		return Decision{RetryAfter: nonNegative(burstTTL, cfg.BurstWindow)}, nil
	}

	return Decision{Permitted: true}, nil
}

func nonNegative(ttl, fallback time.Duration) time.Duration {
	if ttl <= 0 {
		return fallback
	}
	return ttl
}
