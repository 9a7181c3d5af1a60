package authcore

import (
	"errors"

	internalaudit "github.com/docsforge/authcore/internal/audit"
	"github.com/docsforge/authcore/internal/rate"
	"github.com/docsforge/authcore/password"
	"github.com/docsforge/authcore/refresh"
	"github.com/docsforge/authcore/token"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by authcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	users     UserStore
	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserStore describes the withuserstore operation and its observable behavior.
//
// WithUserStore may return an error when input validation, dependency calls, or security checks fail.
// WithUserStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Guard, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.users == nil {
		return nil, errors.New("user store required")
	}

	// -------- TOKEN CODEC --------
	codec, err := token.NewCodec(token.Config{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	})
	if err != nil {
		return nil, err
	}

	// -------- PASSWORD HASHER --------
	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	// -------- REFRESH REGISTRY --------
	registry, err := refresh.NewRegistry(b.redis, codec, refresh.Config{
		TTL:       cfg.Refresh.TTL,
		Prefix:    cfg.Refresh.RedisPrefix,
		OpTimeout: cfg.Refresh.OpTimeout,
	})
	if err != nil {
		return nil, err
	}

	guard := &Guard{
		config:       cfg,
		users:        b.users,
		codec:        codec,
		passwordHash: hasher,
		registry:     registry,
	}

	// -------- RATE LIMITER --------
	if cfg.RateLimit.Enabled {
		classes := make(map[string]rate.ClassConfig, len(cfg.RateLimit.Classes))
		for class, limit := range cfg.RateLimit.Classes {
			classes[string(class)] = rate.ClassConfig{
				Limit:       limit.Limit,
				Window:      limit.Window,
				Burst:       limit.Burst,
				BurstWindow: limit.BurstWindow,
			}
		}
		guard.rateLimiter = rate.New(b.redis, rate.Config{
			Prefix:    cfg.RateLimit.RedisPrefix,
			Classes:   classes,
			OpTimeout: cfg.RateLimit.OpTimeout,
		})
	}

	// -------- AUDIT / METRICS --------
	if cfg.Audit.Enabled {
		guard.audit = internalaudit.NewDispatcher(internalaudit.DispatcherConfig{
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink)
	}
	guard.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return guard, nil
}
