package authcore

import (
	"errors"
	"time"
)

// EndpointClass defines a public type used by authcore APIs.
//
// EndpointClass instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EndpointClass string

const (
	// ClassGeneral is an exported constant or variable used by the auth guard.
	ClassGeneral EndpointClass = "general"
	// ClassAuth is an exported constant or variable used by the auth guard.
	ClassAuth EndpointClass = "auth"
	// ClassAPI is an exported constant or variable used by the auth guard.
	ClassAPI EndpointClass = "api"
	// ClassAdmin is an exported constant or variable used by the auth guard.
	ClassAdmin EndpointClass = "admin"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT       JWTConfig
	Password  PasswordConfig
	Refresh   RefreshConfig
	RateLimit RateLimitConfig
	Policy    PolicyConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by authcore APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	Secret    []byte // symmetric HS256 secret, minimum 32 bytes
	Issuer    string
	AccessTTL time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authcore APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	UpgradeOnLogin bool
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by authcore APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	TTL         time.Duration
	RedisPrefix string
	OpTimeout   time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// ClassLimit holds the budget for one endpoint class. Burst is an extra
// short-interval allowance on top of the sustained Limit; a zero Burst
// disables the burst counter for the class.
type ClassLimit struct {
	Limit       int
	Window      time.Duration
	Burst       int
	BurstWindow time.Duration
}

// RateLimitConfig defines a public type used by authcore APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	Enabled     bool
	RedisPrefix string
	OpTimeout   time.Duration
	Classes     map[EndpointClass]ClassLimit
}

/*
====================================
POLICY CONFIG
====================================
*/

// PolicyConfig defines a public type used by authcore APIs.
//
// PolicyConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PolicyConfig struct {
	MinPasswordLength int
	MaxPasswordLength int
	MinUsernameLength int
	MaxUsernameLength int
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by authcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: 30 minute access
// tokens, 7 day refresh tokens, per-class rate limits, and production
// argon2id cost parameters. JWT.Secret is left empty and must be set by
// the caller before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			Issuer:    "authcore",
			AccessTTL: 30 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:         64 * 1024,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			UpgradeOnLogin: true,
		},
		Refresh: RefreshConfig{
			TTL:         7 * 24 * time.Hour,
			RedisPrefix: "ac",
			OpTimeout:   2 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:     true,
			RedisPrefix: "ac",
			OpTimeout:   time.Second,
			Classes: map[EndpointClass]ClassLimit{
				ClassGeneral: {Limit: 100, Window: time.Hour},
				ClassAuth:    {Limit: 100, Window: time.Hour, Burst: 20, BurstWindow: time.Minute},
				ClassAPI:     {Limit: 100, Window: time.Hour, Burst: 20, BurstWindow: time.Minute},
				ClassAdmin:   {Limit: 100, Window: time.Hour, Burst: 20, BurstWindow: time.Minute},
			},
		},
		Policy: PolicyConfig{
			MinPasswordLength: 8,
			MaxPasswordLength: 128,
			MinUsernameLength: 3,
			MaxUsernameLength: 64,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	// JWT
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT Secret must be at least 32 bytes")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Refresh
	if c.Refresh.TTL <= 0 {
		return errors.New("Refresh TTL must be > 0")
	}
	if c.Refresh.TTL <= c.JWT.AccessTTL {
		return errors.New("Refresh TTL must exceed JWT AccessTTL")
	}
	if c.Refresh.OpTimeout <= 0 {
		return errors.New("Refresh OpTimeout must be > 0")
	}

	// Rate limiting
	if c.RateLimit.Enabled {
		if len(c.RateLimit.Classes) == 0 {
			return errors.New("RateLimit Classes must not be empty when rate limiting is enabled")
		}
		for class, limit := range c.RateLimit.Classes {
			if limit.Limit <= 0 {
				return errors.New("RateLimit Limit must be > 0 for class " + string(class))
			}
			if limit.Window <= 0 {
				return errors.New("RateLimit Window must be > 0 for class " + string(class))
			}
			if limit.Burst < 0 {
				return errors.New("RateLimit Burst must be >= 0 for class " + string(class))
			}
			if limit.Burst > 0 && limit.BurstWindow <= 0 {
				return errors.New("RateLimit BurstWindow must be > 0 when Burst is set for class " + string(class))
			}
		}
		if c.RateLimit.OpTimeout <= 0 {
			return errors.New("RateLimit OpTimeout must be > 0")
		}
	}

	// Policy
	if c.Policy.MinPasswordLength < 8 {
		return errors.New("Policy MinPasswordLength must be >= 8")
	}
	if c.Policy.MaxPasswordLength > 128 {
		return errors.New("Policy MaxPasswordLength must be <= 128")
	}
	if c.Policy.MaxPasswordLength < c.Policy.MinPasswordLength {
		return errors.New("Policy MaxPasswordLength must be >= MinPasswordLength")
	}
	if c.Policy.MinUsernameLength < 1 {
		return errors.New("Policy MinUsernameLength must be >= 1")
	}
	if c.Policy.MaxUsernameLength < c.Policy.MinUsernameLength {
		return errors.New("Policy MaxUsernameLength must be >= MinUsernameLength")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	if cfg.RateLimit.Classes != nil {
		out.RateLimit.Classes = make(map[EndpointClass]ClassLimit, len(cfg.RateLimit.Classes))
		for class, limit := range cfg.RateLimit.Classes {
			out.RateLimit.Classes[class] = limit
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
