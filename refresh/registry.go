package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/docsforge/authcore/token"
)

var (
	// ErrStoreUnavailable is returned when the backing store cannot be reached
	// or a store call times out.
	ErrStoreUnavailable = errors.New("refresh store unavailable")
	// ErrRecordCorrupt is returned when a stored record blob cannot be decoded.
	ErrRecordCorrupt = errors.New("refresh record corrupt")
)

// Record is the persisted state of a single issued refresh token.
type Record struct {
	UserID    string
	IssuedAt  int64
	ExpiresAt int64
	Revoked   bool
}

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	TTL       time.Duration
	Prefix    string
	OpTimeout time.Duration
}

// Registry defines a public type used by authcore APIs.
//
// Registry instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Registry struct {
	redis  redis.UniversalClient
	codec  *token.Codec
	config Config
}

// The record layout places the revoked flag at byte 2 so the revoke script
// can flip it without decoding the rest of the blob.
const revokeScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
if string.byte(data, 2) == 1 then
  return 1
end
local ttl = redis.call("PTTL", KEYS[1])
local updated = string.sub(data, 1, 1) .. string.char(1) .. string.sub(data, 3)
if ttl and ttl > 0 then
  redis.call("SET", KEYS[1], updated, "PX", ttl)
else
  redis.call("SET", KEYS[1], updated)
end
return 1
`

var revokeLua = redis.NewScript(revokeScript)

const revokeAllScript = `
local ids = redis.call("SMEMBERS", KEYS[1])
local revoked = 0
for _, id in ipairs(ids) do
  local key = ARGV[1] .. id
  local data = redis.call("GET", key)
  if data then
    if string.byte(data, 2) ~= 1 then
      local ttl = redis.call("PTTL", key)
      local updated = string.sub(data, 1, 1) .. string.char(1) .. string.sub(data, 3)
      if ttl and ttl > 0 then
        redis.call("SET", key, updated, "PX", ttl)
      else
        redis.call("SET", key, updated)
      end
      revoked = revoked + 1
    end
  else
    redis.call("SREM", KEYS[1], id)
  end
end
return revoked
`

var revokeAllLua = redis.NewScript(revokeAllScript)

// NewRegistry describes the newregistry operation and its observable behavior.
//
// NewRegistry may return an error when input validation, dependency calls, or security checks fail.
// NewRegistry does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRegistry(redisClient redis.UniversalClient, codec *token.Codec, cfg Config) (*Registry, error) {
	if redisClient == nil {
		return nil, errors.New("redis client required")
	}
	if codec == nil {
		return nil, errors.New("token codec required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("refresh TTL must be > 0")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ac"
	}

	return &Registry{
		redis:  redisClient,
		codec:  codec,
		config: cfg,
	}, nil
}

func (r *Registry) tokenKey(tokenID string) string {
	return r.config.Prefix + ":rt:" + tokenID
}

func (r *Registry) userKey(userID string) string {
	return r.config.Prefix + ":rtu:" + userID
}

func (r *Registry) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.config.OpTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.config.OpTimeout)
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Registry) Create(ctx context.Context, userID string) (string, string, error) {
	tokenID := uuid.NewString()

	signed, err := r.codec.Issue(userID, token.TypeRefresh, r.config.TTL, tokenID)
	if err != nil {
		return "", "", err
	}

	now := time.Now()
	encoded := encodeRecord(&Record{
		UserID:    userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(r.config.TTL).Unix(),
	})

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	_, err = r.redis.TxPipelined(opCtx, func(pipe redis.Pipeliner) error {
		pipe.Set(opCtx, r.tokenKey(tokenID), encoded, r.config.TTL)
		pipe.SAdd(opCtx, r.userKey(userID), tokenID)
		pipe.Expire(opCtx, r.userKey(userID), r.config.TTL)
		return nil
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return tokenID, signed, nil
}

// IsValid describes the isvalid operation and its observable behavior.
//
// IsValid may return an error when input validation, dependency calls, or security checks fail.
// IsValid does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Registry) IsValid(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	data, err := r.redis.Get(opCtx, r.tokenKey(tokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	record, err := decodeRecord(data)
	if err != nil {
		// An undecodable record is dead, not an outage.
		return false, nil
	}
	if record.Revoked {
		return false, nil
	}
	if time.Now().Unix() >= record.ExpiresAt {
		return false, nil
	}

	return true, nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Registry) Get(ctx context.Context, tokenID string) (*Record, error) {
	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	data, err := r.redis.Get(opCtx, r.tokenKey(tokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	record, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Registry) Revoke(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return nil
	}

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	if err := revokeLua.Run(opCtx, r.redis, []string{r.tokenKey(tokenID)}).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// RevokeAll describes the revokeall operation and its observable behavior.
//
// RevokeAll may return an error when input validation, dependency calls, or security checks fail.
// RevokeAll does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Registry) RevokeAll(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	err := revokeAllLua.Run(
		opCtx,
		r.redis,
		[]string{r.userKey(userID)},
		r.config.Prefix+":rt:",
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}
