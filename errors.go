package authcore

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials is an exported constant or variable used by the auth guard.
	// Unknown username and wrong password both collapse into it so responses
	// cannot be used for account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateUser is an exported constant or variable used by the auth guard.
	ErrDuplicateUser = errors.New("username or email already registered")
	// ErrUserNotFound is returned by [UserStore] implementations when no record
	// matches. The guard never surfaces it to callers.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidToken is an exported constant or variable used by the auth guard.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is an exported constant or variable used by the auth guard.
	ErrTokenExpired = errors.New("token expired")
	// ErrUnauthenticated is an exported constant or variable used by the auth guard.
	ErrUnauthenticated = errors.New("missing or malformed credentials")
	// ErrRateLimited is an exported constant or variable used by the auth guard.
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable is an exported constant or variable used by the auth guard.
	ErrStoreUnavailable = errors.New("backing store unavailable")
	// ErrCorruptCredential is an exported constant or variable used by the auth guard.
	ErrCorruptCredential = errors.New("stored credential unreadable")
	// ErrPasswordPolicy is an exported constant or variable used by the auth guard.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrUsernamePolicy is an exported constant or variable used by the auth guard.
	ErrUsernamePolicy = errors.New("username policy violation")
	// ErrGuardNotReady is an exported constant or variable used by the auth guard.
	ErrGuardNotReady = errors.New("guard not initialized")
)

// RateLimitedError carries the retry-after hint alongside the rate-limited
// condition. errors.Is(err, ErrRateLimited) matches it.
type RateLimitedError struct {
	RetryAfter time.Duration
}

// Error describes the error operation and its observable behavior.
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// Is describes the is operation and its observable behavior.
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
