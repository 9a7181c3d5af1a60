// Package authcore provides the authentication and rate-limiting core that
// gates every protected endpoint of the documentation platform: credential
// verification with adaptive password hashing, short-lived JWT access
// tokens, Redis-registered refresh tokens with revocation, and a shared
// fixed-window request limiter.
//
// The package is designed for concurrent server workloads: Guard methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Guard], [Builder], [Config],
// the [UserStore] contract, and value types (TokenPair, Identity, Decision).
// Mechanics live in subpackages (token, password, refresh) and under
// internal/; the host API layer owns HTTP handling, rendering, and content
// generation and only ever sees an authorization decision or a token pair.
//
// # Degradation policy
//
// The two shared stores fail in opposite directions, deliberately. The rate
// limiter fails OPEN: a counting outage permits requests and logs a
// degraded-limiter warning. The refresh registry fails CLOSED: token
// validity is never guessed during an outage, since failing open would let
// a revoked token live until Redis returns.
//
// # Hot path
//
// Authorize is signature + expiry only, no store round-trip; that is why
// access tokens stay short-lived (30 minutes by default) and are never
// individually revocable.
package authcore
